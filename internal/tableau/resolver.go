package tableau

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type resolver struct {
	client *Client
	cache  *Cache
	group  singleflight.Group
	log    *zap.Logger
}

func NewResolver(client *Client, cache *Cache, log *zap.Logger) Resolver {
	return &resolver{client: client, cache: cache, log: log}
}

// Resolve serves fresh cache entries directly; otherwise it runs version
// discovery, sign-in, the filtered query and sign-out, and caches the LUID
// on success only.
func (r *resolver) Resolve(ctx context.Context, req LookupRequest) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, &LookupError{Stage: StageValidate, Err: err}
	}

	key := CacheKey(req.ServerURL, req.DatasourceName)
	if luid, ok := r.cache.Get(key); ok {
		r.log.Info("returning cached LUID", zap.String("datasource", req.DatasourceName))
		return Result{LUID: luid, Cached: true}, nil
	}

	r.log.Info("looking up LUID", zap.String("datasource", req.DatasourceName), zap.String("server", req.ServerURL))

	creds := req.Credentials()
	// callers with different identities must not share a failure
	flightKey := key + "\x00" + creds.identity()

	// the flight is shared, so one caller going away must not fail the others;
	// every call below is bounded by its own timeout
	flightCtx := context.WithoutCancel(ctx)

	v, err, _ := r.group.Do(flightKey, func() (any, error) {
		luid, err := r.lookup(flightCtx, strings.TrimRight(req.ServerURL, "/"), req.DatasourceName, creds)
		if err != nil {
			return "", err
		}
		r.cache.Put(key, luid)
		return luid, nil
	})
	if err != nil {
		r.log.Warn("error getting datasource LUID", zap.String("datasource", req.DatasourceName), zap.Error(err))
		return Result{}, err
	}

	return Result{LUID: v.(string), Cached: false}, nil
}

func (r *resolver) lookup(ctx context.Context, serverURL, name string, creds Credentials) (string, error) {
	version := r.client.APIVersion(ctx, serverURL)

	var luid string
	err := r.client.WithSession(ctx, serverURL, version, creds, func(ctx context.Context, sess *Session) error {
		var err error
		luid, err = r.client.DatasourceLUID(ctx, sess, name)
		return err
	})
	return luid, err
}

func validate(req LookupRequest) error {
	switch {
	case strings.TrimSpace(req.DatasourceName) == "":
		return errors.New("datasource_name is required")
	case strings.TrimSpace(req.ServerURL) == "":
		return errors.New("server_url is required")
	}

	switch req.AuthMethod {
	case AuthPAT:
		if req.PATName == "" || req.PATSecret == "" {
			return errors.New("pat_name and pat_secret are required for auth_method 'pat'")
		}
	case AuthStandard:
		if req.Username == "" || req.Password == "" {
			return errors.New("username and password are required for auth_method 'standard'")
		}
	default:
		return errors.New("auth_method must be 'pat' or 'standard'")
	}
	return nil
}
