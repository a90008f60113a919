package tableau

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/tableau-ai-bridge/internal/config"
)

const authHeader = "X-Tableau-Auth"

// Client speaks the Tableau Server REST API. Every call carries its own timeout.
type Client struct {
	http           *http.Client
	defaultVersion string
	versionTimeout time.Duration
	apiTimeout     time.Duration
	signoutTimeout time.Duration
	log            *zap.Logger
}

func NewClient(cfg config.TableauConfig, log *zap.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		// on-premises servers commonly run with self-signed certificates
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &Client{
		http:           &http.Client{Transport: transport},
		defaultVersion: cfg.DefaultAPIVersion,
		versionTimeout: cfg.VersionCheckTimeout(),
		apiTimeout:     cfg.APITimeout(),
		signoutTimeout: cfg.SignoutTimeout(),
		log:            log,
	}
}

// APIVersion asks the server for its REST API version. Any failure falls
// back to the configured default.
func (c *Client) APIVersion(ctx context.Context, serverURL string) string {
	ctx, cancel := context.WithTimeout(ctx, c.versionTimeout)
	defer cancel()

	status, body, err := c.do(ctx, http.MethodGet, serverURL+"/api/3.0/serverinfo", "", nil)
	if err != nil {
		c.log.Warn("version detection failed", zap.String("server", serverURL), zap.Error(err), zap.String("fallback", c.defaultVersion))
		return c.defaultVersion
	}
	if status != http.StatusOK {
		c.log.Warn("could not determine version", zap.String("server", serverURL), zap.Int("status", status), zap.String("fallback", c.defaultVersion))
		return c.defaultVersion
	}

	el, err := findElement(body, "restApiVersion")
	if err != nil || el == nil || strings.TrimSpace(el.text) == "" {
		c.log.Warn("could not determine version", zap.String("server", serverURL), zap.Error(err), zap.String("fallback", c.defaultVersion))
		return c.defaultVersion
	}

	version := strings.TrimSpace(el.text)
	c.log.Debug("server api version", zap.String("server", serverURL), zap.String("version", version))
	return version
}

// SignIn exchanges credentials for a session token and site id. When the
// server issued a token but the reply is otherwise unusable, the error comes
// with a partial session so the caller can still sign it out.
func (c *Client) SignIn(ctx context.Context, serverURL, apiVersion string, creds Credentials) (*Session, error) {
	payload, err := signInPayload(creds)
	if err != nil {
		return nil, &LookupError{Stage: StageValidate, Err: err}
	}

	c.log.Info("signing in to tableau REST API",
		zap.String("server", serverURL),
		zap.String("api_version", apiVersion),
		zap.String("auth_method", string(creds.Method)),
		zap.String("site", creds.SiteContentURL),
	)

	ctx, cancel := context.WithTimeout(ctx, c.apiTimeout)
	defer cancel()

	status, body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/api/%s/auth/signin", serverURL, apiVersion), "", payload)
	if err != nil {
		return nil, &LookupError{Stage: StageSignIn, Err: err}
	}
	if status != http.StatusOK {
		c.log.Warn("signin failed", zap.Int("status", status))
		return nil, &LookupError{Stage: StageSignIn, StatusCode: status, Body: string(body)}
	}

	sess, err := parseSignIn(body)
	if sess != nil {
		sess.ServerURL = serverURL
		sess.APIVersion = apiVersion
	}
	if err != nil {
		c.log.Warn("error parsing signin response", zap.Error(err), zap.String("body", truncate(string(body), 1000)))
		return sess, &LookupError{Stage: StageSignIn, Err: fmt.Errorf("failed to parse signin response: %w", err)}
	}

	c.log.Info("signed in", zap.String("site_id", sess.SiteID))
	return sess, nil
}

func parseSignIn(body []byte) (*Session, error) {
	credentials, err := findElement(body, "credentials")
	if err != nil {
		return nil, err
	}
	site, err := findElement(body, "site")
	if err != nil {
		return nil, err
	}

	switch {
	case credentials == nil:
		return nil, errors.New("no credentials element found in response")
	case credentials.attr("token") == "":
		return nil, errors.New("no token in credentials")
	}

	// a token was issued from here on, so failures still return it
	sess := &Session{Token: credentials.attr("token")}
	switch {
	case site == nil:
		return sess, errors.New("no site element found in response")
	case site.attr("id") == "":
		return sess, errors.New("no site ID in response")
	}

	sess.SiteID = site.attr("id")
	return sess, nil
}

// DatasourceLUID returns the id of the first datasource whose name equals name.
func (c *Client) DatasourceLUID(ctx context.Context, sess *Session, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.apiTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/%s/sites/%s/datasources?filter=name:eq:%s",
		sess.ServerURL, sess.APIVersion, sess.SiteID, escapeFilterValue(name))

	status, body, err := c.do(ctx, http.MethodGet, endpoint, sess.Token, nil)
	if err != nil {
		return "", &LookupError{Stage: StageQuery, Err: err}
	}
	if status != http.StatusOK {
		return "", &LookupError{Stage: StageQuery, StatusCode: status, Body: string(body)}
	}

	ds, err := findElement(body, "datasource")
	if err != nil {
		return "", &LookupError{Stage: StageQuery, Err: fmt.Errorf("failed to parse datasources response: %w", err)}
	}
	if ds == nil {
		return "", &LookupError{Stage: StageQuery, Err: fmt.Errorf("datasource '%s' not found on server", name)}
	}
	luid := ds.attr("id")
	if luid == "" {
		return "", &LookupError{Stage: StageQuery, Err: errors.New("datasource found but has no ID")}
	}

	c.log.Info("found datasource LUID", zap.String("datasource", name), zap.String("luid", luid))
	return luid, nil
}

// SignOut invalidates the session token.
func (c *Client) SignOut(ctx context.Context, sess *Session) error {
	ctx, cancel := context.WithTimeout(ctx, c.signoutTimeout)
	defer cancel()

	_, _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/api/%s/auth/signout", sess.ServerURL, sess.APIVersion), sess.Token, nil)
	return err
}

// WithSession signs in, runs fn, and always attempts to sign out once a
// token was obtained. Sign-out errors are logged and dropped.
func (c *Client) WithSession(ctx context.Context, serverURL, apiVersion string, creds Credentials, fn func(ctx context.Context, sess *Session) error) error {
	sess, err := c.SignIn(ctx, serverURL, apiVersion, creds)
	if sess != nil && sess.Token != "" {
		defer func() {
			if err := c.SignOut(context.WithoutCancel(ctx), sess); err != nil {
				c.log.Debug("signout failed", zap.String("server", serverURL), zap.Error(err))
			}
		}()
	}
	if err != nil {
		return err
	}

	return fn(ctx, sess)
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/xml")
	if token != "" {
		req.Header.Set(authHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// escapeFilterValue percent-encodes a value for the filter query parameter,
// spaces as %20 and reserved characters such as ',' and ':' escaped.
func escapeFilterValue(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
