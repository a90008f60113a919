package tableau

import (
	"context"
	"fmt"
)

type AuthMethod string

const (
	AuthPAT      AuthMethod = "pat"
	AuthStandard AuthMethod = "standard"
)

// LookupRequest asks for the LUID of a published datasource by name.
type LookupRequest struct {
	DatasourceName string     `json:"datasource_name"`
	ServerURL      string     `json:"server_url"`
	SiteContentURL string     `json:"site_content_url,omitempty"`
	AuthMethod     AuthMethod `json:"auth_method"`
	PATName        string     `json:"pat_name,omitempty"`
	PATSecret      string     `json:"pat_secret,omitempty"`
	Username       string     `json:"username,omitempty"`
	Password       string     `json:"password,omitempty"`
}

type LookupResponse struct {
	Success        bool   `json:"success"`
	LUID           string `json:"luid,omitempty"`
	DatasourceName string `json:"datasource_name"`
	Cached         bool   `json:"cached"`
	Error          string `json:"error,omitempty"`
}

// Result is a successful lookup.
type Result struct {
	LUID   string
	Cached bool
}

// Credentials hold exactly one of the two sign-in shapes.
type Credentials struct {
	Method         AuthMethod
	PATName        string
	PATSecret      string
	Username       string
	Password       string
	SiteContentURL string
}

func (r LookupRequest) Credentials() Credentials {
	return Credentials{
		Method:         r.AuthMethod,
		PATName:        r.PATName,
		PATSecret:      r.PATSecret,
		Username:       r.Username,
		Password:       r.Password,
		SiteContentURL: r.SiteContentURL,
	}
}

// identity names the principal without its secret.
func (c Credentials) identity() string {
	if c.Method == AuthPAT {
		return "pat:" + c.PATName
	}
	return "user:" + c.Username
}

// Session is a signed-in REST API session. It lives for one lookup only.
type Session struct {
	ServerURL  string
	APIVersion string
	Token      string
	SiteID     string
}

// Stage names the protocol step a lookup failed in.
type Stage string

const (
	StageValidate Stage = "validate"
	StageSignIn   Stage = "signin"
	StageQuery    Stage = "query"
)

// LookupError is a failed lookup. StatusCode and Body are set when the
// server answered with an unexpected HTTP status.
type LookupError struct {
	Stage      Stage
	StatusCode int
	Body       string
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed: %d - %s", e.Stage, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Resolver maps a datasource name to its LUID.
type Resolver interface {
	Resolve(ctx context.Context, req LookupRequest) (Result, error)
}
