package tableau

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/Vovarama1992/tableau-ai-bridge/internal/config"
)

const (
	serverInfoXML = `<?xml version="1.0" encoding="UTF-8"?>
<tsResponse xmlns="http://tableau.com/api" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <serverInfo>
    <productVersion build="20231.23.0511.1108">2023.1.2</productVersion>
    <restApiVersion>3.19</restApiVersion>
  </serverInfo>
</tsResponse>`

	signInXML = `<?xml version="1.0" encoding="UTF-8"?>
<tsResponse xmlns="http://tableau.com/api">
  <credentials token="tok-123" estimatedTimeToExpiration="365:23:59">
    <site id="site-9" contentUrl="finance"/>
    <user id="user-1"/>
  </credentials>
</tsResponse>`

	datasourcesXML = `<?xml version="1.0" encoding="UTF-8"?>
<tsResponse xmlns="http://tableau.com/api">
  <pagination pageNumber="1" pageSize="100" totalAvailable="1"/>
  <datasources>
    <datasource id="ds-luid-1" name="Sales" type="sqlserver"/>
  </datasources>
</tsResponse>`
)

// fakeServer is a scripted Tableau Server. Handlers can be swapped per test.
type fakeServer struct {
	*httptest.Server

	mu         sync.Mutex
	calls      map[string]int
	signInBody string
	query      string
	tokens     []string

	handlers map[string]http.HandlerFunc
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		calls: map[string]int{},
		handlers: map[string]http.HandlerFunc{
			"serverinfo":  xmlReply(http.StatusOK, serverInfoXML),
			"signin":      xmlReply(http.StatusOK, signInXML),
			"signout":     xmlReply(http.StatusNoContent, ""),
			"datasources": xmlReply(http.StatusOK, datasourcesXML),
		},
	}

	fs.Server = httptest.NewTLSServer(http.HandlerFunc(fs.route))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) route(w http.ResponseWriter, r *http.Request) {
	var name string
	switch path := r.URL.Path; {
	case path == "/api/3.0/serverinfo":
		name = "serverinfo"
	case strings.HasSuffix(path, "/auth/signin"):
		name = "signin"
	case strings.HasSuffix(path, "/auth/signout"):
		name = "signout"
	case strings.HasSuffix(path, "/datasources"):
		name = "datasources"
	default:
		http.NotFound(w, r)
		return
	}

	fs.mu.Lock()
	fs.calls[name]++
	switch name {
	case "signin":
		body, _ := io.ReadAll(r.Body)
		fs.signInBody = string(body)
	case "datasources":
		fs.query = r.URL.RawQuery
		fs.tokens = append(fs.tokens, r.Header.Get(authHeader))
	case "signout":
		fs.tokens = append(fs.tokens, r.Header.Get(authHeader))
	}
	h := fs.handlers[name]
	fs.mu.Unlock()

	h(w, r)
}

// handle replaces the reply for one endpoint: serverinfo, signin, signout or datasources.
func (fs *fakeServer) handle(name string, h http.HandlerFunc) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.handlers[name] = h
}

func (fs *fakeServer) signInPayload() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.signInBody
}

func (fs *fakeServer) lastQuery() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.query
}

// seenTokens lists the auth tokens sent to the query and sign-out endpoints, in order.
func (fs *fakeServer) seenTokens() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.tokens...)
}

func (fs *fakeServer) count(name string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.calls[name]
}

func (fs *fakeServer) total() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := 0
	for _, c := range fs.calls {
		n += c
	}
	return n
}

func xmlReply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func testTableauConfig() config.TableauConfig {
	return config.TableauConfig{
		DefaultAPIVersion:          "3.4",
		VersionCheckTimeoutSeconds: 2,
		APITimeoutSeconds:          5,
		SignoutTimeoutSeconds:      2,
		InsecureSkipVerify:         true,
	}
}

func newTestClient() *Client {
	return NewClient(testTableauConfig(), zap.NewNop())
}
