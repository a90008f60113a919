package tableau

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	res Result
	err error
	got LookupRequest
}

func (s *stubResolver) Resolve(_ context.Context, req LookupRequest) (Result, error) {
	s.got = req
	return s.res, s.err
}

func serveLookup(t *testing.T, res Resolver, body string) (*httptest.ResponseRecorder, LookupResponse) {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(res))

	req := httptest.NewRequest(http.MethodPost, "/api/datasource-luid", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out LookupResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHandleDatasourceLUID_Success(t *testing.T) {
	stub := &stubResolver{res: Result{LUID: "ds-1", Cached: true}}

	rec, out := serveLookup(t, stub, `{"datasource_name":"Sales","server_url":"https://tab","auth_method":"pat","pat_name":"n","pat_secret":"s","site_content_url":"finance"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, LookupResponse{Success: true, LUID: "ds-1", DatasourceName: "Sales", Cached: true}, out)
	assert.Equal(t, "finance", stub.got.SiteContentURL)
	assert.Equal(t, AuthPAT, stub.got.AuthMethod)
}

func TestHandleDatasourceLUID_FailureIsStill200(t *testing.T) {
	stub := &stubResolver{err: &LookupError{Stage: StageSignIn, StatusCode: 401, Body: "nope"}}

	rec, out := serveLookup(t, stub, `{"datasource_name":"Sales","server_url":"https://tab","auth_method":"pat"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, out.Success)
	assert.Empty(t, out.LUID)
	assert.Equal(t, "Sales", out.DatasourceName)
	assert.Contains(t, out.Error, "401 - nope")
}

func TestHandleDatasourceLUID_InvalidJSON(t *testing.T) {
	stub := &stubResolver{err: errors.New("unreachable")}

	rec, _ := serveLookup(t, stub, `{"datasource_name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.got.DatasourceName)
}

func TestHandleDatasourceLUID_EndToEnd(t *testing.T) {
	fs := newFakeServer(t)
	res, _ := newTestResolver(&fakeClock{})
	body := `{"datasource_name":"Sales","server_url":"` + fs.URL + `","auth_method":"standard","username":"u","password":"p"}`

	_, first := serveLookup(t, res, body)
	_, second := serveLookup(t, res, body)

	assert.True(t, first.Success)
	assert.False(t, first.Cached)
	assert.True(t, second.Success)
	assert.True(t, second.Cached)
	assert.Equal(t, first.LUID, second.LUID)
	assert.Equal(t, 1, fs.count("signin"))
}
