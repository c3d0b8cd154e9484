package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soyeahso/hookbridge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	router := NewRouter(testLogger())
	_, err := router.Handle("/webhook/incoming", okHandler())
	require.NoError(t, err)

	srv := NewServer(config.Defaults().Server, router, testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", srv.handleHealth)
	mux.Handle("/", router)

	ts := httptest.NewServer(withMiddleware(mux, testLogger()))
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, []string{"/webhook/incoming"}, health.Routes)
}

func TestUnknownRouteReturns404(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestIDHeader(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	// A provided request id is echoed back.
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-42")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "req-42", resp2.Header.Get("X-Request-ID"))
}

func TestResolveBindAddr(t *testing.T) {
	tests := []struct {
		cfg  config.ServerConfig
		want string
	}{
		{config.ServerConfig{Bind: "loopback", Port: 18900}, "127.0.0.1:18900"},
		{config.ServerConfig{Bind: "lan", Port: 18900}, "0.0.0.0:18900"},
		{config.ServerConfig{Bind: "custom", CustomBindHost: "10.0.0.5", Port: 80}, "10.0.0.5:80"},
		{config.ServerConfig{Bind: "custom", Port: 80}, "0.0.0.0:80"},
		{config.ServerConfig{Bind: "", Port: 1}, "127.0.0.1:1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveBindAddr(tt.cfg))
	}
}
