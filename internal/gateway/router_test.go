package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soyeahso/hookbridge/internal/account"
	"github.com/soyeahso/hookbridge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRouterHandleAndServe(t *testing.T) {
	rt := NewRouter(testLogger())
	_, err := rt.Handle("/hook", okHandler())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hook", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterCollision(t *testing.T) {
	rt := NewRouter(testLogger())
	_, err := rt.Handle("/hook", okHandler())
	require.NoError(t, err)

	_, err = rt.Handle("/hook", okHandler())
	require.ErrorIs(t, err, ErrRouteExists)
}

func TestRouterUnbind(t *testing.T) {
	rt := NewRouter(testLogger())
	unbind, err := rt.Handle("/hook", okHandler())
	require.NoError(t, err)
	assert.Equal(t, []string{"/hook"}, rt.Paths())

	unbind()
	assert.Empty(t, rt.Paths())

	// Unbinding twice is harmless, and the path can be reclaimed.
	unbind()
	_, err = rt.Handle("/hook", okHandler())
	require.NoError(t, err)
}

func TestBindRoutes(t *testing.T) {
	off := false
	w := &config.WebhookConfig{
		AccountConfig: config.AccountConfig{
			WebhookPath: "/webhook/incoming",
			CallbackURL: "https://example.com/cb",
		},
		Accounts: map[string]config.AccountConfig{
			"support":  {WebhookPath: "/webhook/support"},
			"disabled": {WebhookPath: "/webhook/disabled", Enabled: &off},
			"pathless": {CallbackURL: "https://example.com/x"},
		},
	}

	rt := NewRouter(testLogger())
	store := account.NewStore()
	teardown, err := BindRoutes(rt, w, &recordingSink{}, store, testLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"/webhook/incoming", "/webhook/support"}, rt.Paths())
	assert.True(t, store.View("default").Running)
	assert.True(t, store.View("support").Running)
	assert.False(t, store.View("disabled").Running)

	teardown()
	assert.Empty(t, rt.Paths())
	assert.False(t, store.View("default").Running)
	assert.False(t, store.View("support").Running)
}

func TestBindRoutesCollisionUnwinds(t *testing.T) {
	w := &config.WebhookConfig{
		Accounts: map[string]config.AccountConfig{
			"a": {WebhookPath: "/same"},
			"b": {WebhookPath: "/same"},
		},
	}

	rt := NewRouter(testLogger())
	store := account.NewStore()
	_, err := BindRoutes(rt, w, &recordingSink{}, store, testLogger())
	require.ErrorIs(t, err, ErrRouteExists)

	// The partial bind is rolled back.
	assert.Empty(t, rt.Paths())
	assert.False(t, store.View("a").Running)
}

func TestBindRoutesEndToEnd(t *testing.T) {
	w := &config.WebhookConfig{
		AccountConfig: config.AccountConfig{
			WebhookPath: "/webhook/incoming",
			AuthToken:   "secret",
		},
	}

	rt := NewRouter(testLogger())
	sink := &recordingSink{}
	_, err := BindRoutes(rt, w, sink, account.NewStore(), testLogger())
	require.NoError(t, err)

	ts := httptest.NewServer(rt)
	t.Cleanup(ts.Close)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/webhook/incoming",
		strings.NewReader(`{"messageId":"m1","senderId":"u1"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, sink.messages, 1)
	assert.Equal(t, "default", sink.accounts[0])
}
