package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/channels/panel", "/channels/{name}"},
		{"/channels/host", "/channels/{name}"},
		{"/healthz", "/healthz"},
		{"/metrics", "/metrics"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.path))
	}
}

func TestHandler(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		Init(false)
		rec := httptest.NewRecorder()
		Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		// recorders are no-ops while disabled
		Message("GET_WALLETS", true)
		Reload("wallets", false)
	})

	t.Run("enabled", func(t *testing.T) {
		Init(true)
		Init(true)
		defer Init(false)

		Message("GET_WALLETS", true)
		Command("READ", false, 20*time.Millisecond)
		Broadcast("WALLETS")
		ForwardQueued("panel")
		RateLimited("panel")
		ChannelsActive(2)
		Reload("wallets", true)

		srv := httptest.NewServer(Middleware(Handler()))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `osmium_messages_total{status="ok",type="GET_WALLETS"} 1`)
		assert.Contains(t, string(body), `osmium_commands_total{status="error",type="READ"} 1`)
		assert.Contains(t, string(body), `osmium_channels_active 2`)
		assert.Contains(t, string(body), `osmium_watcher_reloads_total{collection="wallets",status="ok"} 1`)
	})
}
