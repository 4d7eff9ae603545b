package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virtkbd/keymapd/apiclient"
	"github.com/virtkbd/keymapd/internal/server/api"
	"github.com/virtkbd/keymapd/internal/server/api/handler"
	apitest "github.com/virtkbd/keymapd/internal/testing"
)

func startSecureServer(t *testing.T, cfg api.ServerConfig) (addr string, done func()) {
	t.Helper()
	store := apitest.NewLayoutStore(t, map[string]string{"test": testLayout})
	return apitest.StartAPIServer(t, cfg, func(r *api.Router) {
		r.Register("ping", handler.Ping())
		r.Register("layout/{name}/info", handler.LayoutInfo(store))
	})
}

func TestPasswordProtectedServer(t *testing.T) {
	addr, done := startSecureServer(t, api.ServerConfig{Password: "hunter2", RequireAuth: true})
	defer done()

	c := apiclient.NewWithPassword(addr, "hunter2")
	resp, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, api.ServerName, resp.Server)

	info, err := c.LayoutInfo("test")
	require.NoError(t, err)
	assert.Equal(t, "FULL", info.KeyboardType)
}

func TestWrongPasswordRejected(t *testing.T) {
	addr, done := startSecureServer(t, api.ServerConfig{Password: "hunter2", RequireAuth: true})
	defer done()

	_, err := apiclient.NewWithPassword(addr, "swordfish").Ping()
	assert.EqualError(t, err, "401 Unauthorized: invalid password")
}

func TestPlaintextClientRejectedWhenAuthRequired(t *testing.T) {
	addr, done := startSecureServer(t, api.ServerConfig{Password: "hunter2", RequireAuth: true})
	defer done()

	_, err := apiclient.New(addr).Ping()
	assert.EqualError(t, err, "401 Unauthorized: authentication required")
}

func TestLoginAgainstPasswordlessServer(t *testing.T) {
	addr, done := startSecureServer(t, api.ServerConfig{})
	defer done()

	_, err := apiclient.NewWithPassword(addr, "hunter2").Ping()
	assert.EqualError(t, err, "401 Unauthorized: server has no password configured")
}
