package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virtkbd/keymapd/apiclient"
	"github.com/virtkbd/keymapd/keymap"
)

func TestLayoutRemap(t *testing.T) {
	addr, _, done := startServer(t)
	defer done()

	c := apiclient.New(addr)

	// Scan code 30 maps to A before any remapping.
	mk, err := c.MapKey("test", 30, 0)
	require.NoError(t, err)
	assert.Equal(t, keymap.KeyA, mk.KeyCode.Code())

	resp, err := c.Remap("test", keymap.KeyA, keymap.KeyB)
	require.NoError(t, err)
	assert.Equal(t, keymap.KeyA, resp.From.Code())
	assert.Equal(t, keymap.KeyB, resp.To.Code())

	mk, err = c.MapKey("test", 30, 0)
	require.NoError(t, err)
	assert.Equal(t, keymap.KeyB, mk.KeyCode.Code())
}

func TestLayoutRemapUnknownKey(t *testing.T) {
	addr, _, done := startServer(t)
	defer done()

	tr := apiclient.NewTransport(addr)
	line, err := tr.Do("layout/{name}/remap", `{"from":"NOT_A_KEY","to":"B"}`, map[string]string{"name": "test"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"status":400,"title":"Bad Request","detail":"invalid payload: unknown key code \"NOT_A_KEY\""}`, line)
}

func TestLayoutMapKeyUnknownCode(t *testing.T) {
	addr, _, done := startServer(t)
	defer done()

	c := apiclient.New(addr)
	_, err := c.MapKey("test", 9999, 0)
	assert.ErrorContains(t, err, "no key for scan code 9999")
}
