package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virtkbd/keymapd/apiclient"
	"github.com/virtkbd/keymapd/keymap"
)

const overlayLayout = `key A {
    label: 'Z'
    base: 'z'
}
`

func TestLayoutCombineAndReset(t *testing.T) {
	addr, _, done := startServer(t)
	defer done()

	c := apiclient.New(addr)

	ch, err := c.Char("test", keymap.KeyA, keymap.MetaNone)
	require.NoError(t, err)
	assert.Equal(t, "a", ch.Character)

	comb, err := c.Combine("test", overlayLayout)
	require.NoError(t, err)
	assert.True(t, comb.OverlayApplied)

	ch, err = c.Char("test", keymap.KeyA, keymap.MetaNone)
	require.NoError(t, err)
	assert.Equal(t, "z", ch.Character)

	// Keys the overlay does not touch keep their base behavior.
	ch, err = c.Char("test", keymap.KeyB, keymap.MetaNone)
	require.NoError(t, err)
	assert.Equal(t, "b", ch.Character)

	reset, err := c.Reset("test")
	require.NoError(t, err)
	assert.False(t, reset.OverlayApplied)

	ch, err = c.Char("test", keymap.KeyA, keymap.MetaNone)
	require.NoError(t, err)
	assert.Equal(t, "a", ch.Character)
}

func TestLayoutCombineRemapSurvivesReset(t *testing.T) {
	addr, _, done := startServer(t)
	defer done()

	c := apiclient.New(addr)
	_, err := c.Remap("test", keymap.KeyA, keymap.KeyB)
	require.NoError(t, err)

	_, err = c.Combine("test", overlayLayout)
	require.NoError(t, err)
	_, err = c.Reset("test")
	require.NoError(t, err)

	mk, err := c.MapKey("test", 30, 0)
	require.NoError(t, err)
	assert.Equal(t, keymap.KeyB, mk.KeyCode.Code())
}

func TestLayoutCombineInvalidOverlay(t *testing.T) {
	addr, _, done := startServer(t)
	defer done()

	c := apiclient.New(addr)
	_, err := c.Combine("test", "key A {")
	assert.ErrorContains(t, err, "invalid overlay")
}

func TestLayoutCombineEmptyContents(t *testing.T) {
	addr, _, done := startServer(t)
	defer done()

	tr := apiclient.NewTransport(addr)
	line, err := tr.Do("layout/{name}/combine", `{"contents":""}`, map[string]string{"name": "test"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"status":400,"title":"Bad Request","detail":"overlay contents must not be empty"}`, line)
}
