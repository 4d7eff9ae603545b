package keymap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadShippedQwerty(t *testing.T) *Map {
	t.Helper()
	m, err := Load(filepath.Join("..", "layouts", "qwerty.kcm"), FormatBase)
	require.NoError(t, err)
	return m
}

func TestShippedQwertyLoads(t *testing.T) {
	m := loadShippedQwerty(t)
	assert.Equal(t, KeyboardTypeFull, m.KeyboardType())

	assert.Equal(t, 'a', m.Character(KeyA, MetaNone))
	assert.Equal(t, 'A', m.Character(KeyA, MetaShiftOn))
	assert.Equal(t, 'A', m.Character(KeyA, MetaCapsLockOn))
	assert.Equal(t, 'a', m.Character(KeyA, MetaShiftOn|MetaCapsLockOn))
	assert.Equal(t, 'é', m.Character(KeyE, MetaAltRightOn))
	assert.Equal(t, '!', m.Character(Key1, MetaShiftLeftOn))
}

func TestShippedQwertyHardwareMapping(t *testing.T) {
	m := loadShippedQwerty(t)

	code, ok := m.MapKey(30, 0)
	require.True(t, ok)
	assert.Equal(t, KeyA, code)

	// Usage codes take precedence over scan codes.
	code, ok = m.MapKey(30, 0x070005)
	require.True(t, ok)
	assert.Equal(t, KeyB, code)
}

func TestShippedQwertyNumpad(t *testing.T) {
	m := loadShippedQwerty(t)

	assert.Equal(t, '7', m.Character(KeyNumpad7, MetaNumLockOn))
	assert.Equal(t, rune(0), m.Character(KeyNumpad7, MetaNone))

	fb, ok := m.FallbackAction(KeyNumpad7, MetaNone)
	require.True(t, ok)
	assert.Equal(t, KeyMoveHome, fb.KeyCode)

	code, _ := m.ApplyKeyBehavior(KeyNumpadEnter, MetaNone)
	assert.Equal(t, KeyEnter, code)
}

func TestShippedQwertyTypesText(t *testing.T) {
	m := loadShippedQwerty(t)

	events, err := m.Events(1, "Hello, World!\n")
	require.NoError(t, err)
	assert.NotEmpty(t, events)

	down := 0
	for _, ev := range events {
		if ev.Action == ActionDown {
			down++
		} else {
			down--
		}
	}
	assert.Zero(t, down)
}
