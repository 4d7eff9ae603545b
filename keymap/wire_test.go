package keymap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireRoundTrip(t *testing.T) {
	m := loadTestLayout(t)

	data, err := m.MarshalBinary()
	require.NoError(t, err)

	restored, err := UnmarshalBinary(data)
	require.NoError(t, err)

	assert.True(t, m.Equal(restored))
	assert.Equal(t, m.KeyboardType(), restored.KeyboardType())
	assert.Equal(t, m.KeyCodes(), restored.KeyCodes())

	// Behavior order survives, so resolution is identical on both sides.
	assert.Equal(t, 'A', restored.Character(KeyA, MetaShiftOn))
	assert.Equal(t, 'é', restored.Character(KeyE, MetaAltRightOn))
	fb, ok := restored.FallbackAction(KeyEscape, MetaNone)
	require.True(t, ok)
	assert.Equal(t, KeyBack, fb.KeyCode)
}

func TestWireExcludesTransientState(t *testing.T) {
	m := loadTestLayout(t)
	m.AddKeyRemapping(KeyA, KeyB)

	data, err := m.MarshalBinary()
	require.NoError(t, err)
	restored, err := UnmarshalBinary(data)
	require.NoError(t, err)

	// Remap tables and file identity stay local to the originating side.
	assert.Equal(t, KeyA, restored.ApplyKeyRemapping(KeyA))
	assert.Empty(t, restored.LoadFileName())
	_, ok := restored.MapKey(30, 0)
	assert.False(t, ok)
}

func TestWireRejectsCorruptHeader(t *testing.T) {
	m := loadTestLayout(t)
	data, err := m.MarshalBinary()
	require.NoError(t, err)

	bad := append([]byte(nil), data...)
	bad[0] ^= 0xFF
	_, err = UnmarshalBinary(bad)
	assert.ErrorContains(t, err, "magic")

	short := data[:len(data)-4]
	_, err = UnmarshalBinary(short)
	assert.Error(t, err)
}

func TestWireRejectsUnknownVersion(t *testing.T) {
	m := loadTestLayout(t)
	var buf bytes.Buffer
	require.NoError(t, m.WriteTo(&buf))

	data := buf.Bytes()
	data[4] = 0xFF // version field high bits
	_, err := UnmarshalBinary(data)
	assert.ErrorContains(t, err, "version")
}
