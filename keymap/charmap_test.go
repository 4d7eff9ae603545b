package keymap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacter(t *testing.T) {
	m := loadTestLayout(t)

	tests := []struct {
		name      string
		keyCode   KeyCode
		metaState MetaState
		want      rune
	}{
		{"base", KeyA, MetaNone, 'a'},
		{"generic shift", KeyA, MetaShiftOn, 'A'},
		{"left shift satisfies generic", KeyA, MetaShiftOn | MetaShiftLeftOn, 'A'},
		{"right shift satisfies generic", KeyA, MetaShiftOn | MetaShiftRightOn, 'A'},
		{"caps lock", KeyA, MetaCapsLockOn, 'A'},
		{"shift and caps cancel", KeyA, MetaShiftOn | MetaCapsLockOn, 'a'},
		{"unrelated lock ignored by base", Key1, MetaNone, '1'},
		{"shifted digit", Key1, MetaShiftOn, '!'},
		{"right alt accent", KeyE, MetaAltOn | MetaAltRightOn, 'é'},
		{"key not in table", KeyVolumeUp, MetaNone, 0},
		{"ctrl code", KeyC, MetaCtrlOn | MetaCtrlLeftOn, ''},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Character(tt.keyCode, tt.metaState))
		})
	}
}

func TestResolverAlwaysFindsBase(t *testing.T) {
	m := loadTestLayout(t)

	// The base sentinel resolves for every key under every modifier state,
	// including states no behavior names.
	states := []MetaState{
		MetaNone,
		MetaShiftOn | MetaShiftLeftOn,
		MetaCtrlOn | MetaAltOn | MetaCtrlRightOn | MetaAltLeftOn,
		MetaCapsLockOn | MetaNumLockOn | MetaScrollLockOn,
		MetaMetaOn | MetaMetaLeftOn | MetaSymOn | MetaFunctionOn,
	}
	for _, code := range m.KeyCodes() {
		for _, state := range states {
			assert.NotNil(t, m.keyBehavior(code, state), "key %s state %s", code, state)
		}
	}
}

func TestResolverSpecificityOrdering(t *testing.T) {
	m := loadTestLayout(t)

	// A state satisfying both the shift behavior and the base behavior must
	// resolve to the more specific shift behavior.
	b := m.keyBehavior(KeyA, MetaShiftOn|MetaShiftLeftOn)
	require.NotNil(t, b)
	assert.Equal(t, MetaShiftOn, b.MetaState)

	// A state satisfying shift+capslock must not fall through to shift.
	b = m.keyBehavior(KeyA, MetaShiftOn|MetaShiftRightOn|MetaCapsLockOn)
	require.NotNil(t, b)
	assert.Equal(t, MetaShiftOn|MetaCapsLockOn, b.MetaState)
}

func TestDisplayLabelAndNumber(t *testing.T) {
	m := loadTestLayout(t)

	assert.Equal(t, 'A', m.DisplayLabel(KeyA))
	assert.Equal(t, rune(0), m.DisplayLabel(KeyEscape))
	assert.Equal(t, rune(0), m.DisplayLabel(KeyVolumeUp))
	assert.Equal(t, '1', m.Number(Key1))
	assert.Equal(t, rune(0), m.Number(KeyA))
}

func TestFallbackAction(t *testing.T) {
	m := loadTestLayout(t)

	fb, ok := m.FallbackAction(KeyNumpad4, MetaNone)
	require.True(t, ok)
	assert.Equal(t, KeyDpadLeft, fb.KeyCode)
	assert.Equal(t, MetaNone, fb.MetaState)

	// With Num Lock active the numeric behavior wins and carries no fallback.
	_, ok = m.FallbackAction(KeyNumpad4, MetaNumLockOn)
	assert.False(t, ok)

	// Keys without fallback behaviors report none.
	_, ok = m.FallbackAction(KeyA, MetaNone)
	assert.False(t, ok)
}

func TestMatch(t *testing.T) {
	m := loadTestLayout(t)

	assert.Equal(t, 'a', m.Match(KeyA, []rune{'a', 'x'}, MetaNone))
	assert.Equal(t, 'A', m.Match(KeyA, []rune{'a', 'A'}, MetaShiftOn|MetaShiftLeftOn))
	// No compatible behavior produces a candidate: fall back to any behavior.
	assert.Equal(t, 'A', m.Match(KeyA, []rune{'A'}, MetaNone))
	assert.Equal(t, rune(0), m.Match(KeyA, []rune{'x'}, MetaNone))
	assert.Equal(t, rune(0), m.Match(KeyVolumeUp, []rune{'a'}, MetaNone))
}

func TestApplyKeyBehavior(t *testing.T) {
	m, err := LoadContents("numpad.kcm", `
key NUMPAD_0 {
    label:   '0'
    base:    fallback INSERT
    numlock: replace 0
}
`, FormatBase)
	require.NoError(t, err)

	// Without Num Lock the key passes through unchanged.
	code, meta := m.ApplyKeyBehavior(KeyNumpad0, MetaNone)
	assert.Equal(t, KeyNumpad0, code)
	assert.Equal(t, MetaNone, meta)

	// With Num Lock the key is replaced outright and the consumed modifier
	// bits are stripped.
	code, meta = m.ApplyKeyBehavior(KeyNumpad0, MetaNumLockOn|MetaShiftOn)
	assert.Equal(t, Key0, code)
	assert.Equal(t, MetaShiftOn, meta)

	// Unknown keys pass through.
	code, meta = m.ApplyKeyBehavior(KeyVolumeUp, MetaShiftOn)
	assert.Equal(t, KeyVolumeUp, code)
	assert.Equal(t, MetaShiftOn, meta)
}

func TestRemapPipelineStaging(t *testing.T) {
	m := loadTestLayout(t)

	// Scan code resolves to the base key code.
	code, ok := m.MapKey(30, 0)
	require.True(t, ok)
	require.Equal(t, KeyA, code)

	// A key-code remap added afterward is applied only by the second stage.
	m.AddKeyRemapping(KeyA, KeyB)
	code, ok = m.MapKey(30, 0)
	require.True(t, ok)
	assert.Equal(t, KeyA, code, "MapKey alone must not apply key remapping")
	assert.Equal(t, KeyB, m.ApplyKeyRemapping(code))

	// Unmapped key codes pass through the remap stage unchanged.
	assert.Equal(t, KeyC, m.ApplyKeyRemapping(KeyC))

	// AddKeyRemapping overwrites existing entries.
	m.AddKeyRemapping(KeyA, KeyC)
	assert.Equal(t, KeyC, m.ApplyKeyRemapping(KeyA))
}

func TestMapKeyUsagePrecedence(t *testing.T) {
	m, err := LoadContents("prec.kcm", `
map key 4 A
map key usage 4 B
`, FormatBase)
	require.NoError(t, err)

	// Both tables resolve hardware code 4; the usage table wins.
	code, ok := m.MapKey(4, 4)
	require.True(t, ok)
	assert.Equal(t, KeyB, code)

	code, ok = m.MapKey(4, 0)
	require.True(t, ok)
	assert.Equal(t, KeyA, code)
}

func TestCombineReplacesKeysWholesale(t *testing.T) {
	m := loadTestLayout(t)
	overlay, err := LoadContents("overlay.kcm", `
key A {
    base: 'q'
}
key VOLUME_UP {
    base: 'u'
}
`, FormatOverlay)
	require.NoError(t, err)

	m.Combine(overlay)
	assert.True(t, m.LayoutOverlayApplied())

	// Overlay key A fully replaces the base key: no field-level merge, so
	// the shift behavior and the label are gone.
	k, ok := m.Key(KeyA)
	require.True(t, ok)
	assert.Equal(t, rune(0), k.Label)
	require.Len(t, k.Behaviors, 1)
	assert.Equal(t, 'q', m.Character(KeyA, MetaShiftOn))

	// Keys absent from the overlay are unaffected; new keys are added.
	assert.Equal(t, 'B', m.Character(KeyB, MetaShiftOn))
	assert.Equal(t, 'u', m.Character(KeyVolumeUp, MetaNone))
}

func TestClearLayoutOverlayRestoresBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.kcm")
	require.NoError(t, os.WriteFile(path, []byte(testLayout), 0o644))

	m, err := Load(path, FormatBase)
	require.NoError(t, err)
	pristine, err := Load(path, FormatBase)
	require.NoError(t, err)

	overlay, err := LoadContents("overlay.kcm", "key A {\n    base: 'q'\n}\n", FormatOverlay)
	require.NoError(t, err)

	m.Combine(overlay)
	m.Combine(overlay)
	require.False(t, m.Equal(pristine))
	m.AddKeyRemapping(KeyA, KeyB)

	require.NoError(t, m.ClearLayoutOverlay())
	assert.False(t, m.LayoutOverlayApplied())
	assert.True(t, m.Equal(pristine))

	// Remap tables survive the reset.
	assert.Equal(t, KeyB, m.ApplyKeyRemapping(KeyA))

	// Without an applied overlay the reset is a no-op even if the file is
	// gone.
	require.NoError(t, os.Remove(path))
	assert.NoError(t, m.ClearLayoutOverlay())
}

func TestClearLayoutOverlayFailureLeavesMapUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.kcm")
	require.NoError(t, os.WriteFile(path, []byte(testLayout), 0o644))

	m, err := Load(path, FormatBase)
	require.NoError(t, err)
	overlay, err := LoadContents("overlay.kcm", "key A {\n    base: 'q'\n}\n", FormatOverlay)
	require.NoError(t, err)
	m.Combine(overlay)

	require.NoError(t, os.Remove(path))
	err = m.ClearLayoutOverlay()
	require.Error(t, err)

	// The overlay state is untouched on failure.
	assert.True(t, m.LayoutOverlayApplied())
	assert.Equal(t, 'q', m.Character(KeyA, MetaNone))
}

func TestEqualIgnoresRemapTablesAndFileName(t *testing.T) {
	a := loadTestLayout(t)
	b, err := LoadContents("other-name.kcm", testLayout, FormatBase)
	require.NoError(t, err)

	require.True(t, a.Equal(b))

	// Remap tables and origin path are not part of a layout's identity.
	b.AddKeyRemapping(KeyA, KeyB)
	assert.True(t, a.Equal(b))

	// Key content is.
	overlay, err := LoadContents("overlay.kcm", "key A {\n    base: 'q'\n}\n", FormatOverlay)
	require.NoError(t, err)
	b.Combine(overlay)
	assert.False(t, a.Equal(b))
}
