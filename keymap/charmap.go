// Package keymap loads textual keyboard layout descriptions (.kcm files)
// and answers two questions about them: which character a key code produces
// under a given modifier state, and which key events would produce a given
// character sequence.
//
// A loaded Map is immutable with respect to every read operation and safe
// for unsynchronized concurrent reads. Combine, ClearLayoutOverlay and
// AddKeyRemapping mutate the map in place and must be serialized by the
// caller against all other use of the same instance; there is no internal
// locking.
package keymap

import (
	"fmt"
	"os"
	"sort"
)

// KeyboardType classifies the physical capabilities a layout describes.
type KeyboardType int32

const (
	KeyboardTypeUnknown KeyboardType = iota
	KeyboardTypeNumeric
	KeyboardTypePredictive
	KeyboardTypeAlpha
	KeyboardTypeFull
	KeyboardTypeSpecialFunction
	KeyboardTypeOverlay
)

func (t KeyboardType) String() string {
	switch t {
	case KeyboardTypeNumeric:
		return "NUMERIC"
	case KeyboardTypePredictive:
		return "PREDICTIVE"
	case KeyboardTypeAlpha:
		return "ALPHA"
	case KeyboardTypeFull:
		return "FULL"
	case KeyboardTypeSpecialFunction:
		return "SPECIAL_FUNCTION"
	case KeyboardTypeOverlay:
		return "OVERLAY"
	default:
		return "UNKNOWN"
	}
}

// Format restricts what a layout file may declare.
type Format int

const (
	// FormatBase is a full device layout; it may declare a keyboard type.
	FormatBase Format = iota
	// FormatOverlay is the restricted subset applications may publish; type
	// declarations are rejected.
	FormatOverlay
	// FormatAny accepts either.
	FormatAny
)

// Behavior is one modifier-conditioned outcome of a key. Exactly one of
// Character, FallbackKeyCode and ReplacementKeyCode is normally set; a zero
// value of all three is the structural base sentinel.
type Behavior struct {
	MetaState          MetaState
	Character          rune
	FallbackKeyCode    KeyCode
	ReplacementKeyCode KeyCode
}

// Key holds the printed label, the dialing-pad number and the behavior list
// of one key code. Behaviors are ordered most-specific-first with the base
// (no-modifier) behavior always present and always last.
type Key struct {
	Label     rune
	Number    rune
	Behaviors []Behavior
}

func (k *Key) clone() *Key {
	c := &Key{Label: k.Label, Number: k.Number}
	c.Behaviors = append([]Behavior(nil), k.Behaviors...)
	return c
}

// FallbackAction is the substitute key an application should act on when it
// does not handle the original key itself.
type FallbackAction struct {
	KeyCode   KeyCode
	MetaState MetaState
}

// Map is a loaded key character map.
type Map struct {
	keyboardType         KeyboardType
	loadFileName         string
	layoutOverlayApplied bool

	keys  map[KeyCode]*Key
	order []KeyCode // sorted key codes, for deterministic iteration

	// Remap tables. Orthogonal to the key table: never touched by Combine
	// or ClearLayoutOverlay.
	keyRemapping    map[KeyCode]KeyCode
	keysByScanCode  map[int32]KeyCode
	keysByUsageCode map[int32]KeyCode
}

func newMap(filename string) *Map {
	return &Map{
		loadFileName:    filename,
		keys:            make(map[KeyCode]*Key),
		keyRemapping:    make(map[KeyCode]KeyCode),
		keysByScanCode:  make(map[int32]KeyCode),
		keysByUsageCode: make(map[int32]KeyCode),
	}
}

// Load reads and parses a layout file. On any parse error no map is
// returned; the error carries the file and line of the failure.
func Load(path string, format Format) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load key character map: %w", err)
	}
	return LoadContents(path, string(data), format)
}

// LoadContents parses a layout from in-memory contents. The filename is
// retained for diagnostics and as the reload source for ClearLayoutOverlay.
func LoadContents(filename, contents string, format Format) (*Map, error) {
	m := newMap(filename)
	p := &parser{m: m, t: newTokenizer(filename, contents), format: format}
	if err := p.parse(); err != nil {
		return nil, err
	}
	m.rebuildOrder()
	return m, nil
}

func (m *Map) rebuildOrder() {
	m.order = m.order[:0]
	for code := range m.keys {
		m.order = append(m.order, code)
	}
	sort.Slice(m.order, func(i, j int) bool { return m.order[i] < m.order[j] })
}

// KeyboardType returns the type declared by the layout, or the default for
// its format when the file carried no declaration.
func (m *Map) KeyboardType() KeyboardType { return m.keyboardType }

// LoadFileName returns the path the layout was loaded from.
func (m *Map) LoadFileName() string { return m.loadFileName }

// LayoutOverlayApplied reports whether a Combine has been applied since the
// base layout was loaded or last reset.
func (m *Map) LayoutOverlayApplied() bool { return m.layoutOverlayApplied }

// KeyCodes returns the key codes present in the table, sorted ascending.
func (m *Map) KeyCodes() []KeyCode {
	return append([]KeyCode(nil), m.order...)
}

// Key returns a copy of the key record for code.
func (m *Map) Key(code KeyCode) (Key, bool) {
	k, ok := m.keys[code]
	if !ok {
		return Key{}, false
	}
	return *k.clone(), true
}

// keyBehavior resolves the single best-matching behavior for the modifier
// state. The behavior list is sorted most-specific-first, so the first
// structurally compatible entry is also the most specific one; the base
// sentinel guarantees a result for every key in the table.
func (m *Map) keyBehavior(keyCode KeyCode, metaState MetaState) *Behavior {
	k, ok := m.keys[keyCode]
	if !ok {
		return nil
	}
	for i := range k.Behaviors {
		if matchesMetaState(metaState, k.Behaviors[i].MetaState) {
			return &k.Behaviors[i]
		}
	}
	return nil
}

// DisplayLabel returns the character printed on the key, or 0 if none.
func (m *Map) DisplayLabel(keyCode KeyCode) rune {
	if k, ok := m.keys[keyCode]; ok {
		return k.Label
	}
	return 0
}

// Number returns the character the key generates in dialing-pad mode, or 0.
func (m *Map) Number(keyCode KeyCode) rune {
	if k, ok := m.keys[keyCode]; ok {
		return k.Number
	}
	return 0
}

// Character returns the character generated by the key under the given
// modifier state, or 0 if the key produces none.
func (m *Map) Character(keyCode KeyCode, metaState MetaState) rune {
	if b := m.keyBehavior(keyCode, metaState); b != nil {
		return b.Character
	}
	return 0
}

// FallbackAction reports the substitute key to use when the application
// does not consume this key itself.
func (m *Map) FallbackAction(keyCode KeyCode, metaState MetaState) (FallbackAction, bool) {
	b := m.keyBehavior(keyCode, metaState)
	if b == nil || b.FallbackKeyCode == KeyCodeNone {
		return FallbackAction{}, false
	}
	return FallbackAction{KeyCode: b.FallbackKeyCode, MetaState: stripBehaviorMeta(metaState, b.MetaState)}, true
}

// Match returns the first candidate character this key can produce,
// preferring a behavior compatible with the given modifier state, or 0 if
// the key produces none of the candidates.
func (m *Map) Match(keyCode KeyCode, chars []rune, metaState MetaState) rune {
	k, ok := m.keys[keyCode]
	if !ok {
		return 0
	}
	contains := func(ch rune) bool {
		for _, c := range chars {
			if c == ch {
				return true
			}
		}
		return false
	}
	for i := range k.Behaviors {
		b := &k.Behaviors[i]
		if b.Character != 0 && matchesMetaState(metaState, b.MetaState) && contains(b.Character) {
			return b.Character
		}
	}
	for i := range k.Behaviors {
		b := &k.Behaviors[i]
		if b.Character != 0 && contains(b.Character) {
			return b.Character
		}
	}
	return 0
}

// ApplyKeyBehavior substitutes the key's replacement key code if the
// resolved behavior declares one, stripping the modifier bits the behavior
// consumed. Keys without a replacement pass through unchanged. This is how
// a single physical key acts as a logically different key depending on lock
// state (for example the Num Lock numpad keys).
func (m *Map) ApplyKeyBehavior(keyCode KeyCode, metaState MetaState) (KeyCode, MetaState) {
	b := m.keyBehavior(keyCode, metaState)
	if b == nil || b.ReplacementKeyCode == KeyCodeNone {
		return keyCode, metaState
	}
	return b.ReplacementKeyCode, stripBehaviorMeta(metaState, b.MetaState)
}

// MapKey resolves a raw hardware identifier to a key code. The usage-code
// table is consulted before the scan-code table: usage codes are specific to
// the reporting device and take precedence. A zero code skips its table.
// Returns false if neither table resolves.
func (m *Map) MapKey(scanCode, usageCode int32) (KeyCode, bool) {
	if usageCode != 0 {
		if code, ok := m.keysByUsageCode[usageCode]; ok {
			return code, true
		}
	}
	if scanCode != 0 {
		if code, ok := m.keysByScanCode[scanCode]; ok {
			return code, true
		}
	}
	return KeyCodeNone, false
}

// AddKeyRemapping adds or overwrites a key-code-level remap entry. The
// remap is applied by ApplyKeyRemapping after MapKey has resolved a base
// key code, never before.
func (m *Map) AddKeyRemapping(from, to KeyCode) {
	m.keyRemapping[from] = to
}

// ApplyKeyRemapping returns the user-remapped key code, or the input
// unchanged when no remap entry exists.
func (m *Map) ApplyKeyRemapping(from KeyCode) KeyCode {
	if to, ok := m.keyRemapping[from]; ok {
		return to
	}
	return from
}

// ScanCodeForKey inverts the scan-code table: it returns a scan code that
// the layout maps to the given key code. Used to replay synthesized events
// through a hardware-level injector.
func (m *Map) ScanCodeForKey(keyCode KeyCode) (int32, bool) {
	best := int32(0)
	found := false
	for scan, code := range m.keysByScanCode {
		if code != keyCode {
			continue
		}
		if !found || scan < best {
			best = scan
			found = true
		}
	}
	return best, found
}

// Combine layers an overlay's keys over this map. Overlay keys replace
// same-numbered base keys wholesale; there is no field-level merge. The
// keyboard type and the remap tables are unaffected.
func (m *Map) Combine(overlay *Map) {
	for _, code := range overlay.order {
		m.keys[code] = overlay.keys[code].clone()
	}
	m.rebuildOrder()
	m.layoutOverlayApplied = true
}

// ClearLayoutOverlay undoes all overlay effects by re-parsing the base
// layout from its load file. The reload is atomic: on any failure the map
// is left exactly as it was. The remap tables survive the reset.
func (m *Map) ClearLayoutOverlay() error {
	if !m.layoutOverlayApplied {
		return nil
	}
	fresh, err := Load(m.loadFileName, FormatBase)
	if err != nil {
		return fmt.Errorf("clear layout overlay: %w", err)
	}
	m.keys = fresh.keys
	m.order = fresh.order
	m.keyboardType = fresh.keyboardType
	m.layoutOverlayApplied = false
	return nil
}

// Equal reports whether two maps contain the same key set with identical
// per-key label, number and behavior lists, and the same keyboard type.
// Remap tables, the load file name and the overlay flag are deliberately
// excluded: they are not part of the layout's identity.
func (m *Map) Equal(other *Map) bool {
	if other == nil {
		return false
	}
	if m.keyboardType != other.keyboardType || len(m.keys) != len(other.keys) {
		return false
	}
	for _, code := range m.order {
		a := m.keys[code]
		b, ok := other.keys[code]
		if !ok || a.Label != b.Label || a.Number != b.Number || len(a.Behaviors) != len(b.Behaviors) {
			return false
		}
		for i := range a.Behaviors {
			if a.Behaviors[i] != b.Behaviors[i] {
				return false
			}
		}
	}
	return true
}
