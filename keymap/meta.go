package keymap

import (
	"fmt"
	"math/bits"
	"strings"
)

// MetaState is a bitmask of active modifier keys. Shift, Alt, Ctrl and Meta
// each have a generic bit plus left/right-specific bits; a behavior that
// names the generic bit is satisfied by either side.
type MetaState int32

const (
	MetaNone       MetaState = 0
	MetaShiftOn    MetaState = 0x1
	MetaAltOn      MetaState = 0x2
	MetaSymOn      MetaState = 0x4
	MetaFunctionOn MetaState = 0x8

	MetaAltLeftOn    MetaState = 0x10
	MetaAltRightOn   MetaState = 0x20
	MetaShiftLeftOn  MetaState = 0x40
	MetaShiftRightOn MetaState = 0x80

	MetaCtrlOn      MetaState = 0x1000
	MetaCtrlLeftOn  MetaState = 0x2000
	MetaCtrlRightOn MetaState = 0x4000

	MetaMetaOn      MetaState = 0x10000
	MetaMetaLeftOn  MetaState = 0x20000
	MetaMetaRightOn MetaState = 0x40000

	MetaCapsLockOn   MetaState = 0x100000
	MetaNumLockOn    MetaState = 0x200000
	MetaScrollLockOn MetaState = 0x400000
)

// modifierGroup ties a generic modifier bit to its left/right side bits.
type modifierGroup struct {
	generic MetaState
	left    MetaState
	right   MetaState
}

var modifierGroups = []modifierGroup{
	{MetaShiftOn, MetaShiftLeftOn, MetaShiftRightOn},
	{MetaAltOn, MetaAltLeftOn, MetaAltRightOn},
	{MetaCtrlOn, MetaCtrlLeftOn, MetaCtrlRightOn},
	{MetaMetaOn, MetaMetaLeftOn, MetaMetaRightOn},
}

// modifiersByName resolves the modifier tokens of a key property line.
// "base" is handled separately by the parser.
var modifiersByName = map[string]MetaState{
	"shift":      MetaShiftOn,
	"lshift":     MetaShiftLeftOn,
	"rshift":     MetaShiftRightOn,
	"alt":        MetaAltOn,
	"lalt":       MetaAltLeftOn,
	"ralt":       MetaAltRightOn,
	"ctrl":       MetaCtrlOn,
	"lctrl":      MetaCtrlLeftOn,
	"rctrl":      MetaCtrlRightOn,
	"meta":       MetaMetaOn,
	"lmeta":      MetaMetaLeftOn,
	"rmeta":      MetaMetaRightOn,
	"sym":        MetaSymOn,
	"fn":         MetaFunctionOn,
	"capslock":   MetaCapsLockOn,
	"numlock":    MetaNumLockOn,
	"scrolllock": MetaScrollLockOn,
}

// Has reports whether every bit of mask is set in m.
func (m MetaState) Has(mask MetaState) bool {
	return m&mask == mask
}

// Normalize sets the generic Shift/Alt/Ctrl/Meta bits wherever a
// corresponding side bit is present, producing the canonical form used in
// key events.
func (m MetaState) Normalize() MetaState {
	for _, g := range modifierGroups {
		if m&(g.left|g.right) != 0 {
			m |= g.generic
		}
	}
	return m
}

// String renders the mask with the .kcm modifier token names, for
// diagnostics and table dumps.
func (m MetaState) String() string {
	if m == MetaNone {
		return "base"
	}
	ordered := []struct {
		name string
		bit  MetaState
	}{
		{"shift", MetaShiftOn},
		{"lshift", MetaShiftLeftOn},
		{"rshift", MetaShiftRightOn},
		{"alt", MetaAltOn},
		{"lalt", MetaAltLeftOn},
		{"ralt", MetaAltRightOn},
		{"ctrl", MetaCtrlOn},
		{"lctrl", MetaCtrlLeftOn},
		{"rctrl", MetaCtrlRightOn},
		{"meta", MetaMetaOn},
		{"lmeta", MetaMetaLeftOn},
		{"rmeta", MetaMetaRightOn},
		{"sym", MetaSymOn},
		{"fn", MetaFunctionOn},
		{"capslock", MetaCapsLockOn},
		{"numlock", MetaNumLockOn},
		{"scrolllock", MetaScrollLockOn},
	}
	var parts []string
	for _, e := range ordered {
		if m&e.bit != 0 {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, "+")
}

// ParseMetaState parses a '+'-joined list of the .kcm modifier token names
// ("shift+capslock"). "base" and the empty string parse to MetaNone.
func ParseMetaState(s string) (MetaState, error) {
	if s == "" || s == "base" {
		return MetaNone, nil
	}
	var m MetaState
	for _, name := range strings.Split(s, "+") {
		bit, ok := modifiersByName[name]
		if !ok {
			return MetaNone, fmt.Errorf("unknown modifier %q", name)
		}
		m |= bit
	}
	return m, nil
}

// specificity orders behaviors most-specific-first: more modifier bits sort
// earlier, ties broken by the numeric mask value descending. The base
// behavior (zero bits) always sorts last, and within one popcount the
// higher-valued masks (locks) sort before the plain modifiers, which keeps
// reverse lookup preferring ephemeral modifiers over lock toggles.
func specificityLess(a, b MetaState) bool {
	ca, cb := bits.OnesCount32(uint32(a)), bits.OnesCount32(uint32(b))
	if ca != cb {
		return ca > cb
	}
	return a > b
}

// matchesMetaState reports whether a behavior requiring behaviorMeta applies
// under eventMeta. Every modifier group the behavior names must be active in
// the event, with a generic bit satisfied by either side key; groups the
// behavior does not name may be in any state. Lock, sym and fn bits have no
// sides and are matched independently. The behavior list is sorted
// most-specific-first, so the permissiveness toward unnamed groups never
// shadows a more specific binding.
func matchesMetaState(eventMeta, behaviorMeta MetaState) bool {
	for _, g := range modifierGroups {
		if behaviorMeta&g.generic != 0 && eventMeta&(g.generic|g.left|g.right) == 0 {
			return false
		}
		if behaviorMeta&g.left != 0 && eventMeta&g.left == 0 {
			return false
		}
		if behaviorMeta&g.right != 0 && eventMeta&g.right == 0 {
			return false
		}
	}
	sideless := MetaSymOn | MetaFunctionOn | MetaCapsLockOn | MetaNumLockOn | MetaScrollLockOn
	required := behaviorMeta & sideless
	return eventMeta&required == required
}

// stripBehaviorMeta removes the modifier bits a behavior consumed, clearing
// generic bits alongside their side bits and vice versa, then renormalizes.
func stripBehaviorMeta(eventMeta, behaviorMeta MetaState) MetaState {
	out := eventMeta &^ behaviorMeta
	for _, g := range modifierGroups {
		if behaviorMeta&g.generic != 0 {
			out &^= g.left | g.right
		}
		if behaviorMeta&(g.left|g.right) != 0 {
			out &^= g.generic
		}
	}
	return out.Normalize()
}
