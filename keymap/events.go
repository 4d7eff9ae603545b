package keymap

import (
	"fmt"
	"time"
)

// KeyAction distinguishes press and release events.
type KeyAction int32

const (
	ActionDown KeyAction = iota
	ActionUp
)

func (a KeyAction) String() string {
	if a == ActionDown {
		return "down"
	}
	return "up"
}

// KeyEvent is one synthesized press or release. Time stamps within a
// synthesized sequence are strictly monotonically increasing.
type KeyEvent struct {
	DeviceID  int32
	Time      int64
	Action    KeyAction
	KeyCode   KeyCode
	MetaState MetaState
}

// Modifier synthesis policies. Ephemeral singles are held only while
// needed; ephemeral doubles have interchangeable left/right keys satisfying
// one logical flag; locked modifiers are toggled by a press+release and
// persist until toggled again.
var (
	singleEphemeralMetas = []struct {
		bits MetaState
		key  KeyCode
	}{
		{MetaSymOn, KeySym},
		{MetaFunctionOn, KeyFunction},
	}

	doubleEphemeralMetas = []struct {
		either   MetaState
		left     MetaState
		right    MetaState
		leftKey  KeyCode
		rightKey KeyCode
	}{
		{MetaShiftOn, MetaShiftLeftOn, MetaShiftRightOn, KeyShiftLeft, KeyShiftRight},
		{MetaAltOn, MetaAltLeftOn, MetaAltRightOn, KeyAltLeft, KeyAltRight},
		{MetaCtrlOn, MetaCtrlLeftOn, MetaCtrlRightOn, KeyCtrlLeft, KeyCtrlRight},
		{MetaMetaOn, MetaMetaLeftOn, MetaMetaRightOn, KeyMetaLeft, KeyMetaRight},
	}

	lockedMetas = []struct {
		bits MetaState
		key  KeyCode
	}{
		{MetaCapsLockOn, KeyCapsLock},
		{MetaNumLockOn, KeyNumLock},
		{MetaScrollLockOn, KeyScrollLock},
	}
)

// findKey performs the reverse lookup: some (keyCode, metaState) whose
// resolved character equals ch. Keys are scanned in sorted key code order;
// within a key the most general producing behavior wins, so a character
// with an unmodified binding is never synthesized through modifiers.
func (m *Map) findKey(ch rune) (KeyCode, MetaState, bool) {
	if ch == 0 {
		return KeyCodeNone, MetaNone, false
	}
	for _, code := range m.order {
		k := m.keys[code]
		var found *Behavior
		for i := range k.Behaviors {
			if k.Behaviors[i].Character == ch {
				found = &k.Behaviors[i]
			}
		}
		if found != nil {
			return code, found.MetaState.Normalize(), true
		}
	}
	return KeyCodeNone, MetaNone, false
}

// synthesizer tracks the running modifier state while events for one
// character sequence are emitted.
type synthesizer struct {
	deviceID int32
	time     int64
	current  MetaState
	events   []KeyEvent

	// Ephemeral modifier keys currently held, in press order.
	held []heldModifier
}

type heldModifier struct {
	key  KeyCode
	bits MetaState
}

func (s *synthesizer) emit(keyCode KeyCode, action KeyAction) {
	s.events = append(s.events, KeyEvent{
		DeviceID:  s.deviceID,
		Time:      s.time,
		Action:    action,
		KeyCode:   keyCode,
		MetaState: s.current,
	})
	s.time++
}

// reconcileLocks toggles each locked modifier whose current state disagrees
// with the required state. A toggle is a press+release of the lock key; the
// lock bit then persists in the running state.
func (s *synthesizer) reconcileLocks(required MetaState) {
	for _, lock := range lockedMetas {
		want := required&lock.bits != 0
		have := s.current&lock.bits != 0
		if want == have {
			continue
		}
		if want {
			s.current |= lock.bits
		} else {
			s.current &^= lock.bits
		}
		s.emit(lock.key, ActionDown)
		s.emit(lock.key, ActionUp)
	}
}

// stillNeeded reports whether a held modifier key satisfies the required
// state. A held side key stops satisfying it when the requirement names the
// opposite side specifically.
func stillNeeded(required MetaState, h heldModifier) bool {
	if required&h.bits == 0 {
		return false
	}
	for _, d := range doubleEphemeralMetas {
		sides := d.left | d.right
		if h.bits&sides == 0 {
			continue
		}
		if want := required & sides; want != 0 && want&h.bits == 0 {
			return false
		}
	}
	return true
}

// releaseStale releases held ephemeral modifiers the required state no
// longer needs. Runs of characters sharing a modifier keep it held.
func (s *synthesizer) releaseStale(required MetaState) {
	kept := s.held[:0]
	for _, h := range s.held {
		if stillNeeded(required, h) {
			kept = append(kept, h)
			continue
		}
		s.current &^= h.bits
		s.emit(h.key, ActionUp)
	}
	s.held = kept
}

// pressNeeded presses the ephemeral modifier keys the required state calls
// for. For a double modifier the left key is chosen unless the behavior
// named the right side specifically.
func (s *synthesizer) pressNeeded(required MetaState) {
	for _, single := range singleEphemeralMetas {
		if required&single.bits == 0 || s.current&single.bits != 0 {
			continue
		}
		s.current |= single.bits
		s.held = append(s.held, heldModifier{key: single.key, bits: single.bits})
		s.emit(single.key, ActionDown)
	}
	for _, double := range doubleEphemeralMetas {
		group := double.either | double.left | double.right
		if required&group == 0 || s.current&group != 0 {
			continue
		}
		key, bits := double.leftKey, double.either|double.left
		if required&double.right != 0 && required&double.left == 0 {
			key, bits = double.rightKey, double.either|double.right
		}
		s.current |= bits
		s.held = append(s.held, heldModifier{key: key, bits: bits})
		s.emit(key, ActionDown)
	}
}

// Events synthesizes the key event sequence a user would type to produce
// text. The whole call fails if any character has no producing key; no
// partial sequence is returned. The emitted sequence is self-contained: all
// ephemeral modifiers are released and all locks toggled back off at the
// end.
func (m *Map) Events(deviceID int32, text string) ([]KeyEvent, error) {
	type resolved struct {
		keyCode   KeyCode
		metaState MetaState
	}

	// Resolve the entire string before emitting anything.
	runes := []rune(text)
	keys := make([]resolved, len(runes))
	for i, ch := range runes {
		keyCode, metaState, ok := m.findKey(ch)
		if !ok {
			return nil, fmt.Errorf("no key produces character %q", ch)
		}
		keys[i] = resolved{keyCode: keyCode, metaState: metaState}
	}

	s := &synthesizer{deviceID: deviceID, time: time.Now().UnixNano()}
	for _, k := range keys {
		s.reconcileLocks(k.metaState)
		s.releaseStale(k.metaState)
		s.pressNeeded(k.metaState)
		s.emit(k.keyCode, ActionDown)
		s.emit(k.keyCode, ActionUp)
	}
	for i := len(s.held) - 1; i >= 0; i-- {
		h := s.held[i]
		s.current &^= h.bits
		s.emit(h.key, ActionUp)
	}
	s.held = nil
	s.reconcileLocks(MetaNone)
	return s.events, nil
}
