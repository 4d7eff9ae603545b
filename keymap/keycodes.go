package keymap

import "fmt"

// KeyCode is a logical key identifier, independent of the physical hardware
// that produced it. Scan codes and HID usage codes are translated to key
// codes through the map's remap tables.
type KeyCode int32

// KeyCodeNone marks the absence of a key code.
const KeyCodeNone KeyCode = 0

// Logical key codes. The numbering follows the Android key code space so
// that .kcm files written for that ecosystem load unchanged.
const (
	KeySoftLeft         KeyCode = 1
	KeySoftRight        KeyCode = 2
	KeyHome             KeyCode = 3
	KeyBack             KeyCode = 4
	KeyCall             KeyCode = 5
	KeyEndCall          KeyCode = 6
	Key0                KeyCode = 7
	Key1                KeyCode = 8
	Key2                KeyCode = 9
	Key3                KeyCode = 10
	Key4                KeyCode = 11
	Key5                KeyCode = 12
	Key6                KeyCode = 13
	Key7                KeyCode = 14
	Key8                KeyCode = 15
	Key9                KeyCode = 16
	KeyStar             KeyCode = 17
	KeyPound            KeyCode = 18
	KeyDpadUp           KeyCode = 19
	KeyDpadDown         KeyCode = 20
	KeyDpadLeft         KeyCode = 21
	KeyDpadRight        KeyCode = 22
	KeyDpadCenter       KeyCode = 23
	KeyVolumeUp         KeyCode = 24
	KeyVolumeDown       KeyCode = 25
	KeyPower            KeyCode = 26
	KeyCamera           KeyCode = 27
	KeyClear            KeyCode = 28
	KeyA                KeyCode = 29
	KeyB                KeyCode = 30
	KeyC                KeyCode = 31
	KeyD                KeyCode = 32
	KeyE                KeyCode = 33
	KeyF                KeyCode = 34
	KeyG                KeyCode = 35
	KeyH                KeyCode = 36
	KeyI                KeyCode = 37
	KeyJ                KeyCode = 38
	KeyK                KeyCode = 39
	KeyL                KeyCode = 40
	KeyM                KeyCode = 41
	KeyN                KeyCode = 42
	KeyO                KeyCode = 43
	KeyP                KeyCode = 44
	KeyQ                KeyCode = 45
	KeyR                KeyCode = 46
	KeyS                KeyCode = 47
	KeyT                KeyCode = 48
	KeyU                KeyCode = 49
	KeyV                KeyCode = 50
	KeyW                KeyCode = 51
	KeyX                KeyCode = 52
	KeyY                KeyCode = 53
	KeyZ                KeyCode = 54
	KeyComma            KeyCode = 55
	KeyPeriod           KeyCode = 56
	KeyAltLeft          KeyCode = 57
	KeyAltRight         KeyCode = 58
	KeyShiftLeft        KeyCode = 59
	KeyShiftRight       KeyCode = 60
	KeyTab              KeyCode = 61
	KeySpace            KeyCode = 62
	KeySym              KeyCode = 63
	KeyExplorer         KeyCode = 64
	KeyEnvelope         KeyCode = 65
	KeyEnter            KeyCode = 66
	KeyDel              KeyCode = 67
	KeyGrave            KeyCode = 68
	KeyMinus            KeyCode = 69
	KeyEquals           KeyCode = 70
	KeyLeftBracket      KeyCode = 71
	KeyRightBracket     KeyCode = 72
	KeyBackslash        KeyCode = 73
	KeySemicolon        KeyCode = 74
	KeyApostrophe       KeyCode = 75
	KeySlash            KeyCode = 76
	KeyAt               KeyCode = 77
	KeyNum              KeyCode = 78
	KeyHeadsetHook      KeyCode = 79
	KeyFocus            KeyCode = 80
	KeyPlus             KeyCode = 81
	KeyMenu             KeyCode = 82
	KeyNotification     KeyCode = 83
	KeySearch           KeyCode = 84
	KeyPageUp           KeyCode = 92
	KeyPageDown         KeyCode = 93
	KeyEscape           KeyCode = 111
	KeyForwardDel       KeyCode = 112
	KeyCtrlLeft         KeyCode = 113
	KeyCtrlRight        KeyCode = 114
	KeyCapsLock         KeyCode = 115
	KeyScrollLock       KeyCode = 116
	KeyMetaLeft         KeyCode = 117
	KeyMetaRight        KeyCode = 118
	KeyFunction         KeyCode = 119
	KeySysRq            KeyCode = 120
	KeyBreak            KeyCode = 121
	KeyMoveHome         KeyCode = 122
	KeyMoveEnd          KeyCode = 123
	KeyInsert           KeyCode = 124
	KeyForward          KeyCode = 125
	KeyF1               KeyCode = 131
	KeyF2               KeyCode = 132
	KeyF3               KeyCode = 133
	KeyF4               KeyCode = 134
	KeyF5               KeyCode = 135
	KeyF6               KeyCode = 136
	KeyF7               KeyCode = 137
	KeyF8               KeyCode = 138
	KeyF9               KeyCode = 139
	KeyF10              KeyCode = 140
	KeyF11              KeyCode = 141
	KeyF12              KeyCode = 142
	KeyNumLock          KeyCode = 143
	KeyNumpad0          KeyCode = 144
	KeyNumpad1          KeyCode = 145
	KeyNumpad2          KeyCode = 146
	KeyNumpad3          KeyCode = 147
	KeyNumpad4          KeyCode = 148
	KeyNumpad5          KeyCode = 149
	KeyNumpad6          KeyCode = 150
	KeyNumpad7          KeyCode = 151
	KeyNumpad8          KeyCode = 152
	KeyNumpad9          KeyCode = 153
	KeyNumpadDivide     KeyCode = 154
	KeyNumpadMultiply   KeyCode = 155
	KeyNumpadSubtract   KeyCode = 156
	KeyNumpadAdd        KeyCode = 157
	KeyNumpadDot        KeyCode = 158
	KeyNumpadComma      KeyCode = 159
	KeyNumpadEnter      KeyCode = 160
	KeyNumpadEquals     KeyCode = 161
	KeyNumpadLeftParen  KeyCode = 162
	KeyNumpadRightParen KeyCode = 163
)

// keyCodesByName resolves the names used in .kcm key declarations, map
// directives and fallback/replace references.
var keyCodesByName = map[string]KeyCode{
	"SOFT_LEFT":           KeySoftLeft,
	"SOFT_RIGHT":          KeySoftRight,
	"HOME":                KeyHome,
	"BACK":                KeyBack,
	"CALL":                KeyCall,
	"ENDCALL":             KeyEndCall,
	"0":                   Key0,
	"1":                   Key1,
	"2":                   Key2,
	"3":                   Key3,
	"4":                   Key4,
	"5":                   Key5,
	"6":                   Key6,
	"7":                   Key7,
	"8":                   Key8,
	"9":                   Key9,
	"STAR":                KeyStar,
	"POUND":               KeyPound,
	"DPAD_UP":             KeyDpadUp,
	"DPAD_DOWN":           KeyDpadDown,
	"DPAD_LEFT":           KeyDpadLeft,
	"DPAD_RIGHT":          KeyDpadRight,
	"DPAD_CENTER":         KeyDpadCenter,
	"VOLUME_UP":           KeyVolumeUp,
	"VOLUME_DOWN":         KeyVolumeDown,
	"POWER":               KeyPower,
	"CAMERA":              KeyCamera,
	"CLEAR":               KeyClear,
	"A":                   KeyA,
	"B":                   KeyB,
	"C":                   KeyC,
	"D":                   KeyD,
	"E":                   KeyE,
	"F":                   KeyF,
	"G":                   KeyG,
	"H":                   KeyH,
	"I":                   KeyI,
	"J":                   KeyJ,
	"K":                   KeyK,
	"L":                   KeyL,
	"M":                   KeyM,
	"N":                   KeyN,
	"O":                   KeyO,
	"P":                   KeyP,
	"Q":                   KeyQ,
	"R":                   KeyR,
	"S":                   KeyS,
	"T":                   KeyT,
	"U":                   KeyU,
	"V":                   KeyV,
	"W":                   KeyW,
	"X":                   KeyX,
	"Y":                   KeyY,
	"Z":                   KeyZ,
	"COMMA":               KeyComma,
	"PERIOD":              KeyPeriod,
	"ALT_LEFT":            KeyAltLeft,
	"ALT_RIGHT":           KeyAltRight,
	"SHIFT_LEFT":          KeyShiftLeft,
	"SHIFT_RIGHT":         KeyShiftRight,
	"TAB":                 KeyTab,
	"SPACE":               KeySpace,
	"SYM":                 KeySym,
	"EXPLORER":            KeyExplorer,
	"ENVELOPE":            KeyEnvelope,
	"ENTER":               KeyEnter,
	"DEL":                 KeyDel,
	"GRAVE":               KeyGrave,
	"MINUS":               KeyMinus,
	"EQUALS":              KeyEquals,
	"LEFT_BRACKET":        KeyLeftBracket,
	"RIGHT_BRACKET":       KeyRightBracket,
	"BACKSLASH":           KeyBackslash,
	"SEMICOLON":           KeySemicolon,
	"APOSTROPHE":          KeyApostrophe,
	"SLASH":               KeySlash,
	"AT":                  KeyAt,
	"NUM":                 KeyNum,
	"HEADSETHOOK":         KeyHeadsetHook,
	"FOCUS":               KeyFocus,
	"PLUS":                KeyPlus,
	"MENU":                KeyMenu,
	"NOTIFICATION":        KeyNotification,
	"SEARCH":              KeySearch,
	"PAGE_UP":             KeyPageUp,
	"PAGE_DOWN":           KeyPageDown,
	"ESCAPE":              KeyEscape,
	"FORWARD_DEL":         KeyForwardDel,
	"CTRL_LEFT":           KeyCtrlLeft,
	"CTRL_RIGHT":          KeyCtrlRight,
	"CAPS_LOCK":           KeyCapsLock,
	"SCROLL_LOCK":         KeyScrollLock,
	"META_LEFT":           KeyMetaLeft,
	"META_RIGHT":          KeyMetaRight,
	"FUNCTION":            KeyFunction,
	"SYSRQ":               KeySysRq,
	"BREAK":               KeyBreak,
	"MOVE_HOME":           KeyMoveHome,
	"MOVE_END":            KeyMoveEnd,
	"INSERT":              KeyInsert,
	"FORWARD":             KeyForward,
	"F1":                  KeyF1,
	"F2":                  KeyF2,
	"F3":                  KeyF3,
	"F4":                  KeyF4,
	"F5":                  KeyF5,
	"F6":                  KeyF6,
	"F7":                  KeyF7,
	"F8":                  KeyF8,
	"F9":                  KeyF9,
	"F10":                 KeyF10,
	"F11":                 KeyF11,
	"F12":                 KeyF12,
	"NUM_LOCK":            KeyNumLock,
	"NUMPAD_0":            KeyNumpad0,
	"NUMPAD_1":            KeyNumpad1,
	"NUMPAD_2":            KeyNumpad2,
	"NUMPAD_3":            KeyNumpad3,
	"NUMPAD_4":            KeyNumpad4,
	"NUMPAD_5":            KeyNumpad5,
	"NUMPAD_6":            KeyNumpad6,
	"NUMPAD_7":            KeyNumpad7,
	"NUMPAD_8":            KeyNumpad8,
	"NUMPAD_9":            KeyNumpad9,
	"NUMPAD_DIVIDE":       KeyNumpadDivide,
	"NUMPAD_MULTIPLY":     KeyNumpadMultiply,
	"NUMPAD_SUBTRACT":     KeyNumpadSubtract,
	"NUMPAD_ADD":          KeyNumpadAdd,
	"NUMPAD_DOT":          KeyNumpadDot,
	"NUMPAD_COMMA":        KeyNumpadComma,
	"NUMPAD_ENTER":        KeyNumpadEnter,
	"NUMPAD_EQUALS":       KeyNumpadEquals,
	"NUMPAD_LEFT_PAREN":   KeyNumpadLeftParen,
	"NUMPAD_RIGHT_PAREN":  KeyNumpadRightParen,
}

var keyNamesByCode = func() map[KeyCode]string {
	names := make(map[KeyCode]string, len(keyCodesByName))
	for name, code := range keyCodesByName {
		names[code] = name
	}
	return names
}()

// KeyCodeByName resolves a .kcm key code name like "A" or "NUMPAD_4".
func KeyCodeByName(name string) (KeyCode, bool) {
	code, ok := keyCodesByName[name]
	return code, ok
}

// String returns the .kcm name for the key code, or a numeric form for
// codes outside the named set.
func (k KeyCode) String() string {
	if name, ok := keyNamesByCode[k]; ok {
		return name
	}
	return fmt.Sprintf("KEYCODE_%d", int32(k))
}
