package keymap

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// parser consumes the token stream of one layout file and populates a Map.
// Parsing is all-or-nothing: the first structural or lexical error aborts
// the load and the partially built table never reaches the caller.
type parser struct {
	m      *Map
	t      *tokenizer
	format Format

	inKey        bool
	keyCode      KeyCode
	key          *Key
	declaredType bool
}

func (p *parser) parse() error {
	for !p.t.isEof() {
		p.t.skipSpaces()
		if !p.t.isEol() && p.t.peekChar() != '#' {
			var err error
			if p.inKey {
				err = p.parseKeyProperty()
			} else {
				err = p.parseTopLevel()
			}
			if err != nil {
				return err
			}
			p.t.skipSpaces()
			if !p.t.isEol() && p.t.peekChar() != '#' {
				return p.t.errorf("expected end of line, got %q", p.t.peekRemainder())
			}
		}
		p.t.nextLine()
	}
	if p.inKey {
		return p.t.errorf("unterminated key description")
	}
	if !p.declaredType && p.format == FormatOverlay {
		p.m.keyboardType = KeyboardTypeOverlay
	}
	return nil
}

func (p *parser) parseTopLevel() error {
	keyword := p.t.nextToken("")
	switch keyword {
	case "type":
		return p.parseType()
	case "map":
		return p.parseMap()
	case "key":
		return p.parseKey()
	default:
		return p.t.errorf("invalid keyword %q", keyword)
	}
}

func (p *parser) parseType() error {
	if p.declaredType {
		return p.t.errorf("duplicate type declaration")
	}
	if p.format == FormatOverlay {
		return p.t.errorf("type declarations are not allowed in overlay layouts")
	}
	p.t.skipSpaces()
	name := p.t.nextToken("")
	switch name {
	case "NUMERIC":
		p.m.keyboardType = KeyboardTypeNumeric
	case "PREDICTIVE":
		p.m.keyboardType = KeyboardTypePredictive
	case "ALPHA":
		p.m.keyboardType = KeyboardTypeAlpha
	case "FULL":
		p.m.keyboardType = KeyboardTypeFull
	case "SPECIAL_FUNCTION":
		p.m.keyboardType = KeyboardTypeSpecialFunction
	default:
		return p.t.errorf("invalid keyboard type %q", name)
	}
	p.declaredType = true
	return nil
}

// parseMap handles "map key <scan> <KEYCODE>" and
// "map key usage <usage> <KEYCODE>" directives.
func (p *parser) parseMap() error {
	p.t.skipSpaces()
	keyword := p.t.nextToken("")
	if keyword != "key" {
		return p.t.errorf("expected keyword \"key\" after \"map\", got %q", keyword)
	}

	p.t.skipSpaces()
	codeToken := p.t.nextToken("")
	byUsage := false
	if codeToken == "usage" {
		byUsage = true
		p.t.skipSpaces()
		codeToken = p.t.nextToken("")
	}
	code, err := strconv.ParseInt(codeToken, 0, 32)
	if err != nil {
		return p.t.errorf("expected hardware code, got %q", codeToken)
	}

	p.t.skipSpaces()
	nameToken := p.t.nextToken("")
	keyCode, ok := KeyCodeByName(nameToken)
	if !ok {
		return p.t.errorf("expected key code name, got %q", nameToken)
	}

	if byUsage {
		if _, dup := p.m.keysByUsageCode[int32(code)]; dup {
			return p.t.errorf("duplicate map entry for usage code %s", codeToken)
		}
		p.m.keysByUsageCode[int32(code)] = keyCode
	} else {
		if _, dup := p.m.keysByScanCode[int32(code)]; dup {
			return p.t.errorf("duplicate map entry for scan code %s", codeToken)
		}
		p.m.keysByScanCode[int32(code)] = keyCode
	}
	return nil
}

func (p *parser) parseKey() error {
	p.t.skipSpaces()
	nameToken := p.t.nextToken("")
	keyCode, ok := KeyCodeByName(nameToken)
	if !ok {
		return p.t.errorf("expected key code name, got %q", nameToken)
	}
	if _, dup := p.m.keys[keyCode]; dup {
		return p.t.errorf("duplicate key declaration for %s", nameToken)
	}

	p.t.skipSpaces()
	if p.t.nextChar() != '{' {
		return p.t.errorf("expected '{' after key %s declaration", nameToken)
	}
	p.inKey = true
	p.keyCode = keyCode
	p.key = &Key{}
	return nil
}

// keyProperty identifies one target of an assignment inside a key block:
// the label, the number, or a behavior for a modifier combination.
type keyProperty struct {
	label     bool
	number    bool
	metaState MetaState
}

func (p *parser) parseKeyProperty() error {
	if p.t.peekChar() == '}' {
		p.t.nextChar()
		p.finishKey()
		p.inKey = false
		return nil
	}

	// One or more comma-separated properties, then ':' and a value that is
	// assigned to all of them (e.g. "shift, capslock: 'A'").
	var props []keyProperty
	for {
		token := p.t.nextToken(",:")
		if token == "" {
			return p.t.errorf("expected key property name")
		}
		switch token {
		case "label":
			props = append(props, keyProperty{label: true})
		case "number":
			props = append(props, keyProperty{number: true})
		default:
			metaState, err := p.parseModifiers(token)
			if err != nil {
				return err
			}
			props = append(props, keyProperty{metaState: metaState})
		}

		p.t.skipSpaces()
		switch p.t.nextChar() {
		case ',':
			p.t.skipSpaces()
			continue
		case ':':
		default:
			return p.t.errorf("expected ':' after key property %q", token)
		}
		break
	}

	p.t.skipSpaces()
	behavior, err := p.parseBehaviorValue()
	if err != nil {
		return err
	}

	for _, prop := range props {
		switch {
		case prop.label:
			if behavior.Character == 0 || behavior.FallbackKeyCode != KeyCodeNone || behavior.ReplacementKeyCode != KeyCodeNone {
				return p.t.errorf("label must be a character literal")
			}
			if p.key.Label != 0 {
				return p.t.errorf("duplicate label for key %s", p.keyCode)
			}
			p.key.Label = behavior.Character
		case prop.number:
			if behavior.Character == 0 || behavior.FallbackKeyCode != KeyCodeNone || behavior.ReplacementKeyCode != KeyCodeNone {
				return p.t.errorf("number must be a character literal")
			}
			if p.key.Number != 0 {
				return p.t.errorf("duplicate number for key %s", p.keyCode)
			}
			p.key.Number = behavior.Character
		default:
			for i := range p.key.Behaviors {
				if p.key.Behaviors[i].MetaState == prop.metaState {
					return p.t.errorf("duplicate behavior for modifier combination %q on key %s",
						prop.metaState, p.keyCode)
				}
			}
			b := behavior
			b.MetaState = prop.metaState
			p.key.Behaviors = append(p.key.Behaviors, b)
		}
	}
	return nil
}

// parseModifiers resolves a modifier token such as "shift" or
// "ralt+capslock" to a meta state mask. "base" names the no-modifier state.
func (p *parser) parseModifiers(token string) (MetaState, error) {
	if token == "base" {
		return MetaNone, nil
	}
	var metaState MetaState
	for _, part := range strings.Split(token, "+") {
		bit, ok := modifiersByName[part]
		if !ok {
			return 0, p.t.errorf("unknown modifier %q", part)
		}
		if metaState&bit != 0 {
			return 0, p.t.errorf("duplicate modifier %q in combination %q", part, token)
		}
		metaState |= bit
	}
	return metaState, nil
}

// parseBehaviorValue parses the right-hand side of a key property: a
// character literal, "none", "fallback <KEYCODE>" or "replace <KEYCODE>".
func (p *parser) parseBehaviorValue() (Behavior, error) {
	if p.t.peekChar() == '\'' {
		ch, err := p.parseCharacterLiteral()
		if err != nil {
			return Behavior{}, err
		}
		return Behavior{Character: ch}, nil
	}

	token := p.t.nextToken("")
	switch token {
	case "none":
		return Behavior{}, nil
	case "fallback", "replace":
		p.t.skipSpaces()
		nameToken := p.t.nextToken("")
		keyCode, ok := KeyCodeByName(nameToken)
		if !ok {
			return Behavior{}, p.t.errorf("expected key code name after %q, got %q", token, nameToken)
		}
		if token == "fallback" {
			return Behavior{FallbackKeyCode: keyCode}, nil
		}
		return Behavior{ReplacementKeyCode: keyCode}, nil
	default:
		return Behavior{}, p.t.errorf("malformed behavior value %q", token)
	}
}

// parseCharacterLiteral reads a single-quoted character, handling the named
// escapes \n \t \r \\ \' \" \0 and \uXXXX.
func (p *parser) parseCharacterLiteral() (rune, error) {
	if p.t.nextChar() != '\'' {
		return 0, p.t.errorf("expected character literal")
	}
	c := p.t.nextChar()
	if c == 0 || c == '\n' || c == '\'' {
		return 0, p.t.errorf("malformed character literal")
	}

	var ch rune
	if c == '\\' {
		esc := p.t.nextChar()
		switch esc {
		case 'n':
			ch = '\n'
		case 't':
			ch = '\t'
		case 'r':
			ch = '\r'
		case '\\':
			ch = '\\'
		case '\'':
			ch = '\''
		case '"':
			ch = '"'
		case '0':
			ch = 0
		case 'u':
			var digits [4]byte
			for i := range digits {
				digits[i] = p.t.nextChar()
			}
			v, err := strconv.ParseUint(string(digits[:]), 16, 21)
			if err != nil {
				return 0, p.t.errorf("malformed unicode escape \\u%s", string(digits[:]))
			}
			ch = rune(v)
		default:
			return 0, p.t.errorf("unknown escape sequence \\%c", esc)
		}
	} else if c < utf8.RuneSelf {
		ch = rune(c)
	} else {
		// Multibyte UTF-8 sequence; back up and decode the full rune.
		p.t.pos--
		r, size := utf8.DecodeRuneInString(p.t.data[p.t.pos:])
		if r == utf8.RuneError && size <= 1 {
			return 0, p.t.errorf("malformed character literal")
		}
		p.t.pos += size
		ch = r
	}

	if p.t.nextChar() != '\'' {
		return 0, p.t.errorf("unterminated character literal")
	}
	return ch, nil
}

// finishKey sorts the collected behaviors most-specific-first, synthesizes
// the base sentinel when the file declared none, and commits the key.
func (p *parser) finishKey() {
	hasBase := false
	for i := range p.key.Behaviors {
		if p.key.Behaviors[i].MetaState == MetaNone {
			hasBase = true
			break
		}
	}
	if !hasBase {
		p.key.Behaviors = append(p.key.Behaviors, Behavior{})
	}
	sort.SliceStable(p.key.Behaviors, func(i, j int) bool {
		return specificityLess(p.key.Behaviors[i].MetaState, p.key.Behaviors[j].MetaState)
	})
	p.m.keys[p.keyCode] = p.key
	p.key = nil
}
