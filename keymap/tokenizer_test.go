package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizerTokensAndLines(t *testing.T) {
	tok := newTokenizer("x.kcm", "key A {\n    label: 'a'\n}\n")

	assert.Equal(t, "key", tok.nextToken(""))
	tok.skipSpaces()
	assert.Equal(t, "A", tok.nextToken("{"))
	tok.skipSpaces()
	assert.Equal(t, byte('{'), tok.nextChar())
	assert.True(t, tok.isEol())
	assert.Equal(t, "x.kcm:1", tok.location())

	tok.nextLine()
	tok.skipSpaces()
	assert.Equal(t, "label", tok.nextToken(":"))
	assert.Equal(t, byte(':'), tok.nextChar())
	tok.skipSpaces()
	assert.Equal(t, "'a'", tok.peekRemainder())
	assert.Equal(t, "x.kcm:2", tok.location())

	tok.nextLine()
	assert.Equal(t, "}", tok.nextToken(""))
	tok.nextLine()
	assert.True(t, tok.isEof())
}

func TestTokenizerDelimiterNotConsumed(t *testing.T) {
	tok := newTokenizer("x.kcm", "base,shift: 'x'")

	assert.Equal(t, "base", tok.nextToken(",:"))
	assert.Equal(t, byte(','), tok.peekChar())
	tok.nextChar()
	assert.Equal(t, "shift", tok.nextToken(",:"))
	assert.Equal(t, byte(':'), tok.peekChar())
}

func TestTokenizerCarriageReturnEndsLine(t *testing.T) {
	tok := newTokenizer("x.kcm", "type FULL\r\nkey A")

	assert.Equal(t, "type", tok.nextToken(""))
	tok.skipSpaces()
	assert.Equal(t, "FULL", tok.nextToken(""))
	assert.True(t, tok.isEol())
	tok.nextLine()
	assert.Equal(t, "key", tok.nextToken(""))
	assert.Equal(t, "x.kcm:2", tok.location())
}

func TestTokenizerErrorfCarriesLocation(t *testing.T) {
	tok := newTokenizer("layout.kcm", "a\nb\nc")
	tok.nextLine()
	tok.nextLine()

	err := tok.errorf("unexpected token %q", "c")
	assert.EqualError(t, err, `layout.kcm:3: unexpected token "c"`)
}
