package dmrtext

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmrmodel/dmr/dmrerr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokComma
	tokArrow // =>
	tokString
	tokInt
	tokLong
	tokDouble
	tokNumBigInteger // digits immediately suffixed "B", e.g. "17B"
	tokNumBigDecimal // digits immediately suffixed "BD", e.g. "17BD"
	tokBigIntegerWord // the "big integer" reserved two-word prefix
	tokBigDecimalWord // the "big decimal" reserved two-word prefix
	tokBytesKeyword   // "bytes"
	tokExpressionKeyword
	tokUndefined
	tokTrue
	tokFalse
	tokTypeName
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer { return &lexer{src: src} }

func (l *lexer) errorf(format string, args ...interface{}) error {
	return dmrerr.NewModelErrorAt(int64(l.pos), format, args...)
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.pos++
			continue
		}
		break
	}
}

func (l *lexer) peekByte() (byte, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

// next returns the next token, classifying reserved words and number
// literals by their DMR suffix (§4.6): no suffix or trailing digits only
// is INT (the reader widens it to LONG when it does not fit 32 bits), "L"
// is LONG, a "." or exponent is DOUBLE, "B" is BIG_INTEGER,
// "BD" is BIG_DECIMAL.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos
	c, ok := l.peekByte()
	if !ok {
		return token{kind: tokEOF, pos: start}, nil
	}

	switch c {
	case '{':
		l.pos++
		return token{kind: tokLBrace, pos: start}, nil
	case '}':
		l.pos++
		return token{kind: tokRBrace, pos: start}, nil
	case '[':
		l.pos++
		return token{kind: tokLBracket, pos: start}, nil
	case ']':
		l.pos++
		return token{kind: tokRBracket, pos: start}, nil
	case '(':
		l.pos++
		return token{kind: tokLParen, pos: start}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen, pos: start}, nil
	case ',':
		l.pos++
		return token{kind: tokComma, pos: start}, nil
	case '"':
		return l.lexString()
	}

	if strings.HasPrefix(l.src[l.pos:], "=>") {
		l.pos += 2
		return token{kind: tokArrow, pos: start}, nil
	}

	if c == '-' || (c >= '0' && c <= '9') {
		return l.lexNumber()
	}

	if isWordStart(c) {
		return l.lexWord()
	}

	return token{}, l.errorf("unexpected character %q", rune(c))
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordCont(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9')
}

func (l *lexer) lexWord() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isWordCont(l.src[l.pos]) {
		l.pos++
	}
	word := l.src[start:l.pos]
	switch word {
	case "undefined":
		return token{kind: tokUndefined, text: word, pos: start}, nil
	case "true":
		return token{kind: tokTrue, text: word, pos: start}, nil
	case "false":
		return token{kind: tokFalse, text: word, pos: start}, nil
	case "bytes":
		return token{kind: tokBytesKeyword, text: word, pos: start}, nil
	case "expression":
		return token{kind: tokExpressionKeyword, text: word, pos: start}, nil
	case "big":
		// "big integer" / "big decimal": two-word reserved names.
		save := l.pos
		l.skipSpace()
		restStart := l.pos
		for l.pos < len(l.src) && isWordCont(l.src[l.pos]) {
			l.pos++
		}
		second := l.src[restStart:l.pos]
		switch second {
		case "integer":
			return token{kind: tokBigIntegerWord, text: "big integer", pos: start}, nil
		case "decimal":
			return token{kind: tokBigDecimalWord, text: "big decimal", pos: start}, nil
		default:
			l.pos = save
			return token{kind: tokTypeName, text: word, pos: start}, nil
		}
	default:
		return token{kind: tokTypeName, text: word, pos: start}, nil
	}
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	isDouble := false
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		isDouble = true
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		isDouble = true
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
	}

	numText := l.src[start:l.pos]
	kind := tokInt
	if isDouble {
		kind = tokDouble
	}
	if l.pos < len(l.src) {
		switch l.src[l.pos] {
		case 'L':
			if !isDouble {
				kind = tokLong
				l.pos++
			}
		case 'B':
			if strings.HasPrefix(l.src[l.pos:], "BD") {
				kind = tokNumBigDecimal
				l.pos += 2
			} else {
				kind = tokNumBigInteger
				l.pos++
			}
		}
	}
	return token{kind: kind, text: numText, pos: start}, nil
}

// lexString reads a quoted string, decoding the escape set that
// value.QuoteString emits (§4.1).
func (l *lexer) lexString() (token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, l.errorf("unterminated string")
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c == '\\' {
			l.pos++
			if l.pos >= len(l.src) {
				return token{}, l.errorf("unterminated escape")
			}
			esc := l.src[l.pos]
			switch esc {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'u':
				if l.pos+4 >= len(l.src) {
					return token{}, l.errorf("incomplete unicode escape")
				}
				hex := l.src[l.pos+1 : l.pos+5]
				n, err := strconv.ParseUint(hex, 16, 32)
				if err != nil {
					return token{}, l.errorf("invalid unicode escape %q", hex)
				}
				sb.WriteRune(rune(n))
				l.pos += 4
			default:
				return token{}, l.errorf("invalid escape %q", rune(esc))
			}
			l.pos++
			continue
		}
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		sb.WriteRune(r)
		l.pos += size
	}
	return token{kind: tokString, text: sb.String(), pos: start}, nil
}
