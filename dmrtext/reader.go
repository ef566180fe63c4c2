package dmrtext

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/dmrmodel/dmr/dmrerr"
	"github.com/dmrmodel/dmr/grammar"
	"github.com/dmrmodel/dmr/tree"
	"github.com/dmrmodel/dmr/value"
)

// Parse reads one complete value from the native DMR dialect, erroring on
// trailing non-whitespace content (§4.6's "self-delimiting" guarantee for
// the text readers mirrors the binary codec's).
func Parse(src string) (*value.Value, error) {
	p := &parser{lex: newLexer(src), gram: grammar.New(), build: tree.New()}
	tok, err := p.advance()
	if err != nil {
		return nil, err
	}
	if err := p.parseValue(tok); err != nil {
		return nil, err
	}
	trail, err := p.advance()
	if err != nil {
		return nil, err
	}
	if trail.kind != tokEOF {
		return nil, dmrerr.NewModelErrorAt(int64(trail.pos), "unexpected trailing input")
	}
	return p.build.Value()
}

// parser drives lexing, grammar validation, and tree assembly in lockstep:
// every scalar or closed container is delivered into build, which adopts it
// by move into whatever context is open (§4.8), so no subtree is ever
// re-cloned as it is folded into an enclosing LIST/OBJECT/PROPERTY.
type parser struct {
	lex   *lexer
	gram  *grammar.Machine
	build *tree.Builder
}

func (p *parser) advance() (token, error) {
	return p.lex.next()
}

func (p *parser) expect(k tokenKind, desc string) (token, error) {
	tok, err := p.advance()
	if err != nil {
		return token{}, err
	}
	if tok.kind != k {
		return token{}, dmrerr.NewModelErrorAt(int64(tok.pos), "expecting %s", desc)
	}
	return tok, nil
}

// parseValue dispatches on the already-read lead token of a value.
func (p *parser) parseValue(tok token) error {
	switch tok.kind {
	case tokUndefined:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		return p.build.Scalar(value.New())

	case tokTrue, tokFalse:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		return p.build.Scalar(value.BooleanValue(tok.kind == tokTrue))

	case tokInt:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		out := value.New()
		if n, err := strconv.ParseInt(tok.text, 10, 32); err == nil {
			if err := out.SetInt(int32(n)); err != nil {
				return err
			}
			return p.build.Scalar(out)
		}
		// Too wide for INT: an unsuffixed literal that fits 64 bits is a LONG.
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return dmrerr.NewModelErrorAt(int64(tok.pos), "invalid int literal %q", tok.text)
		}
		if err := out.SetLong(n); err != nil {
			return err
		}
		return p.build.Scalar(out)

	case tokLong:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return dmrerr.NewModelErrorAt(int64(tok.pos), "invalid long literal %q", tok.text)
		}
		out := value.New()
		if err := out.SetLong(n); err != nil {
			return err
		}
		return p.build.Scalar(out)

	case tokDouble:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return dmrerr.NewModelErrorAt(int64(tok.pos), "invalid double literal %q", tok.text)
		}
		out := value.New()
		if err := out.SetDouble(f); err != nil {
			return err
		}
		return p.build.Scalar(out)

	case tokNumBigInteger:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		n, ok := new(big.Int).SetString(tok.text, 10)
		if !ok {
			return dmrerr.NewModelErrorAt(int64(tok.pos), "invalid big integer literal %q", tok.text)
		}
		out := value.New()
		if err := out.SetBigInteger(n); err != nil {
			return err
		}
		return p.build.Scalar(out)

	case tokNumBigDecimal:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		d, ok := value.ParseBigDecimal(tok.text)
		if !ok {
			return dmrerr.NewModelErrorAt(int64(tok.pos), "invalid big decimal literal %q", tok.text)
		}
		out := value.New()
		if err := out.SetBigDecimal(d); err != nil {
			return err
		}
		return p.build.Scalar(out)

	case tokBigIntegerWord:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		return p.parseBigIntegerLiteral()

	case tokBigDecimalWord:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		return p.parseBigDecimalLiteral()

	case tokString:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		out := value.New()
		if err := out.SetString(tok.text); err != nil {
			return err
		}
		return p.build.Scalar(out)

	case tokBytesKeyword:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		return p.parseBytesLiteral()

	case tokExpressionKeyword:
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		str, err := p.expect(tokString, "quoted expression template")
		if err != nil {
			return err
		}
		out := value.New()
		if err := out.SetExpression(str.text); err != nil {
			return err
		}
		return p.build.Scalar(out)

	case tokTypeName:
		t, ok := value.TagByName(tok.text)
		if !ok {
			return dmrerr.NewModelErrorAt(int64(tok.pos), "unknown type name %q", tok.text)
		}
		if err := p.gram.PutScalar(); err != nil {
			return err
		}
		return p.build.Scalar(value.TypeValue(t))

	case tokLBracket:
		return p.parseList()

	case tokLBrace:
		return p.parseObject()

	case tokLParen:
		return p.parseProperty()

	default:
		return dmrerr.NewModelErrorAt(int64(tok.pos), "expecting a value")
	}
}

func (p *parser) parseBigIntegerLiteral() error {
	tok, err := p.expect(tokInt, "big integer digits")
	if err != nil {
		// A negative literal still lexes as tokInt (leading '-' is part of
		// the number grammar), so this only fails on a genuinely missing
		// digit sequence.
		return err
	}
	n, ok := new(big.Int).SetString(tok.text, 10)
	if !ok {
		return dmrerr.NewModelErrorAt(int64(tok.pos), "invalid big integer literal %q", tok.text)
	}
	out := value.New()
	if err := out.SetBigInteger(n); err != nil {
		return err
	}
	return p.build.Scalar(out)
}

func (p *parser) parseBigDecimalLiteral() error {
	start := p.lex.pos
	p.lex.skipSpace()
	numStart := p.lex.pos
	for p.lex.pos < len(p.lex.src) {
		c := p.lex.src[p.lex.pos]
		if c == '-' || c == '.' || c == 'e' || c == 'E' || c == '+' || (c >= '0' && c <= '9') {
			p.lex.pos++
			continue
		}
		break
	}
	text := p.lex.src[numStart:p.lex.pos]
	d, ok := value.ParseBigDecimal(text)
	if !ok {
		return dmrerr.NewModelErrorAt(int64(start), "invalid big decimal literal %q", text)
	}
	out := value.New()
	if err := out.SetBigDecimal(d); err != nil {
		return err
	}
	return p.build.Scalar(out)
}

// parseBytesLiteral reads "{ 0xAA, 0xBB, ... }" following the "bytes"
// keyword, scanning hex pairs directly rather than through the general
// lexer (the "0x" prefix has no other role in this grammar).
func (p *parser) parseBytesLiteral() error {
	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return err
	}
	var out []byte
	p.lex.skipSpace()
	if c, ok := p.lex.peekByte(); ok && c == '}' {
		p.lex.pos++
		v := value.New()
		if err := v.SetBytes(out); err != nil {
			return err
		}
		return p.build.Scalar(v)
	}
	for {
		p.lex.skipSpace()
		if !strings.HasPrefix(p.lex.src[p.lex.pos:], "0x") && !strings.HasPrefix(p.lex.src[p.lex.pos:], "0X") {
			return dmrerr.NewModelErrorAt(int64(p.lex.pos), "expecting a hex byte literal")
		}
		p.lex.pos += 2
		if p.lex.pos+2 > len(p.lex.src) {
			return dmrerr.NewModelErrorAt(int64(p.lex.pos), "incomplete hex byte literal")
		}
		b, err := strconv.ParseUint(p.lex.src[p.lex.pos:p.lex.pos+2], 16, 8)
		if err != nil {
			return dmrerr.NewModelErrorAt(int64(p.lex.pos), "invalid hex byte literal")
		}
		out = append(out, byte(b))
		p.lex.pos += 2
		p.lex.skipSpace()
		c, ok := p.lex.peekByte()
		if !ok {
			return dmrerr.NewModelErrorAt(int64(p.lex.pos), "expecting ',' or '}'")
		}
		if c == ',' {
			p.lex.pos++
			continue
		}
		if c == '}' {
			p.lex.pos++
			break
		}
		return dmrerr.NewModelErrorAt(int64(p.lex.pos), "expecting ',' or '}'")
	}
	v := value.New()
	if err := v.SetBytes(out); err != nil {
		return err
	}
	return p.build.Scalar(v)
}

func (p *parser) parseList() error {
	if err := p.gram.PutListStart(); err != nil {
		return err
	}
	if err := p.build.ListStart(); err != nil {
		return err
	}
	tok, err := p.advance()
	if err != nil {
		return err
	}
	if tok.kind == tokRBracket {
		if err := p.gram.PutListEnd(); err != nil {
			return err
		}
		return p.build.ListEnd()
	}
	for {
		if err := p.parseValue(tok); err != nil {
			return err
		}

		tok, err = p.advance()
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokComma:
			if err := p.gram.PutComma(); err != nil {
				return err
			}
			tok, err = p.advance()
			if err != nil {
				return err
			}
		case tokRBracket:
			if err := p.gram.PutListEnd(); err != nil {
				return err
			}
			return p.build.ListEnd()
		default:
			return dmrerr.NewModelErrorAt(int64(tok.pos), "expecting ',' or ']'")
		}
	}
}

func (p *parser) parseObject() error {
	if err := p.gram.PutObjectStart(); err != nil {
		return err
	}
	if err := p.build.ObjectStart(); err != nil {
		return err
	}

	tok, err := p.advance()
	if err != nil {
		return err
	}
	if tok.kind == tokRBrace {
		if err := p.gram.PutObjectEnd(); err != nil {
			return err
		}
		return p.build.ObjectEnd()
	}

	for {
		if tok.kind != tokString {
			return dmrerr.NewModelErrorAt(int64(tok.pos), "expecting a key string")
		}
		key := tok.text
		if err := p.gram.PutKey(); err != nil {
			return err
		}
		if err := p.build.Key(key); err != nil {
			return err
		}
		if _, err := p.expect(tokArrow, "'=>'"); err != nil {
			return err
		}
		if err := p.gram.PutColon(); err != nil {
			return err
		}
		valTok, err := p.advance()
		if err != nil {
			return err
		}
		if err := p.parseValue(valTok); err != nil {
			return err
		}

		tok, err = p.advance()
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokComma:
			if err := p.gram.PutComma(); err != nil {
				return err
			}
			tok, err = p.advance()
			if err != nil {
				return err
			}
		case tokRBrace:
			if err := p.gram.PutObjectEnd(); err != nil {
				return err
			}
			return p.build.ObjectEnd()
		default:
			return dmrerr.NewModelErrorAt(int64(tok.pos), "expecting ',' or '}'")
		}
	}
}

func (p *parser) parseProperty() error {
	if err := p.gram.PutPropertyStart(); err != nil {
		return err
	}
	if err := p.build.PropertyStart(); err != nil {
		return err
	}
	nameTok, err := p.expect(tokString, "property name")
	if err != nil {
		return err
	}
	if err := p.gram.PutPropertyName(); err != nil {
		return err
	}
	if err := p.build.PropertyName(nameTok.text); err != nil {
		return err
	}
	if _, err := p.expect(tokArrow, "'=>'"); err != nil {
		return err
	}
	if err := p.gram.PutColon(); err != nil {
		return err
	}
	valTok, err := p.advance()
	if err != nil {
		return err
	}
	if err := p.parseValue(valTok); err != nil {
		return err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return err
	}
	if err := p.gram.PutPropertyEnd(); err != nil {
		return err
	}
	return p.build.PropertyEnd()
}
