package jsontext

import (
	"encoding/base64"
	"strconv"

	"github.com/dmrmodel/dmr/dmrerr"
	"github.com/dmrmodel/dmr/grammar"
	"github.com/dmrmodel/dmr/tree"
	"github.com/dmrmodel/dmr/value"
)

// Parse reads one complete value from the JSON dialect, recognizing the
// reserved single-key sentinel objects for EXPRESSION, BYTES, TYPE, and
// PROPERTY (§4.7).
func Parse(src string) (*value.Value, error) {
	p := &parser{lex: newLexer(src), gram: grammar.New()}
	tok, err := p.advance()
	if err != nil {
		return nil, err
	}
	v, err := p.parseValue(tok)
	if err != nil {
		return nil, err
	}
	trail, err := p.advance()
	if err != nil {
		return nil, err
	}
	if trail.kind != tokEOF {
		return nil, dmrerr.NewModelErrorAt(int64(trail.pos), "unexpected trailing input")
	}
	return v, nil
}

// parser builds objects directly rather than through package tree's
// Builder (parseArray does use a Builder, since an array is always a plain
// LIST): a JSON object's sentinel-ness (EXPRESSION_VALUE, BYTES_VALUE,
// ...) can only be decided after all of its entries are parsed, so each
// object is buffered as rawEntry pairs and reinterpreted in buildObject
// before it is delivered anywhere — the move-semantics builder assumes a
// container's final shape is known as soon as it opens, which does not
// hold here.
type parser struct {
	lex  *lexer
	gram *grammar.Machine
}

func (p *parser) advance() (token, error) { return p.lex.next() }

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

func (p *parser) parseValue(tok token) (*value.Value, error) {
	switch tok.kind {
	case tokNull:
		if err := p.gram.PutScalar(); err != nil {
			return nil, err
		}
		return value.New(), nil

	case tokTrue, tokFalse:
		if err := p.gram.PutScalar(); err != nil {
			return nil, err
		}
		return value.BooleanValue(tok.kind == tokTrue), nil

	case tokNumber:
		if err := p.gram.PutScalar(); err != nil {
			return nil, err
		}
		return parseJSONNumber(tok)

	case tokString:
		if err := p.gram.PutScalar(); err != nil {
			return nil, err
		}
		out := value.New()
		return out, out.SetString(tok.text)

	case tokLBracket:
		return p.parseArray()

	case tokLBrace:
		return p.parseObject()

	default:
		return nil, dmrerr.NewModelErrorAt(int64(tok.pos), "expecting a value")
	}
}

// parseJSONNumber classifies a JSON number literal the way native DMR
// classifies numeric literals without a suffix: integral and fitting INT
// becomes INT, integral but wider becomes LONG, anything with a fraction
// or exponent becomes DOUBLE (§4.7 has no BIG_INTEGER/BIG_DECIMAL JSON
// literal form — those still round-trip only through the sentinel or
// through string conversion).
func parseJSONNumber(tok token) (*value.Value, error) {
	out := value.New()
	hasFraction := false
	for _, c := range tok.text {
		if c == '.' || c == 'e' || c == 'E' {
			hasFraction = true
			break
		}
	}
	if hasFraction {
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, dmrerr.NewModelErrorAt(int64(tok.pos), "invalid number literal %q", tok.text)
		}
		return out, out.SetDouble(f)
	}
	if n, err := strconv.ParseInt(tok.text, 10, 32); err == nil {
		return out, out.SetInt(int32(n))
	}
	n, err := strconv.ParseInt(tok.text, 10, 64)
	if err != nil {
		return nil, dmrerr.NewModelErrorAt(int64(tok.pos), "invalid number literal %q", tok.text)
	}
	return out, out.SetLong(n)
}

// parseArray uses a tree.Builder directly: a JSON array's shape (a plain
// LIST) is never reinterpreted the way an object can be, so move-semantics
// assembly applies cleanly here.
func (p *parser) parseArray() (*value.Value, error) {
	if err := p.gram.PutListStart(); err != nil {
		return nil, err
	}
	b := tree.New()
	if err := b.ListStart(); err != nil {
		return nil, err
	}
	tok, err := p.advance()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokRBracket {
		if err := p.gram.PutListEnd(); err != nil {
			return nil, err
		}
		if err := b.ListEnd(); err != nil {
			return nil, err
		}
		return b.Value()
	}
	for {
		elem, err := p.parseValue(tok)
		if err != nil {
			return nil, err
		}
		if err := b.Scalar(elem); err != nil {
			return nil, err
		}

		tok, err = p.advance()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokComma:
			if err := p.gram.PutComma(); err != nil {
				return nil, err
			}
			tok, err = p.advance()
			if err != nil {
				return nil, err
			}
		case tokRBracket:
			if err := p.gram.PutListEnd(); err != nil {
				return nil, err
			}
			if err := b.ListEnd(); err != nil {
				return nil, err
			}
			return b.Value()
		default:
			return nil, dmrerr.NewModelErrorAt(int64(tok.pos), "expecting ',' or ']'")
		}
	}
}

// rawEntry holds one parsed "key": value pair before sentinel
// reinterpretation decides what the enclosing object really represents.
type rawEntry struct {
	key string
	val *value.Value
}

func (p *parser) parseObject() (*value.Value, error) {
	if err := p.gram.PutObjectStart(); err != nil {
		return nil, err
	}
	var entries []rawEntry

	tok, err := p.advance()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokRBrace {
		if err := p.gram.PutObjectEnd(); err != nil {
			return nil, err
		}
		return buildObject(entries)
	}

	for {
		if tok.kind != tokString {
			return nil, dmrerr.NewModelErrorAt(int64(tok.pos), "expecting a key string")
		}
		key := tok.text
		if err := p.gram.PutKey(); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokColon, "':'"); err != nil {
			return nil, err
		}
		if err := p.gram.PutColon(); err != nil {
			return nil, err
		}
		valTok, err := p.advance()
		if err != nil {
			return nil, err
		}
		val, err := p.parseValue(valTok)
		if err != nil {
			return nil, err
		}
		entries = append(entries, rawEntry{key: key, val: val})

		tok, err = p.advance()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokComma:
			if err := p.gram.PutComma(); err != nil {
				return nil, err
			}
			tok, err = p.advance()
			if err != nil {
				return nil, err
			}
		case tokRBrace:
			if err := p.gram.PutObjectEnd(); err != nil {
				return nil, err
			}
			return buildObject(entries)
		default:
			return nil, dmrerr.NewModelErrorAt(int64(tok.pos), "expecting ',' or '}'")
		}
	}
}

// buildObject reinterprets a parsed JSON object: a single-key object whose
// key is a reserved sentinel name decodes to the non-JSON variant it
// names, adopting its already-built value by move; any other object
// becomes a DMR OBJECT, assembled via value.ObjectBuilder so each entry is
// adopted once rather than re-cloned (§4.7, §9).
func buildObject(entries []rawEntry) (*value.Value, error) {
	if len(entries) == 1 {
		switch entries[0].key {
		case value.SentinelExpression:
			s, err := entries[0].val.AsString()
			if err != nil {
				return nil, err
			}
			out := value.New()
			return out, out.SetExpression(s)

		case value.SentinelBytes:
			s, err := entries[0].val.AsString()
			if err != nil {
				return nil, err
			}
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, dmrerr.NewModelError("invalid %s base64 payload", value.SentinelBytes)
			}
			out := value.New()
			return out, out.SetBytes(b)

		case value.SentinelType:
			s, err := entries[0].val.AsString()
			if err != nil {
				return nil, err
			}
			t, ok := value.TagByName(s)
			if !ok {
				return nil, dmrerr.NewModelError("unknown type name %q", s)
			}
			return value.TypeValue(t), nil

		case value.SentinelProperty:
			inner := entries[0].val
			if inner.Tag() != value.Object || inner.Size() != 1 {
				return nil, dmrerr.NewModelError("%s sentinel must wrap a single-key object", value.SentinelProperty)
			}
			name, child, err := inner.AsProperty()
			if err != nil {
				return nil, err
			}
			return value.NewMovedProperty(name, child), nil
		}
	}

	ob := value.NewObjectBuilder()
	for _, e := range entries {
		ob.Put(e.key, e.val)
	}
	return ob.Build(), nil
}
