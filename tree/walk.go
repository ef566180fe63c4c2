package tree

import (
	"math/big"

	"github.com/dmrmodel/dmr/dmrerr"
	"github.com/dmrmodel/dmr/value"
)

// Writer receives the post-order event stream that Walk produces. Any
// writer driving a binary, DMR-text, or JSON-text encoding implements this
// to turn a Value tree back into its wire form without ever needing
// the tree itself.
type Writer interface {
	Undefined() error
	Boolean(bool) error
	Int(int32) error
	Long(int64) error
	Double(float64) error
	BigInteger(*big.Int) error
	BigDecimal(value.BigDecimal) error
	String(string) error
	Bytes([]byte) error
	Expression(string) error
	Type(value.Tag) error

	ListStart() error
	ListEnd() error

	ObjectStart() error
	Key(string) error
	ObjectEnd() error

	PropertyStart() error
	PropertyName(string) error
	PropertyEnd() error
}

// Walk drives w with the events that would reconstruct v, recursing into
// LIST/OBJECT/PROPERTY children in order before closing the container
// (§4.8's "inverse drives a writer by a post-order walk").
func Walk(v *value.Value, w Writer) error {
	switch v.Tag() {
	case value.Undefined:
		return w.Undefined()

	case value.Boolean:
		b, err := v.AsBool()
		if err != nil {
			return err
		}
		return w.Boolean(b)

	case value.Int:
		n, err := v.AsInt()
		if err != nil {
			return err
		}
		return w.Int(n)

	case value.Long:
		n, err := v.AsLong()
		if err != nil {
			return err
		}
		return w.Long(n)

	case value.Double:
		f, err := v.AsDouble()
		if err != nil {
			return err
		}
		return w.Double(f)

	case value.BigInteger:
		n, err := v.AsBigInteger()
		if err != nil {
			return err
		}
		return w.BigInteger(n)

	case value.BigDecimal:
		d, err := v.AsBigDecimal()
		if err != nil {
			return err
		}
		return w.BigDecimal(d)

	case value.String:
		s, err := v.AsString()
		if err != nil {
			return err
		}
		return w.String(s)

	case value.Bytes:
		b, err := v.AsBytes()
		if err != nil {
			return err
		}
		return w.Bytes(b)

	case value.Expression:
		s, err := v.AsString()
		if err != nil {
			return err
		}
		return w.Expression(s)

	case value.TypeTag:
		t, err := v.AsType()
		if err != nil {
			return err
		}
		return w.Type(t)

	case value.List:
		if err := w.ListStart(); err != nil {
			return err
		}
		for _, elem := range v.Elements() {
			if err := Walk(elem, w); err != nil {
				return err
			}
		}
		return w.ListEnd()

	case value.Object:
		if err := w.ObjectStart(); err != nil {
			return err
		}
		for _, k := range v.Keys() {
			child, err := v.Require(k)
			if err != nil {
				return err
			}
			if err := w.Key(k); err != nil {
				return err
			}
			if err := Walk(child, w); err != nil {
				return err
			}
		}
		return w.ObjectEnd()

	case value.Property:
		name, child, err := v.AsProperty()
		if err != nil {
			return err
		}
		if err := w.PropertyStart(); err != nil {
			return err
		}
		if err := w.PropertyName(name); err != nil {
			return err
		}
		if err := Walk(child, w); err != nil {
			return err
		}
		return w.PropertyEnd()

	default:
		return dmrerr.NewModelError("unknown tag %v", v.Tag())
	}
}
