// Package cbor bridges a *value.Value tree to and from CBOR, for interop
// with systems that speak CBOR rather than this library's own binary format
// or JSON dialect. It is a lossy bridge in one respect: OBJECT's
// insertion order is not preserved, since both canonical CBOR's
// deterministic key-sort and Go's native map type are inherently
// unordered — callers that need an exact round trip should use package
// binary, dmrtext, or jsontext instead.
//
// Grounded on the donor's own CBOR use in core/planfmt/canonical.go:
// cbor.CanonicalEncOptions() for deterministic output, and the
// type-alias-to-avoid-recursion trick is the same shape as this package's
// scalar/container switch avoiding re-entering Value's own methods.
package cbor

import (
	"math/big"

	cborcodec "github.com/fxamacker/cbor/v2"

	"github.com/dmrmodel/dmr/dmrerr"
	"github.com/dmrmodel/dmr/value"
)

var encMode cborcodec.EncMode

func init() {
	opts := cborcodec.CanonicalEncOptions()
	// Always emit a bignum (tag 2/3) for a *big.Int, so BIG_INTEGER and the
	// BIG_DECIMAL unscaled field never shrink to a plain CBOR integer.
	opts.BigIntConvert = cborcodec.BigIntConvertNone
	m, err := opts.EncMode()
	if err != nil {
		panic("cbor: building canonical encode mode: " + err.Error())
	}
	encMode = m
}

// sentinel map keys for the DMR variants CBOR has no native shape for.
// BYTES needs none of these: CBOR's byte-string major type already
// distinguishes it from TEXT, unlike JSON.
const (
	sentinelExpression = "EXPRESSION_VALUE"
	sentinelType       = "TYPE_MODEL_VALUE"
	sentinelProperty   = "PROPERTY_VALUE"
	sentinelBigDecimal = "BIG_DECIMAL_VALUE"
)

// Marshal renders v as canonical CBOR.
func Marshal(v *value.Value) ([]byte, error) {
	return encMode.Marshal(toGeneric(v))
}

// Unmarshal decodes one CBOR value back into a *value.Value.
func Unmarshal(b []byte) (*value.Value, error) {
	var generic interface{}
	if err := cborcodec.Unmarshal(b, &generic); err != nil {
		return nil, err
	}
	return fromGeneric(generic)
}

func toGeneric(v *value.Value) interface{} {
	switch v.Tag() {
	case value.Undefined:
		return nil
	case value.Boolean:
		b, _ := v.AsBool()
		return b
	case value.Int:
		n, _ := v.AsInt()
		return int64(n)
	case value.Long:
		n, _ := v.AsLong()
		return n
	case value.Double:
		f, _ := v.AsDouble()
		return f
	case value.BigInteger:
		n, _ := v.AsBigInteger()
		return n
	case value.BigDecimal:
		d, _ := v.AsBigDecimal()
		unscaled := d.Unscaled
		if unscaled == nil {
			unscaled = new(big.Int)
		}
		return map[string]interface{}{
			sentinelBigDecimal: map[string]interface{}{
				"unscaled": unscaled,
				"scale":    int64(d.Scale),
			},
		}
	case value.String:
		s, _ := v.AsString()
		return s
	case value.Bytes:
		b, _ := v.AsBytes()
		return b
	case value.Expression:
		s, _ := v.AsString()
		return map[string]interface{}{sentinelExpression: s}
	case value.TypeTag:
		t, _ := v.AsType()
		return map[string]interface{}{sentinelType: t.String()}
	case value.List:
		elems := v.Elements()
		out := make([]interface{}, len(elems))
		for i, e := range elems {
			out[i] = toGeneric(e)
		}
		return out
	case value.Object:
		out := make(map[string]interface{}, v.Size())
		for _, k := range v.Keys() {
			child, _ := v.Require(k)
			out[k] = toGeneric(child)
		}
		return out
	case value.Property:
		key, child, _ := v.AsProperty()
		return map[string]interface{}{
			sentinelProperty: map[string]interface{}{key: toGeneric(child)},
		}
	default:
		return nil
	}
}

func fromGeneric(g interface{}) (*value.Value, error) {
	switch x := g.(type) {
	case nil:
		return value.New(), nil
	case bool:
		return value.BooleanValue(x), nil
	case uint64:
		return intOrLong(int64(x))
	case int64:
		return intOrLong(x)
	case float64:
		out := value.New()
		return out, out.SetDouble(x)
	case *big.Int:
		out := value.New()
		return out, out.SetBigInteger(x)
	case big.Int:
		out := value.New()
		return out, out.SetBigInteger(&x)
	case []byte:
		out := value.New()
		return out, out.SetBytes(x)
	case string:
		out := value.New()
		return out, out.SetString(x)
	case []interface{}:
		elems := make([]*value.Value, len(x))
		for i, e := range x {
			v, err := fromGeneric(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return value.NewMovedList(elems), nil
	case map[interface{}]interface{}:
		return objectOrSentinelFromAny(x)
	case map[string]interface{}:
		return objectOrSentinel(x)
	default:
		return nil, dmrerr.NewModelError("cbor: unsupported decoded type %T", g)
	}
}

func intOrLong(n int64) (*value.Value, error) {
	out := value.New()
	if n >= -1<<31 && n <= 1<<31-1 {
		return out, out.SetInt(int32(n))
	}
	return out, out.SetLong(n)
}

// objectOrSentinelFromAny normalizes the map[interface{}]interface{} shape
// some CBOR decoders produce for generic maps into map[string]interface{}.
func objectOrSentinelFromAny(x map[interface{}]interface{}) (*value.Value, error) {
	m := make(map[string]interface{}, len(x))
	for k, v := range x {
		s, ok := k.(string)
		if !ok {
			return nil, dmrerr.NewModelError("cbor: non-string object key %v", k)
		}
		m[s] = v
	}
	return objectOrSentinel(m)
}

func objectOrSentinel(m map[string]interface{}) (*value.Value, error) {
	if len(m) == 1 {
		switch key := firstKey(m); key {
		case sentinelExpression:
			s, ok := m[key].(string)
			if !ok {
				return nil, dmrerr.NewModelError("cbor: %s must be a string", sentinelExpression)
			}
			out := value.New()
			return out, out.SetExpression(s)

		case sentinelType:
			s, ok := m[key].(string)
			if !ok {
				return nil, dmrerr.NewModelError("cbor: %s must be a string", sentinelType)
			}
			t, ok := value.TagByName(s)
			if !ok {
				return nil, dmrerr.NewModelError("cbor: unknown type name %q", s)
			}
			return value.TypeValue(t), nil

		case sentinelBigDecimal:
			fields, ok := m[key].(map[string]interface{})
			if !ok {
				fieldsAny, ok2 := m[key].(map[interface{}]interface{})
				if !ok2 {
					return nil, dmrerr.NewModelError("cbor: %s must be a map", sentinelBigDecimal)
				}
				fields = make(map[string]interface{}, len(fieldsAny))
				for k, v := range fieldsAny {
					if s, ok := k.(string); ok {
						fields[s] = v
					}
				}
			}
			var unscaled *big.Int
			switch u := fields["unscaled"].(type) {
			case *big.Int:
				unscaled = u
			case big.Int:
				unscaled = &u
			case int64:
				unscaled = big.NewInt(u)
			case uint64:
				unscaled = new(big.Int).SetUint64(u)
			default:
				return nil, dmrerr.NewModelError("cbor: %s.unscaled must be a big integer", sentinelBigDecimal)
			}
			scale, err := asInt32(fields["scale"])
			if err != nil {
				return nil, err
			}
			out := value.New()
			return out, out.SetBigDecimal(value.NewBigDecimal(unscaled, scale))

		case sentinelProperty:
			inner, ok := m[key].(map[string]interface{})
			if !ok {
				innerAny, ok2 := m[key].(map[interface{}]interface{})
				if !ok2 || len(innerAny) != 1 {
					return nil, dmrerr.NewModelError("cbor: %s must wrap a single-key map", sentinelProperty)
				}
				for k, v := range innerAny {
					name, _ := k.(string)
					child, err := fromGeneric(v)
					if err != nil {
						return nil, err
					}
					return value.NewMovedProperty(name, child), nil
				}
			}
			if len(inner) != 1 {
				return nil, dmrerr.NewModelError("cbor: %s must wrap a single-key map", sentinelProperty)
			}
			name := firstKey(inner)
			child, err := fromGeneric(inner[name])
			if err != nil {
				return nil, err
			}
			return value.NewMovedProperty(name, child), nil
		}
	}

	ob := value.NewObjectBuilder()
	for _, k := range sortedKeys(m) {
		child, err := fromGeneric(m[k])
		if err != nil {
			return nil, err
		}
		ob.Put(k, child)
	}
	return ob.Build(), nil
}

func firstKey(m map[string]interface{}) string {
	for k := range m {
		return k
	}
	return ""
}

// sortedKeys gives OBJECT entries a deterministic (if not
// insertion-preserving) order on decode, since the source map has none.
func sortedKeys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func asInt32(v interface{}) (int32, error) {
	switch n := v.(type) {
	case int64:
		return int32(n), nil
	case uint64:
		return int32(n), nil
	default:
		return 0, dmrerr.NewModelError("cbor: expected an integer, got %T", v)
	}
}
