package value

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/dmrmodel/dmr/dmrerr"
)

// The conversion matrix (§4.1) is deterministic and total on a fixed set of
// (from, to) pairs; anything outside that set returns ErrIllegalConversion.

// AsBool converts to BOOLEAN per the matrix.
func (v *Value) AsBool() (bool, error) {
	switch v.tag {
	case Boolean:
		return v.boolVal, nil
	case Int:
		return v.intVal != 0, nil
	case Long:
		return v.longVal != 0, nil
	case Double:
		return v.doubleVal != 0, nil
	case BigInteger:
		return v.bigInt.Sign() != 0, nil
	case BigDecimal:
		return v.bigDec.Unscaled.Sign() != 0, nil
	case String:
		switch strings.ToLower(v.strVal) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, dmrerr.NewConversionError(v.tag.String(), "boolean")
	case Bytes:
		return len(v.bytesVal) > 0, nil
	case List:
		return len(v.listVal) > 0, nil
	case Object:
		return v.objVal.len() > 0, nil
	case TypeTag:
		return v.typeVal != Undefined, nil
	default:
		return false, dmrerr.NewConversionError(v.tag.String(), "boolean")
	}
}

// AsBoolDefault returns def if v is UNDEFINED or the conversion fails.
func (v *Value) AsBoolDefault(def bool) bool {
	if !v.IsDefined() {
		return def
	}
	if out, err := v.AsBool(); err == nil {
		return out
	}
	return def
}

func bytesToBigInt(b []byte) *big.Int {
	// Signed big-endian interpretation, matching two's-complement bytes
	// decoding in the binary codec (§4.3).
	if len(b) == 0 {
		return big.NewInt(0)
	}
	i := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		shift := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		i.Sub(i, shift)
	}
	return i
}

// AsInt converts to INT. Per §9's open question, BYTES narrows silently
// rather than raising when the array is wider than 4 bytes.
func (v *Value) AsInt() (int32, error) {
	switch v.tag {
	case Boolean:
		if v.boolVal {
			return 1, nil
		}
		return 0, nil
	case Int:
		return v.intVal, nil
	case Long:
		return int32(v.longVal), nil
	case Double:
		return int32(v.doubleVal), nil
	case BigInteger:
		return int32(v.bigInt.Int64()), nil
	case BigDecimal:
		return int32(v.bigDec.Float64()), nil
	case String:
		n, err := strconv.ParseInt(strings.TrimSpace(v.strVal), 10, 64)
		if err != nil {
			return 0, dmrerr.NewConversionError(v.tag.String(), "int")
		}
		return int32(n), nil
	case Bytes:
		return int32(bytesToBigInt(v.bytesVal).Int64()), nil
	case List:
		return int32(len(v.listVal)), nil
	case Object:
		return int32(v.objVal.len()), nil
	default:
		return 0, dmrerr.NewConversionError(v.tag.String(), "int")
	}
}

// AsIntDefault returns def if v is UNDEFINED or the conversion fails.
func (v *Value) AsIntDefault(def int32) int32 {
	if !v.IsDefined() {
		return def
	}
	if out, err := v.AsInt(); err == nil {
		return out
	}
	return def
}

// AsLong converts to LONG, following the same rules as AsInt at 64-bit
// width.
func (v *Value) AsLong() (int64, error) {
	switch v.tag {
	case Boolean:
		if v.boolVal {
			return 1, nil
		}
		return 0, nil
	case Int:
		return int64(v.intVal), nil
	case Long:
		return v.longVal, nil
	case Double:
		return int64(v.doubleVal), nil
	case BigInteger:
		return v.bigInt.Int64(), nil
	case BigDecimal:
		return int64(v.bigDec.Float64()), nil
	case String:
		n, err := strconv.ParseInt(strings.TrimSpace(v.strVal), 10, 64)
		if err != nil {
			return 0, dmrerr.NewConversionError(v.tag.String(), "long")
		}
		return n, nil
	case Bytes:
		return bytesToBigInt(v.bytesVal).Int64(), nil
	case List:
		return int64(len(v.listVal)), nil
	case Object:
		return int64(v.objVal.len()), nil
	default:
		return 0, dmrerr.NewConversionError(v.tag.String(), "long")
	}
}

// AsLongDefault returns def if v is UNDEFINED or the conversion fails.
func (v *Value) AsLongDefault(def int64) int64 {
	if !v.IsDefined() {
		return def
	}
	if out, err := v.AsLong(); err == nil {
		return out
	}
	return def
}

// AsDouble converts to DOUBLE.
func (v *Value) AsDouble() (float64, error) {
	switch v.tag {
	case Boolean:
		if v.boolVal {
			return 1, nil
		}
		return 0, nil
	case Int:
		return float64(v.intVal), nil
	case Long:
		return float64(v.longVal), nil
	case Double:
		return v.doubleVal, nil
	case BigInteger:
		f := new(big.Float).SetInt(v.bigInt)
		out, _ := f.Float64()
		return out, nil
	case BigDecimal:
		return v.bigDec.Float64(), nil
	case String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.strVal), 64)
		if err != nil {
			return 0, dmrerr.NewConversionError(v.tag.String(), "double")
		}
		return n, nil
	case List:
		return float64(len(v.listVal)), nil
	case Object:
		return float64(v.objVal.len()), nil
	default:
		return 0, dmrerr.NewConversionError(v.tag.String(), "double")
	}
}

// AsDoubleDefault returns def if v is UNDEFINED or the conversion fails.
func (v *Value) AsDoubleDefault(def float64) float64 {
	if !v.IsDefined() {
		return def
	}
	if out, err := v.AsDouble(); err == nil {
		return out
	}
	return def
}

// AsBigInteger converts to BIG_INTEGER.
func (v *Value) AsBigInteger() (*big.Int, error) {
	switch v.tag {
	case Boolean:
		if v.boolVal {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case Int:
		return big.NewInt(int64(v.intVal)), nil
	case Long:
		return big.NewInt(v.longVal), nil
	case Double:
		bi, _ := big.NewFloat(v.doubleVal).Int(nil)
		return bi, nil
	case BigInteger:
		return new(big.Int).Set(v.bigInt), nil
	case BigDecimal:
		return new(big.Int).Set(v.bigDec.Unscaled), nil
	case String:
		n, ok := new(big.Int).SetString(strings.TrimSpace(v.strVal), 10)
		if !ok {
			return nil, dmrerr.NewConversionError(v.tag.String(), "big integer")
		}
		return n, nil
	case Bytes:
		return bytesToBigInt(v.bytesVal), nil
	case List:
		return big.NewInt(int64(len(v.listVal))), nil
	case Object:
		return big.NewInt(int64(v.objVal.len())), nil
	default:
		return nil, dmrerr.NewConversionError(v.tag.String(), "big integer")
	}
}

// AsBigDecimal converts to BIG_DECIMAL.
func (v *Value) AsBigDecimal() (BigDecimal, error) {
	switch v.tag {
	case Boolean:
		if v.boolVal {
			return BigDecimal{Unscaled: big.NewInt(1)}, nil
		}
		return BigDecimal{Unscaled: big.NewInt(0)}, nil
	case Int:
		return BigDecimal{Unscaled: big.NewInt(int64(v.intVal))}, nil
	case Long:
		return BigDecimal{Unscaled: big.NewInt(v.longVal)}, nil
	case Double:
		d, ok := ParseBigDecimal(strconv.FormatFloat(v.doubleVal, 'f', -1, 64))
		if !ok {
			return BigDecimal{}, dmrerr.NewConversionError(v.tag.String(), "big decimal")
		}
		return d, nil
	case BigInteger:
		return BigDecimal{Unscaled: new(big.Int).Set(v.bigInt)}, nil
	case BigDecimal:
		return BigDecimal{Unscaled: new(big.Int).Set(v.bigDec.Unscaled), Scale: v.bigDec.Scale}, nil
	case String:
		d, ok := ParseBigDecimal(strings.TrimSpace(v.strVal))
		if !ok {
			return BigDecimal{}, dmrerr.NewConversionError(v.tag.String(), "big decimal")
		}
		return d, nil
	case Bytes:
		return BigDecimal{Unscaled: bytesToBigInt(v.bytesVal)}, nil
	case List:
		return BigDecimal{Unscaled: big.NewInt(int64(len(v.listVal)))}, nil
	case Object:
		return BigDecimal{Unscaled: big.NewInt(int64(v.objVal.len()))}, nil
	default:
		return BigDecimal{}, dmrerr.NewConversionError(v.tag.String(), "big decimal")
	}
}

// AsString converts to STRING, which is total for every scalar and
// container tag: it is the basis of textual rendering (§4.1).
func (v *Value) AsString() (string, error) {
	switch v.tag {
	case Boolean:
		if v.boolVal {
			return "true", nil
		}
		return "false", nil
	case Int:
		return strconv.FormatInt(int64(v.intVal), 10), nil
	case Long:
		return strconv.FormatInt(v.longVal, 10), nil
	case Double:
		return strconv.FormatFloat(v.doubleVal, 'g', -1, 64), nil
	case BigInteger:
		return v.bigInt.String(), nil
	case BigDecimal:
		return v.bigDec.String(), nil
	case String:
		return v.strVal, nil
	case Bytes:
		return base64.StdEncoding.EncodeToString(v.bytesVal), nil
	case Expression:
		return v.strVal, nil
	case TypeTag:
		return v.typeVal.String(), nil
	case List, Object:
		return v.renderNative(true), nil
	case Property:
		val, err := v.propVal.AsString()
		if err != nil {
			val = v.propVal.renderNative(true)
		}
		return fmt.Sprintf("(%q => %s)", v.propKey, val), nil
	default:
		return "", dmrerr.NewConversionError(v.tag.String(), "string")
	}
}

// AsStringDefault returns def if v is UNDEFINED or the conversion fails.
func (v *Value) AsStringDefault(def string) string {
	if !v.IsDefined() {
		return def
	}
	if out, err := v.AsString(); err == nil {
		return out
	}
	return def
}

// AsBytes converts to BYTES.
func (v *Value) AsBytes() ([]byte, error) {
	switch v.tag {
	case Int:
		var b [4]byte
		u := uint32(v.intVal)
		for i := 0; i < 4; i++ {
			b[i] = byte(u >> (24 - 8*i))
		}
		return b[:], nil
	case Long:
		var b [8]byte
		u := uint64(v.longVal)
		for i := 0; i < 8; i++ {
			b[i] = byte(u >> (56 - 8*i))
		}
		return b[:], nil
	case BigInteger:
		return v.bigInt.Bytes(), nil
	case String:
		decoded, err := base64.StdEncoding.DecodeString(v.strVal)
		if err == nil {
			return decoded, nil
		}
		return []byte(v.strVal), nil
	case Bytes:
		return append([]byte(nil), v.bytesVal...), nil
	default:
		return nil, dmrerr.NewConversionError(v.tag.String(), "bytes")
	}
}

// AsType converts to TYPE.
func (v *Value) AsType() (Tag, error) {
	switch v.tag {
	case String:
		t, ok := TagByName(v.strVal)
		if !ok {
			return 0, dmrerr.NewConversionError(v.tag.String(), "type")
		}
		return t, nil
	case TypeTag:
		return v.typeVal, nil
	default:
		return 0, dmrerr.NewConversionError(v.tag.String(), "type")
	}
}

// AsList converts to LIST.
func (v *Value) AsList() ([]*Value, error) {
	switch v.tag {
	case List:
		return v.Elements(), nil
	case Object:
		out := make([]*Value, 0, v.objVal.len())
		v.objVal.each(func(k string, c *Value) {
			p := New()
			_ = p.SetProperty(k, c)
			out = append(out, p)
		})
		return out, nil
	case Property:
		return []*Value{v.propVal.Clone()}, nil
	default:
		return nil, dmrerr.NewConversionError(v.tag.String(), "list")
	}
}

// AsProperty converts to PROPERTY.
func (v *Value) AsProperty() (string, *Value, error) {
	switch v.tag {
	case Property:
		return v.propKey, v.propVal.Clone(), nil
	case List:
		if len(v.listVal) != 2 {
			return "", nil, dmrerr.NewConversionError(v.tag.String(), "property")
		}
		key, err := v.listVal[0].AsString()
		if err != nil {
			return "", nil, dmrerr.NewConversionError(v.tag.String(), "property")
		}
		return key, v.listVal[1].Clone(), nil
	case Object:
		if v.objVal.len() != 1 {
			return "", nil, dmrerr.NewConversionError(v.tag.String(), "property")
		}
		var key string
		var val *Value
		v.objVal.each(func(k string, c *Value) { key, val = k, c })
		return key, val.Clone(), nil
	default:
		return "", nil, dmrerr.NewConversionError(v.tag.String(), "property")
	}
}
