// Package binary implements the DMR self-delimiting binary codec (§4.3): a
// one-byte type char per node, followed by a payload whose shape depends on
// the tag, recursively, with no outer length envelope — a reader stops the
// instant it has consumed one complete value.
//
// The layout and reader-guard style (little-endian fixed fields, a
// bytes.Buffer write-then-copy pattern, a recursion-depth ceiling against
// malformed input) follow the donor module's planfmt codec.
package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/big"

	"golang.org/x/crypto/blake2b"

	"github.com/dmrmodel/dmr/dmrerr"
	"github.com/dmrmodel/dmr/internal/assert"
	"github.com/dmrmodel/dmr/tree"
	"github.com/dmrmodel/dmr/value"
)

// maxDepth bounds recursion while decoding, guarding against a maliciously
// deep or cyclic-looking stream.
const maxDepth = 1000

// maxLen bounds a single length-prefixed field, guarding against a forged
// length field driving an enormous allocation.
const maxLen = 64 * 1024 * 1024

// Encode writes v's binary encoding to w.
func Encode(w io.Writer, v *value.Value) error {
	enc := &encoder{w: w}
	return enc.writeValue(v)
}

// Marshal returns v's binary encoding as a byte slice.
func Marshal(v *value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one value from r.
func Decode(r io.Reader) (*value.Value, error) {
	dec := &decoder{r: r}
	b := tree.New()
	if err := dec.readValue(b, 0); err != nil {
		return nil, err
	}
	return b.Value()
}

// Unmarshal decodes a single value from b, erroring if trailing bytes
// remain (§4.3's "self-delimiting" guarantee means exactly one value is
// consumed).
func Unmarshal(b []byte) (*value.Value, error) {
	r := bytes.NewReader(b)
	v, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, dmrerr.NewModelError("trailing data after value: %d byte(s)", r.Len())
	}
	return v, nil
}

// Digest returns the BLAKE2b-256 hash of v's binary encoding, giving two
// structurally equal trees (§8) the same digest regardless of how they were
// built.
func Digest(v *value.Value) ([32]byte, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return [32]byte{}, err
	}
	enc := &encoder{w: h}
	if err := enc.writeValue(v); err != nil {
		return [32]byte{}, err
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

type encoder struct {
	w io.Writer
}

func (e *encoder) writeByteCode(t value.Tag) error {
	_, err := e.w.Write([]byte{t.ByteCode()})
	return err
}

func (e *encoder) writeUint32(n uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], n)
	_, err := e.w.Write(b[:])
	return err
}

func (e *encoder) writeInt32(n int32) error {
	return e.writeUint32(uint32(n))
}

func (e *encoder) writeInt64(n int64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(n))
	_, err := e.w.Write(b[:])
	return err
}

func (e *encoder) writeFloat64(f float64) error {
	return e.writeInt64(int64(math.Float64bits(f)))
}

// writeUTF writes a length-prefixed (4-byte) UTF-8 string, the same
// "modified UTF" role Java's DataOutputStream.writeUTF plays in the
// reference format — here plain UTF-8, since Go strings are already UTF-8.
func (e *encoder) writeUTF(s string) error {
	b := []byte(s)
	if len(b) > maxLen {
		return dmrerr.NewModelError("string too long: %d bytes", len(b))
	}
	if err := e.writeUint32(uint32(len(b))); err != nil {
		return err
	}
	_, err := e.w.Write(b)
	return err
}

func (e *encoder) writeBytesField(b []byte) error {
	if len(b) > maxLen {
		return dmrerr.NewModelError("byte array too long: %d bytes", len(b))
	}
	if err := e.writeUint32(uint32(len(b))); err != nil {
		return err
	}
	_, err := e.w.Write(b)
	return err
}

func (e *encoder) writeValue(v *value.Value) error {
	assert.NotNil(v, "v")
	tag := v.Tag()
	if err := e.writeByteCode(tag); err != nil {
		return err
	}

	switch tag {
	case value.Undefined:
		return nil

	case value.Boolean:
		b, _ := v.AsBool()
		var c byte
		if b {
			c = 1
		}
		_, err := e.w.Write([]byte{c})
		return err

	case value.Int:
		n, _ := v.AsInt()
		return e.writeInt32(n)

	case value.Long:
		n, _ := v.AsLong()
		return e.writeInt64(n)

	case value.Double:
		f, _ := v.AsDouble()
		return e.writeFloat64(f)

	case value.BigInteger:
		bi, _ := v.AsBigInteger()
		return e.writeBytesField(twosComplementBytes(bi))

	case value.BigDecimal:
		bd, _ := v.AsBigDecimal()
		if err := e.writeInt32(bd.Scale); err != nil {
			return err
		}
		unscaled := bd.Unscaled
		if unscaled == nil {
			unscaled = new(big.Int)
		}
		return e.writeBytesField(twosComplementBytes(unscaled))

	case value.String:
		s, _ := v.AsString()
		return e.writeUTF(s)

	case value.Bytes:
		b, _ := v.AsBytes()
		return e.writeBytesField(b)

	case value.Expression:
		s, _ := v.AsString()
		return e.writeUTF(s)

	case value.TypeTag:
		t, _ := v.AsType()
		return e.writeByteCode(t)

	case value.List:
		elems := v.Elements()
		if err := e.writeUint32(uint32(len(elems))); err != nil {
			return err
		}
		for _, c := range elems {
			if err := e.writeValue(c); err != nil {
				return err
			}
		}
		return nil

	case value.Object:
		keys := v.Keys()
		if err := e.writeUint32(uint32(len(keys))); err != nil {
			return err
		}
		for _, k := range keys {
			if err := e.writeUTF(k); err != nil {
				return err
			}
			child, err := v.Get(k)
			if err != nil {
				return err
			}
			if err := e.writeValue(child); err != nil {
				return err
			}
		}
		return nil

	case value.Property:
		key, child, err := v.AsProperty()
		if err != nil {
			return err
		}
		if err := e.writeUTF(key); err != nil {
			return err
		}
		return e.writeValue(child)

	default:
		return dmrerr.NewModelError("unknown tag %v", tag)
	}
}

// twosComplementBytes encodes n as minimal big-endian two's-complement
// bytes, the representation bigIntFromTwosComplement and value's
// BYTES->numeric conversions read; value.AsBytes on a BIG_INTEGER yields
// the unsigned magnitude instead.
func twosComplementBytes(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}
	if n.Sign() > 0 {
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	bitLen := n.BitLen()
	nBytes := bitLen/8 + 1
	shift := new(big.Int).Lsh(big.NewInt(1), uint(nBytes*8))
	twos := new(big.Int).Add(shift, n)
	b := twos.Bytes()
	for len(b) < nBytes {
		b = append([]byte{0xFF}, b...)
	}
	return b
}

func bigIntFromTwosComplement(b []byte) *big.Int {
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

type decoder struct {
	r io.Reader
}

func (d *decoder) readByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) readUint32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (d *decoder) readInt64() (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

func (d *decoder) readUTF() (string, error) {
	n, err := d.readUint32()
	if err != nil {
		return "", err
	}
	if n > maxLen {
		return "", dmrerr.NewModelError("string length %d exceeds maximum", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func (d *decoder) readBytesField() ([]byte, error) {
	n, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if n > maxLen {
		return nil, dmrerr.NewModelError("byte array length %d exceeds maximum", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readValue reads one value and delivers it into b, using b's move
// semantics so that nested LIST/OBJECT/PROPERTY assembly is O(n) total
// rather than re-cloning every already-built subtree at each enclosing
// level (§4.8).
func (d *decoder) readValue(b *tree.Builder, depth int) error {
	if depth > maxDepth {
		return dmrerr.NewModelError("nesting depth exceeds maximum %d", maxDepth)
	}

	code, err := d.readByte()
	if err != nil {
		return fmt.Errorf("read type char: %w", err)
	}
	tag, ok := value.TagForByteCode(code)
	if !ok {
		return dmrerr.ErrInvalidTag
	}

	switch tag {
	case value.Undefined:
		return b.Scalar(value.New())

	case value.Boolean:
		raw, err := d.readByte()
		if err != nil {
			return err
		}
		return b.Scalar(value.BooleanValue(raw != 0))

	case value.Int:
		n, err := d.readUint32()
		if err != nil {
			return err
		}
		out := value.New()
		if err := out.SetInt(int32(n)); err != nil {
			return err
		}
		return b.Scalar(out)

	case value.Long:
		n, err := d.readInt64()
		if err != nil {
			return err
		}
		out := value.New()
		if err := out.SetLong(n); err != nil {
			return err
		}
		return b.Scalar(out)

	case value.Double:
		n, err := d.readInt64()
		if err != nil {
			return err
		}
		out := value.New()
		if err := out.SetDouble(math.Float64frombits(uint64(n))); err != nil {
			return err
		}
		return b.Scalar(out)

	case value.BigInteger:
		raw, err := d.readBytesField()
		if err != nil {
			return err
		}
		out := value.New()
		if err := out.SetBigInteger(bigIntFromTwosComplement(raw)); err != nil {
			return err
		}
		return b.Scalar(out)

	case value.BigDecimal:
		scaleRaw, err := d.readUint32()
		if err != nil {
			return err
		}
		raw, err := d.readBytesField()
		if err != nil {
			return err
		}
		out := value.New()
		if err := out.SetBigDecimal(value.NewBigDecimal(bigIntFromTwosComplement(raw), int32(scaleRaw))); err != nil {
			return err
		}
		return b.Scalar(out)

	case value.String:
		s, err := d.readUTF()
		if err != nil {
			return err
		}
		out := value.New()
		if err := out.SetString(s); err != nil {
			return err
		}
		return b.Scalar(out)

	case value.Bytes:
		raw, err := d.readBytesField()
		if err != nil {
			return err
		}
		out := value.New()
		if err := out.SetBytes(raw); err != nil {
			return err
		}
		return b.Scalar(out)

	case value.Expression:
		s, err := d.readUTF()
		if err != nil {
			return err
		}
		out := value.New()
		if err := out.SetExpression(s); err != nil {
			return err
		}
		return b.Scalar(out)

	case value.TypeTag:
		code, err := d.readByte()
		if err != nil {
			return err
		}
		t, ok := value.TagForByteCode(code)
		if !ok {
			return dmrerr.ErrInvalidTag
		}
		return b.Scalar(value.TypeValue(t))

	case value.List:
		n, err := d.readUint32()
		if err != nil {
			return err
		}
		if n > maxLen {
			return dmrerr.NewModelError("list length %d exceeds maximum", n)
		}
		if err := b.ListStart(); err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			if err := d.readValue(b, depth+1); err != nil {
				return err
			}
		}
		return b.ListEnd()

	case value.Object:
		n, err := d.readUint32()
		if err != nil {
			return err
		}
		if n > maxLen {
			return dmrerr.NewModelError("object length %d exceeds maximum", n)
		}
		if err := b.ObjectStart(); err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			k, err := d.readUTF()
			if err != nil {
				return err
			}
			if err := b.Key(k); err != nil {
				return err
			}
			if err := d.readValue(b, depth+1); err != nil {
				return err
			}
		}
		return b.ObjectEnd()

	case value.Property:
		k, err := d.readUTF()
		if err != nil {
			return err
		}
		if err := b.PropertyStart(); err != nil {
			return err
		}
		if err := b.PropertyName(k); err != nil {
			return err
		}
		if err := d.readValue(b, depth+1); err != nil {
			return err
		}
		return b.PropertyEnd()

	default:
		return dmrerr.ErrInvalidTag
	}
}
