package binary_test

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrmodel/dmr/binary"
	"github.com/dmrmodel/dmr/dmrerr"
	"github.com/dmrmodel/dmr/value"
)

func mustInt(t *testing.T, n int32) *value.Value {
	t.Helper()
	v := value.New()
	require.NoError(t, v.SetInt(n))
	return v
}

func mustString(t *testing.T, s string) *value.Value {
	t.Helper()
	v := value.New()
	require.NoError(t, v.SetString(s))
	return v
}

func mustBytes(t *testing.T, b []byte) *value.Value {
	t.Helper()
	v := value.New()
	require.NoError(t, v.SetBytes(b))
	return v
}

// roundTrip covers §8's Binary round-trip property: decode(encode(v))
// must be structurally equal to v.
func roundTrip(t *testing.T, v *value.Value) *value.Value {
	t.Helper()
	b, err := binary.Marshal(v)
	require.NoError(t, err)
	out, err := binary.Unmarshal(b)
	require.NoError(t, err)
	return out
}

func TestRoundTripEveryScalarKind(t *testing.T) {
	scalars := []*value.Value{
		value.New(),
		value.BooleanValue(true),
		value.BooleanValue(false),
		mustInt(t, -7),
		mustLong(t, 1<<40),
		mustDouble(t, 3.5),
		mustBigInt(t, big.NewInt(0).Exp(big.NewInt(10), big.NewInt(30), nil)),
		mustBigDecimal(t, big.NewInt(12345), 2),
		mustString(t, "hello"),
		mustBytes(t, []byte{0xde, 0xad, 0xbe, 0xef}),
		mustExpression(t, "${HOME}/bin"),
		value.TypeValue(value.Long),
	}
	for _, s := range scalars {
		out := roundTrip(t, s)
		assert.True(t, s.Equal(out), "tag %v did not round-trip", s.Tag())
	}
}

func TestRoundTripNestedContainers(t *testing.T) {
	root := value.New()
	require.NoError(t, root.SetEmptyObject())
	a, err := root.Get("a")
	require.NoError(t, err)
	require.NoError(t, a.SetInt(1))
	items, err := root.Get("b")
	require.NoError(t, err)
	require.NoError(t, items.SetList([]*value.Value{mustString(t, "x"), value.BooleanValue(true)}))

	out := roundTrip(t, root)
	assert.True(t, root.Equal(out))
	assert.Equal(t, root.Keys(), out.Keys())
}

func TestRoundTripProperty(t *testing.T) {
	v := value.New()
	require.NoError(t, v.SetProperty("count", mustInt(t, 9)))
	out := roundTrip(t, v)
	assert.True(t, v.Equal(out))
	key, child, err := out.AsProperty()
	require.NoError(t, err)
	assert.Equal(t, "count", key)
	n, _ := child.AsInt()
	assert.Equal(t, int32(9), n)
}

// TestDigestStability covers §8: two structurally equal trees built
// different ways produce the same binary Digest.
func TestDigestStability(t *testing.T) {
	a := value.New()
	require.NoError(t, a.SetList([]*value.Value{mustInt(t, 1), mustString(t, "two")}))

	b := value.New()
	require.NoError(t, b.SetEmptyList())
	b0, err := b.GetIndex(0)
	require.NoError(t, err)
	require.NoError(t, b0.SetInt(1))
	b1, err := b.GetIndex(1)
	require.NoError(t, err)
	require.NoError(t, b1.SetString("two"))

	da, err := binary.Digest(a)
	require.NoError(t, err)
	db, err := binary.Digest(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestDigestDiffersOnDifferentTrees(t *testing.T) {
	a := mustInt(t, 1)
	b := mustInt(t, 2)
	da, err := binary.Digest(a)
	require.NoError(t, err)
	db, err := binary.Digest(b)
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}

// TestScenarioBytesListWireForm is end-to-end scenario 3: the exact byte
// sequence for LIST[BYTES [0xDE,0xAD,0xBE,0xEF]] — LIST type char, a 4-byte
// little-endian element count of 1, BYTES type char, a 4-byte little-endian
// length of 4, then the four payload bytes.
func TestScenarioBytesListWireForm(t *testing.T) {
	v := value.New()
	require.NoError(t, v.SetList([]*value.Value{mustBytes(t, []byte{0xDE, 0xAD, 0xBE, 0xEF})}))

	got, err := binary.Marshal(v)
	require.NoError(t, err)

	want := []byte{
		'A', // LIST
		0x01, 0x00, 0x00, 0x00, // 1 element
		'Y',                    // BYTES
		0x04, 0x00, 0x00, 0x00, // length 4
		0xDE, 0xAD, 0xBE, 0xEF,
	}
	assert.Equal(t, want, got)
}

// TestScenarioEmptyObjectWireForm is end-to-end scenario 6's underlying wire
// form: an empty OBJECT encodes as its type char followed by a 4-byte
// little-endian entry count of zero.
func TestScenarioEmptyObjectWireForm(t *testing.T) {
	v := value.New()
	require.NoError(t, v.SetEmptyObject())

	got, err := binary.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, []byte{'O', 0x00, 0x00, 0x00, 0x00}, got)
}

func TestUnmarshalRejectsTrailingBytes(t *testing.T) {
	b, err := binary.Marshal(mustInt(t, 1))
	require.NoError(t, err)
	b = append(b, 0xFF)
	_, err = binary.Unmarshal(b)
	require.Error(t, err)
}

func TestDecodeRejectsUnknownTypeChar(t *testing.T) {
	_, err := binary.Decode(bytes.NewReader([]byte{'?'}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, dmrerr.ErrInvalidTag))
}

func mustLong(t *testing.T, n int64) *value.Value {
	t.Helper()
	v := value.New()
	require.NoError(t, v.SetLong(n))
	return v
}

func mustDouble(t *testing.T, f float64) *value.Value {
	t.Helper()
	v := value.New()
	require.NoError(t, v.SetDouble(f))
	return v
}

func mustBigInt(t *testing.T, n *big.Int) *value.Value {
	t.Helper()
	v := value.New()
	require.NoError(t, v.SetBigInteger(n))
	return v
}

func mustBigDecimal(t *testing.T, unscaled *big.Int, scale int32) *value.Value {
	t.Helper()
	v := value.New()
	require.NoError(t, v.SetBigDecimal(value.NewBigDecimal(unscaled, scale)))
	return v
}

func mustExpression(t *testing.T, s string) *value.Value {
	t.Helper()
	v := value.New()
	require.NoError(t, v.SetExpression(s))
	return v
}
