package b64_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrmodel/dmr/b64"
	"github.com/dmrmodel/dmr/dmrerr"
	"github.com/dmrmodel/dmr/value"
)

// TestRoundTripArbitraryBytes covers §8's Base64 envelope property directly
// over the byte-level codec, independent of any *value.Value.
func TestRoundTripArbitraryBytes(t *testing.T) {
	for _, raw := range [][]byte{
		nil,
		{0x00},
		{0x01, 0x02},
		{0x01, 0x02, 0x03},
		[]byte("the quick brown fox jumps over the lazy dog, twice over to cross the 76 column soft wrap boundary"),
	} {
		encoded := b64.Encode(raw)
		decoded, err := b64.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, raw, decoded)
	}
}

func TestEncodeSoftWrapsAt76Columns(t *testing.T) {
	raw := make([]byte, 100)
	for i := range raw {
		raw[i] = byte(i)
	}
	encoded := b64.Encode(raw)
	lines := splitLines(encoded)
	for _, line := range lines[:len(lines)-1] {
		assert.LessOrEqual(t, len(line), 76)
	}
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '\r' && s[i+1] == '\n' {
			out = append(out, s[start:i])
			start = i + 2
		}
	}
	out = append(out, s[start:])
	return out
}

func TestDecodeSkipsWhitespaceAndPadding(t *testing.T) {
	decoded, err := b64.Decode("AA==\r\n")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, decoded)
}

func TestDecodeRejectsOutOfAlphabetByte(t *testing.T) {
	_, err := b64.Decode("not!valid$$$")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dmrerr.ErrMalformed))
}

// TestScenarioEmptyObjectBase64RoundTrip is end-to-end scenario 6:
// fromBase64(toBase64(OBJECT{})) must equal the empty OBJECT.
func TestScenarioEmptyObjectBase64RoundTrip(t *testing.T) {
	empty := value.New()
	require.NoError(t, empty.SetEmptyObject())

	encoded, err := b64.EncodeValue(empty)
	require.NoError(t, err)
	decoded, err := b64.DecodeValue(encoded)
	require.NoError(t, err)

	assert.True(t, empty.Equal(decoded))
	assert.Equal(t, 0, decoded.Size())
}

func TestEncodeValueDecodeValueRoundTripsNestedTree(t *testing.T) {
	root := value.New()
	require.NoError(t, root.SetEmptyObject())
	child, err := root.Get("greeting")
	require.NoError(t, err)
	require.NoError(t, child.SetString("hello"))

	encoded, err := b64.EncodeValue(root)
	require.NoError(t, err)
	decoded, err := b64.DecodeValue(encoded)
	require.NoError(t, err)
	assert.True(t, root.Equal(decoded))
}
