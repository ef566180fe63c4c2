package jsontext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrmodel/dmr/jsontext"
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

// TestScenarioJSONCompactRendering is end-to-end scenario 1's JSON dialect
// half: OBJECT{"a"->INT 1, "b"->LIST[STRING "x", BOOLEAN true]} renders as
// compact JSON and parses back to an equal tree.
func TestScenarioJSONCompactRendering(t *testing.T) {
	root := value.New()
	require.NoError(t, root.SetEmptyObject())
	a, err := root.Get("a")
	require.NoError(t, err)
	require.NoError(t, a.SetInt(1))
	b, err := root.Get("b")
	require.NoError(t, err)
	require.NoError(t, b.SetList([]*value.Value{mustString(t, "x"), value.BooleanValue(true)}))

	got := jsontext.WriteCompact(root)
	assert.Equal(t, `{"a" : 1,"b" : ["x",true]}`, got)

	parsed, err := jsontext.Parse(got)
	require.NoError(t, err)
	assert.True(t, root.Equal(parsed))
}

// TestScenarioPropertySentinelDecoding is end-to-end scenario 4:
// fromJson('{"PROPERTY_VALUE" : {"n" : 42}}') decodes to PROPERTY "n"->INT 42.
func TestScenarioPropertySentinelDecoding(t *testing.T) {
	got, err := jsontext.Parse(`{"PROPERTY_VALUE" : {"n" : 42}}`)
	require.NoError(t, err)
	assert.Equal(t, value.Property, got.Tag())
	key, child, err := got.AsProperty()
	require.NoError(t, err)
	assert.Equal(t, "n", key)
	n, err := child.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int32(42), n)
}

// TestRoundTripCompactAndPretty covers §8's Text round-trip (JSON) property
// for both compact and pretty forms, over an OBJECT holding a LIST of INTs
// and a STRING.
func TestRoundTripCompactAndPretty(t *testing.T) {
	root := value.New()
	require.NoError(t, root.SetEmptyObject())
	items, err := root.Get("items")
	require.NoError(t, err)
	require.NoError(t, items.SetList([]*value.Value{mustInt(t, 1), mustInt(t, 2), mustInt(t, 3)}))
	name, err := root.Get("name")
	require.NoError(t, err)
	require.NoError(t, name.SetString("widget"))

	for _, pretty := range []bool{false, true} {
		text := jsontext.Write(root, pretty)
		parsed, err := jsontext.Parse(text)
		require.NoError(t, err, "pretty=%v text=%q", pretty, text)
		assert.True(t, root.Equal(parsed), "pretty=%v", pretty)
	}
}

func TestRoundTripNonJSONScalarsViaSentinels(t *testing.T) {
	expr := value.New()
	require.NoError(t, expr.SetExpression("${HOME}/bin"))

	bytesVal := value.New()
	require.NoError(t, bytesVal.SetBytes([]byte{0xDE, 0xAD, 0xBE, 0xEF}))

	typeVal := value.TypeValue(value.Long)

	for _, v := range []*value.Value{expr, bytesVal, typeVal} {
		text := jsontext.WriteCompact(v)
		parsed, err := jsontext.Parse(text)
		require.NoError(t, err)
		assert.True(t, v.Equal(parsed), "tag %v round trip through %q", v.Tag(), text)
	}
}

func TestUndefinedRendersAsNull(t *testing.T) {
	assert.Equal(t, "null", jsontext.WriteCompact(value.New()))
	parsed, err := jsontext.Parse("null")
	require.NoError(t, err)
	assert.False(t, parsed.IsDefined())
}

func TestParseRejectsMalformedInput(t *testing.T) {
	tests := []string{
		"[ , 1 ]",
		`{ "a" 1 }`,
		"[ 1, ]",
		`{ "a" : 1, }`,
		"1 2",
		"[ 1, 2",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := jsontext.Parse(src)
			assert.Error(t, err, "expected a parse error for %q", src)
		})
	}
}

func TestParseRejectsMalformedPropertySentinel(t *testing.T) {
	_, err := jsontext.Parse(`{"PROPERTY_VALUE" : 42}`)
	require.Error(t, err)
}

func TestParseRejectsInvalidBytesSentinel(t *testing.T) {
	_, err := jsontext.Parse(`{"BYTES_VALUE" : "not base64!!"}`)
	require.Error(t, err)
}

func TestParseRejectsUnknownTypeSentinel(t *testing.T) {
	_, err := jsontext.Parse(`{"TYPE_MODEL_VALUE" : "not a type"}`)
	require.Error(t, err)
}
