package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrmodel/dmr/tree"
	"github.com/dmrmodel/dmr/value"
)

func intVal(t *testing.T, n int32) *value.Value {
	t.Helper()
	v := value.New()
	require.NoError(t, v.SetInt(n))
	return v
}

func TestBuilderScalarOnly(t *testing.T) {
	b := tree.New()
	require.NoError(t, b.Scalar(intVal(t, 7)))

	got, err := b.Value()
	require.NoError(t, err)

	n, err := got.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int32(7), n)
}

func TestBuilderList(t *testing.T) {
	b := tree.New()
	require.NoError(t, b.ListStart())
	require.NoError(t, b.Scalar(intVal(t, 1)))
	require.NoError(t, b.Scalar(intVal(t, 2)))
	require.NoError(t, b.ListEnd())

	got, err := b.Value()
	require.NoError(t, err)
	require.Equal(t, value.List, got.Tag())

	elems := got.Elements()
	require.Len(t, elems, 2)
	n0, _ := elems[0].AsInt()
	n1, _ := elems[1].AsInt()
	assert.Equal(t, int32(1), n0)
	assert.Equal(t, int32(2), n1)
}

func TestBuilderObjectPreservesInsertionOrder(t *testing.T) {
	b := tree.New()
	require.NoError(t, b.ObjectStart())
	require.NoError(t, b.Key("zebra"))
	require.NoError(t, b.Scalar(intVal(t, 1)))
	require.NoError(t, b.Key("alpha"))
	require.NoError(t, b.Scalar(intVal(t, 2)))
	require.NoError(t, b.ObjectEnd())

	got, err := b.Value()
	require.NoError(t, err)
	assert.Equal(t, []string{"zebra", "alpha"}, got.Keys())
}

func TestBuilderProperty(t *testing.T) {
	b := tree.New()
	require.NoError(t, b.PropertyStart())
	require.NoError(t, b.PropertyName("name"))
	require.NoError(t, b.Scalar(intVal(t, 42)))
	require.NoError(t, b.PropertyEnd())

	got, err := b.Value()
	require.NoError(t, err)

	key, child, err := got.AsProperty()
	require.NoError(t, err)
	assert.Equal(t, "name", key)
	n, _ := child.AsInt()
	assert.Equal(t, int32(42), n)
}

func TestBuilderNestedListOfObjects(t *testing.T) {
	b := tree.New()
	require.NoError(t, b.ListStart())

	require.NoError(t, b.ObjectStart())
	require.NoError(t, b.Key("k"))
	require.NoError(t, b.Scalar(intVal(t, 1)))
	require.NoError(t, b.ObjectEnd())

	require.NoError(t, b.ObjectStart())
	require.NoError(t, b.Key("k"))
	require.NoError(t, b.Scalar(intVal(t, 2)))
	require.NoError(t, b.ObjectEnd())

	require.NoError(t, b.ListEnd())

	got, err := b.Value()
	require.NoError(t, err)
	elems := got.Elements()
	require.Len(t, elems, 2)
	child0, err := elems[0].Require("k")
	require.NoError(t, err)
	n0, _ := child0.AsInt()
	assert.Equal(t, int32(1), n0)
}

func TestBuilderValueBeforeCloseIsError(t *testing.T) {
	b := tree.New()
	require.NoError(t, b.ListStart())
	_, err := b.Value()
	assert.Error(t, err)
}

func TestBuilderEmptyIsError(t *testing.T) {
	b := tree.New()
	_, err := b.Value()
	assert.Error(t, err)
}
