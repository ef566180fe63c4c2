package value_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

// TestCloneIndependence covers §8's Clone independence property: mutating a
// clone must never reach back into the original, at any depth.
func TestCloneIndependence(t *testing.T) {
	root := value.New()
	require.NoError(t, root.SetEmptyObject())
	child, err := root.Get("items")
	require.NoError(t, err)
	require.NoError(t, child.SetList([]*value.Value{mustInt(t, 1), mustInt(t, 2)}))

	clone := root.Clone()
	require.True(t, root.Equal(clone))

	cloneItems, err := clone.Require("items")
	require.NoError(t, err)
	elem, err := cloneItems.GetIndex(0)
	require.NoError(t, err)
	require.NoError(t, elem.SetInt(999))

	origItems, err := root.Require("items")
	require.NoError(t, err)
	origElem, err := origItems.GetIndex(0)
	require.NoError(t, err)
	n, err := origElem.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int32(1), n, "mutating the clone must not affect the original")
}

// TestProtectTransitivity covers §8's Protect transitivity property: once a
// container is protected, every reachable descendant rejects mutation too,
// and Equal/Hash stability survive the mark.
func TestProtectTransitivity(t *testing.T) {
	root := value.New()
	require.NoError(t, root.SetEmptyObject())
	outer, err := root.Get("outer")
	require.NoError(t, err)
	require.NoError(t, outer.SetEmptyObject())
	inner, err := outer.Get("inner")
	require.NoError(t, err)
	require.NoError(t, inner.SetInt(7))

	beforeHash := root.Hash()
	root.Protect()

	assert.True(t, root.Protected())
	assert.True(t, outer.Protected())
	assert.True(t, inner.Protected())

	err = inner.SetInt(8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dmrerr.ErrProtected))

	err = outer.SetEmptyList()
	require.Error(t, err)
	assert.True(t, errors.Is(err, dmrerr.ErrProtected))

	assert.Equal(t, beforeHash, root.Hash(), "protecting must not change the structural hash")
}

// TestProtectIsIdempotent confirms re-protecting an already-protected
// subtree is a no-op, as documented on Protect.
func TestProtectIsIdempotent(t *testing.T) {
	v := mustInt(t, 5)
	v.Protect()
	v.Protect()
	assert.True(t, v.Protected())
}

// TestObjectOrderPreservesInsertion covers §8's Object order property:
// Keys() reports insertion order, and replacing an existing key's value
// never changes its position.
func TestObjectOrderPreservesInsertion(t *testing.T) {
	root := value.New()
	require.NoError(t, root.SetEmptyObject())
	for _, k := range []string{"zebra", "alpha", "mango"} {
		child, err := root.Get(k)
		require.NoError(t, err)
		require.NoError(t, child.SetInt(1))
	}
	assert.Equal(t, []string{"zebra", "alpha", "mango"}, root.Keys())

	alpha, err := root.Require("alpha")
	require.NoError(t, err)
	require.NoError(t, alpha.SetInt(42))
	assert.Equal(t, []string{"zebra", "alpha", "mango"}, root.Keys(), "replacing a value must not move its key")
}

// TestAutoVivification covers §8's Auto-vivification property: chaining Get
// over a fresh UNDEFINED root builds a three-level OBJECT chain ending in an
// UNDEFINED leaf, and HasPath/Has confirm the shape without themselves
// vivifying anything.
func TestAutoVivification(t *testing.T) {
	root := value.New()
	assert.False(t, root.HasPath("a", "b", "c"))

	leaf, err := root.GetPath("a", "b", "c")
	require.NoError(t, err)
	assert.False(t, leaf.IsDefined())

	assert.Equal(t, value.Object, root.Tag())
	assert.True(t, root.Has("a"))
	a, err := root.Require("a")
	require.NoError(t, err)
	assert.Equal(t, value.Object, a.Tag())
	assert.True(t, a.Has("b"))

	assert.True(t, root.HasPath("a", "b", "c"))
	assert.False(t, root.HasPath("a", "b", "c", "d"))
}

// TestAutoVivificationList mirrors TestAutoVivification for GetIndex on a
// fresh UNDEFINED root, which vivifies into a LIST instead of an OBJECT.
func TestAutoVivificationList(t *testing.T) {
	root := value.New()
	elem, err := root.GetIndex(2)
	require.NoError(t, err)
	assert.False(t, elem.IsDefined())
	assert.Equal(t, value.List, root.Tag())
	assert.Equal(t, 3, root.Size())
}

// TestEqualityIsStructural covers §8's Equality-is-structural property:
// Equal implies equal Hash for two separately built OBJECT-of-LIST trees,
// and Equal distinguishes an INT from a STRING that converts to the same
// text.
func TestEqualityIsStructural(t *testing.T) {
	a := value.New()
	require.NoError(t, a.SetEmptyObject())
	ac, err := a.Get("x")
	require.NoError(t, err)
	require.NoError(t, ac.SetList([]*value.Value{mustInt(t, 1), mustString(t, "two")}))

	b := value.New()
	require.NoError(t, b.SetEmptyObject())
	bc, err := b.Get("x")
	require.NoError(t, err)
	require.NoError(t, bc.SetList([]*value.Value{mustInt(t, 1), mustString(t, "two")}))

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	intOne := mustInt(t, 1)
	strOne := mustString(t, "1")
	assert.False(t, intOne.Equal(strOne), "different tags must never be equal even when both convert to the same text")
}

// TestScenarioProtectThenMutationRejected is end-to-end scenario 5: build a
// PROPERTY, protect it, confirm the attempted mutation is rejected with the
// "unsupported mutation" error and that AsList still reports a single
// element.
func TestScenarioProtectThenMutationRejected(t *testing.T) {
	root := value.New()
	require.NoError(t, root.SetProperty("count", mustInt(t, 1)))
	root.Protect()

	child, err := root.Get("count")
	require.NoError(t, err)
	err = child.SetInt(2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dmrerr.ErrProtected))
	assert.Equal(t, "unsupported mutation: setInt", err.Error())

	elems, err := root.AsList()
	require.NoError(t, err)
	assert.Equal(t, 1, len(elems))
}

// TestGetOnIncompatibleTagIsIllegalAccess confirms Get over a non-container,
// non-UNDEFINED tag returns an access error rather than vivifying.
func TestGetOnIncompatibleTagIsIllegalAccess(t *testing.T) {
	v := mustInt(t, 5)
	_, err := v.Get("x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dmrerr.ErrIllegalChildAccess))
}

// TestRequireMissingKeyIsNoSuchElement confirms Require on a key that is
// absent, though close to an existing one, reports ErrNoSuchElement.
func TestRequireMissingKeyIsNoSuchElement(t *testing.T) {
	root := value.New()
	require.NoError(t, root.SetEmptyObject())
	child, err := root.Get("color")
	require.NoError(t, err)
	require.NoError(t, child.SetString("red"))

	_, err = root.Require("colour")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dmrerr.ErrNoSuchElement))
}

func TestConversionMatrixRejectsUnsupportedPair(t *testing.T) {
	v := value.New()
	require.NoError(t, v.SetEmptyList())
	_, err := v.AsBytes()
	require.Error(t, err)
	assert.True(t, errors.Is(err, dmrerr.ErrIllegalConversion))
}

// TestCloneKeyOrderMatchesOriginal uses cmp.Diff rather than testify's
// assert.Equal so a future key-order regression shows the exact insertion
// index that diverged, not just "not equal".
func TestCloneKeyOrderMatchesOriginal(t *testing.T) {
	root := value.New()
	require.NoError(t, root.SetEmptyObject())
	for _, k := range []string{"c", "a", "b"} {
		child, err := root.Get(k)
		require.NoError(t, err)
		require.NoError(t, child.SetInt(1))
	}
	clone := root.Clone()

	if diff := cmp.Diff(root.Keys(), clone.Keys()); diff != "" {
		t.Errorf("clone key order diverged from original (-want +got):\n%s", diff)
	}
}

func TestBigIntegerSetterDeepCopies(t *testing.T) {
	n := big.NewInt(42)
	v := value.New()
	require.NoError(t, v.SetBigInteger(n))
	n.SetInt64(7)

	got, err := v.AsBigInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Int64(), "SetBigInteger must deep-copy its argument")
}
