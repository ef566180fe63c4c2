package expr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrmodel/dmr/dmrerr"
	"github.com/dmrmodel/dmr/expr"
)

// TestScenarioResolveWithFallback is end-to-end scenario 2: "${foo:bar}"
// resolves to "7" when foo="7" is set, and falls back to the literal "bar"
// when the environment has no foo at all.
func TestScenarioResolveWithFallback(t *testing.T) {
	withFoo := expr.Properties{"foo": "7"}
	got, err := expr.Resolve("${foo:bar}", withFoo)
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	empty := expr.Properties{}
	got, err = expr.Resolve("${foo:bar}", empty)
	require.NoError(t, err)
	assert.Equal(t, "bar", got)
}

func TestResolveUnsetWithNoDefaultIsUnresolved(t *testing.T) {
	_, err := expr.Resolve("${foo}", expr.Properties{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dmrerr.ErrUnresolved))
}

func TestResolveFirstPresentAlternativeWins(t *testing.T) {
	env := expr.Properties{"b": "second"}
	got, err := expr.Resolve("${a,b,c:fallback}", env)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestResolveEmbedsLiteralTextAroundPlaceholder(t *testing.T) {
	env := expr.Properties{"name": "world"}
	got, err := expr.Resolve("hello, ${name}!", env)
	require.NoError(t, err)
	assert.Equal(t, "hello, world!", got)
}

func TestResolveNestedDefaultExpression(t *testing.T) {
	outer := expr.Properties{"b": "from-b"}
	got, err := expr.Resolve("${a:${b}}", outer)
	require.NoError(t, err)
	assert.Equal(t, "from-b", got)
}

func TestResolveUnterminatedExpressionIsModelError(t *testing.T) {
	_, err := expr.Resolve("${unterminated", expr.Properties{})
	require.Error(t, err)
	var modelErr *dmrerr.ModelError
	assert.True(t, errors.As(err, &modelErr))
}

// TestChainTriesEachEnvironmentInOrder grounds package expr's
// dependency-injection shape: Chain falls through to the next Environment
// only when the earlier ones report no match.
func TestChainTriesEachEnvironmentInOrder(t *testing.T) {
	chain := expr.Chain{
		expr.Properties{"a": "first"},
		expr.Properties{"a": "second", "b": "only-in-second"},
	}
	got, ok := chain.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "first", got)

	got, ok = chain.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "only-in-second", got)

	_, ok = chain.Lookup("missing")
	assert.False(t, ok)
}

func TestOSEnvironmentLooksUpProcessEnvironment(t *testing.T) {
	t.Setenv("DMR_EXPR_TEST_VAR", "process-value")
	got, err := expr.Resolve("${DMR_EXPR_TEST_VAR}", expr.OSEnvironment{})
	require.NoError(t, err)
	assert.Equal(t, "process-value", got)
}
