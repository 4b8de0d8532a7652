package csp_test

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"

	"github.com/pelavarre/cspknit/pkg/csp"
)

func mustParse(t *testing.T, source string) csp.Node {
	t.Helper()
	_, tokens := csp.Lex(source)
	ast, err := csp.Parse(tokens)
	assert.NoError(t, err)
	assert.NoError(t, csp.Validate(ast))
	return ast
}

func TestFormatCSPRoundTrip(t *testing.T) {
	sources := []string{
		"tick → STOP",
		"VMS = (coin → (choc → VMS))",
		"CLOCK = μ X : {tick} • (tick → X)",
		"VMCT = μ X : {coin, choc, toffee} • (coin → (choc → X | toffee → X))",
		"⟨coin, choc, coin, choc⟩",
		"αVMS = {coin, choc}",
		"P(a, b)",
		"P*x",
		"x:A → STOP",
	}

	for _, source := range sources {
		t.Run(source, func(t *testing.T) {
			ast := mustParse(t, source)
			assert.Equal(t, source, csp.FormatCSP(ast))
		})
	}
}

func TestFormatCSPIdempotence(t *testing.T) {
	// FormatCSP ∘ Parse ∘ Lex, applied twice, agrees with itself once.
	source := "VMCT = μ X : {coin, choc, toffee} • (coin → (choc → X | toffee → X))"

	ast1 := mustParse(t, source)
	once := csp.FormatCSP(ast1)

	ast2 := mustParse(t, once)
	twice := csp.FormatCSP(ast2)

	assert.Equal(t, once, twice)
	if diff := deep.Equal(ast1, ast2); diff != nil {
		t.Errorf("re-parsing the formatted output produced a different AST: %v", diff)
	}
}

func TestFormatStructural(t *testing.T) {
	ast := mustParse(t, "tick → STOP")
	got := csp.FormatStructural(ast)
	assert.Equal(t, `Prong(Prolog="tick", Epilog="STOP")`, got)
}

func TestFormatStructuralWraps(t *testing.T) {
	// A long enough SharpBody should wrap onto indented continuation lines
	// rather than exceed the width threshold on one.
	ast := mustParse(t, "VMCT = μ X : {coin, choc, toffee} • (coin → (choc → X | toffee → X))")
	got := csp.FormatStructural(ast)
	assert.Contains(t, got, "\n")
	assert.NotContains(t, got, "\t")
}
