package csp_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"

	"github.com/pelavarre/cspknit/pkg/csp"
)

// parse is the test-local shorthand for the lex+knit+validate pipeline.
func parse(t *testing.T, source string) (csp.Node, error) {
	t.Helper()
	_, tokens := csp.Lex(source)
	ast, err := csp.Parse(tokens)
	if err != nil {
		return nil, err
	}
	return ast, csp.Validate(ast)
}

func TestWellFormedScenarios(t *testing.T) {
	// Five end-to-end scenarios: parsing a
	// well-formed input round-trips through FormatCSP unchanged.
	scenarios := []string{
		"tick → STOP",
		"VMS = (coin → (choc → VMS))",
		"CLOCK = μ X : {tick} • (tick → X)",
		"VMCT = μ X : {coin, choc, toffee} • (coin → (choc → X | toffee → X))",
		"⟨coin, choc, coin, choc⟩",
	}

	for _, source := range scenarios {
		t.Run(source, func(t *testing.T) {
			ast, err := parse(t, source)
			assert.NoError(t, err)
			assert.Equal(t, source, csp.FormatCSP(ast))
		})
	}
}

func TestScenarioASTShapes(t *testing.T) {
	t.Run("tick -> STOP", func(t *testing.T) {
		ast, err := parse(t, "tick → STOP")
		assert.NoError(t, err)
		prong, ok := ast.(csp.Prong)
		if assert.True(t, ok, "root should be a bare Prong, folded out of its enclosing Fork") {
			assert.Equal(t, csp.Event{Name: "tick"}, stripProvenance(prong.Prolog))
			assert.Equal(t, csp.ProcName{Name: "STOP"}, stripProvenance(prong.Epilog))
		}
	})

	t.Run("VMS recursion", func(t *testing.T) {
		ast, err := parse(t, "VMS = (coin → (choc → VMS))")
		assert.NoError(t, err)
		def, ok := ast.(csp.ProcDef)
		assert.True(t, ok)
		assert.Equal(t, "VMS", def.Proc.(csp.ProcName).Name)
		pocket, ok := def.Body.(csp.Pocket)
		assert.True(t, ok)
		outer, ok := pocket.Inner.(csp.Prong)
		assert.True(t, ok)
		assert.Equal(t, "coin", outer.Prolog.(csp.Event).Name)
	})
}

func TestBoundaryBehaviours(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := parse(t, "")
		assertHint(t, err, "need some source")
	})

	t.Run("nested fork cannot fill a prong", func(t *testing.T) {
		_, err := parse(t, "(x → P | (y → Q | z → R))")
		assertHint(t, err, "need a stronger knitter")
	})

	t.Run("prong without an arrow", func(t *testing.T) {
		_, err := parse(t, "(x → P | y)")
		assertHint(t, err, "need a stronger knitter")
	})

	t.Run("duplicate event names", func(t *testing.T) {
		_, err := parse(t, "{a, a}")
		assertHint(t, err, "need distinct event names, got: a a")
	})

	t.Run("duplicate guard names", func(t *testing.T) {
		_, err := parse(t, "(x → P | x → Q)")
		assertHint(t, err, "need distinct guard names, got: x x")
	})
}

func TestEmptyAggregatesParse(t *testing.T) {
	// Open question #1: empty Transcript/EventSet parse with zero items.
	ast, err := parse(t, "⟨⟩")
	assert.NoError(t, err)
	assert.Equal(t, csp.Transcript{}, ast)

	ast, err = parse(t, "{}")
	assert.NoError(t, err)
	assert.Equal(t, csp.EventSet{}, ast)
}

func TestTrailingCommaAllowed(t *testing.T) {
	ast, err := parse(t, "{a, b,}")
	assert.NoError(t, err)
	assert.Equal(t, "{a, b}", csp.FormatCSP(ast))
}

func assertHint(t *testing.T, err error, want string) {
	t.Helper()
	hint, ok := err.(*csp.RepairHint)
	if !ok {
		t.Fatalf("expected a *csp.RepairHint, got:\n%s", spew.Sdump(err))
	}
	if hint.Hint != want {
		t.Fatalf("expected hint %q, got %q, full hint:\n%s", want, hint.Hint, spew.Sdump(hint))
	}
}

// stripProvenance clears the unexported source-token field atoms carry, so
// a plain equality assertion against a literal can work without it.
func stripProvenance(n csp.Node) csp.Node {
	switch v := n.(type) {
	case csp.Event:
		return csp.Event{Name: v.Name}
	case csp.ProcName:
		return csp.ProcName{Name: v.Name}
	case csp.Alphabet:
		return csp.Alphabet{Name: v.Name}
	case csp.Arg:
		return csp.Arg{Name: v.Name}
	default:
		return n
	}
}
