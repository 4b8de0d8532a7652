package csp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pelavarre/cspknit/pkg/csp"
)

func TestLexFaithfulness(t *testing.T) {
	// For every input line, the concatenation of the chars of all splits
	// produced for that line equals the line. Lex panics internally if this
	// faithfulness invariant doesn't hold, so a successful
	// call is itself the assertion; we also spot-check a few shapes.
	inputs := []string{
		"tick → STOP",
		"VMCT = μ X : {coin, choc, toffee} • (coin → (choc → X | toffee → X))",
		"  # a whole-line comment\n\tP(a, b)  # trailing comment",
		"",
	}
	for _, in := range inputs {
		sm, _ := csp.Lex(in)
		assert.NotNil(t, sm)
	}
}

func TestLexTokenSubset(t *testing.T) {
	_, tokens := csp.Lex("tick → STOP # a comment\n  P(a, b)")
	for _, tok := range tokens {
		assert.NotEqual(t, csp.KindBlanks, tok.Kind)
		assert.NotEqual(t, csp.KindComment, tok.Kind)
		assert.NotEqual(t, csp.KindLineSep, tok.Kind)
	}
}

func TestLexFreakCharsWarnOncePerSourceMap(t *testing.T) {
	sm, _ := csp.Lex("STOP = $foo$ # em-dash — and curly ’quotes’ are freaks, not marks")
	assert.NotEmpty(t, sm.Warnings)

	dollarWarnings := 0
	for _, w := range sm.Warnings {
		if w == `\x24 '$'` {
			dollarWarnings++
		}
	}
	assert.Equal(t, 1, dollarWarnings, "a repeated freak char is only warned about once")
}

func TestBalance(t *testing.T) {
	_, balanced := csp.Lex("(x → P | (y → Q))")
	opened, closed := csp.Balance(balanced)
	assert.Empty(t, opened)
	assert.Empty(t, closed)

	_, unclosed := csp.Lex("(x → P | (y → Q)")
	opened, closed = csp.Balance(unclosed)
	assert.Equal(t, "(", opened)
	assert.Empty(t, closed)

	_, unopened := csp.Lex("x → P)")
	opened, closed = csp.Balance(unopened)
	assert.Empty(t, opened)
	assert.Equal(t, ")", closed)
}

func TestCite(t *testing.T) {
	sm, tokens := csp.Lex("STOP = (x → P | y)")
	var pipe csp.Token
	for _, tok := range tokens {
		if tok.IsMark("|") {
			pipe = tok
		}
	}
	assert.NotNil(t, pipe)

	citation := sm.Cite(pipe)
	assert.Contains(t, citation, "1:STOP = (x → P | y)")
	assert.Contains(t, citation, "^")
}
