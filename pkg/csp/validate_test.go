package csp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pelavarre/cspknit/pkg/csp"
)

func TestValidateDuplicateEventNames(t *testing.T) {
	_, tokens := csp.Lex("{coin, choc, coin}")
	ast, err := csp.Parse(tokens)
	assert.NoError(t, err)

	err = csp.Validate(ast)
	assertHint(t, err, "need distinct event names, got: coin coin")
}

func TestValidateDuplicateGuardNames(t *testing.T) {
	_, tokens := csp.Lex("(coin → P | choc → Q | coin → R)")
	ast, err := csp.Parse(tokens)
	assert.NoError(t, err)

	err = csp.Validate(ast)
	assertHint(t, err, "need distinct guard names, got: coin coin")
}

func TestValidateDuplicateArgotNames(t *testing.T) {
	_, tokens := csp.Lex("αSTOP = αSTOP = {coin}")
	ast, err := csp.Parse(tokens)
	assert.NoError(t, err)

	err = csp.Validate(ast)
	assertHint(t, err, "need distinct argot names, got: STOP STOP")
}

func TestValidateAcceptsDistinctNames(t *testing.T) {
	_, tokens := csp.Lex("(coin → P | choc → Q)")
	ast, err := csp.Parse(tokens)
	assert.NoError(t, err)
	assert.NoError(t, csp.Validate(ast))
}

func TestValidateTranscriptAllowsRepeats(t *testing.T) {
	// Event-set duplicate rule does NOT apply to Transcripts: traces repeat
	// their events meaningfully.
	_, tokens := csp.Lex("⟨coin, choc, coin, choc⟩")
	ast, err := csp.Parse(tokens)
	assert.NoError(t, err)
	assert.NoError(t, csp.Validate(ast))
}
