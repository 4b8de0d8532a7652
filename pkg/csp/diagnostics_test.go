package csp_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pelavarre/cspknit/pkg/csp"
)

func TestDiagnoseRendersThreeLineBlock(t *testing.T) {
	sm, tokens := csp.Lex("(x → P | x → Q)")
	_, err := csp.Parse(tokens)
	assert.NoError(t, err)

	ast, _ := csp.Parse(tokens)
	verr := csp.Validate(ast)
	hint, ok := verr.(*csp.RepairHint)
	if !assert.True(t, ok) {
		return
	}

	block := csp.Diagnose(sm, hint)
	lines := strings.Split(block, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "1:(x → P | x → Q)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "."))
	assert.Equal(t, "error: need distinct guard names, got: x x", lines[2])
}

func TestDiagnoseNeedSomeSourceHasNoCitation(t *testing.T) {
	sm, tokens := csp.Lex("   ")
	_, err := csp.Parse(tokens)
	hint, ok := err.(*csp.RepairHint)
	if !assert.True(t, ok) {
		return
	}
	assert.Equal(t, "error: need some source", csp.Diagnose(sm, hint))
}
