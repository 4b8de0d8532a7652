package csp

import (
	"github.com/pelavarre/cspknit/pkg/utils"
)

// knittable is a cursor over the Token slice with mandatory-paired
// checkpoint/commit/rollback backtracking. It is owned exclusively by a
// Knitter; nothing else mutates its cursor.
type knittable struct {
	tokens     []Token
	cursor     int
	checkpoint utils.Stack[int]
}

func newKnittable(tokens []Token) *knittable {
	return &knittable{tokens: tokens}
}

// peek returns the current token without consuming it, or nil at end.
func (k *knittable) peek() Token {
	if k.atEnd() {
		return nil
	}
	return k.tokens[k.cursor]
}

// advance consumes and returns the current token. Calling it at end is a
// programmer error — every call site must check atEnd() or atMark() first.
func (k *knittable) advance() Token {
	tok := k.tokens[k.cursor]
	k.cursor++
	return tok
}

func (k *knittable) atEnd() bool {
	return k.cursor >= len(k.tokens)
}

// atMark reports whether the token under the cursor is a mark equal to s.
// By convention s == "" also matches end-of-stream.
func (k *knittable) atMark(s string) bool {
	if k.atEnd() {
		return s == ""
	}
	return k.peek().IsMark(s)
}

// mark returns the current mark string, "" if the cursor is at end or not
// on a mark.
func (k *knittable) mark() string {
	tok := k.peek()
	if tok == nil || tok.Kind != KindMark {
		return ""
	}
	return tok.Chars
}

// takeCheckpoint pushes the cursor; must be paired with commitCheckpoint or
// rollbackCheckpoint before this knittable is used again at the outer
// scope.
func (k *knittable) takeCheckpoint() {
	k.checkpoint.Push(k.cursor)
}

// commitCheckpoint discards the saved cursor, keeping whatever advances
// happened since takeCheckpoint.
func (k *knittable) commitCheckpoint() {
	if _, err := k.checkpoint.Pop(); err != nil {
		panic("csp: checkpoint stack imbalance on commit: " + err.Error())
	}
}

// rollbackCheckpoint restores the cursor to its value at the matching
// takeCheckpoint, undoing every advance since.
func (k *knittable) rollbackCheckpoint() {
	saved, err := k.checkpoint.Pop()
	if err != nil {
		panic("csp: checkpoint stack imbalance on rollback: " + err.Error())
	}
	k.cursor = saved
}

// fitMisfit splits the token list at the cursor into what has been
// consumed so far ("fit") and what remains ("misfit"), for diagnostics.
func (k *knittable) fitMisfit() (fit, misfit []Token) {
	return k.tokens[:k.cursor], k.tokens[k.cursor:]
}
