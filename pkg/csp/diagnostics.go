package csp

import "strings"

// RepairHint is the one error type every layer of the pipeline raises: a
// short sentence from a closed set, paired with the token that provoked
// it. It is the Go analogue of the sealed error enum a language with
// tagged unions would use.
type RepairHint struct {
	Hint  string
	Token *Split // nil only for need-some-source, which has no token to cite
}

func (r *RepairHint) Error() string {
	return "error: " + r.Hint
}

func needSomeSource() *RepairHint {
	return &RepairHint{Hint: "need some source"}
}

func needMoreSourceToKnit(tok *Split) *RepairHint {
	return &RepairHint{Hint: "need more source to knit", Token: tok}
}

func needAStrongerKnitter(tok *Split) *RepairHint {
	return &RepairHint{Hint: "need a stronger knitter", Token: tok}
}

// needDistinct builds the "need distinct <kind>, got: <space-joined names>"
// hint. names lists every occurrence (not just the first) of each name
// that repeats, in source order — e.g. {a, a} reports "a a".
func needDistinct(kind string, tok *Split, names []string) *RepairHint {
	return &RepairHint{
		Hint:  "need distinct " + kind + ", got: " + strings.Join(names, " "),
		Token: tok,
	}
}

// Diagnose renders the three-line diagnostic block: a two-line source
// citation (omitted when hint carries no token, i.e. need-some-source)
// plus the error line.
func Diagnose(sm *SourceMap, hint *RepairHint) string {
	if hint.Token == nil {
		return hint.Error()
	}
	return sm.Cite(hint.Token) + "\n" + hint.Error()
}
