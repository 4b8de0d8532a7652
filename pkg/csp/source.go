package csp

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ----------------------------------------------------------------------------
// Splits and the Source Map

// Kind tags a Split with the lexical class its chars matched.
type Kind int

const (
	KindBlanks Kind = iota
	KindComment
	KindMark
	KindName
	KindFreak
	KindLineSep // synthetic: stands in for the newline dropped by line-splitting
)

func (k Kind) String() string {
	switch k {
	case KindBlanks:
		return "blanks"
	case KindComment:
		return "comment"
	case KindMark:
		return "mark"
	case KindName:
		return "name"
	case KindFreak:
		return "freak"
	case KindLineSep:
		return "linesep"
	default:
		return "unknown"
	}
}

// Split is an immutable (kind, chars) fragment of source, remembering where
// it came from so Diagnostics can cite it later.
type Split struct {
	Kind  Kind
	Chars string
	Line  int // 1-based
	Col   int // 0-based, counted in runes from the start of the line
}

func (s *Split) String() string { return s.Chars }

// IsMark reports whether this Split is a mark equal to chars.
func (s *Split) IsMark(chars string) bool {
	return s.Kind == KindMark && s.Chars == chars
}

// Token is the subsequence of Splits the parser actually sees: marks,
// names, and freaks. Blanks, comments, and the synthetic line separator are
// stripped. A Token carries its originating Split by being that Split.
type Token = *Split

// marks is the fixed vocabulary of single-char marks recognised by the
// lexer.
var marks = map[rune]bool{
	'(': true, ')': true, '*': true, ',': true, ':': true, '=': true,
	'{': true, '|': true, '}': true,
	'α': true, 'μ': true, '•': true, '→': true, '⟨': true, '⟩': true,
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isNameCont(r rune) bool {
	return isNameStart(r) || r == '.' || (r >= '0' && r <= '9')
}

// SourceMap holds the original text, the per-line fragment lists, and a
// freak-warning set scoped to this one SourceMap, never process-global.
type SourceMap struct {
	Text       string
	LineText   []string // line N's original chars (1-based via index N-1), without trailing "\n"
	LineSplits [][]*Split
	Warnings   []string // one per distinct freak char, first-occurrence order

	seenFreaks map[string]bool
}

// Lex splits source text into a SourceMap and the Token subsequence. It
// never fails: an empty or all-blank input simply yields zero tokens, and
// "need some source" is raised later, by the parser.
func Lex(text string) (*SourceMap, []Token) {
	sm := &SourceMap{Text: text, seenFreaks: map[string]bool{}}

	lines := splitLines(text)
	tokens := make([]Token, 0, len(text)/4)

	for i, line := range lines {
		lineNo := i + 1
		sm.LineText = append(sm.LineText, line)

		splits := splitLine(line, lineNo)
		sm.LineSplits = append(sm.LineSplits, splits)

		for _, sp := range splits {
			if sp.Kind == KindBlanks || sp.Kind == KindComment || sp.Kind == KindLineSep {
				continue
			}
			tokens = append(tokens, sp)

			if sp.Kind == KindFreak {
				sm.warnFreak(sp)
			}
		}
	}

	sm.assertFaithful()
	return sm, tokens
}

// splitLines normalises "\r\n" to "\n" and returns the text's logical lines,
// each without its trailing newline; splitLine appends one synthetic
// KindLineSep Split per line to stand in for the newline this strips off.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// splitLine tokenises one logical line (without its newline) into Splits,
// then appends the synthetic KindLineSep standing in for the "\n" that line-
// splitting removed, so the per-line faithfulness invariant still holds.
func splitLine(line string, lineNo int) []*Split {
	runes := []rune(line)
	var splits []*Split

	i := 0
	for i < len(runes) {
		r := runes[i]
		start := i

		switch {
		case r == ' ' || r == '\t':
			for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t') {
				i++
			}
			splits = append(splits, &Split{Kind: KindBlanks, Chars: string(runes[start:i]), Line: lineNo, Col: start})

		case r == '#':
			i = len(runes)
			splits = append(splits, &Split{Kind: KindComment, Chars: string(runes[start:i]), Line: lineNo, Col: start})

		case marks[r]:
			i++
			splits = append(splits, &Split{Kind: KindMark, Chars: string(r), Line: lineNo, Col: start})

		case isNameStart(r):
			i++
			for i < len(runes) && isNameCont(runes[i]) {
				i++
			}
			splits = append(splits, &Split{Kind: KindName, Chars: string(runes[start:i]), Line: lineNo, Col: start})

		default:
			i++
			splits = append(splits, &Split{Kind: KindFreak, Chars: string(r), Line: lineNo, Col: start})
		}
	}

	splits = append(splits, &Split{Kind: KindLineSep, Chars: "\n", Line: lineNo, Col: len(runes)})
	return splits
}

func (sm *SourceMap) warnFreak(sp *Split) {
	key := sp.Chars
	if sm.seenFreaks[key] {
		return
	}
	sm.seenFreaks[key] = true
	sm.Warnings = append(sm.Warnings, formatFreak(key))
}

// formatFreak renders a single anomalous char as a \x or \u escape
// alongside the Go-quoted rune.
func formatFreak(ch string) string {
	r, _ := utf8.DecodeRuneInString(ch)
	q := strconv.QuoteRune(r)
	if r <= 0xFF {
		return "\\x" + strconv.FormatInt(int64(r), 16) + " " + q
	}
	return "\\u" + strconv.FormatInt(int64(r), 16) + " " + q
}

// assertFaithful checks the lexer's faithfulness invariant: for every
// line, the concatenation of all of its Splits' chars equals the original
// line (plus the trailing newline the synthetic linesep stands in for).
// A violation means the lexer itself has a bug, not a user source error —
// it panics rather than returning an error.
func (sm *SourceMap) assertFaithful() {
	for i, line := range sm.LineText {
		var b strings.Builder
		for _, sp := range sm.LineSplits[i] {
			b.WriteString(sp.Chars)
		}
		if b.String() != line+"\n" {
			panic("csp: lexer dropped chars on line " + strconv.Itoa(i+1))
		}
	}
}

// ----------------------------------------------------------------------------
// Name classification

// classifyName reports whether name is an uppercase-conforming identifier
// (every alphabetic rune upper, at least one alphabetic rune present), a
// lowercase-conforming one, or neither (ambiguous, Arg-only).
func classifyName(name string) (upper, lower bool) {
	sawAlpha := false
	allUpper := true
	allLower := true

	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			sawAlpha = true
			allLower = false
		} else if r >= 'a' && r <= 'z' {
			sawAlpha = true
			allUpper = false
		}
		// digits, '_', '.' impose no case constraint either way
	}

	if !sawAlpha {
		return false, false
	}
	return allUpper, allLower
}

func isUpperName(name string) bool {
	upper, _ := classifyName(name)
	return upper
}

func isLowerName(name string) bool {
	_, lower := classifyName(name)
	return lower
}

// ----------------------------------------------------------------------------
// Citation

// Cite formats a two-line source citation for tok: the 1-based line number
// and original line text, then a caret line aligned to tok's starting
// column with a caret run as wide as tok's char count (minimum 1).
func (sm *SourceMap) Cite(tok Token) string {
	prefix := strconv.Itoa(tok.Line) + ":"
	lineText := sm.LineText[tok.Line-1]

	width := utf8.RuneCountInString(tok.Chars)
	if width < 1 {
		width = 1
	}

	pad := strings.Repeat(" ", len(prefix)-1+tok.Col)
	caretLine := "." + pad + strings.Repeat("^", width)

	return prefix + lineText + "\n" + caretLine
}

// Balance walks the Token stream pairing opening marks "( [ { ⟨" against
// closing marks ") ] } ⟩" ("[" and "]" lex as freaks, not marks) and
// reports the extra opening marks left unclosed and the extra closing marks
// given without a matching opener. Both are empty for balanced input.
func Balance(tokens []Token) (opened, closed string) {
	const openingMarks = "([{⟨"
	const closingMarks = ")]}⟩"

	var openStack []rune
	for _, tok := range tokens {
		if tok.Kind != KindMark && tok.Kind != KindFreak {
			continue
		}
		r, _ := utf8.DecodeRuneInString(tok.Chars)

		if idx := strings.IndexRune(openingMarks, r); idx >= 0 {
			openStack = append(openStack, rune(closingMarks[idx]))
			continue
		}
		if strings.ContainsRune(closingMarks, r) {
			if len(openStack) > 0 && openStack[len(openStack)-1] == r {
				openStack = openStack[:len(openStack)-1]
			} else {
				closed += string(r)
			}
		}
	}

	for _, r := range openStack {
		idx := strings.IndexRune(closingMarks, r)
		opened += string(openingMarks[idx])
	}
	return opened, closed
}
