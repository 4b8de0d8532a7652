package csp

import (
	"fmt"
	"io"
	"os"
)

// debugKnitting: set CSPKNIT_DEBUG to trace backtracking decisions to
// stderr.
var debugKnitting = os.Getenv("CSPKNIT_DEBUG") != ""

func debugf(format string, args ...any) {
	if debugKnitting {
		fmt.Fprintf(os.Stderr, "cspknit: "+format+"\n", args...)
	}
}

// Knitter is the parser: it wraps an io.Reader and exposes a single
// Parse() entrypoint, plus a FromSource/FromTokens split so each half of
// the pipeline can be driven and tested independently.
type Knitter struct {
	reader io.Reader
}

func NewKnitter(r io.Reader) Knitter {
	return Knitter{reader: r}
}

// FromSource lexes raw bytes into a SourceMap and Token stream.
func (Knitter) FromSource(data []byte) (*SourceMap, []Token) {
	return Lex(string(data))
}

// FromTokens knits a Token stream into an AST root.
func (Knitter) FromTokens(tokens []Token) (Node, error) {
	return Parse(tokens)
}

// Parse reads the Knitter's source in full, lexes it, and knits it.
func (k Knitter) Parse() (Node, error) {
	data, err := io.ReadAll(k.reader)
	if err != nil {
		return nil, fmt.Errorf("csp: reading source: %w", err)
	}
	_, tokens := k.FromSource(data)
	return k.FromTokens(tokens)
}

// Parse knits a Token stream into an AST root, or returns a *RepairHint.
func Parse(tokens []Token) (Node, error) {
	if len(tokens) == 0 {
		return nil, needSomeSource()
	}
	p := &parser{k: newKnittable(tokens)}
	root, err := p.parseSentence()
	if err != nil {
		return nil, err
	}
	if !p.k.atEnd() {
		return nil, needAStrongerKnitter(p.k.peek())
	}
	return root, nil
}

// parser holds the recursive-descent grammar over a knittable token
// cursor. Every production method returns (node, matched,
// err): err is non-nil only for a genuine repair hint — a production that
// committed past its distinguishing lookahead and then failed to complete.
// A production that simply doesn't apply here returns (nil, false, nil)
// having rolled its cursor back to where it started.
type parser struct {
	k *knittable
}

// citeToken picks the token to blame for a failure at the current cursor:
// the token under the cursor, or the last token in the stream if the
// cursor has run off the end.
func (p *parser) citeToken() *Split {
	if !p.k.atEnd() {
		return p.k.peek()
	}
	if n := len(p.k.tokens); n > 0 {
		return p.k.tokens[n-1]
	}
	return nil
}

func (p *parser) knitFailure() error {
	if p.k.atEnd() {
		return needMoreSourceToKnit(p.citeToken())
	}
	return needAStrongerKnitter(p.citeToken())
}

// parseCommaList knits `[ X {',' X} [','] ]` — zero or more X separated by
// commas, with an optional trailing comma before closeMark; zero items is
// a valid, empty result. The aggregation itself never raises;
// a comma not followed by another X or by closeMark is left unconsumed for
// the caller to complain about.
func parseCommaList[T Node](p *parser, closeMark string, parseOne func() (T, bool)) []T {
	first, ok := parseOne()
	if !ok {
		return nil
	}
	items := []T{first}
	for p.k.atMark(",") {
		p.k.takeCheckpoint()
		p.k.advance()
		if p.k.atMark(closeMark) {
			p.k.commitCheckpoint()
			break
		}
		next, ok := parseOne()
		if !ok {
			p.k.rollbackCheckpoint()
			break
		}
		p.k.commitCheckpoint()
		items = append(items, next)
	}
	return items
}

// ----------------------------------------------------------------------------
// csp = sentence ; sentence = term {'=' term}

func (p *parser) parseSentence() (Node, error) {
	first, ok, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.knitFailure()
	}
	terms := []Node{first}
	for p.k.atMark("=") {
		p.k.takeCheckpoint()
		p.k.advance()
		next, ok, err := p.parseTerm()
		if err != nil {
			p.k.commitCheckpoint()
			return nil, err
		}
		if !ok {
			p.k.rollbackCheckpoint()
			break
		}
		p.k.commitCheckpoint()
		terms = append(terms, next)
	}
	return foldSingle(terms, func(items []Node) Node { return Sentence{Terms: items} }), nil
}

// term = transcript | event_set | proc_def | argot_def | pocketable | step | argot
func (p *parser) parseTerm() (Node, bool, error) {
	if n, ok, err := p.parseTranscript(); ok || err != nil {
		return n, ok, err
	}
	if n, ok, err := p.parseEventSet(); ok || err != nil {
		return n, ok, err
	}
	if n, ok, err := p.parseProcDef(); ok || err != nil {
		return n, ok, err
	}
	if n, ok, err := p.parseArgotDef(); ok || err != nil {
		return n, ok, err
	}
	if n, ok, err := p.parsePocketable(); ok || err != nil {
		return n, ok, err
	}
	if n, ok, err := p.parseStep(); ok || err != nil {
		return n, ok, err
	}
	return p.parseArgot()
}

// ----------------------------------------------------------------------------
// transcript = '⟨' [ event {',' event} [','] ] '⟩'

func (p *parser) parseTranscript() (Node, bool, error) {
	if !p.k.atMark("⟨") {
		return nil, false, nil
	}
	p.k.advance()
	events := parseCommaList(p, "⟩", p.parseEvent)
	if !p.k.atMark("⟩") {
		return nil, false, p.knitFailure()
	}
	p.k.advance()
	return Transcript{Events: events}, true, nil
}

// event_set = '{' [ event {',' event} [','] ] '}'

func (p *parser) parseEventSet() (Node, bool, error) {
	if !p.k.atMark("{") {
		return nil, false, nil
	}
	p.k.advance()
	events := parseCommaList(p, "}", p.parseEvent)
	if !p.k.atMark("}") {
		return nil, false, p.knitFailure()
	}
	p.k.advance()
	return EventSet{Events: events}, true, nil
}

// ----------------------------------------------------------------------------
// proc_def = PROC '=' proc_body

func (p *parser) parseProcDef() (Node, bool, error) {
	p.k.takeCheckpoint()
	name, ok, err := p.parseProc()
	if err != nil {
		p.k.commitCheckpoint()
		return nil, false, err
	}
	if !ok || !p.k.atMark("=") {
		p.k.rollbackCheckpoint()
		return nil, false, nil
	}
	p.k.advance()
	body, ok, err := p.parseProcBody()
	if err != nil {
		p.k.commitCheckpoint()
		return nil, false, err
	}
	if !ok {
		err := p.knitFailure()
		p.k.commitCheckpoint()
		return nil, false, err
	}
	p.k.commitCheckpoint()
	return ProcDef{Proc: name, Body: body}, true, nil
}

// proc_body = sharp_body | fuzzy_body | fork | basic_body

func (p *parser) parseProcBody() (Node, bool, error) {
	if n, ok, err := p.parseMuBody(); ok || err != nil {
		return n, ok, err
	}
	if n, ok, err := p.parseFork(); ok || err != nil {
		return n, ok, err
	}
	return p.parseProcOrPocket()
}

// parseMuBody covers both sharp_body ('μ' PROC ':' world '•' basic_body)
// and fuzzy_body ('μ' PROC '•' basic_body) — they share the 'μ' PROC
// prefix and diverge only on whether a ':' world follows.
func (p *parser) parseMuBody() (Node, bool, error) {
	if !p.k.atMark("μ") {
		return nil, false, nil
	}
	p.k.advance()
	proc, ok := p.parseProcName()
	if !ok {
		return nil, false, p.knitFailure()
	}

	var world Node
	if p.k.atMark(":") {
		p.k.advance()
		w, ok, err := p.parseWorld()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, p.knitFailure()
		}
		world = w
		if !p.k.atMark("•") {
			return nil, false, p.knitFailure()
		}
		p.k.advance()
	} else if p.k.atMark("•") {
		p.k.advance()
	} else {
		return nil, false, p.knitFailure()
	}

	basic, ok, err := p.parseBasicBody()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, p.knitFailure()
	}
	if world != nil {
		return SharpBody{Proc: proc, World: world, Basic: basic}, true, nil
	}
	return FuzzyBody{Proc: proc, Basic: basic}, true, nil
}

// basic_body = PROC | pocket ; epilog = PROC | pocket (identical alternatives)

func (p *parser) parseBasicBody() (Node, bool, error) { return p.parseProcOrPocket() }

func (p *parser) parseProcOrPocket() (Node, bool, error) {
	if n, ok, err := p.parseProc(); ok || err != nil {
		return n, ok, err
	}
	return p.parsePocket()
}

// PROC = proc_with_args | proc_with_one | proc_name

func (p *parser) parseProc() (Node, bool, error) {
	p.k.takeCheckpoint()
	name, ok := p.parseProcName()
	if !ok {
		p.k.rollbackCheckpoint()
		return nil, false, nil
	}
	switch {
	case p.k.atMark("("):
		p.k.advance()
		args := parseCommaList(p, ")", p.parseArg)
		if !p.k.atMark(")") {
			err := p.knitFailure()
			p.k.commitCheckpoint()
			return nil, false, err
		}
		p.k.advance()
		p.k.commitCheckpoint()
		return ProcWithArgs{Proc: name, Args: args}, true, nil

	case p.k.atMark("*"):
		p.k.advance()
		arg, ok := p.parseArg()
		if !ok {
			err := p.knitFailure()
			p.k.commitCheckpoint()
			return nil, false, err
		}
		p.k.commitCheckpoint()
		return ProcWithOne{Proc: name, Arg: arg}, true, nil

	default:
		p.k.commitCheckpoint()
		return name, true, nil
	}
}

// ----------------------------------------------------------------------------
// argot_def = argot_names '=' event_set

func (p *parser) parseArgotDef() (Node, bool, error) {
	p.k.takeCheckpoint()
	names, ok, err := p.parseArgotNames()
	if err != nil {
		p.k.commitCheckpoint()
		return nil, false, err
	}
	if !ok || !p.k.atMark("=") {
		p.k.rollbackCheckpoint()
		return nil, false, nil
	}
	p.k.advance()
	evset, ok, err := p.parseEventSet()
	if err != nil {
		p.k.commitCheckpoint()
		return nil, false, err
	}
	if !ok {
		err := p.knitFailure()
		p.k.commitCheckpoint()
		return nil, false, err
	}
	p.k.commitCheckpoint()
	return ArgotDef{Names: names, EventSet: evset.(EventSet)}, true, nil
}

// argot_names = argot {'=' argot}

func (p *parser) parseArgotNames() (Node, bool, error) {
	first, ok, err := p.parseArgot()
	if err != nil || !ok {
		return nil, ok, err
	}
	argots := []Argot{first.(Argot)}
	for p.k.atMark("=") {
		p.k.takeCheckpoint()
		p.k.advance()
		next, ok, err := p.parseArgot()
		if err != nil {
			p.k.commitCheckpoint()
			return nil, false, err
		}
		if !ok {
			p.k.rollbackCheckpoint()
			break
		}
		p.k.commitCheckpoint()
		argots = append(argots, next.(Argot))
	}
	return foldSingleT(argots, func(items []Argot) Node { return ArgotNames{Argots: items} }), true, nil
}

// argot = 'α' proc_body

func (p *parser) parseArgot() (Node, bool, error) {
	if !p.k.atMark("α") {
		return nil, false, nil
	}
	p.k.advance()
	body, ok, err := p.parseProcBody()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, p.knitFailure()
	}
	return Argot{Body: body}, true, nil
}

// world = event_set | argot | alphabet

func (p *parser) parseWorld() (Node, bool, error) {
	if n, ok, err := p.parseEventSet(); ok || err != nil {
		return n, ok, err
	}
	if n, ok, err := p.parseArgot(); ok || err != nil {
		return n, ok, err
	}
	if alpha, ok := p.parseAlphabet(); ok {
		return alpha, true, nil
	}
	return nil, false, nil
}

// argot_event = event ':' world

func (p *parser) parseArgotEvent() (Node, bool, error) {
	p.k.takeCheckpoint()
	ev, ok := p.parseEvent()
	if !ok || !p.k.atMark(":") {
		p.k.rollbackCheckpoint()
		return nil, false, nil
	}
	p.k.advance()
	world, ok, err := p.parseWorld()
	if err != nil {
		p.k.commitCheckpoint()
		return nil, false, err
	}
	if !ok {
		err := p.knitFailure()
		p.k.commitCheckpoint()
		return nil, false, err
	}
	p.k.commitCheckpoint()
	return ArgotEvent{EventNode: ev, World: world}, true, nil
}

// step = argot_event | event

func (p *parser) parseStep() (Node, bool, error) {
	if n, ok, err := p.parseArgotEvent(); ok || err != nil {
		return n, ok, err
	}
	if ev, ok := p.parseEvent(); ok {
		return ev, true, nil
	}
	return nil, false, nil
}

// prolog = step {'→' step}

func (p *parser) parseProlog() (Node, bool, error) {
	first, ok, err := p.parseStep()
	if err != nil || !ok {
		return nil, ok, err
	}
	steps := []Node{first}
	for p.k.atMark("→") {
		p.k.takeCheckpoint()
		p.k.advance()
		next, ok, err := p.parseStep()
		if err != nil {
			p.k.commitCheckpoint()
			return nil, false, err
		}
		if !ok {
			p.k.rollbackCheckpoint()
			break
		}
		p.k.commitCheckpoint()
		steps = append(steps, next)
	}
	return foldSingle(steps, func(items []Node) Node { return Prolog{Steps: items} }), true, nil
}

// prong = prolog '→' epilog

func (p *parser) parseProng() (Node, bool, error) {
	p.k.takeCheckpoint()
	prolog, ok, err := p.parseProlog()
	if err != nil {
		p.k.commitCheckpoint()
		return nil, false, err
	}
	if !ok || !p.k.atMark("→") {
		p.k.rollbackCheckpoint()
		return nil, false, nil
	}
	p.k.advance()
	epilog, ok, err := p.parseProcOrPocket()
	if err != nil {
		p.k.commitCheckpoint()
		return nil, false, err
	}
	if !ok {
		err := p.knitFailure()
		p.k.commitCheckpoint()
		return nil, false, err
	}
	p.k.commitCheckpoint()
	return Prong{Prolog: prolog, Epilog: epilog}, true, nil
}

// fork = prong {'|' prong}

func (p *parser) parseFork() (Node, bool, error) {
	first, ok, err := p.parseProng()
	if err != nil || !ok {
		return nil, ok, err
	}
	prongs := []Prong{first.(Prong)}
	for p.k.atMark("|") {
		p.k.takeCheckpoint()
		p.k.advance()
		next, ok, err := p.parseProng()
		if err != nil {
			p.k.commitCheckpoint()
			return nil, false, err
		}
		if !ok {
			p.k.rollbackCheckpoint()
			break
		}
		p.k.commitCheckpoint()
		prongs = append(prongs, next.(Prong))
	}
	debugf("fork: %d prong(s)", len(prongs))
	return foldSingleT(prongs, func(items []Prong) Node { return Fork{Prongs: items} }), true, nil
}

// pocketable = fork | proc_body
//
// proc_body's own alternatives (sharp_body | fuzzy_body | fork | basic_body)
// are inlined here rather than delegated to parseProcBody, so a bare PROC or
// pocket doesn't pay for two failed parseFork attempts at the same cursor.

func (p *parser) parsePocketable() (Node, bool, error) {
	if n, ok, err := p.parseMuBody(); ok || err != nil {
		return n, ok, err
	}
	if n, ok, err := p.parseFork(); ok || err != nil {
		return n, ok, err
	}
	return p.parseProcOrPocket()
}

// pocket = '(' pocketable ')'

func (p *parser) parsePocket() (Node, bool, error) {
	if !p.k.atMark("(") {
		return nil, false, nil
	}
	p.k.advance()
	inner, ok, err := p.parsePocketable()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, p.knitFailure()
	}
	if !p.k.atMark(")") {
		return nil, false, p.knitFailure()
	}
	p.k.advance()
	return Pocket{Inner: inner}, true, nil
}

// ----------------------------------------------------------------------------
// Atomic token matchers

func (p *parser) parseProcName() (ProcName, bool) {
	tok := p.k.peek()
	if tok == nil || tok.Kind != KindName || !isUpperName(tok.Chars) {
		return ProcName{}, false
	}
	p.k.advance()
	return ProcName{Name: tok.Chars, tok: tok}, true
}

func (p *parser) parseAlphabet() (Alphabet, bool) {
	tok := p.k.peek()
	if tok == nil || tok.Kind != KindName || !isUpperName(tok.Chars) {
		return Alphabet{}, false
	}
	p.k.advance()
	return Alphabet{Name: tok.Chars, tok: tok}, true
}

func (p *parser) parseEvent() (Event, bool) {
	tok := p.k.peek()
	if tok == nil || tok.Kind != KindName || !isLowerName(tok.Chars) {
		return Event{}, false
	}
	p.k.advance()
	return Event{Name: tok.Chars, tok: tok}, true
}

// parseArg accepts any identifier-shaped name token — upper, lower, or
// ambiguous case alike — since a call argument is not itself a process or
// event name.
func (p *parser) parseArg() (Arg, bool) {
	tok := p.k.peek()
	if tok == nil || tok.Kind != KindName {
		return Arg{}, false
	}
	p.k.advance()
	return Arg{Name: tok.Chars, tok: tok}, true
}
