// Package csp implements a compiler and formatter for a textual notation of
// Communicating Sequential Processes, in the style of Hoare's 1985 monograph.
//
// The pipeline is a linear one: Lex splits source text into Splits and Tokens,
// Parse (the Knitter) turns a Token stream into an AST of tagged variants,
// Validate walks the AST enforcing structural invariants, and FormatCSP /
// FormatStructural turn the AST back into text.
package csp

import "fmt"

// ----------------------------------------------------------------------------
// Node

// Node is the sealed interface every AST variant implements. There is no
// dynamic dispatch beyond this: formatting and validation both walk a Node
// tree through bonds(), a uniform child-iteration protocol shared by every
// variant below.
type Node interface {
	typeName() string // the variant's name, used by the structural formatter
	bonds() []bond     // ordered children, each optionally keyed
	cspStyle() style   // formatting template used by FormatCSP
}

// bond points a parent Node down to one child, optionally under a field name.
// Aggregates (Transcript, EventSet, ...) and ProcWithArgs leave Key unset;
// the other compounds (ProcDef, Prong, ...) set it to the field name, which
// is the Go field name except for ArgotEvent's EventNode, keyed "Event".
type bond struct {
	Key     string
	HasKey  bool
	Down    Node
}

// atom is implemented by the four leaf variants that carry a single name
// and no children.
type atom interface {
	Node
	value() string
}

// style is a per-variant formatting record: a head/first/middle/last/tail
// template set. Unset fields default to: first==middle, last==middle,
// head/tail=="".
type style struct {
	Head, First, Middle, Last, Tail string
	hasHead, hasFirst, hasMiddle, hasLast, hasTail bool
}

func (s style) resolve() (head, first, middle, last, tail string) {
	if s.hasMiddle {
		middle = s.Middle
	}
	if s.hasFirst {
		first = s.First
	} else {
		first = middle
	}
	if s.hasLast {
		last = s.Last
	} else {
		last = middle
	}
	if s.hasHead {
		head = s.Head
	}
	if s.hasTail {
		tail = s.Tail
	}
	return
}

// ----------------------------------------------------------------------------
// Atoms

// Event is a lowercase-conforming identifier naming an atomic action.
type Event struct {
	Name string
	tok  *Split // provenance, for diagnostics only; never printed
}

// ProcName is an uppercase-conforming identifier naming a process.
type ProcName struct {
	Name string
	tok  *Split
}

// Alphabet is an uppercase-conforming identifier, shares its shape with
// ProcName but names the alphabet of a process (e.g. in `x : A`).
type Alphabet struct {
	Name string
	tok  *Split
}

// Arg is a free-form identifier used as a process argument.
type Arg struct {
	Name string
	tok  *Split
}

func (e Event) typeName() string    { return "Event" }
func (e Event) bonds() []bond       { return nil }
func (e Event) cspStyle() style     { return style{} }
func (e Event) value() string       { return e.Name }

func (p ProcName) typeName() string { return "ProcName" }
func (p ProcName) bonds() []bond    { return nil }
func (p ProcName) cspStyle() style  { return style{} }
func (p ProcName) value() string    { return p.Name }

func (a Alphabet) typeName() string { return "Alphabet" }
func (a Alphabet) bonds() []bond    { return nil }
func (a Alphabet) cspStyle() style  { return style{} }
func (a Alphabet) value() string    { return a.Name }

func (a Arg) typeName() string { return "Arg" }
func (a Arg) bonds() []bond    { return nil }
func (a Arg) cspStyle() style  { return style{} }
func (a Arg) value() string    { return a.Name }

// ----------------------------------------------------------------------------
// Aggregates — ordered children of one kind

// Transcript is an angle-bracketed trace: ⟨ e, e, … ⟩. Unlike EventSet,
// repeated events are meaningful and never rejected.
type Transcript struct{ Events []Event }

// EventSet is a brace-delimited set of events: { e, e, … }. Event names must
// be pairwise distinct (enforced by Validate, not by the parser).
type EventSet struct{ Events []Event }

// ArgList is a parenthesised, comma-separated list of process arguments.
type ArgList struct{ Args []Arg }

// ArgotNames is one or more argots (αP forms) separated by '='.
type ArgotNames struct{ Argots []Argot }

// Prolog is one or more Steps separated by '→', the prefix leading to an
// epilog process.
type Prolog struct{ Steps []Node }

// Fork is a choice between Prongs separated by '|'; the first-step event of
// each prong must be pairwise distinct (enforced by Validate).
type Fork struct{ Prongs []Prong }

// Sentence is one or more Terms separated by '=', the root production.
type Sentence struct{ Terms []Node }

func (t Transcript) typeName() string { return "Transcript" }
func (t Transcript) cspStyle() style {
	return style{Head: "⟨", hasHead: true, First: "{}", hasFirst: true, Middle: ", {}", hasMiddle: true, Tail: "⟩", hasTail: true}
}
func (t Transcript) bonds() []bond {
	bonds := make([]bond, len(t.Events))
	for i, e := range t.Events {
		bonds[i] = bond{Down: e}
	}
	return bonds
}

func (e EventSet) typeName() string { return "EventSet" }
func (e EventSet) cspStyle() style {
	return style{Head: "{", hasHead: true, First: "{}", hasFirst: true, Middle: ", {}", hasMiddle: true, Tail: "}", hasTail: true}
}
func (e EventSet) bonds() []bond {
	bonds := make([]bond, len(e.Events))
	for i, ev := range e.Events {
		bonds[i] = bond{Down: ev}
	}
	return bonds
}

func (a ArgList) typeName() string { return "ArgList" }
func (a ArgList) cspStyle() style {
	return style{Head: "(", hasHead: true, First: "{}", hasFirst: true, Middle: ", {}", hasMiddle: true, Tail: ")", hasTail: true}
}
func (a ArgList) bonds() []bond {
	bonds := make([]bond, len(a.Args))
	for i, ar := range a.Args {
		bonds[i] = bond{Down: ar}
	}
	return bonds
}

func (a ArgotNames) typeName() string { return "ArgotNames" }
func (a ArgotNames) cspStyle() style {
	return style{First: "{}", hasFirst: true, Middle: " = {}", hasMiddle: true}
}
func (a ArgotNames) bonds() []bond {
	bonds := make([]bond, len(a.Argots))
	for i, ag := range a.Argots {
		bonds[i] = bond{Down: ag}
	}
	return bonds
}

func (p Prolog) typeName() string { return "Prolog" }
func (p Prolog) cspStyle() style {
	return style{First: "{}", hasFirst: true, Middle: " → {}", hasMiddle: true}
}
func (p Prolog) bonds() []bond {
	bonds := make([]bond, len(p.Steps))
	for i, s := range p.Steps {
		bonds[i] = bond{Down: s}
	}
	return bonds
}

// firstStepEvent returns the event name that guards this Prolog (the event
// of its first step, unwrapping an ArgotEvent if needed) — used by Validate
// to check Fork's distinct-guard-name invariant.
func (p Prolog) firstStepEvent() Event {
	return stepEvent(p.Steps[0])
}

func stepEvent(n Node) Event {
	switch v := n.(type) {
	case Event:
		return v
	case ArgotEvent:
		return v.EventNode
	default:
		panic(fmt.Sprintf("csp: unexpected step node %T", n))
	}
}

func (f Fork) typeName() string { return "Fork" }
func (f Fork) cspStyle() style {
	return style{First: "{}", hasFirst: true, Middle: " | {}", hasMiddle: true}
}
func (f Fork) bonds() []bond {
	bonds := make([]bond, len(f.Prongs))
	for i, pr := range f.Prongs {
		bonds[i] = bond{Down: pr}
	}
	return bonds
}

// menu returns the pairwise first-step guard events across the fork's
// prongs, in order, for Validate's distinct-guard-names check.
func (f Fork) menu() []Event {
	events := make([]Event, len(f.Prongs))
	for i, pr := range f.Prongs {
		events[i] = prologOf(pr.Prolog).firstStepEvent()
	}
	return events
}

func prologOf(n Node) Prolog {
	if p, ok := n.(Prolog); ok {
		return p
	}
	return Prolog{Steps: []Node{n}}
}

func (s Sentence) typeName() string { return "Sentence" }
func (s Sentence) cspStyle() style {
	return style{First: "{}", hasFirst: true, Middle: " = {}", hasMiddle: true}
}
func (s Sentence) bonds() []bond {
	bonds := make([]bond, len(s.Terms))
	for i, t := range s.Terms {
		bonds[i] = bond{Down: t}
	}
	return bonds
}

// ----------------------------------------------------------------------------
// Compounds — fixed-arity keyed children

// ProcWithOne is a process indexed by a single argument: P*x.
type ProcWithOne struct {
	Proc ProcName
	Arg  Arg
}

// ProcWithArgs is a process applied to an explicit argument list: P(a, b).
type ProcWithArgs struct {
	Proc ProcName
	Args []Arg
}

// Argot names the alphabet of a process body: αP.
type Argot struct{ Body Node }

// ArgotDef equates one or more argots to an explicit event set.
type ArgotDef struct {
	Names    Node
	EventSet EventSet
}

// ArgotEvent is a step that also names the world an event is drawn from:
// x : A.
type ArgotEvent struct {
	EventNode Event
	World     Node
}

// Prong is one branch of a Fork: a Prolog leading into an Epilog.
type Prong struct {
	Prolog Node
	Epilog Node
}

// ProcDef binds a process name to a body: P = B.
type ProcDef struct {
	Proc Node
	Body Node
}

// SharpBody is a recursive process with an explicit alphabet: μ X : W • B.
type SharpBody struct {
	Proc  ProcName
	World Node
	Basic Node
}

// FuzzyBody is a recursive process without an explicit alphabet: μ X • B.
type FuzzyBody struct {
	Proc  ProcName
	Basic Node
}

// Pocket is a parenthesised subexpression: ( ... ).
type Pocket struct{ Inner Node }

func (p ProcWithOne) typeName() string { return "ProcWithOne" }
func (p ProcWithOne) cspStyle() style {
	return style{First: "{}", hasFirst: true, Middle: "*{}", hasMiddle: true}
}
func (p ProcWithOne) bonds() []bond {
	return []bond{{Key: "Proc", HasKey: true, Down: p.Proc}, {Key: "Arg", HasKey: true, Down: p.Arg}}
}

func (p ProcWithArgs) typeName() string { return "ProcWithArgs" }
func (p ProcWithArgs) cspStyle() style {
	return style{First: "{}(", hasFirst: true, Middle: "{}, ", hasMiddle: true, Last: "{}", hasLast: true, Tail: ")", hasTail: true}
}
func (p ProcWithArgs) bonds() []bond {
	bonds := make([]bond, 0, len(p.Args)+1)
	bonds = append(bonds, bond{Down: p.Proc})
	for _, a := range p.Args {
		bonds = append(bonds, bond{Down: a})
	}
	return bonds
}

func (a Argot) typeName() string { return "Argot" }
func (a Argot) cspStyle() style {
	return style{First: "α{}", hasFirst: true}
}
func (a Argot) bonds() []bond { return []bond{{Key: "Body", HasKey: true, Down: a.Body}} }

func (a ArgotDef) typeName() string { return "ArgotDef" }
func (a ArgotDef) cspStyle() style {
	return style{First: "{}", hasFirst: true, Last: " = {}", hasLast: true}
}
func (a ArgotDef) bonds() []bond {
	return []bond{{Key: "Names", HasKey: true, Down: a.Names}, {Key: "EventSet", HasKey: true, Down: a.EventSet}}
}

func (a ArgotEvent) typeName() string { return "ArgotEvent" }
func (a ArgotEvent) cspStyle() style {
	return style{First: "{}", hasFirst: true, Last: ":{}", hasLast: true}
}
func (a ArgotEvent) bonds() []bond {
	return []bond{{Key: "Event", HasKey: true, Down: a.EventNode}, {Key: "World", HasKey: true, Down: a.World}}
}

func (p Prong) typeName() string { return "Prong" }
func (p Prong) cspStyle() style {
	return style{First: "{}", hasFirst: true, Last: " → {}", hasLast: true}
}
func (p Prong) bonds() []bond {
	return []bond{{Key: "Prolog", HasKey: true, Down: p.Prolog}, {Key: "Epilog", HasKey: true, Down: p.Epilog}}
}

func (p ProcDef) typeName() string { return "ProcDef" }
func (p ProcDef) cspStyle() style {
	return style{First: "{}", hasFirst: true, Last: " = {}", hasLast: true}
}
func (p ProcDef) bonds() []bond {
	return []bond{{Key: "Proc", HasKey: true, Down: p.Proc}, {Key: "Body", HasKey: true, Down: p.Body}}
}

func (s SharpBody) typeName() string { return "SharpBody" }
func (s SharpBody) cspStyle() style {
	return style{First: "μ {}", hasFirst: true, Middle: " : {}", hasMiddle: true, Last: " • {}", hasLast: true}
}
func (s SharpBody) bonds() []bond {
	return []bond{
		{Key: "Proc", HasKey: true, Down: s.Proc},
		{Key: "World", HasKey: true, Down: s.World},
		{Key: "Basic", HasKey: true, Down: s.Basic},
	}
}

func (f FuzzyBody) typeName() string { return "FuzzyBody" }
func (f FuzzyBody) cspStyle() style {
	return style{First: "μ {}", hasFirst: true, Last: " • {}", hasLast: true}
}
func (f FuzzyBody) bonds() []bond {
	return []bond{{Key: "Proc", HasKey: true, Down: f.Proc}, {Key: "Basic", HasKey: true, Down: f.Basic}}
}

func (p Pocket) typeName() string { return "Pocket" }
func (p Pocket) cspStyle() style {
	return style{Head: "(", hasHead: true, Middle: "{}", hasMiddle: true, Tail: ")", hasTail: true}
}
func (p Pocket) bonds() []bond { return []bond{{Key: "Inner", HasKey: true, Down: p.Inner}} }

// ----------------------------------------------------------------------------
// foldSingle

// foldSingle implements single-element folding: a Prolog/Fork/ArgotNames/
// Sentence of exactly one child collapses to that child, unwrapped. wrap
// is called only when there are 2+ items.
func foldSingle(items []Node, wrap func([]Node) Node) Node {
	if len(items) == 1 {
		return items[0]
	}
	return wrap(items)
}

// foldSingleT is foldSingle specialised to a concrete element type, for
// aggregates (Fork's Prongs, ArgotNames's Argots) whose slice isn't
// already []Node.
func foldSingleT[T Node](items []T, wrap func([]T) Node) Node {
	if len(items) == 1 {
		return items[0]
	}
	return wrap(items)
}
