package csp

import (
	"strconv"
	"strings"
)

// FormatCSP renders ast back to canonical CSP source text. On well-formed
// input this round-trips: FormatCSP(Parse(Lex(t))) == t modulo whitespace.
func FormatCSP(ast Node) string {
	return formatCSPNode(ast)
}

func formatCSPNode(n Node) string {
	if a, ok := n.(atom); ok {
		return a.value()
	}

	st := n.cspStyle()
	head, first, middle, last, tail := st.resolve()
	bonds := n.bonds()

	var b strings.Builder
	b.WriteString(head)
	for i, bd := range bonds {
		child := formatCSPNode(bd.Down)
		template := middle
		switch {
		case i == 0:
			template = first
		case i == len(bonds)-1:
			template = last
		}
		b.WriteString(strings.Replace(template, "{}", child, 1))
	}
	b.WriteString(tail)
	return b.String()
}

// structuralWidth is the line-length threshold past which FormatStructural
// breaks a node's children onto indented continuation lines.
const structuralWidth = 80

// FormatStructural renders ast as a Lisp-style structural dump:
// VariantName(field=child, ...), wrapping children onto 4-space-indented
// continuation lines once a node's one-line form, plus 4 spaces per level of
// depth, would exceed structuralWidth; the "field=" prefix in front of a
// child is not counted in that test. Atoms print their name in quotes.
func FormatStructural(ast Node) string {
	return formatStructuralNode(ast, 0)
}

func formatStructuralNode(n Node, depth int) string {
	if a, ok := n.(atom); ok {
		return strconv.Quote(a.value())
	}

	bonds := n.bonds()
	parts := make([]string, len(bonds))
	for i, bd := range bonds {
		child := formatStructuralNode(bd.Down, depth+1)
		if bd.HasKey {
			parts[i] = bd.Key + "=" + child
		} else {
			parts[i] = child
		}
	}

	oneLine := n.typeName() + "(" + strings.Join(parts, ", ") + ")"
	if len(parts) == 0 || depth*4+len(oneLine) <= structuralWidth {
		return oneLine
	}

	childPad := strings.Repeat(" ", (depth+1)*4)
	closePad := strings.Repeat(" ", depth*4)
	return n.typeName() + "(\n" + childPad + strings.Join(parts, ",\n"+childPad) + "\n" + closePad + ")"
}
