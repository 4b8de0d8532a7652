package csp

// Validate walks ast bottom-up, checking every structural invariant (no
// duplicate names within one event set, guard list, or argot-name chain),
// and returns the first *RepairHint it finds, as a plain error.
func Validate(ast Node) error {
	return validateNode(ast)
}

func validateNode(n Node) error {
	for _, b := range n.bonds() {
		if err := validateNode(b.Down); err != nil {
			return err
		}
	}

	switch v := n.(type) {
	case EventSet:
		return checkDistinct(eventTokens(v.Events), "event names")

	case Fork:
		return checkDistinct(eventTokens(v.menu()), "guard names")

	case ArgotDef:
		return checkDistinct(argotBodyTokens(argotNamesOf(v.Names)), "argot names")
	}

	return nil
}

type nameTok struct {
	name string
	tok  *Split
}

func eventTokens(events []Event) []nameTok {
	items := make([]nameTok, len(events))
	for i, e := range events {
		items[i] = nameTok{e.Name, e.tok}
	}
	return items
}

func argotNamesOf(n Node) []Argot {
	switch v := n.(type) {
	case ArgotNames:
		return v.Argots
	case Argot:
		return []Argot{v}
	default:
		return nil
	}
}

// argotBodyTokens extracts the process name an argot's body names, for the
// ArgotNames/ArgotDef "pairwise distinct process-body-names" invariant.
// Argots whose body has no single representative name (a bare Fork, say)
// are skipped — they have nothing to collide on.
func argotBodyTokens(argots []Argot) []nameTok {
	items := make([]nameTok, 0, len(argots))
	for _, ag := range argots {
		name, tok := argotBodyName(ag.Body)
		if name == "" {
			continue
		}
		items = append(items, nameTok{name, tok})
	}
	return items
}

func argotBodyName(n Node) (string, *Split) {
	switch v := n.(type) {
	case ProcName:
		return v.Name, v.tok
	case ProcWithArgs:
		return v.Proc.Name, v.Proc.tok
	case ProcWithOne:
		return v.Proc.Name, v.Proc.tok
	case SharpBody:
		return v.Proc.Name, v.Proc.tok
	case FuzzyBody:
		return v.Proc.Name, v.Proc.tok
	case Pocket:
		return argotBodyName(v.Inner)
	default:
		return "", nil
	}
}

// checkDistinct reports every occurrence (not just the first) of any name
// that repeats in items, preserving source order, paired with the token of
// the first occurrence recognised as a repeat.
func checkDistinct(items []nameTok, kind string) error {
	counts := map[string]int{}
	for _, it := range items {
		counts[it.name]++
	}

	var names []string
	var offending *Split
	seen := map[string]bool{}
	for _, it := range items {
		if counts[it.name] <= 1 {
			continue
		}
		names = append(names, it.name)
		if offending == nil && seen[it.name] {
			offending = it.tok
		}
		seen[it.name] = true
	}

	if names == nil {
		return nil
	}
	return needDistinct(kind, offending, names)
}
