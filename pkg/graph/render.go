package graph

import (
	"fmt"
	"strings"
)

// Placeholder marks a not-yet-connected slot in partial renders.
const Placeholder = "[---]"

// Render walks the graph depth-first from each source and returns one filter
// clause per enabled node encountered, in traversal order. Clauses repeat
// when a node is reachable over several paths; FilterComplex deduplicates.
//
// In partial mode unconnected slots render as Placeholder markers and
// terminate their branch; otherwise they are configuration errors.
func Render(namer *Namer, partial bool, sources ...*Source) ([]string, error) {
	var clauses []string
	for _, src := range sources {
		for _, e := range src.Edges() {
			sub, err := renderEdge(namer, partial, e)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, sub...)
		}
	}
	return clauses, nil
}

// FilterComplex renders all sources under a single Namer and assembles the
// final graph description: duplicate clauses removed by first occurrence,
// survivors joined with ";".
func FilterComplex(namer *Namer, partial bool, sources ...*Source) (string, error) {
	clauses, err := Render(namer, partial, sources...)
	if err != nil {
		return "", err
	}

	seen := make(map[string]bool, len(clauses))
	unique := clauses[:0]
	for _, clause := range clauses {
		if seen[clause] {
			continue
		}
		seen[clause] = true
		unique = append(unique, clause)
	}
	return strings.Join(unique, ";"), nil
}

// renderEdge emits clauses for the consumer of an edge and everything
// downstream of it. Destinations terminate the branch; disabled nodes are
// skipped transparently.
func renderEdge(namer *Namer, partial bool, e *Edge) ([]string, error) {
	node, ok := e.Output().(*Node)
	if !ok {
		return nil, nil
	}

	if !node.enabled {
		next := node.outputs[0]
		if next == nil {
			if partial {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: output of disabled %s node",
				ErrNotConnected, node.filter.Name())
		}
		return renderEdge(namer, partial, next)
	}

	// Surface metadata transform errors before emitting the clause.
	if _, err := node.Meta(); err != nil {
		return nil, err
	}

	clause, err := nodeClause(namer, partial, node)
	if err != nil {
		return nil, err
	}
	clauses := []string{clause}

	for _, out := range node.outputs {
		if out == nil {
			if partial {
				continue
			}
			return nil, fmt.Errorf("%w: output of %s node", ErrNotConnected,
				node.filter.Name())
		}
		sub, err := renderEdge(namer, partial, out)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, sub...)
	}
	return clauses, nil
}

// nodeClause serializes one enabled node as
// "[in1][in2]...filtername=args[out1][out2]...".
func nodeClause(namer *Namer, partial bool, node *Node) (string, error) {
	var sb strings.Builder

	for _, in := range node.inputs {
		if in == nil {
			if !partial {
				return "", fmt.Errorf("%w: input of %s node", ErrNotConnected,
					node.filter.Name())
			}
			sb.WriteString(Placeholder)
			continue
		}
		name, err := namer.Name(in)
		if err != nil {
			return "", err
		}
		sb.WriteString("[" + name + "]")
	}

	sb.WriteString(node.filter.Name())
	if args := node.filter.Args(); args != "" {
		sb.WriteString("=" + args)
	}

	for _, out := range node.outputs {
		if out == nil {
			if !partial {
				return "", fmt.Errorf("%w: output of %s node", ErrNotConnected,
					node.filter.Name())
			}
			sb.WriteString(Placeholder)
			continue
		}
		name, err := namer.Name(out)
		if err != nil {
			return "", err
		}
		sb.WriteString("[" + name + "]")
	}
	return sb.String(), nil
}
