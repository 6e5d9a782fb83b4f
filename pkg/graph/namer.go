package graph

import (
	"fmt"
	"strconv"
)

// Namer is the naming authority assigning stable, unique textual identifiers
// to edges during one render pass. Names derive purely from graph topology
// and traversal order, so rendering an unchanged graph with a fresh Namer
// reproduces byte-identical output.
//
// One Namer serves one top-level render; concurrent renders of independent
// graphs use distinct instances.
type Namer struct {
	counters map[string]int
	names    map[*Edge]string
}

// NewNamer creates an empty Namer with fresh counters and cache.
func NewNamer() *Namer {
	return &Namer{
		counters: make(map[string]int),
		names:    make(map[*Edge]string),
	}
}

// Name computes the unique identifier of an edge, caching it by edge identity
// for the remainder of the Namer's lifetime. Disabled pass-through nodes are
// skipped transparently on both sides, so the name reflects the effective
// producer and consumer.
//
// Edges feeding a destination are named "<kind>out<n>"; edges produced by a
// filter node are named "<kind>:<filtername><n>", with a separate counter per
// prefix; edges produced directly by a source carry the source's own stable
// identifier.
func (nm *Namer) Name(e *Edge) (string, error) {
	e, err := e.Resolve()
	if err != nil {
		return "", err
	}
	if name, ok := nm.names[e]; ok {
		return name, nil
	}
	output, err := effectiveOutput(e)
	if err != nil {
		return "", err
	}

	var name string
	switch {
	case !isNode(output):
		name = nm.next(e.Kind().String() + "out")
	case isNode(e.input):
		node := e.input.(*Node)
		name = nm.next(fmt.Sprintf("%s:%s", e.Kind(), node.filter.Name()))
	default:
		name = e.input.(*Source).name
	}
	nm.names[e] = name
	return name, nil
}

// effectiveOutput follows consecutive disabled pass-through nodes downstream
// and returns the consumer actually receiving the signal.
func effectiveOutput(e *Edge) (Consumer, error) {
	for {
		node, ok := e.output.(*Node)
		if !ok || node.enabled {
			return e.output, nil
		}
		next := node.outputs[0]
		if next == nil {
			return nil, fmt.Errorf("%w: output of disabled %s node",
				ErrNotConnected, node.filter.Name())
		}
		e = next
	}
}

// next returns prefix plus the next per-prefix counter value.
func (nm *Namer) next(prefix string) string {
	index := nm.counters[prefix]
	nm.counters[prefix]++
	return prefix + strconv.Itoa(index)
}

func isNode(v any) bool {
	_, ok := v.(*Node)
	return ok
}
