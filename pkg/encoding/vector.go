package encoding

import (
	"fmt"
	"reflect"

	"github.com/just-work/fffw-sub000/pkg/filters"
	"github.com/just-work/fffw-sub000/pkg/graph"
)

// Vector is a set of parallel graph cursors ("lanes") through a multi-output
// transcode. Combinators apply one filter configuration across all lanes,
// inserting Split nodes on fan-out and cloning filters on fan-in so callers
// never wire them by hand.
type Vector []graph.Producer

// NewVector builds a vector over the given producers.
func NewVector(producers ...graph.Producer) Vector {
	return Vector(producers)
}

// destination is one lane target: either a filter node or a terminal sink.
type destination struct {
	node *graph.Node
	sink graph.Consumer
}

func (d destination) key() any {
	if d.node != nil {
		return d.node
	}
	return d.sink
}

// Connect applies one shared filter node across all lanes. Lanes whose mask
// entry is false skip the filter and carry the bare (possibly split) signal
// instead; an empty mask enables every lane.
func (v Vector) Connect(node *graph.Node, mask ...bool) (Vector, error) {
	return v.connect([]destination{{node: node}}, mask)
}

// ConnectEach applies a per-lane configured filter built by the factory from
// each parameter value. Lanes with equal parameter values share one filter
// node instance.
func (v Vector) ConnectEach(factory func(param any) *graph.Node, params []any, mask ...bool) (Vector, error) {
	dsts := make([]destination, len(params))
	for i, param := range params {
		shared := -1
		for j := 0; j < i; j++ {
			if reflect.DeepEqual(params[j], param) {
				shared = j
				break
			}
		}
		if shared >= 0 {
			dsts[i] = dsts[shared]
			continue
		}
		dsts[i] = destination{node: factory(param)}
	}
	return v.connect(dsts, mask)
}

// ConnectSinks routes each lane into a terminal sink (typically a codec).
// The returned vector carries the producers that fed the sinks.
func (v Vector) ConnectSinks(sinks []graph.Consumer, mask ...bool) (Vector, error) {
	dsts := make([]destination, len(sinks))
	for i, sink := range sinks {
		dsts[i] = destination{sink: sink}
	}
	return v.connect(dsts, mask)
}

// connect implements the lane mapping: normalize source and destination
// counts, split fanned-out sources, clone fanned-in destination filters and
// wire each (producer, destination) pair exactly once.
func (v Vector) connect(dsts []destination, mask []bool) (Vector, error) {
	srcCount, dstCount := len(v), len(dsts)
	if srcCount == 0 || dstCount == 0 {
		return nil, fmt.Errorf("%w: empty vector connect", graph.ErrArity)
	}
	lanes := srcCount
	if dstCount > lanes {
		lanes = dstCount
	}
	if (srcCount != lanes && srcCount != 1) || (dstCount != lanes && dstCount != 1) {
		return nil, fmt.Errorf("%w: %d sources to %d destinations",
			graph.ErrArity, srcCount, dstCount)
	}
	if mask == nil {
		mask = make([]bool, lanes)
		for i := range mask {
			mask[i] = true
		}
	}
	if len(mask) != lanes {
		return nil, fmt.Errorf("%w: mask of %d entries for %d lanes",
			graph.ErrArity, len(mask), lanes)
	}

	srcAt := func(lane int) graph.Producer {
		if srcCount == 1 {
			return v[0]
		}
		return v[lane]
	}
	dstAt := func(lane int) destination {
		if dstCount == 1 {
			return dsts[0]
		}
		return dsts[lane]
	}

	// Per distinct source, in first-appearance order: distinct unmasked
	// destinations plus one split output per masked lane.
	var srcOrder []graph.Producer
	srcDsts := make(map[graph.Producer][]destination)
	srcMasked := make(map[graph.Producer]int)
	dstSrcs := make(map[any][]graph.Producer)
	for lane := 0; lane < lanes; lane++ {
		src := srcAt(lane)
		if !containsProducer(srcOrder, src) {
			srcOrder = append(srcOrder, src)
		}
		if !mask[lane] {
			srcMasked[src]++
			continue
		}
		dst := dstAt(lane)
		if !containsDest(srcDsts[src], dst) {
			srcDsts[src] = append(srcDsts[src], dst)
		}
		if !containsProducer(dstSrcs[dst.key()], src) {
			dstSrcs[dst.key()] = append(dstSrcs[dst.key()], src)
		}
	}

	// Fan-out: one Split per source feeding more than one output.
	producerFor := make(map[graph.Producer]graph.Producer)
	for _, src := range srcOrder {
		fanout := len(srcDsts[src]) + srcMasked[src]
		if fanout <= 1 {
			producerFor[src] = src
			continue
		}
		split := filters.NewSplit(src.Kind(), fanout)
		if _, err := src.Connect(split); err != nil {
			return nil, err
		}
		producerFor[src] = split
	}

	// Fan-in: clone a destination filter once per distinct source beyond
	// the first.
	type pair struct{ a, b any }
	cloneFor := make(map[pair]*graph.Node)
	for lane := 0; lane < lanes; lane++ {
		if !mask[lane] {
			continue
		}
		dst := dstAt(lane)
		if dst.node == nil {
			continue
		}
		for i, src := range dstSrcs[dst.key()] {
			key := pair{dst.node, src}
			if _, done := cloneFor[key]; done {
				continue
			}
			if i == 0 {
				cloneFor[key] = dst.node
				continue
			}
			clone, err := dst.node.Clone()
			if err != nil {
				return nil, err
			}
			cloneFor[key] = clone
		}
	}

	// Wire each (producer, destination) pair exactly once, in lane order.
	wired := make(map[pair]bool)
	result := make(Vector, lanes)
	for lane := 0; lane < lanes; lane++ {
		src := srcAt(lane)
		producer := producerFor[src]
		if !mask[lane] {
			// Masked lanes carry the bare split output.
			result[lane] = producer
			continue
		}

		dst := dstAt(lane)
		if dst.node != nil {
			target := cloneFor[pair{dst.node, src}]
			key := pair{producer, target}
			if !wired[key] {
				if _, err := producer.Connect(target); err != nil {
					return nil, err
				}
				wired[key] = true
			}
			result[lane] = target
			continue
		}

		key := pair{producer, dst.sink}
		if !wired[key] {
			if _, err := producer.Connect(dst.sink); err != nil {
				return nil, err
			}
			wired[key] = true
		}
		result[lane] = producer
	}
	return result, nil
}

func containsProducer(list []graph.Producer, p graph.Producer) bool {
	for _, item := range list {
		if item == p {
			return true
		}
	}
	return false
}

func containsDest(list []destination, d destination) bool {
	for _, item := range list {
		if item.key() == d.key() {
			return true
		}
	}
	return false
}
