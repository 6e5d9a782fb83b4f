package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/just-work/fffw-sub000/pkg/meta"
)

// passthrough is a minimal filter for connection protocol tests.
type passthrough struct {
	name     string
	args     string
	caps     Caps
	inputs   int
	outputs  int
	failMeta error
}

func (f passthrough) Name() string     { return f.name }
func (f passthrough) Args() string     { return f.args }
func (f passthrough) Caps() Caps       { return f.caps }
func (f passthrough) InputCount() int  { return f.inputs }
func (f passthrough) OutputCount() int { return f.outputs }
func (f passthrough) Clone() Filter    { return f }

func (f passthrough) Transform(inputs ...meta.Meta) (meta.Meta, error) {
	if f.failMeta != nil {
		return nil, f.failMeta
	}
	return inputs[0], nil
}

func videoNode(name string) *Node {
	return NewNode(passthrough{
		name: name, caps: Caps{Kind: meta.StreamVideo}, inputs: 1, outputs: 1,
	})
}

func audioNode(name string) *Node {
	return NewNode(passthrough{
		name: name, caps: Caps{Kind: meta.StreamAudio}, inputs: 1, outputs: 1,
	})
}

func TestSourceConnectKindMismatch(t *testing.T) {
	src := NewSource("0:v", meta.StreamVideo)
	if _, err := src.Connect(audioNode("anull")); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("got %v, want ErrKindMismatch", err)
	}
	if len(src.Edges()) != 0 {
		t.Error("failed connect left an edge behind")
	}
}

func TestSourceSetMetaKindMismatch(t *testing.T) {
	src := NewSource("0:v", meta.StreamVideo)
	if err := src.SetMeta(meta.AudioMeta{}); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("got %v, want ErrKindMismatch", err)
	}
}

func TestNodeSlotExhaustion(t *testing.T) {
	src := NewSource("0:v", meta.StreamVideo)
	node := videoNode("null")

	if _, err := src.Connect(node); err != nil {
		t.Fatalf("first connect failed: %v", err)
	}
	if _, err := src.Connect(node); !errors.Is(err, ErrNoFreeSlot) {
		t.Fatalf("got %v, want ErrNoFreeSlot", err)
	}

	next := videoNode("null")
	if _, err := node.Connect(next); err != nil {
		t.Fatalf("output connect failed: %v", err)
	}
	if _, err := node.Connect(videoNode("null")); !errors.Is(err, ErrNoFreeSlot) {
		t.Fatalf("got %v, want ErrNoFreeSlot", err)
	}
}

func TestDestSingleSlot(t *testing.T) {
	src := NewSource("0:v", meta.StreamVideo)
	dst := NewDest("out", meta.StreamVideo)

	if _, err := src.Connect(dst); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if _, err := src.Connect(dst); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("got %v, want ErrSlotTaken", err)
	}
}

func TestEdgeReconnect(t *testing.T) {
	src := NewSource("0:v", meta.StreamVideo)
	first := videoNode("null")
	second := videoNode("null")

	e, err := src.Connect(first)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if err := e.Reconnect(second); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	if first.Input(0) != nil {
		t.Error("edge still bound to the first node")
	}
	if second.Input(0) != e {
		t.Error("edge not bound to the second node")
	}

	// Only once.
	if err := e.Reconnect(first); !errors.Is(err, ErrReconnected) {
		t.Fatalf("got %v, want ErrReconnected", err)
	}
}

func TestSetEnabledRequiresUnitArity(t *testing.T) {
	node := NewNode(passthrough{
		name: "split", caps: Caps{Kind: meta.StreamVideo}, inputs: 1, outputs: 2,
	})
	if err := node.SetEnabled(false); !errors.Is(err, ErrArity) {
		t.Fatalf("got %v, want ErrArity", err)
	}

	if err := videoNode("null").SetEnabled(false); err != nil {
		t.Fatalf("disable of (1,1) node failed: %v", err)
	}
}

func TestDisabledNodeResolve(t *testing.T) {
	src := NewSource("0:v", meta.StreamVideo)
	disabled := videoNode("null")
	if err := disabled.SetEnabled(false); err != nil {
		t.Fatal(err)
	}
	sink := videoNode("scale")

	fromSrc, err := src.Connect(disabled)
	if err != nil {
		t.Fatal(err)
	}
	fromDisabled, err := disabled.Connect(sink)
	if err != nil {
		t.Fatal(err)
	}

	resolved, err := fromDisabled.Resolve()
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved != fromSrc {
		t.Error("resolve did not skip the disabled node")
	}
}

func TestDisabledNodeMetaPassthrough(t *testing.T) {
	src := NewSource("0:a", meta.StreamAudio)
	m := meta.AudioMeta{SamplingRate: 48000}
	if err := src.SetMeta(m); err != nil {
		t.Fatal(err)
	}

	disabled := audioNode("anull")
	if err := disabled.SetEnabled(false); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Connect(disabled); err != nil {
		t.Fatal(err)
	}

	got, err := disabled.Meta()
	if err != nil {
		t.Fatalf("meta failed: %v", err)
	}
	am, ok := got.(meta.AudioMeta)
	if !ok || am.SamplingRate != 48000 {
		t.Errorf("got %#v, want pass-through of source metadata", got)
	}
}

func TestNodeMetaUnknownInputs(t *testing.T) {
	node := videoNode("scale")
	m, err := node.Meta()
	if err != nil {
		t.Fatalf("meta failed: %v", err)
	}
	if m != nil {
		t.Error("unconnected node reported metadata")
	}
}

func TestDeviceMismatch(t *testing.T) {
	src := NewSource("0:v", meta.StreamVideo)
	vm := meta.VideoMeta{Device: &meta.Device{Hardware: "cuda", Name: "0"}}
	if err := src.SetMeta(vm); err != nil {
		t.Fatal(err)
	}

	software := videoNode("scale")
	if _, err := src.Connect(software); !errors.Is(err, ErrDeviceMismatch) {
		t.Fatalf("got %v, want ErrDeviceMismatch", err)
	}

	hardware := NewNode(passthrough{
		name: "scale_npp", caps: Caps{Kind: meta.StreamVideo, Hardware: "cuda"},
		inputs: 1, outputs: 1,
	})
	if _, err := src.Connect(hardware); err != nil {
		t.Fatalf("hardware connect failed: %v", err)
	}
}

func TestNamerRules(t *testing.T) {
	src := NewSource("0:v", meta.StreamVideo)
	node := videoNode("scale")
	dst := NewDest("out", meta.StreamVideo)

	in, err := src.Connect(node)
	if err != nil {
		t.Fatal(err)
	}
	out, err := node.Connect(dst)
	if err != nil {
		t.Fatal(err)
	}

	namer := NewNamer()
	inName, err := namer.Name(in)
	if err != nil {
		t.Fatal(err)
	}
	if inName != "0:v" {
		t.Errorf("source edge named %q, want 0:v", inName)
	}
	outName, err := namer.Name(out)
	if err != nil {
		t.Fatal(err)
	}
	if outName != "vout0" {
		t.Errorf("dest edge named %q, want vout0", outName)
	}

	// Cached by edge identity.
	again, err := namer.Name(out)
	if err != nil {
		t.Fatal(err)
	}
	if again != outName {
		t.Errorf("second Name call returned %q, want %q", again, outName)
	}
}

func TestNamerIntermediateEdges(t *testing.T) {
	src := NewSource("0:a", meta.StreamAudio)
	first := audioNode("volume")
	second := audioNode("volume")
	dst := NewDest("out", meta.StreamAudio)

	if _, err := src.Connect(first); err != nil {
		t.Fatal(err)
	}
	mid, err := first.Connect(second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := second.Connect(dst); err != nil {
		t.Fatal(err)
	}

	namer := NewNamer()
	name, err := namer.Name(mid)
	if err != nil {
		t.Fatal(err)
	}
	if name != "a:volume0" {
		t.Errorf("intermediate edge named %q, want a:volume0", name)
	}
}

func TestNamerSkipsDisabledConsumers(t *testing.T) {
	// A disabled pass-through between a filter and the sink must not turn
	// the sink-bound label into an intermediate one.
	src := NewSource("0:v", meta.StreamVideo)
	node := videoNode("scale")
	disabled := videoNode("null")
	if err := disabled.SetEnabled(false); err != nil {
		t.Fatal(err)
	}
	dst := NewDest("out", meta.StreamVideo)

	if _, err := src.Connect(node); err != nil {
		t.Fatal(err)
	}
	mid, err := node.Connect(disabled)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := disabled.Connect(dst); err != nil {
		t.Fatal(err)
	}

	name, err := NewNamer().Name(mid)
	if err != nil {
		t.Fatal(err)
	}
	if name != "vout0" {
		t.Errorf("edge named %q, want vout0", name)
	}
}

func TestRenderDeterministic(t *testing.T) {
	src := NewSource("0:v", meta.StreamVideo)
	node := NewNode(passthrough{
		name: "scale", args: "640x360", caps: Caps{Kind: meta.StreamVideo},
		inputs: 1, outputs: 1,
	})
	dst := NewDest("out", meta.StreamVideo)
	if _, err := src.Connect(node); err != nil {
		t.Fatal(err)
	}
	if _, err := node.Connect(dst); err != nil {
		t.Fatal(err)
	}

	want := "[0:v]scale=640x360[vout0]"
	for i := 0; i < 2; i++ {
		got, err := FilterComplex(NewNamer(), false, src)
		if err != nil {
			t.Fatalf("render %d failed: %v", i, err)
		}
		if got != want {
			t.Errorf("render %d = %q, want %q", i, got, want)
		}
	}
}

func TestRenderPartial(t *testing.T) {
	src := NewSource("0:v", meta.StreamVideo)
	node := videoNode("scale")
	if _, err := src.Connect(node); err != nil {
		t.Fatal(err)
	}

	// Strict mode refuses the dangling output.
	if _, err := FilterComplex(NewNamer(), false, src); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("got %v, want ErrNotConnected", err)
	}

	got, err := FilterComplex(NewNamer(), true, src)
	if err != nil {
		t.Fatalf("partial render failed: %v", err)
	}
	if got != "[0:v]scale"+Placeholder {
		t.Errorf("partial render = %q", got)
	}
}

func TestRenderDedup(t *testing.T) {
	// Diamond: one split feeding two inputs of the same downstream filter
	// emits the split clause once.
	src := NewSource("0:a", meta.StreamAudio)
	split := NewNode(passthrough{
		name: "asplit", caps: Caps{Kind: meta.StreamAudio}, inputs: 1, outputs: 2,
	})
	merge := NewNode(passthrough{
		name: "amix", caps: Caps{Kind: meta.StreamAudio}, inputs: 2, outputs: 1,
	})
	dst := NewDest("out", meta.StreamAudio)

	if _, err := src.Connect(split); err != nil {
		t.Fatal(err)
	}
	if _, err := split.Connect(merge); err != nil {
		t.Fatal(err)
	}
	if _, err := split.Connect(merge); err != nil {
		t.Fatal(err)
	}
	if _, err := merge.Connect(dst); err != nil {
		t.Fatal(err)
	}

	got, err := FilterComplex(NewNamer(), false, src)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	clauses := strings.Split(got, ";")
	if len(clauses) != 2 {
		t.Fatalf("got %d clauses, want 2: %q", len(clauses), got)
	}
	seen := map[string]bool{}
	for _, clause := range clauses {
		if seen[clause] {
			t.Errorf("duplicate clause %q", clause)
		}
		seen[clause] = true
	}
}

func TestRenderSurfacesTransformError(t *testing.T) {
	src := NewSource("0:v", meta.StreamVideo)
	if err := src.SetMeta(meta.VideoMeta{Width: 640, Height: 360}); err != nil {
		t.Fatal(err)
	}

	failure := errors.New("bad transform")
	node := NewNode(passthrough{
		name: "scale", caps: Caps{Kind: meta.StreamVideo},
		inputs: 1, outputs: 1, failMeta: failure,
	})
	dst := NewDest("out", meta.StreamVideo)
	if _, err := src.Connect(node); err != nil {
		t.Fatal(err)
	}
	if _, err := node.Connect(dst); err != nil {
		t.Fatal(err)
	}

	if _, err := FilterComplex(NewNamer(), false, src); !errors.Is(err, failure) {
		t.Fatalf("got %v, want transform error", err)
	}
}

func TestNodeClonePreservesSlots(t *testing.T) {
	// An overlay-like node with only its second input connected keeps that
	// binding at the same slot position in the clone.
	base := NewSource("0:v", meta.StreamVideo)
	logo := NewSource("1:v", meta.StreamVideo)
	node := NewNode(passthrough{
		name: "overlay", caps: Caps{Kind: meta.StreamVideo}, inputs: 2, outputs: 1,
	})

	baseEdge, err := base.Connect(node)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := logo.Connect(node); err != nil {
		t.Fatal(err)
	}
	// Free slot 0, leaving only the logo bound at slot 1.
	if err := node.DisconnectEdge(baseEdge); err != nil {
		t.Fatal(err)
	}

	clone, err := node.Clone()
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	if clone.Input(0) != nil {
		t.Error("clone slot 0 bound, want free")
	}
	if clone.Input(1) == nil {
		t.Fatal("clone slot 1 free, want bound")
	}
	if clone.Input(1).Input() != Producer(logo) {
		t.Error("clone slot 1 bound to a different producer")
	}
	for i := range clone.Outputs() {
		if clone.Output(i) != nil {
			t.Errorf("clone output slot %d not empty", i)
		}
	}
}
