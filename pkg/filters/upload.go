package filters

import (
	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Upload transfers software video frames onto a hardware device. Downstream
// connections are then validated against that device.
type Upload struct {
	Device meta.Device
}

// NewUpload creates a hardware upload node.
func NewUpload(device meta.Device) *graph.Node {
	return graph.NewNode(Upload{Device: device})
}

func (f Upload) Name() string { return "hwupload" }

func (f Upload) Args() string { return "" }

// Caps requires software frames on input.
func (f Upload) Caps() graph.Caps { return graph.Caps{Kind: meta.StreamVideo} }

func (f Upload) InputCount() int  { return 1 }
func (f Upload) OutputCount() int { return 1 }

// Transform marks the output stream as materialized on the target device.
func (f Upload) Transform(inputs ...meta.Meta) (meta.Meta, error) {
	vm, err := videoMeta(inputs[0], f.Name())
	if err != nil {
		return nil, err
	}

	out := vm
	out.CommonMeta = vm.Common()
	device := f.Device
	out.Device = &device
	return out, nil
}

func (f Upload) Clone() graph.Filter { return f }
