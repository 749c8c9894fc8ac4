package datagram

import (
	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/operation"
	"github.com/phasedctl/hostdriver/internal/opimpl"
	"github.com/phasedctl/hostdriver/internal/segment"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// GainValue is one transducer's drive state: an 8-bit intensity and an
// 8-bit phase. Computing these from a target acoustic field is out of
// scope here; GainCalc is the seam a higher-level acoustic-math library
// would plug into.
type GainValue struct {
	Intensity uint8
	Phase     uint8
}

// GainCalc computes the drive values for every transducer on one device.
// The returned slice must have exactly dev.NumTransducers() entries.
type GainCalc func(dev *geometry.Device) []GainValue

// Gain writes a static per-transducer drive state into one segment. It
// fits in a single frame: 2 bytes per transducer is well under a frame's
// payload even for a fully populated array.
type Gain struct {
	Calc       GainCalc
	Segment    segment.Segment
	Transition segment.TransitionMode
}

func (Gain) Option() Option { return DefaultOption() }

func (d Gain) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	if d.Calc == nil {
		return nil, errs.New(errs.InputOutOfRange, "Gain.Calc must not be nil")
	}
	g := newPerDevice(geo.Len())
	var genErr error
	geo.Iter(func(i int, dev *geometry.Device) {
		if genErr != nil || !mask.Includes(geo, i) {
			return
		}
		values := d.Calc(dev)
		if len(values) != dev.NumTransducers() {
			genErr = errs.New(errs.InputOutOfRange, "Gain.Calc returned the wrong number of transducer values")
			return
		}
		body := make([]byte, 2+2*len(values))
		body[0] = encodeSegment(d.Segment)
		body[1] = 0
		for t, v := range values {
			body[2+2*t] = v.Intensity
			body[2+2*t+1] = v.Phase
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagGain, Body: body},
			Op2: operation.NullOp{},
		}
	})
	if genErr != nil {
		return nil, genErr
	}
	return g, nil
}
