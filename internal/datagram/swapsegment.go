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

// SwapSegment switches which segment (S0/S1) is actively driving output
// for one content kind (gain, modulation, GainSTM or FociSTM), per the
// requested TransitionMode. Gain only accepts Immediate, checked here
// synchronously (errs.InvalidTransitionMode) before a frame is ever built.
// Rejecting a transition whose target segment holds the wrong content kind,
// whose loop behavior the mode can't honor, or whose SysTime value doesn't
// clear the device's safety margin, is a device-side ack
// (AckInvalidSegmentTransition / AckMissTransitionTime).
type SwapSegment struct {
	Target     segment.Kind
	Segment    segment.Segment
	Transition segment.TransitionMode
}

func (SwapSegment) Option() Option { return DefaultOption() }

func (d SwapSegment) tag() wire.TypeTag {
	switch d.Target {
	case segment.KindModulation:
		return wire.TagModulationSwapSegment
	case segment.KindGain:
		return wire.TagGainSwapSegment
	case segment.KindGainSTM:
		return wire.TagGainSTMSwapSegment
	case segment.KindFociSTM:
		return wire.TagFociSTMSwapSegment
	default:
		return wire.TagModulationSwapSegment
	}
}

func (d SwapSegment) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	if d.Target == segment.KindGain && d.Transition.Kind != segment.Immediate {
		return nil, errs.New(errs.InvalidTransitionMode, "Gain segment transition supports only Immediate")
	}

	body := append([]byte{encodeSegment(d.Segment)}, encodeTransition(d.Transition)...)
	tag := d.tag()
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: tag, Body: body},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}
