package datagram

import (
	"encoding/binary"

	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/operation"
	"github.com/phasedctl/hostdriver/internal/opimpl"
	"github.com/phasedctl/hostdriver/internal/sampling"
	"github.com/phasedctl/hostdriver/internal/segment"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// Modulation writes an amplitude-envelope buffer, sampled at Clock, into
// one segment. The device loops the buffer per LoopBehavior once it
// becomes active.
type Modulation struct {
	Buffer     []uint8
	Clock      sampling.Config
	Segment    segment.Segment
	Loop       segment.LoopBehavior
	Transition segment.TransitionMode
}

func (Modulation) Option() Option { return DefaultOption() }

func modulationHeader(clock sampling.Config, seg segment.Segment, loop segment.LoopBehavior, transition segment.TransitionMode) []byte {
	h := make([]byte, 2)
	binary.LittleEndian.PutUint16(h, clock.Division())
	h = append(h, encodeSegment(seg))
	h = append(h, encodeLoopBehavior(loop)...)
	h = append(h, encodeTransition(transition)...)
	return h
}

func (d Modulation) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, limits firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	if len(d.Buffer) == 0 {
		return nil, errs.New(errs.InputOutOfRange, "modulation buffer must not be empty")
	}
	if len(d.Buffer) > limits.ModulationBufSizeMax {
		return nil, errs.New(errs.InputOutOfRange, "modulation buffer exceeds this firmware's maximum")
	}
	header := modulationHeader(d.Clock, d.Segment, d.Loop, d.Transition)
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.Chunked{
				Tag:        wire.TagModulation,
				Header:     header,
				Data:       append([]byte(nil), d.Buffer...),
				FlagUpdate: d.Segment == segment.S0,
			},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}
