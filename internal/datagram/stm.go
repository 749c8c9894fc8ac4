package datagram

import (
	"encoding/binary"

	"github.com/golang/geo/r3"

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

// GainSTMCalc computes one sample's full drive state for every transducer
// on dev, for sample index idx of a GainSTM sequence.
type GainSTMCalc func(dev *geometry.Device, idx int) []GainValue

// GainSTM plays a sequence of Gain samples at Clock, looping per
// LoopBehavior. NumSamples bounds how many times Calc is invoked.
type GainSTM struct {
	Calc       GainSTMCalc
	NumSamples int
	Clock      sampling.Config
	Segment    segment.Segment
	Loop       segment.LoopBehavior
	Transition segment.TransitionMode
}

func (GainSTM) Option() Option { return DefaultOption() }

func (d GainSTM) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, limits firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	if d.Calc == nil {
		return nil, errs.New(errs.InputOutOfRange, "GainSTM.Calc must not be nil")
	}
	if d.NumSamples < 1 || d.NumSamples > limits.GainSTMBufSizeMax {
		return nil, errs.New(errs.InputOutOfRange, "GainSTM sample count out of range for this firmware")
	}
	header := modulationHeader(d.Clock, d.Segment, d.Loop, d.Transition)
	g := newPerDevice(geo.Len())
	var genErr error
	geo.Iter(func(i int, dev *geometry.Device) {
		if genErr != nil || !mask.Includes(geo, i) {
			return
		}
		data := make([]byte, 0, d.NumSamples*2*dev.NumTransducers())
		for idx := 0; idx < d.NumSamples; idx++ {
			values := d.Calc(dev, idx)
			if len(values) != dev.NumTransducers() {
				genErr = errs.New(errs.InputOutOfRange, "GainSTM.Calc returned the wrong number of transducer values")
				return
			}
			for _, v := range values {
				data = append(data, v.Intensity, v.Phase)
			}
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.Chunked{
				Tag:        wire.TagGainSTM,
				Header:     header,
				Data:       data,
				FlagUpdate: d.Segment == segment.S0,
			},
			Op2: operation.NullOp{},
		}
	})
	if genErr != nil {
		return nil, genErr
	}
	return g, nil
}

// Focus is one focal point of a FociSTM sample: a position in meters and
// an intensity. A sample may superpose up to a firmware-dependent number
// of foci.
type Focus struct {
	Position  r3.Vector
	Intensity uint8
}

// fociPointMicrometers is the fixed-point scale foci positions are encoded
// at on the wire: whole micrometers in an int32.
const fociPointMicrometers = 1e6

func encodeFocus(f Focus) []byte {
	buf := make([]byte, 13)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(int32(f.Position.X*fociPointMicrometers)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(f.Position.Y*fociPointMicrometers)))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(int32(f.Position.Z*fociPointMicrometers)))
	buf[12] = f.Intensity
	return buf
}

// FociSTMCalc returns the (1..FociSTMFociPerPointMax) foci superposed at
// sample idx of a FociSTM sequence.
type FociSTMCalc func(idx int) []Focus

// FociSTM plays a sequence of multi-focus samples at Clock, looping per
// LoopBehavior.
type FociSTM struct {
	Calc       FociSTMCalc
	NumSamples int
	Clock      sampling.Config
	Segment    segment.Segment
	Loop       segment.LoopBehavior
	Transition segment.TransitionMode
}

func (FociSTM) Option() Option { return DefaultOption() }

func (d FociSTM) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, limits firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	if d.Calc == nil {
		return nil, errs.New(errs.InputOutOfRange, "FociSTM.Calc must not be nil")
	}
	if d.NumSamples < 1 || d.NumSamples > limits.FociSTMBufSizeMax {
		return nil, errs.New(errs.InputOutOfRange, "FociSTM sample count out of range for this firmware")
	}

	data := make([]byte, 0, d.NumSamples*(1+limits.FociSTMFociPerPointMax*13))
	for idx := 0; idx < d.NumSamples; idx++ {
		foci := d.Calc(idx)
		if len(foci) < 1 || len(foci) > limits.FociSTMFociPerPointMax {
			return nil, errs.New(errs.InputOutOfRange, "FociSTM sample foci count out of range for this firmware")
		}
		data = append(data, byte(len(foci)))
		for _, f := range foci {
			data = append(data, encodeFocus(f)...)
		}
	}
	header := modulationHeader(d.Clock, d.Segment, d.Loop, d.Transition)

	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.Chunked{
				Tag:        wire.TagFociSTM,
				Header:     header,
				Data:       append([]byte(nil), data...),
				FlagUpdate: d.Segment == segment.S0,
			},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}
