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
	"github.com/phasedctl/hostdriver/internal/wire"
)

// ConfigFPGAClock sets the FPGA's base sampling clock divider.
type ConfigFPGAClock struct {
	Clock sampling.Config
}

func (ConfigFPGAClock) Option() Option { return DefaultOption() }

func (d ConfigFPGAClock) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	body := make([]byte, 2)
	binary.LittleEndian.PutUint16(body, d.Clock.Division())
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagConfigFPGAClock, Body: body},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}

// ForceFan overrides the cooling fan, bypassing the device's thermal
// auto-control, per device.
type ForceFan struct {
	Enabled func(dev *geometry.Device) bool
}

func (ForceFan) Option() Option { return DefaultOption() }

func (d ForceFan) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	if d.Enabled == nil {
		return nil, errs.New(errs.InputOutOfRange, "ForceFan.Enabled must not be nil")
	}
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		var b byte
		if d.Enabled(dev) {
			b = 1
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagForceFan, Body: []byte{b}},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}

// ReadsFPGAState enables or disables the FPGA-state word in every Rx frame.
type ReadsFPGAState struct {
	Enabled func(dev *geometry.Device) bool
}

func (ReadsFPGAState) Option() Option { return DefaultOption() }

func (d ReadsFPGAState) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	if d.Enabled == nil {
		return nil, errs.New(errs.InputOutOfRange, "ReadsFPGAState.Enabled must not be nil")
	}
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		var b byte
		if d.Enabled(dev) {
			b = 1
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagReadsFPGAState, Body: []byte{b}},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}

// OutputMask enables or disables individual transducers without touching
// their gain/phase state. V10 and V11 firmware lack this tag.
type OutputMask struct {
	Enabled func(dev *geometry.Device, transducerIdx int) bool
}

func (OutputMask) Option() Option { return DefaultOption() }

func (d OutputMask) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, ver firmware.Version) (operation.Generator, error) {
	if !ver.SupportsOutputMask() {
		return nil, errs.New(errs.UnsupportedOperation, "OutputMask is not recognized by "+ver.String())
	}
	if d.Enabled == nil {
		return nil, errs.New(errs.InputOutOfRange, "OutputMask.Enabled must not be nil")
	}
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		body := make([]byte, dev.NumTransducers())
		for t := 0; t < dev.NumTransducers(); t++ {
			if d.Enabled(dev, t) {
				body[t] = 1
			}
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagOutputMask, Body: body},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}

// PhaseCorrection applies a fixed per-transducer phase offset, compensating
// for manufacturing variance ahead of whatever gain is later written.
type PhaseCorrection struct {
	Correction func(dev *geometry.Device, transducerIdx int) uint8
}

func (PhaseCorrection) Option() Option { return DefaultOption() }

func (d PhaseCorrection) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	if d.Correction == nil {
		return nil, errs.New(errs.InputOutOfRange, "PhaseCorrection.Correction must not be nil")
	}
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		body := make([]byte, dev.NumTransducers())
		for t := 0; t < dev.NumTransducers(); t++ {
			body[t] = d.Correction(dev, t)
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagPhaseCorrection, Body: body},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}

// ConfigPulseWidthEncoder overwrites the lookup table the device uses to
// convert an intensity byte into a PWM pulse width. Table must be exactly
// limits.PulseWidthEncoderTableSize long.
type ConfigPulseWidthEncoder struct {
	Table []byte
}

func (ConfigPulseWidthEncoder) Option() Option { return DefaultOption() }

func (d ConfigPulseWidthEncoder) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, limits firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	if len(d.Table) != limits.PulseWidthEncoderTableSize {
		return nil, errs.New(errs.InputOutOfRange, "pulse-width-encoder table size must match the negotiated firmware's table size")
	}
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.Chunked{Tag: wire.TagConfigPulseWidthEncoder, Data: append([]byte(nil), d.Table...)},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}

// Debug writes a raw 2-byte value to the device's debug-output pin select
// register. Out of scope for anything but bring-up and test rigs.
type Debug struct {
	Select uint8
	Value  uint16
}

func (Debug) Option() Option { return DefaultOption() }

func (d Debug) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	body := make([]byte, 3)
	body[0] = d.Select
	binary.LittleEndian.PutUint16(body[1:], d.Value)
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagDebug, Body: body},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}

// EmulateGPIOIn drives the device's input GPIO pins from software, so a
// GPIO-triggered SwapSegment transition can be exercised without real
// hardware wired to the pin.
type EmulateGPIOIn struct {
	Pins func(dev *geometry.Device) uint8
}

func (EmulateGPIOIn) Option() Option { return DefaultOption() }

func (d EmulateGPIOIn) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	if d.Pins == nil {
		return nil, errs.New(errs.InputOutOfRange, "EmulateGPIOIn.Pins must not be nil")
	}
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagEmulateGPIOIn, Body: []byte{d.Pins(dev)}},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}

// CPUGPIOOut maps a device-internal trigger signal onto an output GPIO pin.
type CPUGPIOOut struct {
	Pin    uint8
	Signal uint8
}

func (CPUGPIOOut) Option() Option { return DefaultOption() }

func (d CPUGPIOOut) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagCPUGPIOOut, Body: []byte{d.Pin, d.Signal}},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}
