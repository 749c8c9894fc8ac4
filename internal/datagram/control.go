package datagram

import (
	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/operation"
	"github.com/phasedctl/hostdriver/internal/opimpl"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// Nop carries no payload; it exists purely so a Sender round can confirm
// every device is still answering. Not recognized before V11.
type Nop struct{}

func (Nop) Option() Option { return DefaultOption() }

func (Nop) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, ver firmware.Version) (operation.Generator, error) {
	if !ver.SupportsNop() {
		return nil, errs.New(errs.UnsupportedOperation, "Nop is not recognized by "+ver.String())
	}
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagNop},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}

// Clear resets every piece of device state back to its power-on defaults.
type Clear struct{}

func (Clear) Option() Option { return DefaultOption() }

func (Clear) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagClear},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}

// Synchronize aligns every device's sampling clock to a shared cycle 0.
type Synchronize struct{}

func (Synchronize) Option() Option { return DefaultOption() }

func (Synchronize) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagSync},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}
