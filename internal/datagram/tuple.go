package datagram

import (
	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/operation"
)

// Tuple sends two Datagrams in a single round trip: A occupies slot 1 of
// the frame, B occupies slot 2. Both A and B must be slot-1-only
// Datagrams themselves (their own Op2 must be a NullOp); nesting a Tuple
// inside a Tuple, or pairing with a Datagram that already needs both
// slots, is rejected rather than silently dropping one side.
type Tuple struct {
	A, B Datagram
}

func (d Tuple) Option() Option {
	a, b := d.A.Option(), d.B.Option()
	opt := a
	if b.Timeout > opt.Timeout {
		opt.Timeout = b.Timeout
	}
	if b.ParallelThreshold < opt.ParallelThreshold {
		opt.ParallelThreshold = b.ParallelThreshold
	}
	return opt
}

func (d Tuple) OperationGenerator(geo *geometry.Geometry, env environment.Environment, mask geometry.DeviceMask, limits firmware.Limits, ver firmware.Version) (operation.Generator, error) {
	genA, err := d.A.OperationGenerator(geo, env, mask, limits, ver)
	if err != nil {
		return nil, err
	}
	genB, err := d.B.OperationGenerator(geo, env, mask, limits, ver)
	if err != nil {
		return nil, err
	}

	g := newPerDevice(geo.Len())
	var genErr error
	geo.Iter(func(i int, dev *geometry.Device) {
		if genErr != nil || !mask.Includes(geo, i) {
			return
		}
		pairA := genA.Generate(dev)
		pairB := genB.Generate(dev)
		if pairA == nil || pairB == nil {
			return
		}
		if _, ok := pairA.Op2.(operation.NullOp); !ok {
			genErr = errs.New(errs.InputOutOfRange, "Tuple.A already occupies both slots; nesting is not supported")
			return
		}
		if _, ok := pairB.Op2.(operation.NullOp); !ok {
			genErr = errs.New(errs.InputOutOfRange, "Tuple.B already occupies both slots; nesting is not supported")
			return
		}
		g.pairs[i] = &operation.Pair{Op1: pairA.Op1, Op2: pairB.Op1}
	})
	if genErr != nil {
		return nil, genErr
	}
	return g, nil
}
