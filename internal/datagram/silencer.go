package datagram

import (
	"encoding/binary"

	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/operation"
	"github.com/phasedctl/hostdriver/internal/opimpl"
	"github.com/phasedctl/hostdriver/internal/silencer"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// Silencer sends the low-pass-filter configuration that bounds how fast
// gain/phase may change between samples. The interlock between a strict
// FixedCompletionSteps config and whatever sampling period is currently
// active is a device-side check; the host only range-checks against this
// firmware's SilencerStepsMax before sending.
type Silencer struct {
	Config silencer.Config
}

func (Silencer) Option() Option { return DefaultOption() }

func (d Silencer) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, limits firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	if d.Config.Intensity > limits.SilencerStepsMax || d.Config.Phase > limits.SilencerStepsMax {
		return nil, errs.New(errs.InputOutOfRange, "silencer intensity/phase exceeds this firmware's maximum")
	}
	body := make([]byte, 5)
	body[0] = byte(d.Config.Mode)
	if d.Config.Strict {
		body[0] |= 0x80
	}
	binary.LittleEndian.PutUint16(body[1:3], d.Config.Intensity)
	binary.LittleEndian.PutUint16(body[3:5], d.Config.Phase)

	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagSilencer, Body: body},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}
