package datagram

import (
	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/operation"
	"github.com/phasedctl/hostdriver/internal/opimpl"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// FirmInfoQuery selects which sub-field of a device's firmware identity a
// FirmInfo datagram asks for. The device answers into RxMessage.Data on the
// frame that follows, instead of echoing the sent MsgID.
type FirmInfoQuery uint8

const (
	QueryCPUMajor FirmInfoQuery = iota
	QueryCPUMinor
	QueryFPGAMajor
	QueryFPGAMinor
	QueryFPGAFunctions
	QueryClear
)

// FirmInfo asks every device to report one field of its firmware identity.
// The Auto probe sends all five queries in turn, then QueryClear to leave
// the device's sub-query cursor at rest.
type FirmInfo struct {
	Query FirmInfoQuery
}

func (FirmInfo) Option() Option { return DefaultOption() }

func (d FirmInfo) OperationGenerator(geo *geometry.Geometry, _ environment.Environment, mask geometry.DeviceMask, _ firmware.Limits, _ firmware.Version) (operation.Generator, error) {
	g := newPerDevice(geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		g.pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagFirmInfo, Body: []byte{byte(d.Query)}},
			Op2: operation.NullOp{},
		}
	})
	return g, nil
}
