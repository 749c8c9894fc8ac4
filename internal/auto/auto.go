// Package auto probes every device's firmware identity over a Link and
// resolves the single negotiated Version the rest of a send session uses.
// Before the version is known it only ever issues Nop, FirmInfo and Clear,
// so it never needs to know the version in advance. FirmInfo and Clear are
// recognized by every firmware revision this driver understands; V10 has no
// Nop tag, and the probe does not check the ack of its Nop round.
package auto

import (
	"context"
	"time"

	"github.com/phasedctl/hostdriver/internal/datagram"
	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/link"
	"github.com/phasedctl/hostdriver/internal/operation"
	"github.com/phasedctl/hostdriver/internal/opimpl"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// ProbeTimeout bounds how long one FirmInfo round trip may take before the
// probe gives up with a ConfirmResponseFailed error.
const ProbeTimeout = time.Second

// Probe sends a leading no-op (to clear any msg-id aliasing left over from
// a prior run before the firmware version, and therefore the version's own
// Nop-support gate, is known), then the five FirmInfo sub-queries plus a
// trailing Clear to every enabled device, and resolves the single Version
// they all report.
func Probe(ctx context.Context, l link.Link, geo *geometry.Geometry) (firmware.Version, error) {
	mask := geometry.AllEnabledMask()

	if err := probeNop(ctx, l, geo, mask); err != nil {
		return 0, err
	}

	cpuMajor, err := query(ctx, l, geo, mask, datagram.QueryCPUMajor)
	if err != nil {
		return 0, err
	}
	cpuMinor, err := query(ctx, l, geo, mask, datagram.QueryCPUMinor)
	if err != nil {
		return 0, err
	}
	if _, err := query(ctx, l, geo, mask, datagram.QueryFPGAMajor); err != nil {
		return 0, err
	}
	if _, err := query(ctx, l, geo, mask, datagram.QueryFPGAMinor); err != nil {
		return 0, err
	}
	if _, err := query(ctx, l, geo, mask, datagram.QueryFPGAFunctions); err != nil {
		return 0, err
	}
	if _, err := query(ctx, l, geo, mask, datagram.QueryClear); err != nil {
		return 0, err
	}

	var resolved firmware.Version
	haveAny := false
	for i := 0; i < geo.Len(); i++ {
		if !mask.Includes(geo, i) {
			continue
		}
		v, ok := firmware.VersionFromCPUInfo(cpuMajor[i], cpuMinor[i])
		if !ok {
			return 0, errs.New(errs.UnsupportedFirmware, "device reported an unrecognized CPU major/minor byte")
		}
		if !haveAny {
			resolved, haveAny = v, true
			continue
		}
		if v != resolved {
			return 0, errs.New(errs.FirmwareVersionMismatch, "devices in this geometry report different firmware versions")
		}
	}
	if !haveAny {
		return 0, errs.New(errs.UnsupportedFirmware, "no enabled devices to probe")
	}
	return resolved, nil
}

// probeNop sends one bare Nop frame to every masked device. It packs
// wire.TagNop directly instead of going through datagram.Nop, since that
// Datagram's version gate (SupportsNop) can't be evaluated before this very
// probe has resolved a version. It waits for every device's response but
// does not inspect its ack, so a NotSupportedTag ack from a firmware without
// the Nop tag (V10) does not fail the probe.
func probeNop(ctx context.Context, l link.Link, geo *geometry.Geometry, mask geometry.DeviceMask) error {
	pairs := make([]*operation.Pair, geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		if !mask.Includes(geo, i) {
			return
		}
		pairs[i] = &operation.Pair{
			Op1: &opimpl.SingleFrame{Tag: wire.TagNop},
			Op2: operation.NullOp{},
		}
	})

	tx := make([]wire.TxMessage, geo.Len())
	rx := make([]wire.RxMessage, geo.Len())
	var handler operation.Handler
	msgID := wire.NewMsgID()
	msgID.Increment()
	if err := handler.Pack(msgID, pairs, geo, tx, false); err != nil {
		return err
	}
	if err := l.Send(ctx, tx); err != nil {
		return errs.Wrap(errs.LinkError, "sending probe Nop", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()
	if err := l.Receive(probeCtx, rx); err != nil {
		if probeCtx.Err() != nil {
			return errs.Wrap(errs.ConfirmResponseFailed, "probe Nop timed out", err)
		}
		return errs.Wrap(errs.LinkError, "receiving probe Nop response", err)
	}
	return nil
}

// query runs one FirmInfo sub-query to completion and returns each device's
// reported byte (zero for excluded devices).
func query(ctx context.Context, l link.Link, geo *geometry.Geometry, mask geometry.DeviceMask, q datagram.FirmInfoQuery) ([]uint8, error) {
	d := datagram.FirmInfo{Query: q}
	gen, err := d.OperationGenerator(geo, environment.Default(), mask, firmware.Limits{}, firmware.V10)
	if err != nil {
		return nil, err
	}

	pairs := make([]*operation.Pair, geo.Len())
	geo.Iter(func(i int, dev *geometry.Device) {
		pairs[i] = gen.Generate(dev)
	})

	tx := make([]wire.TxMessage, geo.Len())
	rx := make([]wire.RxMessage, geo.Len())
	var handler operation.Handler
	msgID := wire.NewMsgID()
	msgID.Increment()
	if err := handler.Pack(msgID, pairs, geo, tx, false); err != nil {
		return nil, err
	}
	if err := l.Send(ctx, tx); err != nil {
		return nil, errs.Wrap(errs.LinkError, "sending FirmInfo probe", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()
	if err := l.Receive(probeCtx, rx); err != nil {
		if probeCtx.Err() != nil {
			return nil, errs.Wrap(errs.ConfirmResponseFailed, "FirmInfo probe timed out", err)
		}
		return nil, errs.Wrap(errs.LinkError, "receiving FirmInfo response", err)
	}

	out := make([]uint8, geo.Len())
	for i := range out {
		if mask.Includes(geo, i) {
			if rx[i].Ack != 0 {
				return nil, errs.FromAck(wire.AckError(rx[i].Ack))
			}
			out[i] = rx[i].Data
		}
	}
	return out, nil
}
