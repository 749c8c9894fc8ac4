// Package emulator is an in-memory Link that behaves enough like a real
// device array to exercise a Sender end to end without hardware: it
// decodes Tx frames well enough to answer FirmInfo sub-queries, enforce
// the Silencer interlock, and echo MsgIDs, without modeling the acoustics
// a real FPGA would drive.
package emulator

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/phasedctl/hostdriver/internal/datagram"
	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/sampling"
	"github.com/phasedctl/hostdriver/internal/segment"
	"github.com/phasedctl/hostdriver/internal/silencer"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// Transition-kind byte values, mirroring datagram.encodeTransition's wire
// encoding: 0=Immediate, 1=Ext, 2=SyncIdx, 3=SysTime, 4=GPIO, 5=None.
const (
	transitionKindImmediate = 0
	transitionKindSysTime   = 3
)

// deviceState is one emulated device's FPGA-visible state.
type deviceState struct {
	version firmware.Version

	pendingFirmInfo bool
	firmInfoAnswer  uint8

	silencer silencer.Config

	// activeIntensitySampling/activePhaseSampling are whichever modulation
	// and STM sampling configs were last written, used only to drive the
	// Silencer strict interlock.
	activeIntensitySampling sampling.Config
	haveIntensitySampling   bool
	activePhaseSampling     sampling.Config
	havePhaseSampling       bool

	lastAck   wire.AckError
	lastMsgID wire.MsgID
}

func (d *deviceState) SamplingConfigIntensity() (sampling.Config, bool) {
	return d.activeIntensitySampling, d.haveIntensitySampling
}

func (d *deviceState) SamplingConfigPhase() (sampling.Config, bool) {
	return d.activePhaseSampling, d.havePhaseSampling
}

// Emulator is a Link backed by per-device state machines instead of a
// wire transport. CPUMajor/CPUMinor are what every device reports to an
// auto.Probe, so tests can target a specific firmware.Version.
type Emulator struct {
	CPUMajor, CPUMinor uint8

	mu      sync.Mutex
	open    bool
	devices []*deviceState
}

// New builds an Emulator that will report version on probe.
func New(version firmware.Version) *Emulator {
	major, minor := cpuBytesFor(version)
	return &Emulator{CPUMajor: major, CPUMinor: minor}
}

func cpuBytesFor(v firmware.Version) (uint8, uint8) {
	lookup := v
	minor := uint8(0)
	if v == firmware.V12_1 {
		lookup = firmware.V12
		minor = 1
	}
	for major, ver := range firmware.VersionByCPUMajor {
		if ver == lookup {
			return major, minor
		}
	}
	return 0, 0
}

func (e *Emulator) Open(_ context.Context, geo *geometry.Geometry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resyncLocked(geo)
	e.open = true
	return nil
}

func (e *Emulator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = false
	return nil
}

func (e *Emulator) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

func (e *Emulator) Update(_ context.Context, geo *geometry.Geometry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resyncLocked(geo)
	return nil
}

func (e *Emulator) resyncLocked(geo *geometry.Geometry) {
	for len(e.devices) < geo.Len() {
		e.devices = append(e.devices, &deviceState{})
	}
	e.devices = e.devices[:geo.Len()]
}

func (e *Emulator) Send(_ context.Context, tx []wire.TxMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return errs.New(errs.LinkClosed, "emulator link not open")
	}
	for i := range tx {
		if i >= len(e.devices) {
			break
		}
		e.devices[i].lastMsgID = tx[i].Header.MsgID
		e.devices[i].lastAck = e.applyFrameLocked(e.devices[i], &tx[i])
	}
	return nil
}

func (e *Emulator) Receive(_ context.Context, rx []wire.RxMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return errs.New(errs.LinkClosed, "emulator link not open")
	}
	for i := range rx {
		if i >= len(e.devices) {
			rx[i] = wire.RxMessage{}
			continue
		}
		dev := e.devices[i]
		ack := uint8(dev.lastAck)
		data := uint8(dev.lastMsgID)
		if dev.pendingFirmInfo {
			data = dev.firmInfoAnswer
			dev.pendingFirmInfo = false
		}
		rx[i] = wire.RxMessage{Data: data, Ack: ack}
	}
	return nil
}

// applyFrameLocked decodes and applies slot 1 (and slot 2, if present) of
// one device's frame, returning the ack code for the frame as a whole.
func (e *Emulator) applyFrameLocked(dev *deviceState, tx *wire.TxMessage) wire.AckError {
	payload := tx.Payload()
	if ack := e.applyRecordLocked(dev, payload); ack != wire.AckOk {
		return ack
	}
	if tx.Header.Slot2Offset != 0 {
		if int(tx.Header.Slot2Offset) >= len(payload) {
			return wire.AckNotSupportedTag
		}
		if ack := e.applyRecordLocked(dev, payload[tx.Header.Slot2Offset:]); ack != wire.AckOk {
			return ack
		}
	}
	return wire.AckOk
}

func (e *Emulator) applyRecordLocked(dev *deviceState, rec []byte) wire.AckError {
	if len(rec) == 0 {
		return wire.AckOk
	}
	tag := wire.TypeTag(rec[0])
	body := rec[1:]

	switch tag {
	case wire.TagNop, wire.TagClear, wire.TagSync:
		return wire.AckOk

	case wire.TagFirmInfo:
		if len(body) < 1 {
			return wire.AckInvalidInfoType
		}
		dev.pendingFirmInfo = true
		switch datagram.FirmInfoQuery(body[0]) {
		case datagram.QueryCPUMajor:
			dev.firmInfoAnswer = e.CPUMajor
		case datagram.QueryCPUMinor:
			dev.firmInfoAnswer = e.CPUMinor
		case datagram.QueryFPGAMajor:
			dev.firmInfoAnswer = e.CPUMajor
		case datagram.QueryFPGAMinor:
			dev.firmInfoAnswer = e.CPUMinor
		case datagram.QueryFPGAFunctions:
			dev.firmInfoAnswer = 0
		case datagram.QueryClear:
			dev.pendingFirmInfo = false
			dev.firmInfoAnswer = 0
		default:
			return wire.AckInvalidInfoType
		}
		return wire.AckOk

	case wire.TagSilencer:
		if len(body) < 5 {
			return wire.AckInvalidSilencerSetting
		}
		mode := silencer.Mode(body[0] &^ 0x80)
		strict := body[0]&0x80 != 0
		cfg := silencer.Config{
			Mode:      mode,
			Intensity: binary.LittleEndian.Uint16(body[1:3]),
			Phase:     binary.LittleEndian.Uint16(body[3:5]),
			Strict:    strict,
		}
		if err := cfg.Validate(dev); err != nil {
			return wire.AckInvalidSilencerSetting
		}
		dev.silencer = cfg
		return wire.AckOk

	case wire.TagModulation, wire.TagGainSTM, wire.TagFociSTM:
		// Only the BEGIN frame carries the header; continuation frames hold
		// buffer data and are accepted without decoding.
		if len(body) < 3 || body[0]&wire.FlagBegin == 0 {
			return wire.AckOk
		}
		div := binary.LittleEndian.Uint16(body[1:3])
		cfg, err := sampling.FromDivision(div)
		if err != nil {
			return wire.AckInvalidSilencerSetting
		}
		if tag == wire.TagModulation {
			dev.activeIntensitySampling, dev.haveIntensitySampling = cfg, true
		} else {
			dev.activePhaseSampling, dev.havePhaseSampling = cfg, true
		}
		return wire.AckOk

	case wire.TagGainSwapSegment:
		if len(body) < 2 {
			return wire.AckNotSupportedTag
		}
		if body[1] != transitionKindImmediate {
			return wire.AckInvalidTransitionMode
		}
		return wire.AckOk

	case wire.TagModulationSwapSegment, wire.TagGainSTMSwapSegment, wire.TagFociSTMSwapSegment:
		if len(body) < 10 {
			return wire.AckNotSupportedTag
		}
		if body[1] == transitionKindSysTime {
			at := time.Unix(0, int64(binary.LittleEndian.Uint64(body[2:10])))
			if at.Before(time.Now().Add(segment.SysTimeSafetyMargin)) {
				return wire.AckMissTransitionTime
			}
		}
		return wire.AckOk

	case wire.TagGain, wire.TagConfigFPGAClock,
		wire.TagForceFan, wire.TagReadsFPGAState, wire.TagConfigPulseWidthEncoder,
		wire.TagPhaseCorrection, wire.TagOutputMask, wire.TagDebug,
		wire.TagEmulateGPIOIn, wire.TagCPUGPIOOut:
		return wire.AckOk

	default:
		return wire.AckNotSupportedTag
	}
}
