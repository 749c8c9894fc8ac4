// Package sender drives the pack/send/confirm loop: resolving a Datagram
// into per-device Operation pairs, packing them into frames round by
// round, and waiting for every enabled device to echo the sent MsgID
// before moving on.
package sender

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phasedctl/hostdriver/internal/datagram"
	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/link"
	"github.com/phasedctl/hostdriver/internal/operation"
	"github.com/phasedctl/hostdriver/internal/sampling"
	"github.com/phasedctl/hostdriver/internal/segment"
	"github.com/phasedctl/hostdriver/internal/silencer"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// Sender owns one negotiated session against a Link: a resolved firmware
// Version and Limits, the geometry it addresses, and the MsgID sequence
// every frame is stamped with.
type Sender struct {
	Link    link.Link
	Geo     *geometry.Geometry
	Env     environment.Environment
	Version firmware.Version
	Limits  firmware.Limits
	Opt     Option

	msgID wire.MsgID
	pool  link.BufferPool
	log   *log.Logger
}

// New builds a Sender for an already-probed Version and looks up its Limits
// with firmware.For. Callers typically get the Version from auto.Probe.
func New(l link.Link, geo *geometry.Geometry, env environment.Environment, ver firmware.Version, opt Option) *Sender {
	return &Sender{
		Link:    l,
		Geo:     geo,
		Env:     env,
		Version: ver,
		Limits:  firmware.For(ver),
		Opt:     opt,
		msgID:   wire.NewMsgID(),
		log:     log.NewWithOptions(os.Stderr, log.Options{Prefix: "sender"}),
	}
}

func (s *Sender) nextMsgID() wire.MsgID {
	s.msgID.Increment()
	return s.msgID
}

// Send resolves d against every currently-enabled device and drives it to
// completion: one or more pack/send/confirm rounds until every device's
// operation pair reports done.
func (s *Sender) Send(ctx context.Context, d datagram.Datagram) error {
	return s.SendTo(ctx, d, geometry.AllEnabledMask())
}

// SendTo is Send restricted to an explicit DeviceMask, for commands meant
// for a subset of the array (still ANDed with each device's own enabled
// state).
func (s *Sender) SendTo(ctx context.Context, d datagram.Datagram, mask geometry.DeviceMask) error {
	if err := link.EnsureOpen(ctx, s.Link, s.Geo); err != nil {
		return errs.Wrap(errs.LinkError, "opening link", err)
	}
	if err := s.Link.Update(ctx, s.Geo); err != nil {
		return errs.Wrap(errs.LinkError, "updating link geometry", err)
	}

	opt := d.Option()
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = s.Opt.Timeout
	}
	threshold := opt.ParallelThreshold
	if threshold <= 0 {
		threshold = datagram.DefaultParallelThreshold
	}
	parallel := s.resolveParallel(threshold)

	gen, err := d.OperationGenerator(s.Geo, s.Env, mask, s.Limits, s.Version)
	if err != nil {
		return err
	}

	pairs := make([]*operation.Pair, s.Geo.Len())
	s.Geo.Iter(func(i int, dev *geometry.Device) {
		pairs[i] = gen.Generate(dev)
	})

	tx, rx := s.pool.Acquire(s.Geo.Len())
	var handler operation.Handler

	for {
		msgID := s.nextMsgID()
		if err := handler.Pack(msgID, pairs, s.Geo, tx, parallel); err != nil {
			return err
		}
		if err := s.Link.Send(ctx, tx); err != nil {
			return errs.Wrap(errs.LinkError, "sending frame", err)
		}
		if err := s.confirm(ctx, msgID, mask, rx, timeout); err != nil {
			return err
		}
		if handler.IsDone(pairs) {
			return nil
		}
		s.Opt.Sleeper.Sleep(s.Opt.SendInterval)
	}
}

func (s *Sender) resolveParallel(threshold int) bool {
	switch s.Opt.Parallel {
	case ParallelAlways:
		return true
	case ParallelNever:
		return false
	default:
		return s.Geo.NumEnabled() >= threshold
	}
}

// confirm waits (within timeout) for every masked device to echo msgID
// with a zero ack. In non-strict mode it still receives and logs but never
// fails the send.
func (s *Sender) confirm(ctx context.Context, msgID wire.MsgID, mask geometry.DeviceMask, rx []wire.RxMessage, timeout time.Duration) error {
	confirmCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Link.Receive(confirmCtx, rx); err != nil {
		if !s.Opt.Strict {
			s.log.Debug("receive failed in non-strict mode, continuing", "err", err)
			return nil
		}
		if confirmCtx.Err() != nil {
			return errs.Wrap(errs.ConfirmResponseFailed, "timed out waiting for device confirmation", err)
		}
		return errs.Wrap(errs.LinkError, "receiving confirmation", err)
	}

	for i := range rx {
		if !mask.Includes(s.Geo, i) {
			continue
		}
		if rx[i].Ack != 0 {
			if s.Opt.Strict {
				return errs.FromAck(wire.AckError(rx[i].Ack))
			}
			s.log.Debug("device rejected frame in non-strict mode", "device", i, "ack", wire.AckError(rx[i].Ack))
			continue
		}
		if s.Opt.Strict && rx[i].MsgIDEcho() != msgID {
			return errs.New(errs.ConfirmResponseFailed, "device echoed a stale MsgID")
		}
	}
	return nil
}

// InitializeDevices resets and re-synchronizes every device's sampling
// clock. Call once right after a Link opens, before any other Send.
//
// It leads with a throwaway frame before Clear: if the host process
// restarted without a power cycle, its MsgID sequence resets to its initial
// value while the device still remembers the last MsgID it saw, and the
// first real frame can alias that stale value and get silently dropped.
// Nop exists for exactly this; V10 has no Nop tag, so a zero-effect
// Silencer stands in for it there.
func (s *Sender) InitializeDevices(ctx context.Context) error {
	if s.Version.SupportsNop() {
		if err := s.Send(ctx, datagram.Nop{}); err != nil {
			return err
		}
	} else if err := s.Send(ctx, datagram.Silencer{Config: silencer.Disable(s.Limits.SilencerStepsMax)}); err != nil {
		return err
	}
	if err := s.Send(ctx, datagram.Clear{}); err != nil {
		return err
	}
	return s.Send(ctx, datagram.Synchronize{})
}

// Close drives every device back to a quiescent, silent state and closes
// the underlying Link. It never fails loudly on the way down past the
// first error: it records and returns the first one, but still attempts
// Link.Close().
func (s *Sender) Close(ctx context.Context) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	record(s.Send(ctx, datagram.Silencer{Config: silencer.Disable(s.Limits.SilencerStepsMax)}))

	quiet := datagram.Tuple{
		A: datagram.Modulation{
			Buffer:     []uint8{0},
			Clock:      mustDivisionOne(),
			Segment:    segment.S0,
			Loop:       segment.InfiniteLoop(),
			Transition: segment.ImmediateTransition(),
		},
		B: datagram.Gain{
			Calc: func(dev *geometry.Device) []datagram.GainValue {
				return make([]datagram.GainValue, dev.NumTransducers())
			},
			Segment:    segment.S0,
			Transition: segment.ImmediateTransition(),
		},
	}
	record(s.Send(ctx, quiet))
	record(s.Send(ctx, datagram.Clear{}))

	if err := s.Link.Close(); err != nil {
		record(errs.Wrap(errs.LinkError, "closing link", err))
	}
	return firstErr
}

// mustDivisionOne is the fastest legal sampling division, used for the
// inert buffer Close writes: its content never matters since output is
// silenced by the Silencer and zero gain before it ever plays.
func mustDivisionOne() sampling.Config {
	cfg, _ := sampling.FromDivision(1)
	return cfg
}
