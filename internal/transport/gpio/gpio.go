// Package gpio wraps another Link with a hardware enable line, asserted
// before each Send and deasserted once the matching Receive completes:
// the same key-before-transmit/unkey-after shape a radio PTT line uses,
// generalized here to gate array output.
package gpio

import (
	"context"

	"github.com/warthog618/go-gpiocdev"

	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/link"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// Link gates an underlying transport with a GPIO output line: asserted
// before Send, deasserted after Receive. ActiveLow inverts the line's
// asserted level, matching an active-low enable gate.
type Link struct {
	Inner     link.Link
	Chip      string
	Offset    int
	ActiveLow bool

	line *gpiocdev.Line
}

// New wraps inner with a GPIO enable gate on chip/offset.
func New(inner link.Link, chip string, offset int, activeLow bool) *Link {
	return &Link{Inner: inner, Chip: chip, Offset: offset, ActiveLow: activeLow}
}

func (l *Link) Open(ctx context.Context, geo *geometry.Geometry) error {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(l.deassertedValue())}
	if l.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	line, err := gpiocdev.RequestLine(l.Chip, l.Offset, opts...)
	if err != nil {
		return errs.Wrap(errs.LinkError, "requesting gpio enable line", err)
	}
	l.line = line
	return l.Inner.Open(ctx, geo)
}

func (l *Link) Close() error {
	var firstErr error
	if l.line != nil {
		if err := l.line.Close(); err != nil {
			firstErr = errs.Wrap(errs.LinkError, "releasing gpio enable line", err)
		}
		l.line = nil
	}
	if err := l.Inner.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (l *Link) IsOpen() bool { return l.line != nil && l.Inner.IsOpen() }

func (l *Link) Update(ctx context.Context, geo *geometry.Geometry) error {
	return l.Inner.Update(ctx, geo)
}

func (l *Link) deassertedValue() int { return 0 }
func (l *Link) assertedValue() int   { return 1 }

func (l *Link) Send(ctx context.Context, tx []wire.TxMessage) error {
	if l.line == nil {
		return errs.New(errs.LinkClosed, "gpio link not open")
	}
	if err := l.line.SetValue(l.assertedValue()); err != nil {
		return errs.Wrap(errs.LinkError, "asserting gpio enable line", err)
	}
	return l.Inner.Send(ctx, tx)
}

func (l *Link) Receive(ctx context.Context, rx []wire.RxMessage) error {
	if l.line == nil {
		return errs.New(errs.LinkClosed, "gpio link not open")
	}
	err := l.Inner.Receive(ctx, rx)
	if setErr := l.line.SetValue(l.deassertedValue()); setErr != nil && err == nil {
		err = errs.Wrap(errs.LinkError, "deasserting gpio enable line", setErr)
	}
	return err
}
