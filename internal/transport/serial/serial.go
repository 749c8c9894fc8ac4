// Package serial implements a Link over a single raw serial port, framing
// each round's Tx/Rx batch the same length-prefixed way internal/transport/tcp
// does, using github.com/pkg/term for the actual line I/O the way the
// teacher's serial_port.go opens and configures a device node.
package serial

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/term"

	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// Link opens one raw serial port (a /dev/tty... device node, or Bluetooth
// rfcomm device) at a fixed baud rate and exchanges one length-prefixed
// frame batch per Send/Receive call, the same wire shape tcp.Link uses.
type Link struct {
	Device string
	Baud   int

	mu   sync.Mutex
	port *term.Term
}

// New returns a Link that will open device at baud on Open. baud 0 leaves
// the port's existing speed alone, matching serial_port_open's behavior.
func New(device string, baud int) *Link {
	return &Link{Device: device, Baud: baud}
}

func (l *Link) Open(_ context.Context, _ *geometry.Geometry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.port != nil {
		return nil
	}
	p, err := term.Open(l.Device, term.RawMode)
	if err != nil {
		return errs.Wrap(errs.LinkError, fmt.Sprintf("opening serial port %s", l.Device), err)
	}
	if l.Baud != 0 {
		if err := p.SetSpeed(l.Baud); err != nil {
			p.Close()
			return errs.Wrap(errs.LinkError, fmt.Sprintf("setting %s to %d baud", l.Device, l.Baud), err)
		}
	}
	l.port = p
	return nil
}

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	return err
}

func (l *Link) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port != nil
}

// Update is a no-op: the bridge firmware on the other end of the line
// learns device count purely from frame length, same as internal/transport/tcp.
func (l *Link) Update(context.Context, *geometry.Geometry) error { return nil }

func (l *Link) Send(_ context.Context, tx []wire.TxMessage) error {
	l.mu.Lock()
	port := l.port
	l.mu.Unlock()
	if port == nil {
		return errs.New(errs.LinkClosed, "serial link not open")
	}

	frameSize := wire.HeaderSize + wire.PayloadSize
	buf := make([]byte, 4+len(tx)*frameSize)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(tx)))
	for i := range tx {
		tx[i].Encode(buf[4+i*frameSize : 4+(i+1)*frameSize])
	}
	if _, err := port.Write(buf); err != nil {
		return errs.Wrap(errs.LinkError, "writing tx batch", err)
	}
	return nil
}

func (l *Link) Receive(_ context.Context, rx []wire.RxMessage) error {
	l.mu.Lock()
	port := l.port
	l.mu.Unlock()
	if port == nil {
		return errs.New(errs.LinkClosed, "serial link not open")
	}

	buf := make([]byte, 2*len(rx))
	if _, err := io.ReadFull(port, buf); err != nil {
		return errs.Wrap(errs.LinkError, "reading rx batch", err)
	}
	for i := range rx {
		rx[i] = wire.RxMessage{Data: buf[2*i], Ack: buf[2*i+1]}
	}
	return nil
}
