// Package tcp implements a Link over a single TCP connection to an
// EtherCAT-to-TCP bridge, framing each round's Tx/Rx batch with a length
// prefix the way the reference driver's KISS-over-TCP transport frames
// AX.25 packets.
package tcp

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/phasedctl/hostdriver/internal/errs"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// Link dials a single persistent TCP connection. Send writes one
// length-prefixed batch of Tx frames; Receive reads two bytes (data, ack)
// per device, with no prefix.
type Link struct {
	addr string

	mu   sync.Mutex
	conn net.Conn
}

// New returns a Link that will dial addr (host:port) on Open.
func New(addr string) *Link {
	return &Link{addr: addr}
}

func (l *Link) Open(ctx context.Context, geo *geometry.Geometry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		return nil
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", l.addr)
	if err != nil {
		return errs.Wrap(errs.LinkError, fmt.Sprintf("dialing %s", l.addr), err)
	}
	l.conn = conn
	return nil
}

func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}

func (l *Link) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn != nil
}

// Update is a no-op for this transport: the bridge on the other end learns
// device count purely from frame length.
func (l *Link) Update(context.Context, *geometry.Geometry) error { return nil }

// deadlineFor translates ctx's deadline, if any, into the zero-or-absolute
// time net.Conn.Set*Deadline expects: the zero Time clears a previously set
// deadline when ctx carries none.
func deadlineFor(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		return dl
	}
	return time.Time{}
}

func (l *Link) Send(ctx context.Context, tx []wire.TxMessage) error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn == nil {
		return errs.New(errs.LinkClosed, "tcp link not open")
	}
	if err := conn.SetWriteDeadline(deadlineFor(ctx)); err != nil {
		return errs.Wrap(errs.LinkError, "setting write deadline", err)
	}

	frameSize := wire.HeaderSize + wire.PayloadSize
	buf := make([]byte, 4+len(tx)*frameSize)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(tx)))
	for i := range tx {
		tx[i].Encode(buf[4+i*frameSize : 4+(i+1)*frameSize])
	}
	_, err := conn.Write(buf)
	if err != nil {
		return errs.Wrap(errs.LinkError, "writing tx batch", err)
	}
	return nil
}

func (l *Link) Receive(ctx context.Context, rx []wire.RxMessage) error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn == nil {
		return errs.New(errs.LinkClosed, "tcp link not open")
	}
	if err := conn.SetReadDeadline(deadlineFor(ctx)); err != nil {
		return errs.Wrap(errs.LinkError, "setting read deadline", err)
	}

	buf := make([]byte, 2*len(rx))
	if _, err := io.ReadFull(conn, buf); err != nil {
		return errs.Wrap(errs.LinkError, "reading rx batch", err)
	}
	for i := range rx {
		rx[i] = wire.RxMessage{Data: buf[2*i], Ack: buf[2*i+1]}
	}
	return nil
}
