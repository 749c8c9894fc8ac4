// Package link defines the transport seam every Sender talks through, and
// a small pool that reuses Tx frame buffers across sends.
package link

import (
	"context"

	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// Link is the boundary between the Sender and whatever physical transport
// carries frames to and from the device array (EtherCAT gateway, TCP
// bridge, GPIO-gated serial, or an in-memory emulator for tests).
type Link interface {
	// Open prepares the transport for traffic to the given geometry.
	Open(ctx context.Context, geo *geometry.Geometry) error
	// Close releases transport resources. Idempotent.
	Close() error
	// IsOpen reports whether Open has succeeded and Close has not yet run.
	IsOpen() bool
	// Send transmits one frame per device in tx, in device order.
	Send(ctx context.Context, tx []wire.TxMessage) error
	// Receive fills rx with the most recent response from every device.
	// It must not block past ctx's deadline.
	Receive(ctx context.Context, rx []wire.RxMessage) error
	// Update notifies the transport that geometry enable/disable state or
	// device count has changed since Open.
	Update(ctx context.Context, geo *geometry.Geometry) error
}

// EnsureOpen opens l against geo if it is not already open.
func EnsureOpen(ctx context.Context, l Link, geo *geometry.Geometry) error {
	if l.IsOpen() {
		return nil
	}
	return l.Open(ctx, geo)
}

// BufferPool hands out reusable Tx/Rx slices sized for a device count, so a
// Sender doesn't allocate a fresh pair of slices on every send. The pool
// holds a single Tx/Rx set, reallocated only when a larger device count is
// requested, matching the reference driver's
// single-buffer-in-flight design: Send is never called concurrently with
// itself on the same Sender.
type BufferPool struct {
	tx []wire.TxMessage
	rx []wire.RxMessage
}

// Acquire returns Tx/Rx slices of length n, reusing the pool's backing
// arrays when they are already at least that large.
func (p *BufferPool) Acquire(n int) ([]wire.TxMessage, []wire.RxMessage) {
	if cap(p.tx) < n {
		p.tx = make([]wire.TxMessage, n)
	} else {
		p.tx = p.tx[:n]
	}
	if cap(p.rx) < n {
		p.rx = make([]wire.RxMessage, n)
	} else {
		p.rx = p.rx[:n]
	}
	for i := range p.tx {
		p.tx[i].Reset()
		p.rx[i] = wire.RxMessage{}
	}
	return p.tx, p.rx
}
