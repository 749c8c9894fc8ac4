// Package opimpl holds the concrete Operation implementations shared by
// every Datagram. Firmware versions differ mostly in which tags they allow
// and what table sizes they pass in, not in how bytes get framed, so the
// framing lives here once.
package opimpl

import (
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// SingleFrame packs a fixed tag byte followed by a pre-serialized body in
// exactly one frame, then reports done. Most control datagrams (Clear,
// Synchronize, Silencer, SwapSegment, ForceFan, ...) are this shape.
type SingleFrame struct {
	Tag  wire.TypeTag
	Body []byte
	done bool
}

func (o *SingleFrame) RequiredSize(*geometry.Device) int { return 1 + len(o.Body) }

func (o *SingleFrame) Pack(_ *geometry.Device, buf []byte) (int, error) {
	buf[0] = byte(o.Tag)
	n := copy(buf[1:], o.Body)
	o.done = true
	return 1 + n, nil
}

func (o *SingleFrame) IsDone() bool { return o.done }
