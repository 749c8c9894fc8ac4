// Package datagram implements every user-facing command the driver can
// send: each type here builds the per-device Operation pair a Sender packs
// into frames, against a negotiated firmware Version and its Limits.
package datagram

import (
	"time"

	"github.com/phasedctl/hostdriver/internal/environment"
	"github.com/phasedctl/hostdriver/internal/firmware"
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/operation"
)

// DefaultParallelThreshold is the enabled device count at or above which a
// Sender packs concurrently by default.
const DefaultParallelThreshold = 4

// DefaultTimeout is used by any Datagram whose Option doesn't set one.
const DefaultTimeout = 200 * time.Millisecond

// Option carries the per-send knobs a Datagram may override: how long the
// Sender waits for every device to confirm, and the device count at or
// above which it packs concurrently instead of serially.
type Option struct {
	Timeout           time.Duration
	ParallelThreshold int
}

// DefaultOption is what a Datagram returns when it has no reason to
// deviate from driver-wide defaults.
func DefaultOption() Option {
	return Option{Timeout: DefaultTimeout, ParallelThreshold: DefaultParallelThreshold}
}

// Datagram is anything the driver can send. OperationGenerator builds the
// per-device Operation factory for one send, checking the request against
// ver/limits up front so a malformed buffer fails before anything goes on
// the wire.
type Datagram interface {
	Option() Option
	OperationGenerator(geo *geometry.Geometry, env environment.Environment, mask geometry.DeviceMask, limits firmware.Limits, ver firmware.Version) (operation.Generator, error)
}

// perDevice is the common Generator shape: a slice of *operation.Pair
// indexed by device, with nil for devices the mask excludes.
type perDevice struct {
	pairs []*operation.Pair
}

func (g *perDevice) Generate(dev *geometry.Device) *operation.Pair {
	if dev.Index() >= len(g.pairs) {
		return nil
	}
	return g.pairs[dev.Index()]
}

func newPerDevice(n int) *perDevice {
	return &perDevice{pairs: make([]*operation.Pair, n)}
}
