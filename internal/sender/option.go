package sender

import "time"

// ParallelMode decides whether a send's per-device packing runs serially or
// across goroutines.
type ParallelMode uint8

const (
	// ParallelAuto packs in parallel once the enabled device count reaches
	// the Datagram's ParallelThreshold.
	ParallelAuto ParallelMode = iota
	ParallelAlways
	ParallelNever
)

// Option configures a Sender's timing and concurrency behavior. A
// Datagram's own datagram.Option supplies the ParallelThreshold and, when
// nonzero, overrides Timeout for that one send; everything else here is
// Sender-wide.
type Option struct {
	// SendInterval paces successive frames within one multi-frame send.
	SendInterval time.Duration
	// ReceiveInterval is not consulted by Send: confirmation is a single
	// Link.Receive call bounded by the timeout, with no re-polling.
	ReceiveInterval time.Duration
	// Timeout is the fallback used when a Datagram's Option leaves it zero.
	Timeout time.Duration
	// Parallel selects packing concurrency.
	Parallel ParallelMode
	// Strict, when true, turns a confirm-response timeout or a nonzero ack
	// into an error. When false, Send is best-effort: it still sends and
	// paces, but never fails on an unconfirmed or rejected frame.
	Strict bool
	// Sleeper implements the SendInterval wait between frames.
	Sleeper Sleeper
}

// DefaultOption matches the reference driver's defaults: millisecond
// pacing, a 200ms per-round timeout, automatic parallelism, and strict
// confirmation.
func DefaultOption() Option {
	return Option{
		SendInterval:    time.Millisecond,
		ReceiveInterval: time.Millisecond,
		Timeout:         200 * time.Millisecond,
		Parallel:        ParallelAuto,
		Strict:          true,
		Sleeper:         CoarseSleeper{},
	}
}
