// Package errs defines the one typed error value this driver returns
// everywhere: a single per-subsystem error type instead of a scattering
// of sentinel vars.
package errs

import (
	"fmt"

	"github.com/phasedctl/hostdriver/internal/wire"
)

// Kind classifies why a driver call failed.
type Kind uint8

const (
	// InputOutOfRange is a caller bug: a buffer, divider or duty value
	// fell outside what the firmware can hold. Fails fast, before anything
	// is sent.
	InputOutOfRange Kind = iota
	// InvalidTransitionMode mirrors a device-side rejection a SwapSegment
	// would provoke, checked synchronously instead.
	InvalidTransitionMode
	// InvalidSegmentTransition means the target segment's stored content
	// kind or loop behavior is incompatible with the requested transition.
	InvalidSegmentTransition
	// DeviceRejected wraps a nonzero ack byte a device actually returned.
	DeviceRejected
	// ConfirmResponseFailed means the timeout elapsed without every
	// enabled device echoing the sent MsgID, in strict mode.
	ConfirmResponseFailed
	// LinkError wraps a transport failure, propagated verbatim.
	LinkError
	// LinkClosed means a send was attempted on a Link that was never
	// opened or has since been closed.
	LinkClosed
	// FirmwareVersionMismatch means devices disagreed on CPU major byte
	// during the Auto probe.
	FirmwareVersionMismatch
	// UnsupportedFirmware means a probed CPU major byte matched no known
	// version.
	UnsupportedFirmware
	// UnsupportedOperation means a Datagram was used against a firmware
	// version that lacks its TypeTag.
	UnsupportedOperation
)

func (k Kind) String() string {
	switch k {
	case InputOutOfRange:
		return "input out of range"
	case InvalidTransitionMode:
		return "invalid transition mode"
	case InvalidSegmentTransition:
		return "invalid segment transition"
	case DeviceRejected:
		return "device rejected"
	case ConfirmResponseFailed:
		return "confirm response failed"
	case LinkError:
		return "link error"
	case LinkClosed:
		return "link closed"
	case FirmwareVersionMismatch:
		return "firmware version mismatch"
	case UnsupportedFirmware:
		return "unsupported firmware"
	case UnsupportedOperation:
		return "unsupported operation"
	default:
		return "unknown error"
	}
}

// Error is the one error type this driver returns. Msg adds context beyond
// Kind's generic label; Cause, when present, is the wrapped underlying
// error (a link failure, an ack error, etc).
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match on Kind alone: errors.Is(err, &Error{Kind: X}).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New constructs an Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an Error wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// FromAck maps a nonzero device ack byte to a typed DeviceRejected error.
func FromAck(ack wire.AckError) *Error {
	return &Error{Kind: DeviceRejected, Msg: ack.String()}
}
