package datagram

import (
	"encoding/binary"

	"github.com/phasedctl/hostdriver/internal/segment"
)

// transitionByte values match the device-side TransitionMode encoding.
const (
	transImmediate byte = iota
	transExt
	transSyncIdx
	transSysTime
	transGPIO
	transNone
)

func encodeSegment(s segment.Segment) byte {
	if s == segment.S1 {
		return 1
	}
	return 0
}

// encodeTransition serializes a TransitionMode as a 1-byte kind followed by
// an 8-byte little-endian DC system time (zero when not SysTime).
func encodeTransition(t segment.TransitionMode) []byte {
	buf := make([]byte, 9)
	switch t.Kind {
	case segment.Immediate:
		buf[0] = transImmediate
	case segment.Ext:
		buf[0] = transExt
	case segment.SyncIdx:
		buf[0] = transSyncIdx
	case segment.SysTime:
		buf[0] = transSysTime
		binary.LittleEndian.PutUint64(buf[1:], uint64(t.AtTime.UnixNano()))
	case segment.GPIO:
		buf[0] = transGPIO
	case segment.None:
		buf[0] = transNone
	}
	return buf
}

func encodeLoopBehavior(lb segment.LoopBehavior) []byte {
	buf := make([]byte, 5)
	if lb.Infinite {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint32(buf[1:], lb.Count)
	return buf
}
