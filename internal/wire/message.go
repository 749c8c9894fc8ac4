package wire

import "encoding/binary"

// PayloadSize is the number of payload bytes carried by a single Tx frame.
// It mirrors the EtherCAT output frame size used by the reference firmware
// minus the 4-byte header below.
const PayloadSize = 626

// HeaderSize is the fixed number of bytes a Header occupies on the wire.
const HeaderSize = 4

// Header is the fixed two-field prologue of every Tx frame. Slot2Offset is
// zero when only slot 1 is occupied, or the byte offset (within Payload)
// where slot 2's record begins.
type Header struct {
	MsgID       MsgID
	Slot2Offset uint16
}

func (h Header) encode(buf []byte) {
	buf[0] = byte(h.MsgID)
	buf[1] = 0
	binary.LittleEndian.PutUint16(buf[2:4], h.Slot2Offset)
}

func decodeHeader(buf []byte) Header {
	return Header{
		MsgID:       MsgID(buf[0]),
		Slot2Offset: binary.LittleEndian.Uint16(buf[2:4]),
	}
}

// TxMessage is one device's frame: a header plus a fixed-size payload that
// holds one or two packed operation records.
type TxMessage struct {
	Header  Header
	payload [PayloadSize]byte
}

// Payload returns the mutable payload slice backing this message.
func (t *TxMessage) Payload() []byte {
	return t.payload[:]
}

// Reset clears the header and zeroes the payload, preparing the message for
// reuse from a pool.
func (t *TxMessage) Reset() {
	t.Header = Header{}
	for i := range t.payload {
		t.payload[i] = 0
	}
}

// Encode serializes the header and payload into dst, which must be at least
// HeaderSize+PayloadSize bytes.
func (t *TxMessage) Encode(dst []byte) {
	t.Header.encode(dst)
	copy(dst[HeaderSize:], t.payload[:])
}

// Decode populates a TxMessage from a previously Encode-d byte slice.
func (t *TxMessage) Decode(src []byte) {
	t.Header = decodeHeader(src)
	copy(t.payload[:], src[HeaderSize:HeaderSize+PayloadSize])
}

// RxMessage is one device's response frame. Data ordinarily echoes the
// MsgID of the frame being confirmed; for FirmInfo sub-queries the device
// overlays the requested info byte into the same field instead. Ack is 0 on
// success or one of the AckError codes.
type RxMessage struct {
	Data uint8
	Ack  uint8
}

// MsgIDEcho interprets Data as an echoed MsgID (the common case outside of
// a FirmInfo probe).
func (r RxMessage) MsgIDEcho() MsgID {
	return MsgID(r.Data)
}
