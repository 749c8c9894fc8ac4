package opimpl

import (
	"github.com/phasedctl/hostdriver/internal/geometry"
	"github.com/phasedctl/hostdriver/internal/wire"
)

// Chunked streams an arbitrarily large pre-serialized buffer across as many
// frames as it takes, writing Header once (on the BEGIN frame) and setting
// FlagEnd (plus FlagUpdate, when requested) on the frame that exhausts Data.
// Modulation, GainSTM and FociSTM buffers, and the pulse-width-encoder
// table, are all this shape: a tag, a one-time header, then a byte stream.
type Chunked struct {
	Tag         wire.TypeTag
	Header      []byte
	Data        []byte
	FlagUpdate  bool

	offset int
	done   bool
}

func (o *Chunked) RequiredSize(*geometry.Device) int {
	n := 2 // tag + flags
	if o.offset == 0 {
		n += len(o.Header)
	}
	if o.offset < len(o.Data) {
		n++ // at least one data byte to make progress
	}
	return n
}

func (o *Chunked) Pack(_ *geometry.Device, buf []byte) (int, error) {
	buf[0] = byte(o.Tag)
	var flags byte
	pos := 2

	if o.offset == 0 {
		flags |= wire.FlagBegin
		pos += copy(buf[pos:], o.Header)
	}

	remaining := len(o.Data) - o.offset
	avail := len(buf) - pos
	chunk := remaining
	if chunk > avail {
		chunk = avail
	}
	if chunk < 0 {
		chunk = 0
	}
	pos += copy(buf[pos:], o.Data[o.offset:o.offset+chunk])
	o.offset += chunk

	if o.offset >= len(o.Data) {
		flags |= wire.FlagEnd
		if o.FlagUpdate {
			flags |= wire.FlagUpdate
		}
		o.done = true
	}
	buf[1] = flags
	return pos, nil
}

func (o *Chunked) IsDone() bool { return o.done }
