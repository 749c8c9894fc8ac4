package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TxMessage_EncodeDecodeRoundTrip(t *testing.T) {
	var tx TxMessage
	tx.Header = Header{MsgID: 42, Slot2Offset: 17}
	copy(tx.Payload(), []byte{1, 2, 3, 4})

	buf := make([]byte, HeaderSize+PayloadSize)
	tx.Encode(buf)

	var decoded TxMessage
	decoded.Decode(buf)

	assert.Equal(t, tx.Header, decoded.Header)
	assert.Equal(t, tx.Payload(), decoded.Payload())
}

func Test_TxMessage_Reset(t *testing.T) {
	var tx TxMessage
	tx.Header = Header{MsgID: 9, Slot2Offset: 3}
	tx.Payload()[0] = 0xFF

	tx.Reset()

	assert.Equal(t, Header{}, tx.Header)
	for _, b := range tx.Payload() {
		require.EqualValues(t, 0, b)
	}
}

func Test_RxMessage_MsgIDEcho(t *testing.T) {
	rx := RxMessage{Data: 200, Ack: 0}
	assert.Equal(t, MsgID(200), rx.MsgIDEcho())
}
