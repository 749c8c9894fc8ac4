package tcp

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phasedctl/hostdriver/internal/wire"
)

func Test_Send_WritesLengthPrefixedBatch(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		require.NoError(t, err)
		accepted <- conn
	}()

	l := New(ln.Addr().String())
	require.NoError(t, l.Open(context.Background(), nil))
	defer l.Close()

	server := <-accepted
	defer server.Close()

	tx := make([]wire.TxMessage, 2)
	tx[0].Header = wire.Header{MsgID: 7}
	tx[1].Header = wire.Header{MsgID: 9}
	require.NoError(t, l.Send(context.Background(), tx))

	frameSize := wire.HeaderSize + wire.PayloadSize
	buf := make([]byte, 4+2*frameSize)
	_, err = io.ReadFull(server, buf)
	require.NoError(t, err)

	count := binary.LittleEndian.Uint32(buf[:4])
	assert.EqualValues(t, 2, count)

	var decoded wire.TxMessage
	decoded.Decode(buf[4 : 4+frameSize])
	assert.EqualValues(t, 7, decoded.Header.MsgID)
	decoded.Decode(buf[4+frameSize : 4+2*frameSize])
	assert.EqualValues(t, 9, decoded.Header.MsgID)
}

func Test_Receive_ParsesDataAckPairs(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		require.NoError(t, err)
		accepted <- conn
	}()

	l := New(ln.Addr().String())
	require.NoError(t, l.Open(context.Background(), nil))
	defer l.Close()

	server := <-accepted
	defer server.Close()
	_, err = server.Write([]byte{42, 0, 17, 1})
	require.NoError(t, err)

	rx := make([]wire.RxMessage, 2)
	require.NoError(t, l.Receive(context.Background(), rx))
	assert.Equal(t, wire.RxMessage{Data: 42, Ack: 0}, rx[0])
	assert.Equal(t, wire.RxMessage{Data: 17, Ack: 1}, rx[1])
}

func Test_Send_FailsWhenNotOpen(t *testing.T) {
	l := New("127.0.0.1:1")
	err := l.Send(context.Background(), make([]wire.TxMessage, 1))
	assert.Error(t, err)
}

// Test_Receive_RespectsContextDeadline confirms a non-responding peer
// surfaces as a prompt error instead of hanging io.ReadFull forever.
func Test_Receive_RespectsContextDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		require.NoError(t, err)
		accepted <- conn
	}()

	l := New(ln.Addr().String())
	require.NoError(t, l.Open(context.Background(), nil))
	defer l.Close()

	server := <-accepted
	defer server.Close()
	// Never writes anything: Receive must not block past ctx's deadline.

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	rx := make([]wire.RxMessage, 1)
	err = l.Receive(ctx, rx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
