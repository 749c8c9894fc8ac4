package serial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phasedctl/hostdriver/internal/wire"
)

// Opening a real tty device node isn't reachable from this test
// environment; these exercise the behavior that doesn't need one, the way
// the teacher's own serial_port.go left hardware-dependent opens untested.

func Test_Send_FailsWhenNotOpen(t *testing.T) {
	l := New("/dev/ttyUSB0", 115200)
	err := l.Send(context.Background(), make([]wire.TxMessage, 1))
	assert.Error(t, err)
}

func Test_Receive_FailsWhenNotOpen(t *testing.T) {
	l := New("/dev/ttyUSB0", 115200)
	err := l.Receive(context.Background(), make([]wire.RxMessage, 1))
	assert.Error(t, err)
}

func Test_IsOpen_FalseBeforeOpen(t *testing.T) {
	l := New("/dev/ttyUSB0", 115200)
	assert.False(t, l.IsOpen())
}

func Test_Open_FailsForNonexistentDevice(t *testing.T) {
	l := New("/dev/nonexistent-hostdriver-serial-port", 9600)
	err := l.Open(context.Background(), nil)
	assert.Error(t, err)
	assert.False(t, l.IsOpen())
}
