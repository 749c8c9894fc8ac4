package sender

import (
	"runtime"
	"time"
)

// Sleeper abstracts how a Sender waits out its pacing intervals. Swapping
// it lets a caller trade CPU for timing precision without touching the
// send loop itself.
type Sleeper interface {
	Sleep(d time.Duration)
}

// CoarseSleeper defers to the OS scheduler. Cheap, but wakes with
// millisecond-scale jitter, fine for send/receive intervals measured in
// milliseconds.
type CoarseSleeper struct{}

func (CoarseSleeper) Sleep(d time.Duration) { time.Sleep(d) }

// FineSleeper busy-waits, yielding the processor each iteration, trading
// CPU for the sub-millisecond timing precision a CoarseSleeper can't give.
type FineSleeper struct{}

func (FineSleeper) Sleep(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		runtime.Gosched()
	}
}
