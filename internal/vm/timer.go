package vm

import "time"

// TimerInterval is the 60 Hz decrement period of both timers.
const TimerInterval = 16600 * time.Microsecond

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Timers holds the delay and sound counters. They count down at 60 Hz of
// wall-clock time, independently of how many instructions execute.
type Timers struct {
	delay uint8
	sound uint8
	last  time.Time
}

func newTimers(now time.Time) *Timers {
	return &Timers{last: now}
}

// Tick decrements both counters once if a full interval has elapsed since
// the previous decrement and reports whether it did.
func (t *Timers) Tick(now time.Time) bool {
	if now.Sub(t.last) < TimerInterval {
		return false
	}

	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
	}

	t.last = now
	return true
}

func (t *Timers) Delay() uint8 {
	return t.delay
}

func (t *Timers) Sound() uint8 {
	return t.sound
}

func (t *Timers) SetDelay(v uint8) {
	t.delay = v
}

func (t *Timers) SetSound(v uint8) {
	t.sound = v
}

func (t *Timers) reset(now time.Time) {
	*t = *newTimers(now)
}
