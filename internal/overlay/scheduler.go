package overlay

import (
	"sync"
	"time"
)

// Scheduler delivers "next frame" callbacks. Exactly one callback is ever
// pending per renderer; scheduling returns a cancel func so teardown can
// provably stop all animation work.
type Scheduler interface {
	NextFrame(f func()) (cancel func())
}

// FrameInterval is the paint cadence of the timer-backed scheduler,
// roughly 30 frames per second.
const FrameInterval = 33 * time.Millisecond

// TimerScheduler schedules frames on a fixed delay. OnFrame, when set,
// runs after every delivered frame callback so a host event loop can be
// nudged to repaint.
type TimerScheduler struct {
	OnFrame func()
}

// NextFrame schedules f for the next frame tick.
func (s *TimerScheduler) NextFrame(f func()) (cancel func()) {
	var mu sync.Mutex
	cancelled := false
	timer := time.AfterFunc(FrameInterval, func() {
		mu.Lock()
		dead := cancelled
		mu.Unlock()
		if dead {
			return
		}
		f()
		if s.OnFrame != nil {
			s.OnFrame()
		}
	})
	return func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		timer.Stop()
	}
}
