package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a virtual clock for tests. Time only moves when Advance is
// called; due callbacks run synchronously on the advancing goroutine.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*fakeTimer
	tickers []*fakeTicker
}

func NewFake() *Fake {
	return &Fake{now: time.Unix(1700000000, 0)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{clock: f, at: f.now.Add(d), fn: fn}
	f.timers = append(f.timers, t)
	return t
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{clock: f, period: d, next: f.now.Add(d), ch: make(chan time.Time, 16)}
	f.tickers = append(f.tickers, t)
	return t
}

// Advance moves the clock forward and fires every timer and ticker
// that becomes due, in chronological order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		fn, at, ok := f.nextDue(target)
		if !ok {
			break
		}
		f.mu.Lock()
		f.now = at
		f.mu.Unlock()
		if fn != nil {
			fn()
		}
	}

	f.mu.Lock()
	f.now = target
	f.mu.Unlock()
}

// nextDue pops the earliest timer/ticker firing at or before target.
func (f *Fake) nextDue(target time.Time) (func(), time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sort.Slice(f.timers, func(i, j int) bool { return f.timers[i].at.Before(f.timers[j].at) })

	var bestTimer *fakeTimer
	for _, t := range f.timers {
		if !t.stopped && !t.fired && !t.at.After(target) {
			bestTimer = t
			break
		}
	}

	var bestTicker *fakeTicker
	for _, t := range f.tickers {
		if !t.stopped && !t.next.After(target) {
			if bestTicker == nil || t.next.Before(bestTicker.next) {
				bestTicker = t
			}
		}
	}

	switch {
	case bestTimer != nil && (bestTicker == nil || !bestTicker.next.Before(bestTimer.at)):
		bestTimer.fired = true
		return bestTimer.fn, bestTimer.at, true
	case bestTicker != nil:
		at := bestTicker.next
		bestTicker.next = at.Add(bestTicker.period)
		select {
		case bestTicker.ch <- at:
		default:
		}
		return nil, at, true
	default:
		return nil, time.Time{}, false
	}
}

type fakeTimer struct {
	clock   *Fake
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

type fakeTicker struct {
	clock   *Fake
	period  time.Duration
	next    time.Time
	ch      chan time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}
