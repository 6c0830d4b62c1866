package clock

import "time"

// Clock abstracts time.Now so expiry behavior can be pinned in tests.
type Clock interface {
    Now() time.Time
}

type systemClock struct{}

// NewSystem returns a Clock backed by time.Now in UTC.
func NewSystem() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Fixed is a Clock frozen at a settable instant, for tests.
type Fixed struct {
    Instant time.Time
}

// NewFixed returns a Clock that always reports t (in UTC).
func NewFixed(t time.Time) *Fixed { return &Fixed{Instant: t.UTC()} }

func (f *Fixed) Now() time.Time { return f.Instant }

// Advance moves the fixed clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.Instant = f.Instant.Add(d) }
