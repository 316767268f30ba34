// Package clock provides the Clock Port (spec §4.B): wall-clock time,
// monotonic time, and the user's local calendar date, injectable so tests
// are deterministic.
package clock

import "time"

// Clock is the Clock Port contract.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time

	// Monotonic returns a nanosecond monotonic reading, suitable only for
	// measuring elapsed durations, never for display or storage.
	Monotonic() int64

	// Today returns the current calendar date in the user's local
	// timezone — used only for "problems solved today" aggregations.
	Today() time.Time
}

// Real is the production Clock backed by the standard library.
type Real struct{}

// NewReal returns the production Clock.
func NewReal() Real { return Real{} }

func (Real) Now() time.Time { return time.Now() }

// processStart anchors Real.Monotonic; time.Since reads Go's monotonic clock.
var processStart = time.Now()

func (Real) Monotonic() int64 { return int64(time.Since(processStart)) }

func (Real) Today() time.Time {
	now := time.Now().Local()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Frozen is a deterministic Clock for tests: it always reports the same
// instant until advanced explicitly.
type Frozen struct {
	at   time.Time
	mono int64
}

// NewFrozen returns a Clock frozen at at.
func NewFrozen(at time.Time) *Frozen {
	return &Frozen{at: at}
}

func (f *Frozen) Now() time.Time { return f.at }

func (f *Frozen) Monotonic() int64 { return f.mono }

func (f *Frozen) Today() time.Time {
	local := f.at.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

// Advance moves the frozen clock forward by d, advancing both the wall clock
// and the monotonic counter.
func (f *Frozen) Advance(d time.Duration) {
	f.at = f.at.Add(d)
	f.mono += int64(d)
}

// Set pins the frozen clock to a specific instant.
func (f *Frozen) Set(at time.Time) {
	f.at = at
}
