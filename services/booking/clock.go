package booking

import "time"

// Clock supplies "now" for future-date validation. Injected so tests
// can pin the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
