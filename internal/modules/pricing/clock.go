// README: Clock abstraction so "today" is injected rather than read globally.
package pricing

import "time"

type Clock interface {
	Now() time.Time
}

// SystemClock reads wall-clock time in a fixed location (the business timezone).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always reports the same instant. Used by tests and by farectl --now.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}
