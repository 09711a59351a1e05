package timeutil

import (
	"fmt"
	"time"
)

// Clock supplies current time and expiry calculation in the configured
// timezone. Components take their time from here, never from the
// system directly, so tests can pin it.
type Clock struct {
	loc   *time.Location
	nowFn func() time.Time
}

// NewClock creates a clock for an IANA timezone name.
func NewClock(timezone string) (*Clock, error) {
	return NewClockWithNow(timezone, time.Now)
}

// NewClockWithNow creates a clock with an injected time source.
func NewClockWithNow(timezone string, nowFn func() time.Time) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc, nowFn: nowFn}, nil
}

// Now returns the current time in the configured timezone.
func (c *Clock) Now() time.Time {
	return c.nowFn().In(c.loc)
}

// Expiration returns now plus the given number of minutes.
func (c *Clock) Expiration(minutes int) time.Time {
	return c.Now().Add(time.Duration(minutes) * time.Minute)
}

// IsExpired reports whether t has passed.
func (c *Clock) IsExpired(t time.Time) bool {
	return c.Now().After(t)
}

// NextSignalTime rounds up to the next interval boundary within the
// hour.
func (c *Clock) NextSignalTime(intervalMinutes int) time.Time {
	now := c.Now()
	next := ((now.Minute() / intervalMinutes) + 1) * intervalMinutes
	if next >= 60 {
		return now.Truncate(time.Hour).Add(time.Hour)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), next, 0, 0, c.loc)
}

// TimeUntil formats a human-readable countdown to t.
func (c *Clock) TimeUntil(t time.Time) string {
	remaining := t.Sub(c.Now())
	if remaining <= 0 {
		return "EXPIRED"
	}

	minutes := int(remaining.Seconds()) / 60
	seconds := int(remaining.Seconds()) % 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
