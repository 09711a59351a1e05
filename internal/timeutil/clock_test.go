package timeutil

import (
	"testing"
	"time"
)

func fixedClock(t *testing.T, now time.Time) *Clock {
	t.Helper()
	c, err := NewClockWithNow("UTC", func() time.Time { return now })
	if err != nil {
		t.Fatalf("NewClockWithNow() error = %v", err)
	}
	return c
}

func TestNewClockInvalidTimezone(t *testing.T) {
	if _, err := NewClock("Not/AZone"); err == nil {
		t.Error("NewClock() error = nil, want failure for unknown timezone")
	}
}

func TestNowInLocation(t *testing.T) {
	c, err := NewClockWithNow("Africa/Lagos", func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("NewClockWithNow() error = %v", err)
	}

	now := c.Now()
	if zone, _ := now.Zone(); zone != "WAT" {
		t.Errorf("Now() zone = %q, want WAT", zone)
	}
	// Lagos is UTC+1 year round.
	if now.Hour() != 13 {
		t.Errorf("Now() hour = %d, want 13", now.Hour())
	}
}

func TestExpirationAndIsExpired(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := fixedClock(t, base)

	expires := c.Expiration(3)
	if want := base.Add(3 * time.Minute); !expires.Equal(want) {
		t.Errorf("Expiration(3) = %v, want %v", expires, want)
	}
	if c.IsExpired(expires) {
		t.Error("IsExpired() = true for a future time")
	}
	if !c.IsExpired(base.Add(-time.Second)) {
		t.Error("IsExpired() = false for a past time")
	}
}

func TestNextSignalTime(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		interval int
		want     time.Time
	}{
		{
			name:     "mid interval rounds up",
			now:      time.Date(2025, 6, 1, 12, 3, 30, 0, time.UTC),
			interval: 5,
			want:     time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
		},
		{
			name:     "on the boundary moves to the next slot",
			now:      time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC),
			interval: 5,
			want:     time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC),
		},
		{
			name:     "end of hour rolls over",
			now:      time.Date(2025, 6, 1, 12, 57, 0, 0, time.UTC),
			interval: 5,
			want:     time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fixedClock(t, tt.now)
			got := c.NextSignalTime(tt.interval)
			if !got.Equal(tt.want) {
				t.Errorf("NextSignalTime(%d) = %v, want %v", tt.interval, got, tt.want)
			}
		})
	}
}

func TestTimeUntil(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := fixedClock(t, base)

	tests := []struct {
		name   string
		target time.Time
		want   string
	}{
		{"minutes and seconds", base.Add(2*time.Minute + 30*time.Second), "2m 30s"},
		{"seconds only", base.Add(45 * time.Second), "45s"},
		{"already passed", base.Add(-time.Minute), "EXPIRED"},
		{"exactly now", base, "EXPIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.TimeUntil(tt.target); got != tt.want {
				t.Errorf("TimeUntil() = %q, want %q", got, tt.want)
			}
		})
	}
}
