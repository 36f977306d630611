package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// LocalDateTimeLayout is the backend's zone-less timestamp format.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// LocalDateTime is a wall-clock timestamp without a zone. It is parsed in
// UTC so values compare consistently.
type LocalDateTime struct {
	time.Time
}

// ParseLocalDateTime accepts the backend layout and, for convenience on the
// command line, a bare date (midnight) or a minute-precision timestamp.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	for _, layout := range []string{LocalDateTimeLayout, "2006-01-02T15:04", "2006-01-02 15:04", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return LocalDateTime{Time: t}, nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("invalid date-time %q, want %s", s, LocalDateTimeLayout)
}

func (d LocalDateTime) String() string {
	return d.Format(LocalDateTimeLayout)
}

func (d LocalDateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *LocalDateTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	// the backend sometimes carries fractional seconds
	t, err := time.Parse("2006-01-02T15:04:05.999999999", s)
	if err != nil {
		return fmt.Errorf("invalid date-time %q: %w", s, err)
	}
	d.Time = t
	return nil
}
