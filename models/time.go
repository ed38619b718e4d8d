package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PlatformTimeLayout is the timestamp layout used by the platform API.
const PlatformTimeLayout = "2006-01-02 15:04:05"

// PlatformTime is a time.Time that marshals in the platform's layout.
type PlatformTime struct {
	time.Time
}

// NewPlatformTime wraps t, or returns nil when t is nil.
func NewPlatformTime(t *time.Time) *PlatformTime {
	if t == nil {
		return nil
	}
	return &PlatformTime{Time: *t}
}

// UnmarshalJSON implements json.Unmarshaler for PlatformTime.
// It accepts the platform layout, a bare date, and RFC3339.
func (t *PlatformTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{PlatformTimeLayout, time.DateOnly, time.RFC3339} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("parse platform time %q", s)
}

// MarshalJSON implements json.Marshaler for PlatformTime.
func (t PlatformTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(PlatformTimeLayout))
}
