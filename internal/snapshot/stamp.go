package snapshot

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// StampLayout is the timestamp format embedded in snapshot identifiers
const StampLayout = "2006-01-02_150405"

// ErrBadStamp is returned for identifiers without a parseable timestamp
var ErrBadStamp = errors.New("snapshot identifier has no parseable timestamp")

var stampPattern = regexp.MustCompile(`(\d{4}-\d\d-\d\d_\d{6})`)

// ParseStamp extracts the YYYY-MM-DD_HHMMSS timestamp from a snapshot identifier
func ParseStamp(name string, loc *time.Location) (time.Time, error) {
	m := stampPattern.FindString(name)
	if m == "" {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadStamp, name)
	}
	t, err := time.ParseInLocation(StampLayout, m, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrBadStamp, name, err)
	}
	return t, nil
}

// ParseOffset parses a fixed UTC offset such as "+01:00", "+0100" or "UTC"
func ParseOffset(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "UTC") || s == "Z" {
		return time.UTC, nil
	}
	for _, layout := range []string{"-07:00", "-0700", "-07"} {
		if t, err := time.Parse(layout, s); err == nil {
			_, offset := t.Zone()
			return time.FixedZone(s, offset), nil
		}
	}
	return nil, fmt.Errorf("invalid UTC offset %q", s)
}
