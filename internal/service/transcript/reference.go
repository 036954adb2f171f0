package transcript

import (
	"fmt"
	"time"
)

// ParseReference reads a client-supplied reference date: RFC 3339, or a
// bare YYYY-MM-DD taken as midnight in loc. Empty means now.
func ParseReference(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("referenceDate %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
