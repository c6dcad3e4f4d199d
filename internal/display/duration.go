package display

import (
	"fmt"
	"time"
)

// Duration renders d as "1 day, 2 hours, 3 minutes, and 4 seconds", skipping
// zero units. Anything under a second renders as "0 seconds".
func Duration(d time.Duration) string {
	total := int64(d / time.Second)
	units := []struct {
		name string
		n    int64
	}{
		{"day", total / 86400},
		{"hour", total % 86400 / 3600},
		{"minute", total % 3600 / 60},
		{"second", total % 60},
	}

	var parts []string
	for _, u := range units {
		if u.n == 0 {
			continue
		}
		part := fmt.Sprintf("%d %s", u.n, u.name)
		if u.n > 1 {
			part += "s"
		}
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		return "0 seconds"
	}
	return JoinList(parts)
}
