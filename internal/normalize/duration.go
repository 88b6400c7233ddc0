package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// maxDurationMinutes bounds accepted durations; anything longer is treated
// as unparsable rather than wrapped around.
const maxDurationMinutes = 1_000_000

var (
	plainMinutes = regexp.MustCompile(`^\d+(\.\d+)?$`)
	// "2h 15m", "45m", "3h", "1 hr 5 mins"; both groups optional.
	compoundDuration = regexp.MustCompile(`(?i)^(?:(\d+)\s*h(?:rs?|ours?)?)?\s*(?:(\d+)\s*m(?:ins?|inutes?)?)?$`)
)

// ParseDuration reduces a duration to whole minutes. It accepts a plain
// number of minutes or a compound hours/minutes text. Unparsable input
// yields 0 and false.
func ParseDuration(v any) (int, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int64:
		if x < 0 || x > maxDurationMinutes {
			return 0, false
		}
		return int(x), true
	case int:
		return boundedMinutes(x)
	case float64:
		return floatMinutes(x)
	case []byte:
		return parseDurationText(string(x))
	case string:
		return parseDurationText(x)
	default:
		return parseDurationText(stringify(x))
	}
}

func parseDurationText(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if plainMinutes.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatMinutes(f)
	}

	m := compoundDuration.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, false
	}
	hours, ok := atoiOrZero(m[1])
	if !ok || hours > maxDurationMinutes/60 {
		return 0, false
	}
	minutes, ok := atoiOrZero(m[2])
	if !ok {
		return 0, false
	}
	return boundedMinutes(hours*60 + minutes)
}

func floatMinutes(f float64) (int, bool) {
	if math.IsNaN(f) || f < 0 || f > maxDurationMinutes {
		return 0, false
	}
	return int(math.Round(f)), true
}

func boundedMinutes(n int) (int, bool) {
	if n < 0 || n > maxDurationMinutes {
		return 0, false
	}
	return n, true
}

// atoiOrZero parses an optional regex group; an empty group is 0.
func atoiOrZero(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
