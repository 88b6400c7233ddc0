package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// maxVotesFloat is 2^63, the first float64 outside the int64 range.
const maxVotesFloat = float64(math.MaxInt64)

var (
	voteStrip    = strings.NewReplacer(",", "", "(", "", ")", "")
	voteMantissa = regexp.MustCompile(`^\d+(\.\d+)?$`)
	voteInteger  = regexp.MustCompile(`^\d+$`)
)

// ParseVotes converts a vote count such as "12,345", "(12,345)" or "1.2K"
// into a non-negative integer. The bool is false when the input could not be
// parsed and the result is the 0 fallback.
func ParseVotes(v any) (int64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int64:
		if x < 0 {
			return 0, false
		}
		return x, true
	case int:
		if x < 0 {
			return 0, false
		}
		return int64(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return floatVotes(x)
	case []byte:
		return parseVoteText(string(x))
	case string:
		return parseVoteText(x)
	default:
		return parseVoteText(stringify(x))
	}
}

func parseVoteText(s string) (int64, bool) {
	s = strings.TrimSpace(voteStrip.Replace(s))
	if s == "" {
		return 0, false
	}

	multiplier := 1.0
	switch s[len(s)-1] {
	case 'K', 'k':
		multiplier = 1e3
	case 'M', 'm':
		multiplier = 1e6
	}
	if multiplier > 1 {
		s = strings.TrimSpace(s[:len(s)-1])
		if !voteMantissa.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatVotes(math.Round(f * multiplier))
	}

	if !voteInteger.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// floatVotes converts a whole float to a vote count, rejecting values that
// are negative or do not fit in an int64.
func floatVotes(f float64) (int64, bool) {
	if math.IsNaN(f) || f < 0 || f >= maxVotesFloat {
		return 0, false
	}
	return int64(f), true
}
