package normalize

import (
	"math"
	"strconv"
	"strings"

	"moviedash/pkg/models"
)

const (
	MinRating = 0.0
	MaxRating = 10.0
)

// ParseRating coerces v to a rating in [MinRating, MaxRating]. Anything else,
// including missing values, yields an unknown rating and false.
func ParseRating(v any) (models.Rating, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return models.UnknownRating(), false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case []byte:
		return parseRatingText(string(x))
	case string:
		return parseRatingText(x)
	default:
		return parseRatingText(stringify(x))
	}
	return boundRating(f)
}

func parseRatingText(s string) (models.Rating, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.UnknownRating(), false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.UnknownRating(), false
	}
	return boundRating(f)
}

func boundRating(f float64) (models.Rating, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < MinRating || f > MaxRating {
		return models.UnknownRating(), false
	}
	return models.KnownRating(f), true
}
