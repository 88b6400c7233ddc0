package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func isGenreSeparator(r rune) bool {
	return r == ',' || r == '|' || r == '/' || r == ';'
}

// ParseGenres turns a genre field into canonical tokens. A single genre and a
// delimited list ("Action, Drama", "Sci-Fi/Fantasy") are handled the same
// way. Tokens are title-cased and de-duplicated case-insensitively, keeping
// the source order.
func ParseGenres(v any) []string {
	var parts []string
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		for _, s := range x {
			parts = append(parts, strings.FieldsFunc(s, isGenreSeparator)...)
		}
	case []byte:
		parts = strings.FieldsFunc(string(x), isGenreSeparator)
	case string:
		parts = strings.FieldsFunc(x, isGenreSeparator)
	default:
		parts = strings.FieldsFunc(stringify(x), isGenreSeparator)
	}

	caser := cases.Title(language.English)
	seen := make(map[string]bool, len(parts))
	var out []string
	for _, p := range parts {
		g := strings.Join(strings.Fields(p), " ")
		if g == "" || strings.EqualFold(g, "nan") || strings.EqualFold(g, "null") {
			continue
		}
		key := strings.ToLower(g)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, caser.String(g))
	}
	return out
}

// GenreKey is the comparison key used for genre membership.
func GenreKey(g string) string {
	return strings.ToLower(strings.Join(strings.Fields(g), " "))
}
