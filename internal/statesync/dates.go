package statesync

import (
	"regexp"
	"time"
)

// JSON round-trips turn time.Time values into ISO 8601 strings. ReviveDates
// walks decoded JSON and converts ISO-looking strings back into time.Time,
// matching on pattern rather than on any schema.
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T[\d:.Z+-]+)?$`)

// ReviveDates recursively converts ISO 8601 date strings in decoded JSON
// (maps, slices, strings) into time.Time values. Strings that match the
// pattern but fail to parse are left untouched.
func ReviveDates(value any) any {
	switch v := value.(type) {
	case string:
		if !isoDatePattern.MatchString(v) {
			return v
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = ReviveDates(item)
		}
		return v
	case map[string]any:
		for key, item := range v {
			v[key] = ReviveDates(item)
		}
		return v
	default:
		return value
	}
}
