package strength

import "strings"

var nameAliases = map[string]string{
	"bench":                 "bench press",
	"flat bench press":      "bench press",
	"squat":                 "back squat",
	"high bar squat":        "back squat",
	"low bar squat":         "back squat",
	"ohp":                   "overhead press",
	"military press":        "overhead press",
	"standing press":        "overhead press",
	"shoulder press":        "overhead press",
	"conventional deadlift": "deadlift",
	"bent over row":         "row",
}

// CanonicalName normalizes an exercise name for matching history, known
// maxes and the reference tables: lowercase, "barbell" dropped, hyphens and
// repeated spaces collapsed, then common aliases applied.
func CanonicalName(name string) string {
	n := strings.ToLower(name)
	n = strings.NewReplacer("(", " ", ")", " ", "-", " ", "_", " ").Replace(n)
	fields := strings.Fields(n)
	kept := fields[:0]
	for _, f := range fields {
		if f == "barbell" {
			continue
		}
		kept = append(kept, f)
	}
	n = strings.Join(kept, " ")
	if alias, ok := nameAliases[n]; ok {
		return alias
	}
	return n
}
