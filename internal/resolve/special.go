package resolve

import (
	"strings"

	"golang.org/x/text/cases"
)

// specialCase maps known problem labels to a canonical name.
type specialCase struct {
	match func(input string) bool
	name  string
}

// Order matters: the first matching rule wins. The substring rules are
// deliberately literal ("Congo" plus "DR" matches any label containing both).
var specialCases = []specialCase{
	{
		match: func(s string) bool { return s == "Canary Islands" || s == "SPI" },
		name:  "Spain",
	},
	{
		match: func(s string) bool { return s == "Turkey" },
		name:  "Türkiye",
	},
	{
		match: func(s string) bool { return strings.Contains(s, "Korea") && strings.Contains(s, "DPR") },
		name:  "Korea, Democratic People's Republic of",
	},
	{
		match: func(s string) bool {
			return strings.Contains(s, "Congo") &&
				(strings.Contains(cases.Fold().String(s), "dem") || strings.Contains(s, "DR"))
		},
		name: "Congo, Democratic Republic of the",
	},
}

func matchSpecialCase(input string) (string, bool) {
	for _, sc := range specialCases {
		if sc.match(input) {
			return sc.name, true
		}
	}
	return "", false
}
