package tariff

import "regexp"

// DefaultExtractLimit bounds how many codes Extract returns when limit <= 0
const DefaultExtractLimit = 10

var codePattern = regexp.MustCompile(`\d{4}\s+\d{2}\s+\d{2}\s+\d{2}|\d{10}`)

// Extract finds tariff codes in free text, either grouped or as ten bare digits.
// Results are deduplicated, in order of first appearance, in display form.
func Extract(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultExtractLimit
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, m := range codePattern.FindAllString(text, -1) {
		if len(out) >= limit {
			break
		}
		code := Format(m)
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
