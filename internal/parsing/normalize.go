package parsing

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/jonathan/star-coach/internal/types"
)

// KebabID lowercases s and joins its letter and digit runs with hyphens,
// e.g. "Stakeholder Management" becomes "stakeholder-management".
func KebabID(s string) string {
	var sb strings.Builder
	pendingHyphen := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingHyphen = false
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingHyphen = true
	}
	return sb.String()
}

// NormalizeCompetencies trims every field, derives missing or malformed IDs
// from the name and makes IDs unique by suffixing repeats. Competencies with
// neither a name nor an ID are dropped.
func NormalizeCompetencies(comps []types.Competency) []types.Competency {
	normalized := make([]types.Competency, 0, len(comps))
	seen := make(map[string]int) // id -> times used

	for _, c := range comps {
		c.Name = strings.TrimSpace(c.Name)
		c.Description = strings.TrimSpace(c.Description)
		c.SampleQuestion = strings.TrimSpace(c.SampleQuestion)

		id := KebabID(c.ID)
		if id == "" {
			id = KebabID(c.Name)
		}
		if id == "" {
			continue
		}
		if c.Name == "" {
			c.Name = strings.TrimSpace(c.ID)
		}

		seen[id]++
		if n := seen[id]; n > 1 {
			id = id + "-" + strconv.Itoa(n)
		}
		c.ID = id
		normalized = append(normalized, c)
	}

	return normalized
}
