package survival

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// SuggestAction returns the known action closest to name, if any is close
// enough to be a likely typo.
func SuggestAction(name string, known []string) (string, bool) {
	if name == "" || len(known) == 0 {
		return "", false
	}
	limit := len(name) / 3
	if limit < 2 {
		limit = 2
	}
	best, bestDist := "", limit+1
	lower := strings.ToLower(name)
	for _, candidate := range known {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(candidate))
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best, best != ""
}

func unknownActionWarning(name string, known []string) string {
	if suggestion, ok := SuggestAction(name, known); ok {
		return fmt.Sprintf("Unknown action %q: did you mean %q?", name, suggestion)
	}
	return fmt.Sprintf("Unknown action %q: treated as a 1s action with no effects", name)
}
