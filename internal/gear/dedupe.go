package gear

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultSimilarity is the name similarity above which two items are
// considered the same gear.
const DefaultSimilarity = 0.85

// Similarity scores two item names in [0,1] by normalized edit distance.
func Similarity(a, b string) float64 {
	a = normalizeName(a)
	b = normalizeName(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// RemoveNearDuplicates drops items whose name matches one of existing at or
// above threshold and returns the recalculated list plus the dropped names.
// Food lists are returned unchanged.
func RemoveNearDuplicates(list *CategoryList, existing []string, threshold float64) (*CategoryList, []string) {
	if list == nil || list.Kind == Food || len(existing) == 0 {
		return list, nil
	}

	kept := make([]Item, 0, len(list.Items))
	var dropped []string
	for _, it := range list.Items {
		if matchesAny(it.Name, existing, threshold) {
			dropped = append(dropped, it.Name)
			continue
		}
		kept = append(kept, it)
	}
	if len(dropped) == 0 {
		return list, nil
	}

	out := list.Clone()
	out.Items = kept
	return Recalculate(out), dropped
}

func matchesAny(name string, existing []string, threshold float64) bool {
	for _, e := range existing {
		if Similarity(name, e) >= threshold {
			return true
		}
	}
	return false
}
