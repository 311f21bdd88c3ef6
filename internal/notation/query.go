package notation

import (
	"sort"

	"github.com/ohler55/ojg/jp"

	"github.com/localnerve/transform-studio/internal/ordered"
)

var typeSelector = jp.MustParseString("$..type")

// ReferencedTypes returns every transform type string that appears anywhere
// in a decoded tree, sorted and without duplicates.
func ReferencedTypes(v any) []string {
	seen := map[string]struct{}{}
	for _, r := range typeSelector.Get(ordered.Plain(v)) {
		if s, ok := r.(string); ok && s != "" {
			seen[s] = struct{}{}
		}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
