// registry.go
//
// A local data service for composing and inspecting identity platform transforms.
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of transform-studio.
// transform-studio is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// transform-studio is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR A
// PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with transform-studio.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package notation

import (
	"sort"
	"sync"

	"github.com/localnerve/transform-studio/internal/ordered"
)

// Rule renders the attributes of one transform type at an indentation level.
// It returns the composed notation and the child records it rendered.
type Rule interface {
	Render(attrs *ordered.Map, level int) (string, []Record)
}

// RuleFunc adapts a function to the Rule interface.
type RuleFunc func(attrs *ordered.Map, level int) (string, []Record)

// Render calls f.
func (f RuleFunc) Render(attrs *ordered.Map, level int) (string, []Record) {
	return f(attrs, level)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Rule{}
)

// Register adds or replaces the rule for a transform type.
// Passing a nil rule removes the registration.
func Register(transformType string, rule Rule) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if rule == nil {
		delete(registry, transformType)
		return
	}
	registry[transformType] = rule
}

// Lookup returns the rule for a transform type.
func Lookup(transformType string) (Rule, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	rule, ok := registry[transformType]
	return rule, ok
}

// Registered returns the registered transform types in sorted order.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// unknownRule is the fallback for unregistered types.
func unknownRule(rawType any) Rule {
	return RuleFunc(func(_ *ordered.Map, level int) (string, []Record) {
		return indent(level) + "Unknown Transform Type: " + js(rawType) + " (...)", nil
	})
}

func init() {
	for t, r := range map[string]RuleFunc{
		"accountAttribute":          accountAttribute,
		"lookup":                    lookup,
		"firstValid":                firstValid,
		"static":                    static,
		"concat":                    concat,
		"conditional":               conditional,
		"dateCompare":               dateCompare,
		"dateFormat":                dateFormat,
		"dateMath":                  dateMath,
		"decomposeDiacriticalMarks": decomposeDiacriticalMarks,
		"e164phone":                 e164Phone,
		"generateRandomString":      generateRandomString,
		"getEndOfString":            getEndOfString,
		"identityAttribute":         identityAttribute,
		"indexOf":                   indexOf,
		"iso3166":                   iso3166,
		"lastIndexOf":               lastIndexOf,
		"leftPad":                   padRule("LEFTPAD", "LEFT PAD"),
		"lower":                     caseRule("LOWERCASE"),
		"normalizeNames":            inputOnlyRule("NAME NORMALIZATION"),
		"randomAlphanumeric":        randomRule("RANDOM ALPHANUMERIC STRING", 32),
		"randomNumeric":             randomRule("RANDOM NUMERIC STRING", 10),
		"reference":                 reference,
		"replaceAll":                replaceAll,
		"replace":                   replace,
		"rfc5646":                   rfc5646,
		"rightPad":                  padRule("RIGHTPAD", "RIGHT PAD"),
		"rule":                      ruleCall,
		"split":                     split,
		"substring":                 substring,
		"trim":                      inputOnlyRule("TRIM"),
		"upper":                     caseRule("UPPERCASE"),
		"usernameGenerator":         usernameGenerator,
		"uuidGenerator":             uuidGenerator,
	} {
		Register(t, r)
	}
}
