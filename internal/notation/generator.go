package notation

import (
	"strconv"
	"strings"

	"github.com/localnerve/transform-studio/internal/ordered"
)

// flagSet accepts both the "true" string the platform stores and a JSON true.
func flagSet(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "true"
	case bool:
		return t
	}
	return false
}

func generateRandomString(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	lines := []string{
		ind + "GENERATE RANDOM STRING",
		ind + "  → Length: " + or(attr(attrs, "length"), "undefined"),
		ind + "  → Include Numbers: " + strconv.FormatBool(flagSet(attr(attrs, "includeNumbers"))),
		ind + "  → Include Special Characters: " + strconv.FormatBool(flagSet(attr(attrs, "includeSpecialChars"))),
	}
	return strings.Join(lines, "\n"), nil
}

func randomRule(head string, defaultLength int) RuleFunc {
	return func(attrs *ordered.Map, level int) (string, []Record) {
		length := orNullish(attr(attrs, "length"), strconv.Itoa(defaultLength))
		return indent(level) + head + " (Length: " + length + ")", nil
	}
}

func uuidGenerator(_ *ordered.Map, level int) (string, []Record) {
	return indent(level) + "UUID()", nil
}
