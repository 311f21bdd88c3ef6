package notation

import (
	"regexp"
	"strings"

	"github.com/localnerve/transform-studio/internal/ordered"
)

var dateCompareOps = map[string]string{
	"lt":  "<",
	"lte": "<=",
	"gt":  ">",
	"gte": ">=",
}

func dateCompare(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)

	first := renderNested(attr(attrs, "firstDate"), level+1)
	second := renderNested(attr(attrs, "secondDate"), level+1)
	positive := renderNested(attr(attrs, "positiveCondition"), level+1)
	negative := renderNested(attr(attrs, "negativeCondition"), level+1)

	op := attr(attrs, "operator")
	symbol, ok := dateCompareOps[js(op)]
	if !ok {
		symbol = js(op)
	}

	var b strings.Builder
	b.WriteString(ind + "DATE COMPARE\n")
	b.WriteString(ind + "  → First Date: " + first.ParsedNotation + "\n")
	b.WriteString(ind + "  → Second Date: " + second.ParsedNotation + "\n")
	b.WriteString(ind + "  → Condition: firstDate " + symbol + " secondDate\n")
	b.WriteString(ind + "  → If TRUE: " + positive.ParsedNotation + "\n")
	b.WriteString(ind + "  → If FALSE: " + negative.ParsedNotation)
	return b.String(), []Record{first, second, positive, negative}
}

// directInput renders attrs.input when it is truthy.
func directInput(attrs *ordered.Map, level int) (string, []Record) {
	if in := attr(attrs, "input"); truthy(in) {
		nested := renderNested(in, level+1)
		return nested.ParsedNotation, []Record{nested}
	}
	return "(Direct input expected)", []Record{}
}

func dateMath(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	expression := DescribeDateMath(or(attr(attrs, "expression"), "Unknown"))
	input, inputs := directInput(attrs, level)

	var b strings.Builder
	b.WriteString(ind + "DATE MATH\n")
	b.WriteString(ind + "  → Operation: " + expression + "\n")
	b.WriteString(ind + "  → Input: " + input + "\n")
	if v, ok := attrs.Get("roundUp"); ok {
		b.WriteString(ind + "  → Rounding Up: " + js(v))
	}
	return b.String(), inputs
}

var (
	dateMathUnits = map[string]string{
		"y": "years",
		"M": "months",
		"w": "weeks",
		"d": "days",
		"h": "hours",
		"m": "minutes",
		"s": "seconds",
	}
	dateMathNow   = regexp.MustCompile(`now`)
	dateMathShift = regexp.MustCompile(`([+-])(\d+)([yMwdhms])`)
	dateMathRound = regexp.MustCompile(`/([yMwdhms])`)
)

// DescribeDateMath converts a date math expression such as "now-5d/d" into
// English by direct substitution. Unrecognized text is left in place.
func DescribeDateMath(expression string) string {
	if expression == "now" {
		return "Current Date & Time"
	}
	out := dateMathNow.ReplaceAllLiteralString(expression, "Current Date/Time")
	out = dateMathShift.ReplaceAllStringFunc(out, func(m string) string {
		g := dateMathShift.FindStringSubmatch(m)
		return " " + g[1] + " " + g[2] + " " + dateMathUnits[g[3]]
	})
	out = dateMathRound.ReplaceAllStringFunc(out, func(m string) string {
		return ", rounded to " + dateMathUnits[m[1:]]
	})
	return out
}

var dateFormats = map[string]string{
	"ISO8601":          "ISO8601 (yyyy-MM-dd'T'HH:mm:ss.SSSZ)",
	"LDAP":             "LDAP Format (yyyyMMddHHmmss.Z)",
	"PEOPLE_SOFT":      "PeopleSoft (MM/dd/yyyy)",
	"EPOCH_TIME_JAVA":  "Epoch Time (Milliseconds since 1970-01-01)",
	"EPOCH_TIME_WIN32": "Windows Epoch Time (100-nanosecond intervals since 1601-01-01)",
}

// DescribeDateFormat maps a named date format to a description.
// Custom patterns are returned unchanged.
func DescribeDateFormat(format string) string {
	if d, ok := dateFormats[format]; ok {
		return d
	}
	return format
}

func dateFormat(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	inFormat := or(attr(attrs, "inputFormat"), "ISO8601 (Default)")
	outFormat := or(attr(attrs, "outputFormat"), "ISO8601 (Default)")
	input, inputs := directInput(attrs, level)

	var b strings.Builder
	b.WriteString(ind + "DATE FORMAT\n")
	b.WriteString(ind + "  → Input Format: " + DescribeDateFormat(inFormat) + "\n")
	b.WriteString(ind + "  → Output Format: " + DescribeDateFormat(outFormat) + "\n")
	b.WriteString(ind + "  → Input: " + input)
	return b.String(), inputs
}
