package notation

import (
	"strings"

	"github.com/localnerve/transform-studio/internal/ordered"
)

// staticValue returns the value of a rendered static input, if it has one.
func staticValue(rec Record) (string, bool) {
	if rec.Type != "static" {
		return "", false
	}
	v := attr(rec.Attributes, "value")
	if !truthy(v) {
		return "", false
	}
	return js(v), true
}

func caseRule(head string) RuleFunc {
	return func(attrs *ordered.Map, level int) (string, []Record) {
		ind := indent(level)
		in := attr(attrs, "input")
		if !truthy(in) {
			return ind + head + `("(Direct input expected)")`, []Record{}
		}
		nested := renderNested(in, level+1)
		if value, ok := staticValue(nested); ok {
			return ind + head + `("` + value + `")`, []Record{nested}
		}
		return ind + head + "\n" + ind + "  → Input: " + nested.ParsedNotation, []Record{nested}
	}
}

// inputOnlyRule renders a head line and the input expression.
func inputOnlyRule(head string) RuleFunc {
	return func(attrs *ordered.Map, level int) (string, []Record) {
		ind := indent(level)
		in := attr(attrs, "input")
		if !truthy(in) {
			return ind + head + "\n" + ind + "  → Input: (Direct input expected)", []Record{}
		}
		text := ind + head + "\n" + ind + "  → Input: " + nestedText(in, level+1)
		return text, []Record{Render(in, level+1)}
	}
}

func decomposeDiacriticalMarks(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	input, inputs := directInput(attrs, level)
	return ind + "DECOMPOSE DIACRITICAL MARKS\n" + ind + "  → Input: " + input, inputs
}

func split(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)

	delimiter := `"Unknown Delimiter"`
	if d := attr(attrs, "delimiter"); truthy(d) {
		delimiter = `"` + js(d) + `"`
	}
	index := `"Unknown Index"`
	if v, ok := attrs.Get("index"); ok {
		index = js(v)
	}

	in := attr(attrs, "input")
	if !truthy(in) {
		return ind + `SPLIT("(Direct input expected)", ` + delimiter + ", " + index + ")", []Record{}
	}
	nested := renderNested(in, level+1)
	if value, ok := staticValue(nested); ok {
		return ind + `SPLIT("` + value + `", ` + delimiter + ", " + index + ")", []Record{nested}
	}
	text := ind + "SPLIT" +
		"\n" + ind + "  → Input: " + nested.ParsedNotation +
		"\n" + ind + "  → Delimiter: " + delimiter +
		"\n" + ind + "  → Index: " + index
	return text, []Record{nested}
}

func substring(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)

	begin := `"Unknown Start Index"`
	if v, ok := attrs.Get("begin"); ok {
		begin = js(v)
	}
	end := "end of string"
	if v, ok := attrs.Get("end"); ok {
		end = js(v)
	}
	if v, ok := attrs.Get("beginOffset"); ok {
		begin += " + " + js(v)
	}
	if v, ok := attrs.Get("endOffset"); ok {
		end += " + " + js(v)
	}

	in := attr(attrs, "input")
	if !truthy(in) {
		return "SUBSTRING(Begin Index: " + begin + ", End Index: " + end + `, "(Direct input expected)")`, []Record{}
	}
	nested := renderNested(in, level+1)
	if nested.Type == "static" {
		return "SUBSTRING(Begin Index: " + begin + ", End Index: " + end + ", " + nested.ParsedNotation + ")", []Record{nested}
	}
	text := ind + "SUBSTRING" +
		"\n" + ind + "  → Begin Index: " + begin +
		"\n" + ind + "  → End Index: " + end +
		"\n" + ind + "  → Input: " + nested.ParsedNotation
	return text, []Record{nested}
}

const emptyString = `"" (Empty String)`

func replace(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)

	pattern := `"Unknown Pattern"`
	if v := attr(attrs, "regex"); truthy(v) {
		pattern = `"` + js(v) + `"`
	}
	raw, hasReplacement := attrs.Get("replacement")
	replacement := `"Unknown Replacement"`
	if hasReplacement {
		replacement = `"` + js(raw) + `"`
	}

	in := attr(attrs, "input")
	if !truthy(in) {
		if replacement == `""` {
			replacement = emptyString
		}
		return `REPLACE("(Direct input expected)", Pattern: ` + pattern + ", Replacement: " + replacement + ")", []Record{}
	}

	if s, ok := raw.(string); ok && s == "" {
		replacement = emptyString
	}
	nested := renderNested(in, level+1)
	if nested.Type == "static" {
		return "REPLACE(" + nested.ParsedNotation + ", Pattern: " + pattern + ", Replacement: " + replacement + ")", []Record{nested}
	}
	text := ind + "REPLACE" +
		"\n" + ind + "  → Input: " + nested.ParsedNotation +
		"\n" + ind + "  → Pattern: " + pattern +
		"\n" + ind + "  → Replacement: " + replacement
	return text, []Record{nested}
}

func replaceAll(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)

	table := attr(attrs, "table")
	var rows []string
	if truthy(table) {
		for _, e := range entries(table) {
			text := `"` + js(e.Value) + `"`
			if s, ok := e.Value.(string); ok && s == "" {
				text = emptyString
			}
			rows = append(rows, ind+"  "+e.Key+" → "+text)
		}
	}

	in := attr(attrs, "input")
	if !truthy(in) {
		return `REPLACE_ALL("(Direct input expected)", { ` + strings.Join(rows, ", ") + " })", []Record{}
	}
	nested := renderNested(in, level+1)
	if nested.Type == "static" {
		return "REPLACE_ALL(" + nested.ParsedNotation + ", { " + strings.Join(rows, ", ") + " })", []Record{nested}
	}
	text := ind + "REPLACE ALL\n" + ind + "  → Input: " + nested.ParsedNotation +
		"\n" + ind + "  → Table:\n" + strings.Join(rows, "\n")
	return text, []Record{nested}
}

func e164Phone(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)

	region := ""
	if v := attr(attrs, "defaultRegion"); truthy(v) {
		region = " (Default Region: " + js(v) + ")"
	}

	in := attr(attrs, "input")
	if !truthy(in) {
		return `E164_PHONE("(Direct input expected)"` + region + ")", []Record{}
	}
	nested := renderNested(in, level+1)
	if nested.Type == "static" {
		return "E164_PHONE(" + nested.ParsedNotation + region + ")", []Record{nested}
	}
	return ind + "E.164 PHONE" + region + "\n" + ind + "  → Input: " + nested.ParsedNotation, []Record{nested}
}

// sourceInput renders the input line shared by rules whose input may also
// come from the attribute's source configuration.
func sourceInput(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	switch in := attr(attrs, "input").(type) {
	case *ordered.Map, []any:
		nested := renderNested(in, level+1)
		return ind + "  → Input: " + nested.ParsedNotation, []Record{nested}
	case string:
		return ind + `  → Input: "` + in + `"`, []Record{}
	}
	return ind + "  → Input: (From source/attribute config)", []Record{}
}

func getEndOfString(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	input, inputs := sourceInput(attrs, level)
	lines := []string{
		ind + "GET END OF STRING",
		ind + "  → Last " + orNullish(attr(attrs, "numChars"), "undefined") + " characters",
		input,
	}
	return strings.Join(lines, "\n"), inputs
}

func indexOf(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	input, inputs := sourceInput(attrs, level)
	lines := []string{
		ind + "INDEX OF",
		ind + `  → Substring to Find: "` + orNullish(attr(attrs, "substring"), "(no substring provided)") + `"`,
		input,
	}
	return strings.Join(lines, "\n"), inputs
}

func lastIndexOf(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	input, inputs := sourceInput(attrs, level)
	lines := []string{
		ind + "LAST INDEX OF",
		ind + `  → Substring to Find: "` + or(attr(attrs, "substring"), "(no substring provided)") + `"`,
		input,
	}
	return strings.Join(lines, "\n"), inputs
}

func iso3166(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	input, inputs := sourceInput(attrs, level)
	lines := []string{
		ind + "ISO3166 COUNTRY CONVERSION",
		ind + "  → Output Format: " + strings.ToUpper(or(attr(attrs, "format"), "alpha2")),
		input,
	}
	return strings.Join(lines, "\n"), inputs
}

// padRule renders leftPad and rightPad.
func padRule(compact, verbose string) RuleFunc {
	return func(attrs *ordered.Map, level int) (string, []Record) {
		ind := indent(level)
		length := orNullish(attr(attrs, "length"), "(no length)")
		padding := orNullish(attr(attrs, "padding"), " ")
		suffix := ", Length: " + length + `, Pad: "` + padding + `")`

		display := "(From source/attribute config)"
		inputs := []Record{}
		switch in := attr(attrs, "input").(type) {
		case *ordered.Map, []any:
			nested := renderNested(in, level+1)
			display = nested.ParsedNotation
			inputs = append(inputs, nested)
			if value, ok := staticString(in); ok {
				return ind + compact + `("` + value + `"` + suffix, inputs
			}
		case string:
			return ind + compact + `("` + in + `"` + suffix, inputs
		}

		lines := []string{
			ind + verbose,
			ind + "  → Target Length: " + length,
			ind + `  → Padding Character: "` + padding + `"`,
			ind + "  → Input: " + display,
		}
		return strings.Join(lines, "\n"), inputs
	}
}

// staticString reports the string value of a raw static transform object.
func staticString(v any) (string, bool) {
	m, ok := v.(*ordered.Map)
	if !ok {
		return "", false
	}
	if t, _ := m.Get("type"); t != "static" {
		return "", false
	}
	inner, _ := attr(m, "attributes").(*ordered.Map)
	value, ok := attr(inner, "value").(string)
	return value, ok
}

func rfc5646(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	text := ind + "RFC 5646 LANGUAGE CONVERSION"
	if in := attr(attrs, "input"); truthy(in) {
		nested := renderNested(in, level+1)
		return text + "\n" + ind + "→ Input: " + nested.ParsedNotation, []Record{nested}
	}
	return text, []Record{}
}
