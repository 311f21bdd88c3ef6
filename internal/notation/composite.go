package notation

import (
	"regexp"
	"strings"

	"github.com/localnerve/transform-studio/internal/ordered"
)

func static(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	var b strings.Builder
	b.WriteString(ind + `STATIC("` + or(attr(attrs, "value"), "Unknown") + `")`)

	var vars []string
	inputs := []Record{}
	for _, e := range attrs.Entries() {
		nested := renderNested(e.Value, level+1)
		inputs = append(inputs, nested)
		if e.Key == "value" {
			continue
		}
		vars = append(vars, ind+"  "+e.Key+": "+nested.ParsedNotation)
	}
	if len(vars) > 0 {
		b.WriteString("\n" + ind + "  Dynamic Variables:\n" + strings.Join(vars, "\n"))
	}
	return b.String(), inputs
}

// valueList renders the shared body of concat and firstValid.
func valueList(head string, attrs *ordered.Map, level int) (*strings.Builder, []Record) {
	ind := indent(level)
	b := &strings.Builder{}
	b.WriteString(ind + head)

	values := list(attr(attrs, "values"))
	inputs := make([]Record, 0, len(values))
	if len(values) == 0 {
		b.WriteString("\n" + ind + "  (No values provided)")
	}
	for _, v := range values {
		b.WriteString("\n" + ind + "  → " + nestedText(v, level+1))
		inputs = append(inputs, Render(v, level+1))
	}
	return b, inputs
}

func concat(attrs *ordered.Map, level int) (string, []Record) {
	b, inputs := valueList("CONCATENATION", attrs, level)
	return b.String(), inputs
}

func firstValid(attrs *ordered.Map, level int) (string, []Record) {
	b, inputs := valueList("FIRST VALID VALUE:", attrs, level)
	if ignore, ok := attrs.Get("ignoreErrors"); ok {
		b.WriteString("\n" + indent(level) + "  (Ignore errors: " + js(ignore) + ")")
	}
	return b.String(), inputs
}

func lookup(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	var b strings.Builder
	b.WriteString(ind + "LOOKUP TABLE\n")

	inputs := []Record{}
	inputText := "(Direct input expected)"
	if in := attr(attrs, "input"); truthy(in) {
		nested := renderNested(in, level+1)
		inputText = nested.ParsedNotation
		inputs = append(inputs, nested)
	}
	b.WriteString(ind + "  Input Value: " + inputText + "\n")

	table := attr(attrs, "table")
	if !truthy(table) {
		table = ordered.NewMap()
	}

	var rows []string
	for _, e := range entries(table) {
		switch v := e.Value.(type) {
		case nil:
			rows = append(rows, ind+"  "+e.Key+" → null")
		case string:
			rows = append(rows, ind+"  "+e.Key+" → "+v)
		case *ordered.Map:
			if v.Has("type") {
				nested := renderNested(v, level+1)
				inputs = append(inputs, nested)
				rows = append(rows, ind+"  "+e.Key+" → "+nested.ParsedNotation)
				continue
			}
			rows = append(rows, ind+"  "+e.Key+" → (Unsupported type)")
		default:
			rows = append(rows, ind+"  "+e.Key+" → (Unsupported type)")
		}
	}
	if len(rows) > 0 {
		b.WriteString(strings.Join(rows, "\n") + "\n")
	}

	tm, _ := table.(*ordered.Map)
	if def, ok := tm.Get("default"); ok {
		switch d := def.(type) {
		case string:
			b.WriteString(ind + "  (Default: " + d + ")\n")
		case *ordered.Map:
			if d.Has("type") {
				nested := renderNested(d, level+1)
				inputs = append(inputs, nested)
				b.WriteString(ind + "  (Default: " + nested.ParsedNotation + ")\n")
			}
		}
	} else {
		b.WriteString(ind + "  (No default value set – unmatched keys will cause an error)\n")
	}
	return b.String(), inputs
}

var (
	conditionalOps = map[string]string{
		"eq":  "equals",
		"ne":  "does not equal",
		"gt":  "is greater than",
		"gte": "is greater than or equal to",
		"lt":  "is less than",
		"lte": "is less than or equal to",
	}
	conditionalOpPattern = regexp.MustCompile(`\b(eq|ne|gt|gte|lt|lte)\b`)
)

func conditional(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)

	expression := or(attr(attrs, "expression"), "Unknown Expression")
	expression = conditionalOpPattern.ReplaceAllStringFunc(expression, func(op string) string {
		return conditionalOps[op]
	})

	branch := func(key string) string {
		if v := attr(attrs, key); truthy(v) {
			return nestedText(v, level+1)
		}
		return "Undefined"
	}

	var b strings.Builder
	b.WriteString(ind + "CONDITIONAL (" + expression + ")")
	b.WriteString("\n" + ind + "  → If TRUE: " + branch("positiveCondition"))
	b.WriteString("\n" + ind + "  → If FALSE: " + branch("negativeCondition"))

	b.WriteString(boundVariables(attrs, level, "expression", "positiveCondition", "negativeCondition"))
	return b.String(), allInputs(attrs, level)
}

func ruleCall(attrs *ordered.Map, level int) (string, []Record) {
	text := indent(level) + `RULE → "` + or(attr(attrs, "name"), "Unknown Rule") + `"`
	return text + boundVariables(attrs, level, "name"), allInputs(attrs, level)
}

// boundVariables renders every attribute outside skip as "key: notation",
// one per line, each line preceded by a newline.
func boundVariables(attrs *ordered.Map, level int, skip ...string) string {
	var lines []string
	for _, e := range attrs.Entries() {
		if contains(skip, e.Key) {
			continue
		}
		lines = append(lines, indent(level)+"  "+e.Key+": "+nestedText(e.Value, level+1))
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n" + strings.Join(lines, "\n")
}

func allInputs(attrs *ordered.Map, level int) []Record {
	inputs := make([]Record, 0, attrs.Len())
	for _, e := range attrs.Entries() {
		inputs = append(inputs, renderNested(e.Value, level+1))
	}
	return inputs
}

func usernameGenerator(attrs *ordered.Map, level int) (string, []Record) {
	ind := indent(level)
	var b strings.Builder
	b.WriteString(ind + "USERNAME GENERATOR")

	if patterns := list(attr(attrs, "patterns")); len(patterns) > 0 {
		lines := make([]string, len(patterns))
		for i, p := range patterns {
			lines[i] = ind + "  - " + js(p)
		}
		b.WriteString("\n" + ind + "→ Patterns:\n" + strings.Join(lines, "\n"))
	}
	if check := attr(attrs, "sourceCheck"); truthy(check) {
		b.WriteString("\n" + ind + "→ Check Target Source: " + js(check))
	}

	inputs := []Record{}
	for _, e := range attrs.Entries() {
		if e.Key == "patterns" || e.Key == "sourceCheck" {
			continue
		}
		nested := renderNested(e.Value, level+1)
		b.WriteString("\n" + ind + "→ " + e.Key + ": " + nested.ParsedNotation)
		inputs = append(inputs, nested)
	}
	return b.String(), inputs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
