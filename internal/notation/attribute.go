package notation

import (
	"strings"

	"github.com/localnerve/transform-studio/internal/ordered"
)

// withExtras appends optional detail lines one level deeper than the head line.
func withExtras(head string, level int, extras []string) string {
	if len(extras) == 0 {
		return head
	}
	ind := indent(level)
	return head + "\n" + ind + "  " + strings.Join(extras, "\n"+ind+"  ")
}

func identityAttribute(attrs *ordered.Map, level int) (string, []Record) {
	head := indent(level) + "IDENTITY ATTRIBUTE (" + or(attr(attrs, "name"), "Unknown") + ")"

	var extras []string
	if v, ok := attrs.Get("requiresPeriodicRefresh"); ok {
		extras = append(extras, "Reevaluate Periodically: "+js(v))
	}
	if in := attr(attrs, "input"); truthy(in) {
		extras = append(extras, "Input: "+nestedText(in, level+1))
	}
	return withExtras(head, level, extras), nil
}

func accountAttribute(attrs *ordered.Map, level int) (string, []Record) {
	head := indent(level) + "ACCOUNT ATTRIBUTE (Source: " + or(attr(attrs, "sourceName"), "Unknown") +
		", Attribute: " + or(attr(attrs, "attributeName"), "Unknown") + ")"

	var extras []string
	if v := attr(attrs, "accountSortAttribute"); truthy(v) {
		extras = append(extras, "Sort By: "+js(v))
	}
	if v, ok := attrs.Get("accountSortDescending"); ok {
		extras = append(extras, "Descending Sort: "+js(v))
	}
	if v, ok := attrs.Get("accountReturnFirstLink"); ok {
		extras = append(extras, "Return First Link: "+js(v))
	}
	if v := attr(attrs, "accountFilter"); truthy(v) {
		extras = append(extras, "Filter: "+js(v))
	}
	if v := attr(attrs, "accountPropertyFilter"); truthy(v) {
		extras = append(extras, "Property Filter: "+js(v))
	}
	if v, ok := attrs.Get("requiresPeriodicRefresh"); ok {
		extras = append(extras, "Reevaluate Periodically: "+js(v))
	}
	return withExtras(head, level, extras), nil
}

func reference(attrs *ordered.Map, level int) (string, []Record) {
	head := indent(level) + `REFERENCE → "` + or(attr(attrs, "id"), "Unknown Reference") + `"`

	var extras []string
	inputs := []Record{}
	if v, ok := attrs.Get("requiresPeriodicRefresh"); ok {
		extras = append(extras, "Reevaluate Periodically: "+js(v))
	}
	if in := attr(attrs, "input"); truthy(in) {
		nested := renderNested(in, level+1)
		extras = append(extras, "Input: "+nested.ParsedNotation)
		inputs = append(inputs, nested)
	}
	return withExtras(head, level, extras), inputs
}
