// Package query parses free-form filter queries of the form
//
//	algebra tags="physics"
//
// into field-scoped filters plus a residual free-text term.
package query

import (
	"regexp"
	"strings"
)

// filterPattern matches field="value". The value may not be empty and
// cannot contain a double quote; there is no escaping.
var filterPattern = regexp.MustCompile(`(\w+)="([^"]+)"`)

// Query is the parsed form of a filter string.
type Query struct {
	// Filters maps field name to value. A repeated field keeps the last
	// value seen.
	Filters map[string]string
	// Residual is the query with every field="value" token removed,
	// trimmed of surrounding whitespace.
	Residual string

	order []string // distinct fields in first-appearance order
}

// Parse splits q into field filters and a residual term.
func Parse(q string) Query {
	parsed := Query{Filters: make(map[string]string)}

	for _, m := range filterPattern.FindAllStringSubmatch(q, -1) {
		field, value := m[1], m[2]
		if _, seen := parsed.Filters[field]; !seen {
			parsed.order = append(parsed.order, field)
		}
		parsed.Filters[field] = value
	}

	parsed.Residual = strings.TrimSpace(filterPattern.ReplaceAllString(q, ""))
	return parsed
}

// Fields returns the recognised field names in first-appearance order.
func (q Query) Fields() []string {
	return append([]string(nil), q.order...)
}

// Primary returns the single filter that is applied: the first field to
// appear in the query, with its last-seen value. Further fields are
// ignored; only one scoped filter is active at a time.
func (q Query) Primary() (field, value string, ok bool) {
	if len(q.order) == 0 {
		return "", "", false
	}
	field = q.order[0]
	return field, q.Filters[field], true
}

// IsEmpty reports whether the query holds neither filters nor free text.
func (q Query) IsEmpty() bool {
	return len(q.Filters) == 0 && q.Residual == ""
}
