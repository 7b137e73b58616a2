// Package search filters catalog entries by keyword, field and repository.
package search

import (
	"strings"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/types"
)

// Criteria selects entries. Zero values disable the corresponding stage.
type Criteria struct {
	// Keyword is matched case-insensitively as a substring.
	Keyword string
	// Field scopes Keyword to one entry field. Empty means every field.
	Field string
	// Repository requires an exact match on the entry's source repository.
	Repository string
}

// IsZero reports whether the criteria select every entry.
func (c Criteria) IsZero() bool {
	return c.Keyword == "" && c.Repository == ""
}

// Apply returns the entries matching c, preserving order. The input is
// never modified and the result never shares its backing array.
func Apply(entries []catalog.Entry, c Criteria) []catalog.Entry {
	keyword := strings.ToLower(c.Keyword)
	field := types.Field(c.Field)

	out := make([]catalog.Entry, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if keyword != "" && !matchKeyword(e, keyword, field) {
			continue
		}
		if c.Repository != "" && e.Repository != c.Repository {
			continue
		}
		out = append(out, *e)
	}
	return out
}

// matchKeyword expects keyword already lowercased.
func matchKeyword(e *catalog.Entry, keyword string, field types.Field) bool {
	switch {
	case field == types.FieldTags:
		return containsAny(e.Tags, keyword)
	case field != "":
		v, ok := e.Value(field)
		return ok && contains(v, keyword)
	default:
		return containsAny(e.Strings(), keyword)
	}
}

func containsAny(values []string, keyword string) bool {
	for _, v := range values {
		if contains(v, keyword) {
			return true
		}
	}
	return false
}

func contains(s, keyword string) bool {
	return strings.Contains(strings.ToLower(s), keyword)
}
