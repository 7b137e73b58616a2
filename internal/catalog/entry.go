// Package catalog holds the catalog entry model and the in-memory entry
// store merged from every configured repository.
package catalog

import (
	"fmt"
	"strings"

	"github.com/adamancini/neosearch/internal/types"
)

// Entry is one catalog record. Repository is stamped when the entry is
// loaded and is never read from source data.
type Entry struct {
	URL         string   `json:"url" yaml:"url"`
	Description string   `json:"description" yaml:"description"`
	Category    string   `json:"category" yaml:"category"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Repository  string   `json:"repository,omitempty" yaml:"repository,omitempty"`
}

// requiredFields are the keys a source object must carry for its entry to
// be displayable. Presence is what counts: an empty or null value still
// satisfies the requirement.
var requiredFields = []types.Field{types.FieldURL, types.FieldDescription, types.FieldCategory}

// HasTags reports whether the entry carries at least one tag.
func (e *Entry) HasTags() bool {
	return len(e.Tags) > 0
}

// Value returns the string form of a field and whether the field is
// present on the entry. Tags are joined with ", ".
func (e *Entry) Value(f types.Field) (string, bool) {
	switch f {
	case types.FieldURL:
		return e.URL, e.URL != ""
	case types.FieldDescription:
		return e.Description, e.Description != ""
	case types.FieldCategory:
		return e.Category, e.Category != ""
	case types.FieldTags:
		return strings.Join(e.Tags, ", "), e.HasTags()
	case types.FieldRepository:
		return e.Repository, e.Repository != ""
	default:
		return "", false
	}
}

// Strings returns every present string value of the entry, each tag as
// its own element. It is the closed set scanned by a global search.
func (e *Entry) Strings() []string {
	out := make([]string, 0, 4+len(e.Tags))
	for _, s := range []string{e.URL, e.Description, e.Category, e.Repository} {
		if s != "" {
			out = append(out, s)
		}
	}
	return append(out, e.Tags...)
}

// DecodeEntries converts a parsed JSON payload into entries. The payload
// must be an array of objects; values that are not strings are rendered
// with their default formatting. Objects missing a required field are
// left out and counted in skipped.
func DecodeEntries(data any) (entries []Entry, skipped int, err error) {
	items, ok := data.([]any)
	if !ok {
		return nil, 0, Errorf(EINVALIDFORMAT, "Invalid format: expected a JSON array of entries, got %s", jsonKind(data))
	}

	entries = make([]Entry, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, 0, Errorf(EINVALIDFORMAT, "Invalid format: entry %d is %s, not an object", i, jsonKind(item))
		}
		e, err := decodeEntry(obj)
		if err != nil {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped, nil
}

func decodeEntry(obj map[string]any) (Entry, error) {
	for _, f := range requiredFields {
		if _, ok := obj[f.String()]; !ok {
			return Entry{}, Errorf(EINVALIDFORMAT, "entry %s required", f)
		}
	}

	e := Entry{
		URL:         stringValue(obj["url"]),
		Description: stringValue(obj["description"]),
		Category:    stringValue(obj["category"]),
	}
	switch tags := obj["tags"].(type) {
	case []any:
		e.Tags = make([]string, 0, len(tags))
		for _, t := range tags {
			e.Tags = append(e.Tags, stringValue(t))
		}
	case string:
		e.Tags = []string{tags}
	}
	return e, nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	default:
		return "a number"
	}
}
