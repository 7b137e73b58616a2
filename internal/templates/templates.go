// Package templates provides the embedded starter files written by
// neosearch init.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.yaml catalog.json
var templatesFS embed.FS

// SampleCatalogName is the file name the sample catalog is written to and
// the name the starter configs refer to.
const SampleCatalogName = "catalog.json"

// DefaultTemplate is the template used when none is named.
const DefaultTemplate = "starter"

// Template represents a config template with metadata.
type Template struct {
	Name        string
	Description string
	Content     []byte
}

// NeedsCatalog reports whether the template refers to the sample catalog.
func (t *Template) NeedsCatalog() bool {
	return strings.Contains(string(t.Content), SampleCatalogName)
}

// Available templates with their descriptions.
var templateDescriptions = map[string]string{
	"empty":   "No repositories",
	"starter": "One local sample catalog",
	"remote":  "Sample catalog plus a remote catalog URL",
}

// List returns all available template names sorted alphabetically.
func List() []string {
	entries, err := templatesFS.ReadDir(".")
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}

	sort.Strings(names)
	return names
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	content, err := templatesFS.ReadFile(name + ".yaml")
	if err != nil {
		if pathErr, ok := err.(*fs.PathError); ok {
			return nil, fmt.Errorf("template '%s' not found: %w", name, pathErr)
		}
		return nil, fmt.Errorf("failed to read template '%s': %w", name, err)
	}

	return &Template{
		Name:        name,
		Description: GetDescription(name),
		Content:     content,
	}, nil
}

// GetDescription returns the description for a template.
func GetDescription(name string) string {
	if desc, ok := templateDescriptions[name]; ok {
		return desc
	}
	return "Custom template"
}

// SampleCatalog returns the sample catalog JSON.
func SampleCatalog() []byte {
	content, err := templatesFS.ReadFile(SampleCatalogName)
	if err != nil {
		// Embedded at build time; absence is a build defect.
		panic(err)
	}
	return content
}
