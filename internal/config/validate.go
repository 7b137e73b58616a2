package config

import (
	"fmt"
	"strings"

	"github.com/adamancini/neosearch/internal/catalog"
)

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks that every repository reference is present. Nothing
// else about a reference is validated here; reachability is the
// repository package's concern.
func Validate(c *Config) error {
	var errors []string

	for i, ref := range c.LocalFiles {
		if err := validateRef("local_files", i, ref); err != nil {
			errors = append(errors, err.Error())
		}
	}
	for i, ref := range c.URLs {
		if err := validateRef("urls", i, ref); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if len(errors) > 0 {
		return catalog.Errorf(catalog.EINVALIDFORMAT, "validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateRef(list string, index int, ref string) error {
	if strings.TrimSpace(ref) == "" {
		return ValidationError{
			Field:   fmt.Sprintf("%s[%d]", list, index),
			Message: "repository reference cannot be empty",
		}
	}
	return nil
}
