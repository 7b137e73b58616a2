// Package types provides type-safe constants for the neosearch catalog.
//
// This package centralizes the enumerated values used throughout the
// codebase (repository kinds, entry fields, session commands), replacing
// magic strings with typed constants that carry validation methods.
package types

import (
	"fmt"
	"strings"
)

// RepositoryKind represents where a repository's entries come from.
type RepositoryKind string

const (
	// RepositoryKindLocal indicates a JSON file on the local filesystem.
	RepositoryKindLocal RepositoryKind = "local"
	// RepositoryKindRemote indicates a JSON document served over HTTP(S).
	RepositoryKindRemote RepositoryKind = "remote"
)

// AllRepositoryKinds returns all valid repository kinds.
func AllRepositoryKinds() []RepositoryKind {
	return []RepositoryKind{RepositoryKindLocal, RepositoryKindRemote}
}

// Validate checks if the RepositoryKind is a valid value.
func (k RepositoryKind) Validate() error {
	switch k {
	case RepositoryKindLocal, RepositoryKindRemote:
		return nil
	case "":
		return fmt.Errorf("repository kind is required")
	default:
		return fmt.Errorf("invalid repository kind '%s' (must be local or remote)", k)
	}
}

// String returns the string representation of the RepositoryKind.
func (k RepositoryKind) String() string {
	return string(k)
}

// IsLocal returns true if the repository is a local file.
func (k RepositoryKind) IsLocal() bool {
	return k == RepositoryKindLocal
}

// IsRemote returns true if the repository is fetched over HTTP(S).
func (k RepositoryKind) IsRemote() bool {
	return k == RepositoryKindRemote
}

// Field names an entry attribute that can scope a filter.
type Field string

const (
	FieldURL         Field = "url"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
	FieldTags        Field = "tags"
	// FieldRepository is stamped at load time, never read from source data.
	FieldRepository Field = "repository"
)

// AllFields returns every known entry field in display order.
func AllFields() []Field {
	return []Field{FieldURL, FieldDescription, FieldCategory, FieldTags, FieldRepository}
}

// Validate checks if the Field is a known entry field.
func (f Field) Validate() error {
	switch f {
	case FieldURL, FieldDescription, FieldCategory, FieldTags, FieldRepository:
		return nil
	case "":
		return fmt.Errorf("field is required")
	default:
		return fmt.Errorf("unknown field '%s' (must be url, description, category, tags, or repository)", f)
	}
}

// String returns the string representation of the Field.
func (f Field) String() string {
	return string(f)
}

// IsList returns true for fields holding a sequence of strings.
func (f Field) IsList() bool {
	return f == FieldTags
}

// ParseField parses a string into a Field.
// Returns an error if the string is not a known field.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// Command is a single keystroke command accepted by the interactive session.
type Command string

const (
	CommandNext             Command = "n"
	CommandPrevious         Command = "p"
	CommandFilter           Command = "f"
	CommandClear            Command = "c"
	CommandSelect           Command = "s"
	CommandRepositories     Command = "r"
	CommandFilterRepository Command = "fr"
	CommandQuit             Command = "q"
)

// AllCommands returns all session commands in menu order.
func AllCommands() []Command {
	return []Command{
		CommandNext, CommandPrevious, CommandFilter, CommandClear,
		CommandSelect, CommandRepositories, CommandFilterRepository, CommandQuit,
	}
}

// Validate checks if the Command is a known session command.
func (c Command) Validate() error {
	switch c {
	case CommandNext, CommandPrevious, CommandFilter, CommandClear,
		CommandSelect, CommandRepositories, CommandFilterRepository, CommandQuit:
		return nil
	case "":
		return fmt.Errorf("command is required")
	default:
		return fmt.Errorf("invalid command '%s'", c)
	}
}

// String returns the string representation of the Command.
func (c Command) String() string {
	return string(c)
}

// Description returns the menu text shown next to the command.
func (c Command) Description() string {
	switch c {
	case CommandNext:
		return "for next"
	case CommandPrevious:
		return "for previous"
	case CommandFilter:
		return "to filter"
	case CommandClear:
		return "to clear filters"
	case CommandSelect:
		return "to select a record"
	case CommandRepositories:
		return "for repositories"
	case CommandFilterRepository:
		return "to filter by repository"
	case CommandQuit:
		return "to quit"
	default:
		return ""
	}
}

// ParseCommand parses user input into a Command. Input is case-insensitive
// and surrounding whitespace is ignored.
func ParseCommand(s string) (Command, error) {
	c := Command(strings.ToLower(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}
