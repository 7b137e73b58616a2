package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/adamancini/neosearch/internal/catalog"
)

// Format represents the file format of a config file.
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatTOML
	FormatJSON
)

// detectFormat determines the file format based on extension or content.
func detectFormat(path string, content []byte) Format {
	if f := formatForExt(path); f != FormatUnknown {
		return f
	}

	// Content sniffing for extensionless files
	return sniffFormat(content)
}

func formatForExt(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}
	return FormatUnknown
}

// formatForPath picks the format used when saving; YAML is the default.
func formatForPath(path string) Format {
	if f := formatForExt(path); f != FormatUnknown {
		return f
	}
	if content, err := os.ReadFile(path); err == nil {
		if f := sniffFormat(content); f != FormatUnknown {
			return f
		}
	}
	return FormatYAML
}

// sniffFormat attempts to detect format from content.
func sniffFormat(content []byte) Format {
	trimmed := strings.TrimSpace(string(content))

	// JSON starts with {
	if strings.HasPrefix(trimmed, "{") {
		return FormatJSON
	}

	// TOML uses key = value, YAML uses key: value
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, " = ") || strings.HasPrefix(line, "[") {
			return FormatTOML
		}
		if strings.Contains(line, ":") {
			return FormatYAML
		}
	}

	return FormatUnknown
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns in content.
func expandEnvVars(content []byte) []byte {
	return envVarPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		parts := envVarPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := os.Getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// parse expands environment variables in content and decodes it
// according to the specified format.
func parse(content []byte, format Format) (*Config, error) {
	return decode(expandEnvVars(content), format)
}

// decode decodes content as written, leaving ${VAR} references in place.
func decode(content []byte, format Format) (*Config, error) {
	var cfg Config

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, catalog.Errorf(catalog.EINVALIDFORMAT, "YAML parse error: %v", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return nil, catalog.Errorf(catalog.EINVALIDFORMAT, "TOML parse error: %v", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(content, &cfg); err != nil {
			return nil, catalog.Errorf(catalog.EINVALIDFORMAT, "JSON parse error: %v", err)
		}
	default:
		return nil, fmt.Errorf("unknown file format")
	}

	if cfg.LocalFiles == nil {
		cfg.LocalFiles = []string{}
	}
	if cfg.URLs == nil {
		cfg.URLs = []string{}
	}

	return &cfg, nil
}

// marshal renders cfg in the given format.
func marshal(cfg *Config, format Format) ([]byte, error) {
	out := Config{LocalFiles: cfg.LocalFiles, URLs: cfg.URLs}
	if out.LocalFiles == nil {
		out.LocalFiles = []string{}
	}
	if out.URLs == nil {
		out.URLs = []string{}
	}

	switch format {
	case FormatTOML:
		return toml.Marshal(out)
	case FormatJSON:
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return nil, fmt.Errorf("failed to encode config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}
