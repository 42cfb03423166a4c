package config

import (
	"fmt"
	"strings"
	"time"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeDuration
	TypeString
	TypeEnum
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeDuration:
		return "duration"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Dotted key path (e.g., "store.push")
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Default       interface{}     // Default value
}

// KnownKeys is the registry of scalar configuration keys that can be shown and
// set from the command line. List-valued keys (categories, breaking_labels,
// monorepo.packages) are edited in the config file directly.
var KnownKeys = map[string]ConfigKeySchema{
	"changelog_path": {
		Path:        "changelog_path",
		Type:        TypeString,
		Description: "Changelog document path, relative to the repository root",
		Default:     "CHANGELOG.md",
	},
	"monorepo.enabled": {
		Path:        "monorepo.enabled",
		Type:        TypeBool,
		Description: "Infer the entry scope from the package touched by a change",
		Default:     false,
	},
	"store.backend": {
		Path:          "store.backend",
		Type:          TypeEnum,
		AllowedValues: []string{BackendGit, BackendGitHub},
		Description:   "Document store: local git repository or the GitHub contents API",
		Default:       BackendGit,
	},
	"store.branch": {
		Path:        "store.branch",
		Type:        TypeString,
		Description: "Branch written to instead of the branch named by the event",
		Default:     "",
	},
	"store.remote": {
		Path:        "store.remote",
		Type:        TypeString,
		Description: "Remote pushed to after committing (git backend)",
		Default:     "origin",
	},
	"store.push": {
		Path:        "store.push",
		Type:        TypeBool,
		Description: "Push the branch after committing (git backend)",
		Default:     false,
	},
	"store.author_name": {
		Path:        "store.author_name",
		Type:        TypeString,
		Description: "Commit author name (git backend)",
		Default:     "changekeeper",
	},
	"store.author_email": {
		Path:        "store.author_email",
		Type:        TypeString,
		Description: "Commit author email (git backend)",
		Default:     "changekeeper@users.noreply.github.com",
	},
	"github.repository": {
		Path:        "github.repository",
		Type:        TypeString,
		Description: "Repository as owner/name (default: $GITHUB_REPOSITORY)",
		Default:     "",
	},
	"github.api_url": {
		Path:        "github.api_url",
		Type:        TypeString,
		Description: "GitHub REST API base URL",
		Default:     "https://api.github.com",
	},
	"github.timeout": {
		Path:        "github.timeout",
		Type:        TypeDuration,
		Description: "HTTP timeout for GitHub API requests (e.g. 30s, 1m)",
		Default:     "30s",
	},
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// ParsedValue represents a configuration value after type inference and validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

// validateAgainstSchema validates a value against a specific schema.
func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeBool:
		return parseBoolValue(value)
	case TypeDuration:
		return parseDurationValue(value)
	case TypeEnum:
		return parseEnumValue(schema, value)
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	default:
		return ParsedValue{}, fmt.Errorf("unsupported type: %v", schema.Type)
	}
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (ParsedValue, error) {
	switch strings.ToLower(value) {
	case "true":
		return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
	case "false":
		return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
	default:
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseDurationValue parses and validates a duration value.
func parseDurationValue(value string) (ParsedValue, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid duration: %q (examples: 5m, 1h30m, 10s)", value)
	}
	return ParsedValue{Raw: value, Parsed: d.String(), Type: TypeDuration}, nil
}

// parseEnumValue validates a value against allowed enum options.
func parseEnumValue(schema ConfigKeySchema, value string) (ParsedValue, error) {
	for _, allowed := range schema.AllowedValues {
		if value == allowed {
			return ParsedValue{Raw: value, Parsed: value, Type: TypeEnum}, nil
		}
	}
	return ParsedValue{}, fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value,
		strings.Join(schema.AllowedValues, ", "),
	)
}
