// changekeeper - changelog and version-bump automation
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/changekeeper

// Package config provides hierarchical configuration management for changekeeper using koanf.
// Configuration is loaded with priority: environment variables > project config (.changekeeper.yml)
// > user config (~/.config/changekeeper/config.yml) > defaults. A configuration that cannot be
// read or validated degrades to the full defaults; the problem is reported as a *MalformedError.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ariel-frischer/changekeeper/internal/classify"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "CHANGEKEEPER_"

// Store backends.
const (
	BackendGit    = "git"
	BackendGitHub = "github"
)

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the changekeeper configuration.
type Configuration struct {
	// ChangelogPath is the repository-relative path of the changelog document.
	ChangelogPath string `koanf:"changelog_path" yaml:"changelog_path" json:"changelog_path" validate:"required"`

	// Categories is the ordered list of changelog categories. Order decides
	// label-match priority and the fallback choice.
	Categories []CategoryConfig `koanf:"categories" yaml:"categories" json:"categories" validate:"min=1,dive"`

	// BreakingLabels are label aliases that mark a change as breaking.
	BreakingLabels []string `koanf:"breaking_labels" yaml:"breaking_labels" json:"breaking_labels"`

	Monorepo MonorepoConfig `koanf:"monorepo" yaml:"monorepo" json:"monorepo"`
	Store    StoreConfig    `koanf:"store" yaml:"store" json:"store"`
	GitHub   GitHubConfig   `koanf:"github" yaml:"github" json:"github"`
}

// CategoryConfig is one configured category and the labels/types that select it.
type CategoryConfig struct {
	Name    string   `koanf:"name" yaml:"name" json:"name" validate:"required"`
	Aliases []string `koanf:"aliases" yaml:"aliases" json:"aliases"`
}

// MonorepoConfig controls scope inference from changed files.
type MonorepoConfig struct {
	Enabled bool `koanf:"enabled" yaml:"enabled" json:"enabled"`
	// Packages are workspace globs. When empty they are discovered from
	// pnpm-workspace.yaml, package.json or lerna.json.
	Packages []string `koanf:"packages" yaml:"packages" json:"packages"`
}

// StoreConfig selects and tunes the document store.
type StoreConfig struct {
	Backend string `koanf:"backend" yaml:"backend" json:"backend" validate:"oneof=git github"`
	// Branch overrides the branch named by the event.
	Branch      string `koanf:"branch" yaml:"branch" json:"branch"`
	Remote      string `koanf:"remote" yaml:"remote" json:"remote"`
	Push        bool   `koanf:"push" yaml:"push" json:"push"`
	AuthorName  string `koanf:"author_name" yaml:"author_name" json:"author_name"`
	AuthorEmail string `koanf:"author_email" yaml:"author_email" json:"author_email" validate:"omitempty,email"`
}

// GitHubConfig configures the GitHub REST backend.
type GitHubConfig struct {
	// Repository is "owner/name"; GITHUB_REPOSITORY is used when empty.
	Repository string `koanf:"repository" yaml:"repository" json:"repository"`
	APIURL     string `koanf:"api_url" yaml:"api_url" json:"api_url" validate:"omitempty,url"`
	Timeout    string `koanf:"timeout" yaml:"timeout" json:"timeout"`
}

// MalformedError reports a configuration source that could not be used.
// The configuration returned alongside it holds the full defaults.
type MalformedError struct {
	Source ConfigSource
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s configuration ignored, using defaults: %v", e.Source, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectConfigPath overrides the default project config path.
	ProjectConfigPath string
	// UserConfigPath overrides the default user config path. Tests use it to
	// keep the real user config out of the way.
	UserConfigPath string
	// SkipUser disables loading the user-level config.
	SkipUser bool
}

// Load loads configuration from all sources with proper priority.
//
// The returned configuration is never nil. When any source fails to load or
// the merged result fails validation, the defaults are returned together with
// a *MalformedError that callers report as a warning.
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if !opts.SkipUser {
		if err := loadUserConfig(k, opts.UserConfigPath); err != nil {
			return fallback(SourceUser, err)
		}
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath); err != nil {
		return fallback(SourceProject, err)
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return fallback(SourceEnv, err)
	}

	cfg, err := finalizeConfig(k)
	if err != nil {
		return fallback(SourceProject, err)
	}
	return cfg, nil
}

// Defaults returns the configuration built from the defaults alone.
func Defaults() *Configuration {
	k := koanf.New(".")
	loadDefaults(k)

	var cfg Configuration
	// The defaults map mirrors the struct, so unmarshalling cannot fail.
	_ = k.Unmarshal("", &cfg)
	return &cfg
}

// IsMalformed reports whether err is a configuration fallback warning.
func IsMalformed(err error) bool {
	var malformed *MalformedError
	return errors.As(err, &malformed)
}

func fallback(source ConfigSource, err error) (*Configuration, error) {
	return Defaults(), &MalformedError{Source: source, Err: err}
}

// loadDefaults loads default values into koanf.
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level config if it exists.
func loadUserConfig(k *koanf.Koanf, customPath string) error {
	path := customPath
	if path == "" {
		path, _ = UserConfigPath()
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadConfigFile(k, path, "user"); err != nil {
		return fmt.Errorf("loading user config: %w", err)
	}
	return nil
}

// loadProjectConfig loads the project-level config if it exists. An explicit
// path that does not exist is an error.
func loadProjectConfig(k *koanf.Koanf, customPath string) error {
	path := ProjectConfigPath()
	if customPath != "" {
		path = customPath
		if !fileExists(path) {
			return fmt.Errorf("config file %s: %w", path, os.ErrNotExist)
		}
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadConfigFile(k, path, "project"); err != nil {
		return fmt.Errorf("loading project config: %w", err)
	}
	return nil
}

// loadConfigFile loads a YAML or JSON file, picking the parser by extension.
func loadConfigFile(k *koanf.Koanf, path, configType string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
		}
		return nil
	}
	return loadYAMLConfig(k, path, configType)
}

// loadYAMLConfig validates and loads a YAML config file.
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads configuration from environment variables.
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals and validates the merged configuration.
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.GitHub.Repository = strings.TrimSpace(cfg.GitHub.Repository)
	if cfg.GitHub.Repository == "" {
		cfg.GitHub.Repository = os.Getenv("GITHUB_REPOSITORY")
	}

	return &cfg, nil
}

// fileExists checks if a file exists at the given path.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// envTransform converts CHANGEKEEPER_STORE__BACKEND to store.backend.
// A single underscore stays part of the key name.
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Rules returns the classifier configuration.
func (c *Configuration) Rules() classify.Rules {
	rules := classify.Rules{
		Categories:     make([]classify.Category, 0, len(c.Categories)),
		BreakingLabels: append([]string(nil), c.BreakingLabels...),
	}
	for _, cat := range c.Categories {
		rules.Categories = append(rules.Categories, classify.Category{
			Name:    strings.TrimSpace(cat.Name),
			Aliases: append([]string(nil), cat.Aliases...),
		})
	}
	return rules
}

// TargetBranch returns the branch a write goes to: the configured override
// when set, otherwise the branch named by the event.
func (c *Configuration) TargetBranch(eventBranch string) string {
	if branch := strings.TrimSpace(c.Store.Branch); branch != "" {
		return branch
	}
	return strings.TrimSpace(eventBranch)
}

// GitHubTimeout returns the HTTP timeout for the GitHub backend, or zero when
// unset.
func (c *Configuration) GitHubTimeout() time.Duration {
	d, err := time.ParseDuration(c.GitHub.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
