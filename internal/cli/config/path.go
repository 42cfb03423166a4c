package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/changekeeper/internal/config"
)

// ResolvePath converts a raw path argument to an absolute path.
//   - "" or ".": the current working directory
//   - "~" or "~/...": expanded against the home directory
//   - anything else: made absolute against the working directory
func ResolvePath(rawPath string) (string, error) {
	if rawPath == "" || rawPath == "." {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return cwd, nil
	}

	if rawPath == "~" || strings.HasPrefix(rawPath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding tilde in path: %w", err)
		}
		rawPath = filepath.Join(home, strings.TrimPrefix(rawPath, "~"))
	}

	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return absPath, nil
}

// EnsureDirectory creates path (and parents) unless it already is a directory.
func EnsureDirectory(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("path exists and is not a directory: %s", path)
	case err == nil:
		return nil
	case os.IsNotExist(err):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("checking path %s: %w", path, err)
	}
}

// configTarget returns the file a config command writes to: the user config
// with user set, the --config path when given, otherwise .changekeeper.yml
// inside dir (the current directory when empty).
func configTarget(dir, explicit string, user bool) (string, error) {
	if user {
		return config.UserConfigPath()
	}
	if explicit != "" {
		return ResolvePath(explicit)
	}
	root, err := ResolvePath(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, config.ProjectConfigPath()), nil
}
