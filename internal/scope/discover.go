package scope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// ReadFunc loads a repository file. Missing files are reported with an error
// wrapping fs.ErrNotExist.
type ReadFunc func(ctx context.Context, path string) ([]byte, error)

// Manifest files consulted by Discover, in order.
const (
	PnpmWorkspaceFile = "pnpm-workspace.yaml"
	PackageJSONFile   = "package.json"
	LernaFile         = "lerna.json"
)

// Discover collects workspace patterns from pnpm-workspace.yaml, the
// "workspaces" field of package.json and lerna.json. Missing files are
// skipped; a file that exists but cannot be parsed is an error.
func Discover(ctx context.Context, read ReadFunc) ([]string, error) {
	sources := []struct {
		name  string
		parse func([]byte) ([]string, error)
	}{
		{PnpmWorkspaceFile, parsePnpmWorkspace},
		{PackageJSONFile, parsePackageJSON},
		{LernaFile, parseLerna},
	}

	var patterns []string
	seen := make(map[string]bool)
	for _, src := range sources {
		data, err := read(ctx, src.name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", src.name, err)
		}

		found, err := src.parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", src.name, err)
		}
		for _, p := range found {
			if !seen[p] {
				seen[p] = true
				patterns = append(patterns, p)
			}
		}
	}
	return patterns, nil
}

func parsePnpmWorkspace(data []byte) ([]string, error) {
	var ws struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	return ws.Packages, nil
}

// parsePackageJSON accepts "workspaces" as an array or as {"packages": [...]}.
func parsePackageJSON(data []byte) ([]string, error) {
	var pkg struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	if len(pkg.Workspaces) == 0 || string(pkg.Workspaces) == "null" {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(pkg.Workspaces, &list); err == nil {
		return list, nil
	}

	var nested struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(pkg.Workspaces, &nested); err != nil {
		return nil, fmt.Errorf("workspaces must be an array or an object with packages: %w", err)
	}
	return nested.Packages, nil
}

func parseLerna(data []byte) ([]string, error) {
	var lerna struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(data, &lerna); err != nil {
		return nil, err
	}
	return lerna.Packages, nil
}
