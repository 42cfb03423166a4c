// Package config tests the configuration commands.
// Related: internal/cli/config/config.go
// Tags: config, cli, show, init, set

package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/ariel-frischer/changekeeper/internal/config"
	clierrors "github.com/ariel-frischer/changekeeper/internal/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runConfig executes the config command tree under a fresh root. The user
// config directory is redirected into a temporary directory.
func runConfig(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := &cobra.Command{Use: "changekeeper", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String(shared.ConfigFlagName, "", "config file")
	root.AddGroup(&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration:"})
	Register(root)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRegister_Subcommands(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "changekeeper"}
	root.AddGroup(&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration:"})
	Register(root)

	configCmd, _, err := root.Find([]string{"config"})
	require.NoError(t, err)
	assert.Equal(t, shared.GroupConfiguration, configCmd.GroupID)

	found := make(map[string]bool)
	for _, cmd := range configCmd.Commands() {
		found[cmd.Name()] = true
		assert.NotNil(t, cmd.RunE, "%s should have RunE", cmd.Name())
	}
	for _, name := range []string{"show", "init", "keys", "set"} {
		assert.True(t, found[name], "should have %s subcommand", name)
	}
}

func TestConfigShow_OutputFormats(t *testing.T) {
	tests := map[string]struct {
		args []string
		want []string
	}{
		"yaml output by default": {
			args: []string{"config", "show"},
			want: []string{"Configuration Sources", "changelog_path: CHANGELOG.md", "backend: git"},
		},
		"json output when flag set": {
			args: []string{"config", "show", "--json"},
			want: []string{"Configuration Sources", `"changelog_path": "CHANGELOG.md"`, `"backend": "git"`},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			out, err := runConfig(t, tt.args...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestConfigShow_ProjectConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ck.yml")
	require.NoError(t, os.WriteFile(path, []byte("changelog_path: docs/CHANGES.md\n"), 0o644))

	out, err := runConfig(t, "config", "show", "--json", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, `"changelog_path": "docs/CHANGES.md"`)
}

func TestConfigShow_MalformedConfigWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ck.yml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: svn\n"), 0o644))

	out, err := runConfig(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "backend: git")
}

func TestConfigShow_JSONIsValid(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := runConfig(t, "config", "show", "--json")
	require.NoError(t, err)

	start := bytes.IndexByte([]byte(out), '{')
	require.GreaterOrEqual(t, start, 0)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &decoded))
	assert.Contains(t, decoded, "categories")
	assert.Contains(t, decoded, "store")
}

func TestConfigInit(t *testing.T) {
	tests := map[string]struct {
		existing    string
		force       bool
		wantContent string
		wantOutput  string
	}{
		"creates template": {
			wantContent: config.GetDefaultConfigTemplate(),
			wantOutput:  "created",
		},
		"keeps existing file": {
			existing:    "changelog_path: X.md\n",
			wantContent: "changelog_path: X.md\n",
			wantOutput:  "already exists",
		},
		"force overwrites": {
			existing:    "changelog_path: X.md\n",
			force:       true,
			wantContent: config.GetDefaultConfigTemplate(),
			wantOutput:  "created",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			target := filepath.Join(dir, config.ProjectConfigPath())
			if tt.existing != "" {
				require.NoError(t, os.WriteFile(target, []byte(tt.existing), 0o644))
			}

			args := []string{"config", "init", dir}
			if tt.force {
				args = append(args, "--force")
			}
			out, err := runConfig(t, args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOutput)

			data, err := os.ReadFile(target)
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, string(data))
		})
	}
}

func TestConfigInit_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "new", "project")

	_, err := runConfig(t, "config", "init", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, config.ProjectConfigPath()))
}

func TestConfigInit_User(t *testing.T) {
	out, err := runConfig(t, "config", "init", "--user")
	require.NoError(t, err)

	userPath, err := config.UserConfigPath()
	require.NoError(t, err)
	assert.FileExists(t, userPath)
	assert.Contains(t, out, userPath)
}

func TestConfigKeys(t *testing.T) {
	out, err := runConfig(t, "config", "keys")
	require.NoError(t, err)

	for key := range config.KnownKeys {
		assert.Contains(t, out, key)
	}
	assert.Contains(t, out, "git|github")
}

func TestConfigSet(t *testing.T) {
	tests := map[string]struct {
		key      string
		value    string
		wantErr  bool
		wantFile []string
	}{
		"string key": {
			key:      "changelog_path",
			value:    "docs/CHANGES.md",
			wantFile: []string{"changelog_path: docs/CHANGES.md"},
		},
		"nested enum": {
			key:      "store.backend",
			value:    "github",
			wantFile: []string{"store:", "backend: github"},
		},
		"unknown key": {
			key:     "store.color",
			value:   "blue",
			wantErr: true,
		},
		"invalid enum": {
			key:     "store.backend",
			value:   "svn",
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ck.yml")

			_, err := runConfig(t, "config", "set", tt.key, tt.value, "--config", path)
			if tt.wantErr {
				require.Error(t, err)
				cliErr := clierrors.AsCLIError(err)
				require.NotNil(t, cliErr)
				assert.Equal(t, clierrors.Argument, cliErr.Category)
				assert.NoFileExists(t, path)
				return
			}
			require.NoError(t, err)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			for _, want := range tt.wantFile {
				assert.Contains(t, string(data), want)
			}
		})
	}
}

func TestConfigTarget(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := map[string]struct {
		dir      string
		explicit string
		user     bool
		want     string
	}{
		"current directory": {want: filepath.Join(cwd, ".changekeeper.yml")},
		"directory":         {dir: "/srv/app", want: "/srv/app/.changekeeper.yml"},
		"explicit file":     {explicit: "/srv/app/ck.yml", want: "/srv/app/ck.yml"},
		"user wins":         {explicit: "/srv/app/ck.yml", user: true, want: "/tmp/xdg/changekeeper/config.yml"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := configTarget(tt.dir, tt.explicit, tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
