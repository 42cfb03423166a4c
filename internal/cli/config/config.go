// Package config provides the configuration commands of the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ariel-frischer/changekeeper/internal/cli/shared"
	"github.com/ariel-frischer/changekeeper/internal/config"
	clierrors "github.com/ariel-frischer/changekeeper/internal/errors"
	"github.com/ariel-frischer/changekeeper/internal/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Register adds the config command tree to root.
func Register(root *cobra.Command) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage changekeeper configuration",
		Long: `Manage changekeeper configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (CHANGEKEEPER_*, "__" separates nested keys)
  2. Project config (.changekeeper.yml, or --config)
  3. User config (~/.config/changekeeper/config.yml)
  4. Built-in defaults

A configuration that cannot be loaded is reported as a warning and replaced
by the built-in defaults.`,
		Example: `  # Show the effective configuration
  changekeeper config show

  # Create a commented project config
  changekeeper config init

  # Use the GitHub store
  changekeeper config set store.backend github`,
	}
	configCmd.GroupID = shared.GroupConfiguration

	configCmd.AddCommand(newShowCmd(), newInitCmd(), newKeysCmd(), newSetCmd())
	root.AddCommand(configCmd)
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and where it came from",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a commented configuration template",
		Long: `Write a commented configuration template listing every option with its
default value.

By default .changekeeper.yml is created in the current directory, or in path
when given (created if missing). With --user, the user-level config is
written instead. An existing file is left unchanged unless --force is given.`,
		Example: `  changekeeper config init
  changekeeper config init ~/src/my-app
  changekeeper config init --user
  changekeeper config init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfigInit,
	}
	cmd.Flags().Bool("user", false, "Write the user-level config")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing config")
	return cmd
}

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the keys accepted by 'config set'",
		Args:  cobra.NoArgs,
		RunE:  runConfigKeys,
	}
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the project config (or the user config with
--user). The value is checked against the type of the key; comments and key
order of the file are kept. List-valued keys such as categories are edited in
the file directly.`,
		Example: `  changekeeper config set store.backend github
  changekeeper config set github.timeout 1m
  changekeeper config set monorepo.enabled true --user`,
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	}
	cmd.Flags().Bool("user", false, "Write the user-level config")
	return cmd
}

func explicitConfigPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString(shared.ConfigFlagName)
	return path
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	cfg, loadErr := config.Load(explicitConfigPath(cmd))
	printSources(out, explicitConfigPath(cmd))
	if loadErr != nil {
		output.PrintWarning(out, loadErr.Error())
	}
	fmt.Fprintln(out)

	if asJSON {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

// printSources lists the configuration files and environment variables that
// take part in loading.
func printSources(out io.Writer, explicit string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintln(out, bold("Configuration Sources:"))

	if userPath, err := config.UserConfigPath(); err == nil {
		output.PrintField(out, "user", describeFile(userPath))
	}
	projectPath := explicit
	if projectPath == "" {
		projectPath = config.ProjectConfigPath()
	}
	output.PrintField(out, "project", describeFile(projectPath))

	var vars []string
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, config.EnvPrefix) {
			vars = append(vars, name)
		}
	}
	sort.Strings(vars)
	if len(vars) == 0 {
		output.PrintField(out, "env", "(none)")
		return
	}
	output.PrintField(out, "env", strings.Join(vars, ", "))
}

func describeFile(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path + " (not found)"
	}
	return path
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetBool("user")
	force, _ := cmd.Flags().GetBool("force")
	out := cmd.OutOrStdout()

	dir := ""
	if len(args) == 1 {
		dir = args[0]
	}
	explicit := ""
	if dir == "" {
		explicit = explicitConfigPath(cmd)
	}

	target, err := configTarget(dir, explicit, user)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	if _, err := os.Stat(target); err == nil && !force {
		output.PrintSkipped(out, fmt.Sprintf("%s already exists (use --force to overwrite)", target))
		return nil
	}

	if err := EnsureDirectory(filepath.Dir(target)); err != nil {
		return err
	}
	if err := os.WriteFile(target, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	output.PrintSuccess(out, fmt.Sprintf("created %s", target))
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	keys := make([]string, 0, len(config.KnownKeys))
	for k := range config.KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		schema := config.KnownKeys[k]
		kind := schema.Type.String()
		if len(schema.AllowedValues) > 0 {
			kind = strings.Join(schema.AllowedValues, "|")
		}
		fmt.Fprintf(out, "%-20s %-10s %s (default: %v)\n", k, kind, schema.Description, schema.Default)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	user, _ := cmd.Flags().GetBool("user")

	if _, err := config.ValidateValue(key, value); err != nil {
		var unknown config.ErrUnknownKey
		if errors.As(err, &unknown) {
			return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine(),
				"List the accepted keys: changekeeper config keys")
		}
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
	}

	target, err := configTarget("", explicitConfigPath(cmd), user)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}
	if err := config.SetConfigValue(target, key, value); err != nil {
		return err
	}
	output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("set %s = %s in %s", key, value, target))
	return nil
}
