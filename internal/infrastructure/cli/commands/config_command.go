package commands

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/budgetq/internal/app"
	configapp "github.com/doeshing/budgetq/internal/application/config"
	"github.com/doeshing/budgetq/internal/domain"
	"github.com/doeshing/budgetq/internal/infrastructure/cli/helpers"
	configinfra "github.com/doeshing/budgetq/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect budgetq configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, container)
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfiguration(cmd, container)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			RunE: func(cmd *cobra.Command, args []string) error {
				if container.ConfigLoader == nil {
					return errors.New(ErrConfigLoaderUnavailable)
				}
				fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
				return nil
			},
		},
		newConfigGetCommand(container),
		&cobra.Command{
			Use:   "validate",
			Short: "Reload and validate the configuration file",
			RunE: func(cmd *cobra.Command, args []string) error {
				return validateConfiguration(cmd, container)
			},
		},
		&cobra.Command{
			Use:   "diff",
			Short: "Show differences from the default configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfigurationDiff(cmd, container)
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit configuration in $EDITOR",
			RunE: func(cmd *cobra.Command, args []string) error {
				return editConfigurationInEditor(container)
			},
		},
	)

	return configCmd
}

func newConfigGetCommand(container *app.Container) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Get a specific configuration value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" && len(args) == 1 {
				key = args[0]
			}
			if key == "" {
				return errors.New(ErrKeyRequired)
			}
			value, err := helpers.LookupConfigValue(container.Config, key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), domain.FormatValue(value))
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Key path (e.g., service.base_url)")
	return cmd
}

func showConfiguration(cmd *cobra.Command, container *app.Container) error {
	data, err := yaml.Marshal(container.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func validateConfiguration(cmd *cobra.Command, container *app.Container) error {
	if container.ConfigLoader == nil {
		return errors.New(ErrConfigLoaderUnavailable)
	}
	cfg, err := container.ConfigLoader.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configapp.Validate(cfg); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
	return nil
}

func showConfigurationDiff(cmd *cobra.Command, container *app.Container) error {
	defaultConfig, err := configinfra.DefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to load default configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	diff := cmp.Diff(defaultConfig, container.Config)
	if diff == "" {
		fmt.Fprintln(out, MsgNoDifferencesFromDefault)
		return nil
	}
	fmt.Fprintln(out, diff)
	return nil
}

func editConfigurationInEditor(container *app.Container) error {
	if container.ConfigLoader == nil {
		return errors.New(ErrConfigLoaderUnavailable)
	}
	editor := os.Getenv(envKeyEditor)
	if editor == "" {
		editor = DefaultEditorCommand
	}

	cmd := exec.Command(editor, container.ConfigLoader.Path())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run editor %s: %w", editor, err)
	}
	return nil
}
