package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/codeward-dev/codeward/internal/config"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get and set codeward configuration",
		Long:  "Inspect or modify codeward configuration values. Similar to git config.",
	}

	cmd.AddCommand(configGetCmd())
	cmd.AddCommand(configSetCmd())
	cmd.AddCommand(configListCmd())

	return cmd
}

func configGetCmd() *cobra.Command {
	var globalFlag bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !config.IsValidKey(key) {
				return fmt.Errorf("unknown config key: %q", key)
			}

			var val string
			if globalFlag {
				cfg, err := config.LoadGlobal()
				if err != nil {
					return fmt.Errorf("load global config: %w", err)
				}
				val, err = config.GetConfigValue(cfg, key)
				if err != nil {
					return err
				}
			} else {
				cfg, err := loadEffectiveConfig(rootDir)
				if err != nil {
					return err
				}
				val, err = config.GetConfigValue(cfg, key)
				if err != nil {
					return err
				}
			}
			fmt.Println(val)
			return nil
		},
	}

	cmd.Flags().BoolVar(&globalFlag, "global", false, "read the global config only, ignoring project overrides")

	return cmd
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value in the global config",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if !config.IsValidKey(key) {
				return fmt.Errorf("unknown config key: %q", key)
			}

			cfg, err := config.LoadGlobal()
			if err != nil {
				return fmt.Errorf("load global config: %w", err)
			}
			if err := config.SetConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Save(config.GlobalConfigPath()); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			if verbose {
				fmt.Printf("%s = %s\n", key, value)
			}
			return nil
		},
	}
}

func configListCmd() *cobra.Command {
	var globalFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config
			var err error
			if globalFlag {
				cfg, err = config.LoadGlobal()
			} else {
				cfg, err = loadEffectiveConfig(rootDir)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, kv := range config.ListConfigKeys(cfg) {
				fmt.Fprintf(w, "%s\t%s\n", kv.Key, kv.Value)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&globalFlag, "global", false, "list the global config only, ignoring project overrides")

	return cmd
}
