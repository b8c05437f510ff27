package main

import (
	"fmt"
	"os"
	"time"

	"github.com/codeward-dev/codeward/internal/sandbox"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var allowDestructive bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Run a command in the sandbox",
		Long:  "Run an allowlisted command under the project root with a filtered environment and a wall-clock limit. Destructive git invocations are refused unless --allow-destructive is set.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEffectiveConfig(rootDir)
			if err != nil {
				return err
			}
			box := sandbox.New(sandbox.Options{
				AllowedCommands: cfg.AllowedCommands,
				EnvAllowlist:    cfg.EnvAllowlist,
				DefaultTimeout:  time.Duration(cfg.CommandTimeoutSeconds) * time.Second,
				MaxWorkers:      cfg.MaxWorkers,
			})

			res, err := box.Execute(cmd.Context(), rootDir, sandbox.Request{
				Command:          args[0],
				Args:             args[1:],
				AllowDestructive: allowDestructive,
				Timeout:          timeout,
			})
			if err != nil {
				return err
			}

			fmt.Print(res.Stdout)
			fmt.Fprint(os.Stderr, res.Stderr)
			if res.ExitCode != 0 {
				return &exitError{code: res.ExitCode}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allowDestructive, "allow-destructive", false, "permit destructive git commands")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "wall-clock limit (default from config)")

	return cmd
}
