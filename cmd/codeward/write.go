package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func writeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write <file>",
		Short: "Write stdin to a file atomically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}

			e, sess, err := newExecutor(rootDir)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx := cmd.Context()
			// Overwrites need a read record; a missing file is fine.
			if _, err := os.Stat(filepath.Join(rootDir, args[0])); err == nil {
				if _, err := e.Execute(ctx, "read", map[string]any{"file_path": args[0]}); err != nil {
					return err
				}
			}
			out, err := e.Execute(ctx, "write", map[string]any{
				"file_path": args[0],
				"contents":  string(data),
			})
			if err != nil {
				return err
			}
			if verbose {
				fmt.Println(out)
			}
			return nil
		},
	}
	return cmd
}

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <file>",
		Short: "Print a file after validating its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, sess, err := newExecutor(rootDir)
			if err != nil {
				return err
			}
			defer sess.Close()

			out, err := e.Execute(cmd.Context(), "read", map[string]any{"file_path": args[0]})
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}
