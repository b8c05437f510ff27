package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func editCmd() *cobra.Command {
	var oldStr, newStr string
	var replaceAll bool

	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Replace a snippet in a file",
		Long:  "Find --old in the file using exact then progressively fuzzier matching and replace it with --new. The file is rewritten atomically.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, sess, err := newExecutor(rootDir)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx := cmd.Context()
			// Record the read so the edit passes the session's
			// read-before-write check.
			if _, err := e.Execute(ctx, "read", map[string]any{"file_path": args[0]}); err != nil {
				return err
			}
			preview, err := e.Execute(ctx, "edit", map[string]any{
				"file_path":   args[0],
				"old_string":  oldStr,
				"new_string":  newStr,
				"replace_all": replaceAll,
			})
			if err != nil {
				return err
			}
			fmt.Print(preview)
			return nil
		},
	}

	cmd.Flags().StringVar(&oldStr, "old", "", "text to find (required)")
	cmd.Flags().StringVar(&newStr, "new", "", "replacement text")
	cmd.Flags().BoolVar(&replaceAll, "replace-all", false, "replace every occurrence")
	cmd.MarkFlagRequired("old")

	return cmd
}
