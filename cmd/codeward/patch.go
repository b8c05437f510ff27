package main

import (
	"fmt"
	"io"
	"os"

	"github.com/codeward-dev/codeward/internal/edit"
	"github.com/spf13/cobra"
)

func applyPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply-patch [file]",
		Short: "Apply a unified diff through the edit engine",
		Long:  "Parse a unified diff and apply each hunk as a fuzzy-matched edit. Reads the patch from the named file, or from stdin when omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch []byte
			var err error
			if len(args) == 1 {
				patch, err = os.ReadFile(args[0])
			} else {
				patch, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("read patch: %w", err)
			}

			e, sess, err := newExecutor(rootDir)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx := cmd.Context()
			// Record a read for each target so the edits pass the
			// session's read-before-write check.
			patches, err := edit.PatchEdits(patch)
			if err != nil {
				return err
			}
			for _, fp := range patches {
				if _, err := e.Execute(ctx, "read", map[string]any{"file_path": fp.Path}); err != nil {
					return err
				}
			}

			out, err := e.Execute(ctx, "apply_patch", map[string]any{"patch": string(patch)})
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	return cmd
}
