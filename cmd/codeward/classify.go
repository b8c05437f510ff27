package main

import (
	"fmt"

	"github.com/codeward-dev/codeward/internal/gitsafe"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <subcommand> [args...]",
		Short: "Classify a git invocation as read-only, modifying, or destructive",
		// Git flags like --hard must reach the classifier untouched.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("usage: codeward classify <subcommand> [args...]")
			}
			fmt.Println(gitsafe.Classify(args[0], args[1:]).String())
			return nil
		},
	}
}
