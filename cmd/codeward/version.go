package main

import (
	"fmt"

	"github.com/codeward-dev/codeward/internal/version"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show codeward version",
		Run: func(cmd *cobra.Command, args []string) {
			if full {
				fmt.Printf("codeward %s\n", version.Full())
				return
			}
			fmt.Printf("codeward %s\n", version.Version)
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "include build metadata")

	return cmd
}
