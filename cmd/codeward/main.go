package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	rootDir string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "codeward",
		Short: "Sandboxed file and git operations for coding agents",
		Long:  "codeward validates paths, applies fuzzy-matched edits atomically, and runs git commands behind a destructive-command gate.",
	}

	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "project root directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(readCmd())
	rootCmd.AddCommand(writeCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(applyPatchCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		// Check for exitError to exit with specific code without extra output
		if exitErr, ok := err.(*exitError); ok {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}
