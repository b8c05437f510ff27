package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/codeward-dev/codeward/internal/tool"
	"github.com/spf13/cobra"
)

// maxRequestLine bounds a single JSON request. Patches and file
// contents travel inline, so the limit is generous.
const maxRequestLine = 16 << 20

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve operation requests over stdin",
		Long:  "Read newline-delimited JSON requests from stdin and write one JSON response per request to stdout. The session's read records persist for the life of the process.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, sess, err := newExecutor(rootDir)
			if err != nil {
				return err
			}
			defer sess.Close()

			enc := json.NewEncoder(os.Stdout)
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 64*1024), maxRequestLine)

			for scanner.Scan() {
				line := scanner.Bytes()
				if len(line) == 0 {
					continue
				}
				var req tool.Request
				if err := json.Unmarshal(line, &req); err != nil {
					if err := enc.Encode(tool.Response{Error: fmt.Sprintf("decode request: %v", err)}); err != nil {
						return err
					}
					continue
				}
				if err := enc.Encode(e.Dispatch(cmd.Context(), req)); err != nil {
					return err
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read requests: %w", err)
			}
			return nil
		},
	}
}
