package edit

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Preview renders a unified diff of before vs after, labeled with the
// caller-supplied path. Returned to the agent alongside the ok result
// so it can confirm what actually changed.
func Preview(before, after, path string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("render diff: %w", err)
	}
	return out, nil
}
