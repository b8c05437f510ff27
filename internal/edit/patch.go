package edit

import (
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// FilePatch is the edit batch extracted from one file's hunks in a
// unified diff.
type FilePatch struct {
	Path  string
	Edits []Edit
}

// PatchEdits parses a unified diff and converts each file's hunks into
// an edit batch: a hunk's context plus deleted lines become the old
// string, context plus added lines the new string. The edits then go
// through the same matching chain as hand-written edits, which is what
// lets slightly stale patches still land.
func PatchEdits(patch []byte) ([]FilePatch, error) {
	fileDiffs, err := godiff.ParseMultiFileDiff(patch)
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	if len(fileDiffs) == 0 {
		return nil, fmt.Errorf("parse patch: no file diffs found")
	}

	patches := make([]FilePatch, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		path := patchPath(fd)
		if path == "" {
			return nil, fmt.Errorf("parse patch: file diff without a usable path")
		}
		fp := FilePatch{Path: path}
		for _, h := range fd.Hunks {
			ed, err := hunkEdit(h.Body)
			if err != nil {
				return nil, fmt.Errorf("hunk at line %d of %s: %w", h.OrigStartLine, path, err)
			}
			fp.Edits = append(fp.Edits, ed)
		}
		patches = append(patches, fp)
	}
	return patches, nil
}

// ApplyPatch applies a single-file unified diff to content. Multi-file
// patches are rejected here; the tool layer iterates PatchEdits for
// those.
func (e *Engine) ApplyPatch(content string, patch []byte) (string, error) {
	patches, err := PatchEdits(patch)
	if err != nil {
		return "", err
	}
	if len(patches) != 1 {
		return "", fmt.Errorf("patch touches %d files, expected 1", len(patches))
	}
	return e.Apply(content, patches[0].Edits)
}

// patchPath picks the post-image path, falling back to the pre-image
// for deletions, with the conventional a/ and b/ prefixes stripped.
func patchPath(fd *godiff.FileDiff) string {
	name := strings.TrimPrefix(fd.NewName, "b/")
	if name == "" || name == "/dev/null" {
		name = strings.TrimPrefix(fd.OrigName, "a/")
	}
	if name == "/dev/null" {
		return ""
	}
	return name
}

// hunkEdit converts one hunk body into an old/new string pair.
// "\ No newline at end of file" markers are dropped.
func hunkEdit(body []byte) (Edit, error) {
	var oldLines, newLines []string
	lines := strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
	for _, l := range lines {
		if l == "" {
			// A bare empty line inside a hunk body is an empty context line.
			oldLines = append(oldLines, "")
			newLines = append(newLines, "")
			continue
		}
		switch l[0] {
		case ' ':
			oldLines = append(oldLines, l[1:])
			newLines = append(newLines, l[1:])
		case '-':
			oldLines = append(oldLines, l[1:])
		case '+':
			newLines = append(newLines, l[1:])
		case '\\':
			// "\ No newline at end of file"
		default:
			return Edit{}, fmt.Errorf("unexpected hunk line %q", l)
		}
	}
	if len(oldLines) == 0 && len(newLines) == 0 {
		return Edit{}, fmt.Errorf("empty hunk")
	}
	if len(oldLines) == 0 {
		// Nothing to match against; insertions need at least one
		// context line to anchor them.
		return Edit{}, fmt.Errorf("hunk adds lines without any context to anchor the insertion")
	}
	return Edit{
		Old: strings.Join(oldLines, "\n"),
		New: strings.Join(newLines, "\n"),
	}, nil
}
