package edit

import (
	"strings"
	"testing"
)

const samplePatch = `--- a/greet.go
+++ b/greet.go
@@ -1,5 +1,5 @@
 package main

 func greet() string {
-	return "hello"
+	return "goodbye"
 }
`

func TestPatchEdits(t *testing.T) {
	patches, err := PatchEdits([]byte(samplePatch))
	if err != nil {
		t.Fatalf("PatchEdits: %v", err)
	}
	if len(patches) != 1 {
		t.Fatalf("got %d file patches, want 1", len(patches))
	}
	fp := patches[0]
	if fp.Path != "greet.go" {
		t.Errorf("Path = %q, want greet.go", fp.Path)
	}
	if len(fp.Edits) != 1 {
		t.Fatalf("got %d edits, want 1", len(fp.Edits))
	}
	if !strings.Contains(fp.Edits[0].Old, `return "hello"`) {
		t.Errorf("old string missing deleted line: %q", fp.Edits[0].Old)
	}
	if !strings.Contains(fp.Edits[0].New, `return "goodbye"`) {
		t.Errorf("new string missing added line: %q", fp.Edits[0].New)
	}
}

func TestApplyPatch(t *testing.T) {
	e := NewEngine()
	content := "package main\n\nfunc greet() string {\n\treturn \"hello\"\n}\n"

	got, err := e.ApplyPatch(content, []byte(samplePatch))
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	want := "package main\n\nfunc greet() string {\n\treturn \"goodbye\"\n}\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApplyPatchStaleContext(t *testing.T) {
	e := NewEngine()
	// Content drifted: extra indentation compared to the patch context.
	// The fallback chain still locates the hunk.
	content := "package main\n\nfunc greet() string {\n\t\treturn \"hello\"\n}\n"

	got, err := e.ApplyPatch(content, []byte(samplePatch))
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if !strings.Contains(got, "goodbye") {
		t.Errorf("patch not applied: %q", got)
	}
}

func TestApplyPatchRejectsMultiFile(t *testing.T) {
	multi := samplePatch + `--- a/other.go
+++ b/other.go
@@ -1,1 +1,1 @@
-old
+new
`
	e := NewEngine()
	if _, err := e.ApplyPatch("x", []byte(multi)); err == nil {
		t.Fatal("ApplyPatch accepted a multi-file patch")
	}

	patches, err := PatchEdits([]byte(multi))
	if err != nil {
		t.Fatalf("PatchEdits: %v", err)
	}
	if len(patches) != 2 {
		t.Errorf("got %d file patches, want 2", len(patches))
	}
}

func TestPatchEditsInsertionWithoutContext(t *testing.T) {
	patch := `--- a/f.txt
+++ b/f.txt
@@ -0,0 +1,2 @@
+first
+second
`
	_, err := PatchEdits([]byte(patch))
	if err == nil {
		t.Fatal("PatchEdits accepted a context-free insertion hunk")
	}
	if !strings.Contains(err.Error(), "context to anchor") {
		t.Errorf("error = %v, want mention of missing context", err)
	}
}

func TestPatchEditsGarbage(t *testing.T) {
	if _, err := PatchEdits([]byte("not a diff at all")); err == nil {
		t.Error("PatchEdits accepted garbage input")
	}
}
