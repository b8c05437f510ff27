// Package version reports the codeward build version.
package version

import (
	"runtime/debug"
	"strings"
)

// Version is set via -ldflags for release builds. Development builds
// fall back to the VCS revision embedded by the Go toolchain.
var Version = "dev"

func init() {
	if Version == "dev" {
		Version = vcsRevision()
	}
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return "dev"
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}

// Full returns the version plus the VCS commit time when available.
func Full() string {
	parts := []string{Version}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.time" {
				parts = append(parts, s.Value)
				break
			}
		}
	}
	return strings.Join(parts, " ")
}
