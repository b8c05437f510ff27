// Package gitsafe classifies git invocations as read-only, modifying,
// or destructive. Classification is a pure function of the canonical
// flag set (clustered short options expanded, --flag=value split), so
// reordering arguments or switching between "--flag value" and
// "--flag=value" cannot change the verdict.
package gitsafe

import "strings"

// Safety is the classification of a git invocation.
type Safety int

const (
	// ReadOnly commands inspect state without changing it.
	ReadOnly Safety = iota
	// Modifying commands change state in ways git can undo.
	Modifying
	// Destructive commands irreversibly discard working-tree or
	// history state.
	Destructive
)

func (s Safety) String() string {
	switch s {
	case ReadOnly:
		return "read-only"
	case Modifying:
		return "modifying"
	case Destructive:
		return "destructive"
	default:
		return "unknown"
	}
}

// ArgSpec is a git invocation reduced to its canonical form. Flag
// values stay out of Positionals so they can never satisfy a verb
// rule.
type ArgSpec struct {
	Subcommand  string
	Flags       map[string]bool
	Positionals []string
	Values      []string
}

// HasFlags reports whether every flag in want is present.
func (a ArgSpec) HasFlags(want []string) bool {
	for _, f := range want {
		if !a.Flags[f] {
			return false
		}
	}
	return true
}

// valueShortFlags are short options that consume the rest of their
// cluster as a value (e.g. -mfix is -m "fix", not -m -f -i -x).
// Only flags relevant to classification accuracy are listed.
var valueShortFlags = map[string]bool{
	"-m": true, // message
	"-C": true, // chdir / reuse-message
	"-c": true, // config
	"-o": true, // output / push-option
}

// Canonicalize normalizes raw arguments into an ArgSpec: "--flag=value"
// splits into the bare flag with the value recorded separately,
// clustered short options expand into individual flags, and everything
// after "--" is positional.
func Canonicalize(subcommand string, raw []string) ArgSpec {
	spec := ArgSpec{
		Subcommand: subcommand,
		Flags:      make(map[string]bool),
	}
	positionalOnly := false
	for _, arg := range raw {
		switch {
		case positionalOnly:
			spec.Positionals = append(spec.Positionals, arg)
		case arg == "--":
			positionalOnly = true
		case strings.HasPrefix(arg, "--"):
			flag := arg
			if i := strings.IndexByte(arg, '='); i >= 0 {
				flag = arg[:i]
				spec.Values = append(spec.Values, arg[i+1:])
			}
			spec.Flags[flag] = true
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			expandShortCluster(arg, &spec)
		default:
			spec.Positionals = append(spec.Positionals, arg)
		}
	}
	return spec
}

// expandShortCluster turns "-fd" into -f and -d. A value-taking short
// flag swallows the remainder of the cluster as its value.
func expandShortCluster(arg string, spec *ArgSpec) {
	body := arg[1:]
	for i := 0; i < len(body); i++ {
		flag := "-" + string(body[i])
		spec.Flags[flag] = true
		if valueShortFlags[flag] && i+1 < len(body) {
			spec.Values = append(spec.Values, body[i+1:])
			return
		}
	}
}

// flagSet is one required combination for a destructive rule.
type flagSet []string

// destructiveRules maps a subcommand to the flag sets that make it
// destructive. A command is destructive if its canonical flags are a
// superset of any one set. An empty set means the subcommand is
// destructive unconditionally.
var destructiveRules = map[string][]flagSet{
	"reset":         {{"--hard"}, {"--merge"}, {"--keep"}},
	"clean":         {{"-f"}, {"--force"}},
	"checkout":      {{"-f"}, {"--force"}},
	"restore":       {{}}, // overwrites working-tree files by definition
	"branch":        {{"-D"}, {"-d", "-f"}, {"--delete", "--force"}},
	"push":          {{"-f"}, {"--force"}, {"--delete"}, {"--prune"}, {"--mirror"}},
	"rebase":        {{}}, // rewrites history
	"filter-branch": {{}},
	"update-ref":    {{"-d"}},
	"gc":            {{"--prune"}, {"--aggressive"}},
	"reflog":        {{"--expire-unreachable"}},
	"worktree":      {{"--force"}},
	"rm":            {{"-f"}, {"--force"}},
}

// destructivePositionals marks subcommand verbs (first positional)
// that are destructive regardless of flags.
var destructivePositionals = map[string]map[string]bool{
	"stash":  {"drop": true, "clear": true},
	"remote": {"remove": true, "rm": true, "prune": true},
	"reflog": {"expire": true, "delete": true},
}

// readOnlySubcommands never change repository state.
var readOnlySubcommands = map[string]bool{
	"status":        true,
	"log":           true,
	"diff":          true,
	"show":          true,
	"blame":         true,
	"grep":          true,
	"ls-files":      true,
	"ls-tree":       true,
	"ls-remote":     true,
	"rev-parse":     true,
	"rev-list":      true,
	"cat-file":      true,
	"describe":      true,
	"shortlog":      true,
	"name-rev":      true,
	"merge-base":    true,
	"diff-tree":     true,
	"count-objects": true,
	"var":           true,
	"version":       true,
	"fsck":          true,
}

// Classify categorizes a git subcommand with its raw arguments.
// Unknown subcommands default to Modifying: blocked less eagerly than
// destructive ones, but never treated as safe reads.
func Classify(subcommand string, raw []string) Safety {
	spec := Canonicalize(subcommand, raw)

	for _, required := range destructiveRules[spec.Subcommand] {
		if spec.HasFlags(required) {
			return Destructive
		}
	}
	if verbs := destructivePositionals[spec.Subcommand]; verbs != nil && len(spec.Positionals) > 0 {
		if verbs[spec.Positionals[0]] {
			return Destructive
		}
	}

	if readOnlySubcommands[spec.Subcommand] {
		return ReadOnly
	}
	// branch/remote/tag without arguments are listings. Bare "stash"
	// is not: it stashes.
	switch spec.Subcommand {
	case "branch", "remote", "tag", "config", "reflog", "worktree":
		if len(spec.Positionals) == 0 && onlyListingFlags(spec.Flags) {
			return ReadOnly
		}
	}
	return Modifying
}

// onlyListingFlags reports whether the flag set contains nothing
// beyond harmless listing/formatting flags.
func onlyListingFlags(flags map[string]bool) bool {
	for f := range flags {
		switch f {
		case "-l", "--list", "-v", "--verbose", "-a", "--all", "--show-current":
		default:
			return false
		}
	}
	return true
}

// pathFlags are flags whose value names a filesystem path. Values are
// surfaced by PathArgs so callers can re-validate them against the
// project root even though classification ignores values.
var pathFlags = map[string]bool{
	"--output":           true,
	"--file":             true,
	"-o":                 true,
	"--git-dir":          true,
	"--work-tree":        true,
	"--separate-git-dir": true,
	"--template":         true,
}

// PathArgs extracts the values of path-bearing flags from raw
// arguments: "--flag=value", "--flag value", and the attached short
// form "-ovalue".
func PathArgs(subcommand string, raw []string) []string {
	var paths []string
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if arg == "--" {
			break
		}
		if j := strings.IndexByte(arg, '='); j > 0 && pathFlags[arg[:j]] {
			paths = append(paths, arg[j+1:])
			continue
		}
		if pathFlags[arg] && i+1 < len(raw) {
			paths = append(paths, raw[i+1])
			i++
			continue
		}
		// Attached short form: -o/dir is -o with value /dir.
		if len(arg) > 2 && arg[0] == '-' && arg[1] != '-' {
			if short := arg[:2]; pathFlags[short] && valueShortFlags[short] {
				paths = append(paths, arg[2:])
			}
		}
	}
	return paths
}
