// Package textmatch locates a target string in file content using an
// ordered fallback chain of matching strategies, from exact substring
// match down to fuzzy line-sequence matching. The chain is defined
// once and shared by every caller, so single edits and batch edits
// cannot drift apart in matching behavior.
package textmatch

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// Strategy identifies which matching strategy located a target.
type Strategy string

const (
	StrategyExact       Strategy = "exact"
	StrategyLineTrimmed Strategy = "line-trimmed"
	StrategyWhitespace  Strategy = "whitespace-normalized"
	StrategyIndent      Strategy = "indentation-flexible"
	StrategyFuzzyLines  Strategy = "fuzzy-line-sequence"
)

// Match is a located occurrence of the target. Start and Length are in
// grapheme clusters so they stay meaningful for multi-byte text;
// ByteStart and ByteEnd delimit the original (non-normalized) span in
// content bytes and are what the edit engine splices against.
type Match struct {
	Strategy  Strategy
	Start     int
	Length    int
	ByteStart int
	ByteEnd   int
}

// ErrNoMatch indicates no strategy in the chain located the target.
var ErrNoMatch = errors.New("target string not found in content")

// ErrAmbiguous is matched by errors.Is against an AmbiguousError.
var ErrAmbiguous = errors.New("target string matches more than once")

// AmbiguousError reports a strategy that found multiple occurrences
// when exactly one was required.
type AmbiguousError struct {
	Strategy Strategy
	Count    int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("target string matches %d times (%s strategy); provide more context or set replace_all", e.Count, e.Strategy)
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }

// span is a half-open byte range into the original content.
type span struct {
	start, end int
}

type strategyFunc func(content, target string) []span

// chain is the fixed-priority strategy order. Evaluation stops at the
// first strategy that yields at least one match.
var chain = []struct {
	name Strategy
	fn   strategyFunc
}{
	{StrategyExact, matchExact},
	{StrategyLineTrimmed, matchLineTrimmed},
	{StrategyWhitespace, matchWhitespaceNormalized},
	{StrategyIndent, matchIndentFlexible},
	{StrategyFuzzyLines, matchFuzzyLines},
}

// Find locates target in content. With replaceAll false, exactly one
// occurrence is required and multiple occurrences fail with an
// AmbiguousError; with replaceAll true all occurrences found by the
// winning strategy are returned in content order.
func Find(content, target string, replaceAll bool) ([]Match, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: empty target", ErrNoMatch)
	}
	for _, s := range chain {
		spans := s.fn(content, target)
		if len(spans) == 0 {
			continue
		}
		if len(spans) > 1 && !replaceAll {
			return nil, &AmbiguousError{Strategy: s.name, Count: len(spans)}
		}
		return toMatches(content, s.name, spans), nil
	}
	return nil, ErrNoMatch
}

// toMatches converts byte spans to Matches, computing grapheme-cluster
// offsets incrementally (spans are in content order, so each prefix is
// counted once).
func toMatches(content string, name Strategy, spans []span) []Match {
	matches := make([]Match, 0, len(spans))
	prevByte := 0
	prevGrapheme := 0
	for _, sp := range spans {
		start := prevGrapheme + uniseg.GraphemeClusterCount(content[prevByte:sp.start])
		length := uniseg.GraphemeClusterCount(content[sp.start:sp.end])
		matches = append(matches, Match{
			Strategy:  name,
			Start:     start,
			Length:    length,
			ByteStart: sp.start,
			ByteEnd:   sp.end,
		})
		prevByte = sp.start
		prevGrapheme = start
	}
	return matches
}

// matchExact finds non-overlapping literal occurrences.
func matchExact(content, target string) []span {
	var spans []span
	for off := 0; ; {
		i := strings.Index(content[off:], target)
		if i < 0 {
			break
		}
		start := off + i
		spans = append(spans, span{start, start + len(target)})
		off = start + len(target)
	}
	return spans
}

// line is a content line with its byte extent (end excludes the newline).
type line struct {
	start, end int
	text       string
}

func splitContentLines(content string) []line {
	var lines []line
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, line{start, i, content[start:i]})
			start = i + 1
		}
	}
	lines = append(lines, line{start, len(content), content[start:]})
	return lines
}

// splitTargetLines splits the target into lines, reporting whether it
// ends with a newline (so the matched span can include the trailing
// newline of the last matched content line).
func splitTargetLines(target string) (lines []string, trailingNewline bool) {
	if strings.HasSuffix(target, "\n") {
		trailingNewline = true
		target = target[:len(target)-1]
	}
	return strings.Split(target, "\n"), trailingNewline
}

// windowSpan computes the byte span covering content lines [i, i+n)
// and, when the target carried a trailing newline, the newline after
// the last line.
func windowSpan(content string, lines []line, i, n int, trailingNewline bool) span {
	start := lines[i].start
	end := lines[i+n-1].end
	if trailingNewline && end < len(content) && content[end] == '\n' {
		end++
	}
	return span{start, end}
}

// matchLines is the shared line-window scanner: it slides a window of
// len(targetLines) over the content lines and collects non-overlapping
// windows accepted by eq. eq receives the window's first content line
// index so strategies can carry per-window state (indent prefix).
func matchLines(content, target string, eq func(contentLines []line, i int, targetLines []string) bool) []span {
	targetLines, trailingNewline := splitTargetLines(target)
	if len(targetLines) == 0 {
		return nil
	}
	contentLines := splitContentLines(content)
	if len(contentLines) < len(targetLines) {
		return nil
	}
	var spans []span
	for i := 0; i+len(targetLines) <= len(contentLines); {
		if eq(contentLines, i, targetLines) {
			spans = append(spans, windowSpan(content, contentLines, i, len(targetLines), trailingNewline))
			i += len(targetLines)
			continue
		}
		i++
	}
	return spans
}

// matchLineTrimmed compares lines with leading/trailing whitespace
// stripped; the correspondence must be contiguous.
func matchLineTrimmed(content, target string) []span {
	return matchLines(content, target, func(cl []line, i int, tl []string) bool {
		for k, t := range tl {
			if strings.TrimSpace(cl[i+k].text) != strings.TrimSpace(t) {
				return false
			}
		}
		return true
	})
}

// matchIndentFlexible strips the common leading indentation from the
// target's lines, then requires every content line in the window to be
// one consistent whitespace prefix plus the dedented target line.
// Blank target lines match blank or whitespace-only content lines.
func matchIndentFlexible(content, target string) []span {
	targetLines, _ := splitTargetLines(target)
	dedented := dedent(targetLines)
	return matchLines(content, target, func(cl []line, i int, tl []string) bool {
		prefix := ""
		prefixSet := false
		for k, t := range dedented {
			got := cl[i+k].text
			if strings.TrimSpace(t) == "" {
				if strings.TrimSpace(got) != "" {
					return false
				}
				continue
			}
			if !prefixSet {
				if !strings.HasSuffix(got, t) {
					return false
				}
				prefix = got[:len(got)-len(t)]
				if strings.TrimSpace(prefix) != "" {
					return false
				}
				prefixSet = true
				continue
			}
			if got != prefix+t {
				return false
			}
		}
		return true
	})
}

// matchFuzzyLines compares whitespace-normalized line sequences and
// returns the original span so a replacement preserves the
// surrounding formatting.
func matchFuzzyLines(content, target string) []span {
	return matchLines(content, target, func(cl []line, i int, tl []string) bool {
		for k, t := range tl {
			if normalizeText(cl[i+k].text) != normalizeText(t) {
				return false
			}
		}
		return true
	})
}

// dedent removes the longest common leading whitespace of the
// non-blank lines.
func dedent(lines []string) []string {
	common := ""
	first := true
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			common = indent
			first = false
			continue
		}
		common = commonPrefix(common, indent)
	}
	if common == "" {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimPrefix(l, common)
	}
	return out
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

// matchWhitespaceNormalized collapses every whitespace run (including
// newlines) to a single space on both sides, finds the normalized
// target in the normalized content, and maps occurrences back to
// original byte spans.
func matchWhitespaceNormalized(content, target string) []span {
	normTarget := normalizeText(target)
	if normTarget == "" {
		return nil
	}
	normContent, starts, ends := normalizeWithMap(content)

	var spans []span
	for off := 0; ; {
		i := strings.Index(normContent[off:], normTarget)
		if i < 0 {
			break
		}
		ni := off + i
		spans = append(spans, span{starts[ni], ends[ni+len(normTarget)-1]})
		off = ni + len(normTarget)
	}
	return spans
}

// normalizeText collapses whitespace runs to single spaces and trims.
func normalizeText(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			b.WriteByte(' ')
			inSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// normalizeWithMap is normalizeText for the content side, additionally
// returning per-normalized-byte maps to the original byte range each
// normalized byte was produced from.
func normalizeWithMap(s string) (norm string, starts, ends []int) {
	var b strings.Builder
	starts = make([]int, 0, len(s))
	ends = make([]int, 0, len(s))
	inSpace := false
	spaceStart := 0
	emitted := false
	for i, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				inSpace = true
				spaceStart = i
			}
			continue
		}
		if inSpace {
			inSpace = false
			if emitted {
				// Collapsed run maps to its full original extent.
				b.WriteByte(' ')
				starts = append(starts, spaceStart)
				ends = append(ends, i)
			}
		}
		runeEnd := i + runeLen(r)
		for n := 0; n < runeLen(r); n++ {
			starts = append(starts, i)
			ends = append(ends, runeEnd)
		}
		b.WriteRune(r)
		emitted = true
	}
	return b.String(), starts, ends
}

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}
