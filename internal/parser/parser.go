// Package parser extracts cross-note references and content metadata
// from Markdown note bodies.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Reference links are markdown links whose target uses the typed note
// URI: [Label](note:12) or [Label](note://12).
var refRe = regexp.MustCompile(`\[([^\]]*)\]\(note:(?://)?(\d+)\)`)

// Reference is an outgoing link found in a note body. Label is the
// display text as written, which may have drifted from the target's
// current title.
type Reference struct {
	Target int64
	Label  string
}

// Metadata holds derived content statistics.
type Metadata struct {
	Words      int
	Lines      int
	Characters int
	SizeBytes  int64
}

// ExtractReferences returns deduplicated outgoing references in order
// of first appearance. The first label wins for a repeated target.
func ExtractReferences(body string) []Reference {
	matches := refRe.FindAllStringSubmatch(body, -1)
	seen := make(map[int64]struct{}, len(matches))
	var out []Reference
	for _, m := range matches {
		id, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, Reference{Target: id, Label: m[1]})
	}
	return out
}

// Measure computes the content metadata stored alongside each note.
func Measure(content string) Metadata {
	md := Metadata{
		Characters: len([]rune(content)),
		SizeBytes:  int64(len(content)),
	}
	if trimmed := strings.TrimSpace(content); trimmed != "" {
		md.Words = len(strings.Fields(trimmed))
	}
	if content != "" {
		normalized := strings.ReplaceAll(content, "\r\n", "\n")
		normalized = strings.ReplaceAll(normalized, "\r", "\n")
		md.Lines = strings.Count(strings.TrimSuffix(normalized, "\n"), "\n") + 1
	}
	return md
}
