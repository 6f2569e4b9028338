package main

import (
	"bytes"

	"github.com/sourcegraph/go-diff/diff"
)

// contextLines is the number of unchanged lines shown around a change.
const contextLines = 3

// unifiedDiff renders the change from before to after as a unified diff
// with one hunk spanning the first to the last changed line. It returns
// nil when nothing changed.
func unifiedDiff(name string, before, after []byte) ([]byte, error) {
	a, b := splitLines(before), splitLines(after)

	prefix := 0
	for prefix < len(a) && prefix < len(b) && bytes.Equal(a[prefix], b[prefix]) {
		prefix++
	}
	if prefix == len(a) && prefix == len(b) {
		return nil, nil
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		bytes.Equal(a[len(a)-1-suffix], b[len(b)-1-suffix]) {
		suffix++
	}

	start := max(prefix-contextLines, 0)
	tail := min(suffix, contextLines)
	aEnd, bEnd := len(a)-suffix, len(b)-suffix

	var body bytes.Buffer
	writeLines(&body, ' ', a[start:prefix])
	writeLines(&body, '-', a[prefix:aEnd])
	writeLines(&body, '+', b[prefix:bEnd])
	writeLines(&body, ' ', a[aEnd:aEnd+tail])

	hunk := &diff.Hunk{
		OrigStartLine: int32(start + 1),
		OrigLines:     int32(aEnd + tail - start),
		NewStartLine:  int32(start + 1),
		NewLines:      int32(bEnd + tail - start),
		Body:          body.Bytes(),
	}
	// An empty side starts at the line before the hunk.
	if hunk.OrigLines == 0 {
		hunk.OrigStartLine--
	}
	if hunk.NewLines == 0 {
		hunk.NewStartLine--
	}
	return diff.PrintFileDiff(&diff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
		Hunks:    []*diff.Hunk{hunk},
	})
}

// splitLines splits content into lines without their terminators.
func splitLines(content []byte) [][]byte {
	if len(content) == 0 {
		return nil
	}
	return bytes.Split(bytes.TrimSuffix(content, []byte("\n")), []byte("\n"))
}

func writeLines(buf *bytes.Buffer, prefix byte, lines [][]byte) {
	for _, line := range lines {
		buf.WriteByte(prefix)
		buf.Write(line)
		buf.WriteByte('\n')
	}
}
