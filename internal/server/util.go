package server

import (
	"bytes"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/goplus/rslsw/rust/edit"
	"github.com/goplus/rslsw/rust/syntax"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// utf16OffsetToUTF8 converts a UTF-16 offset to a UTF-8 offset in the given string.
func utf16OffsetToUTF8(s string, utf16Offset int) int {
	if utf16Offset <= 0 {
		return 0
	}

	var utf16Units, utf8Bytes int
	for _, r := range s {
		if utf16Units >= utf16Offset {
			break
		}
		utf16Units += utf16.RuneLen(r)
		utf8Bytes += utf8.RuneLen(r)
	}
	return utf8Bytes
}

// utf8OffsetToUTF16 converts a UTF-8 offset to a UTF-16 offset in the given string.
func utf8OffsetToUTF16(s string, utf8Offset int) int {
	if utf8Offset <= 0 {
		return 0
	}

	var utf8Bytes, utf16Units int
	for _, r := range s {
		if utf8Bytes >= utf8Offset {
			break
		}
		utf8Bytes += utf8.RuneLen(r)
		utf16Units += utf16.RuneLen(r)
	}
	return utf16Units
}

// positionOffset converts an LSP position to a byte offset in content.
// Positions past the end of a line or of the content are clamped.
func positionOffset(content []byte, position protocol.Position) int {
	lineStart := 0
	for line := 0; line < int(position.Line); line++ {
		i := bytes.IndexByte(content[lineStart:], '\n')
		if i < 0 {
			return len(content)
		}
		lineStart += i + 1
	}
	lineEnd := len(content)
	if i := bytes.IndexByte(content[lineStart:], '\n'); i >= 0 {
		lineEnd = lineStart + i
	}
	return lineStart + utf16OffsetToUTF8(string(content[lineStart:lineEnd]), int(position.Character))
}

// offsetPosition converts a byte offset in content to an LSP position.
func offsetPosition(content []byte, offset int) protocol.Position {
	offset = max(0, min(offset, len(content)))
	lineStart := bytes.LastIndexByte(content[:offset], '\n') + 1
	return protocol.Position{
		Line:      protocol.UInteger(bytes.Count(content[:lineStart], []byte{'\n'})),
		Character: protocol.UInteger(utf8OffsetToUTF16(string(content[lineStart:offset]), offset-lineStart)),
	}
}

// filePosition converts a byte offset in f to an LSP position.
func filePosition(f *syntax.File, offset int) protocol.Position {
	line, character := f.Position(offset)
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(character)}
}

// fileOffset converts an LSP position to a byte offset in f.
func fileOffset(f *syntax.File, position protocol.Position) int {
	return f.Offset(int(position.Line), int(position.Character))
}

// rangeForNode returns the [protocol.Range] of n in f.
func rangeForNode(f *syntax.File, n *syntax.Node) protocol.Range {
	return rangeForSpan(f, n.Start, n.End)
}

// rangeForSpan returns the [protocol.Range] of the bytes [start, end) in f.
func rangeForSpan(f *syntax.File, start, end int) protocol.Range {
	return protocol.Range{
		Start: filePosition(f, start),
		End:   filePosition(f, end),
	}
}

// textEdits converts the edits of s against f into LSP text edits.
func textEdits(f *syntax.File, s *edit.Script) []protocol.TextEdit {
	edits := s.Edits()
	result := make([]protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		result = append(result, protocol.TextEdit{
			Range:   rangeForSpan(f, e.Start, e.End),
			NewText: e.NewText,
		})
	}
	return result
}

// positionLess reports whether a lies before b.
func positionLess(a, b protocol.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}

// rangesOverlap checks if two ranges overlap.
func rangesOverlap(a, b protocol.Range) bool {
	return !positionLess(b.End, a.Start) && !positionLess(a.End, b.Start)
}
