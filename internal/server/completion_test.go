package server

import (
	"fmt"
	"strings"
	"testing"

	"github.com/goplus/rslsw/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const caret = "/*caret*/"

const completionSrc = `struct Point { x: i32, y: i32 }
trait Make { fn make() -> Point; }
impl Point {
    fn new(x: i32, y: i32) -> Self { Point { x, y } }
    fn origin() -> Point { Point { x: 0, y: 0 } }
    fn scale(&self, k: i32) -> Point { Point { x: self.x * k, y: self.y * k } }
}
fn offset(p: Point, d: i32) -> Point { p }
fn main() {
    let a = 1;
    let p = Point::new(a, 2);
    %s
}
`

// completeAt runs completion on src with the caret marker removed.
func completeAt(t *testing.T, src string, settings map[string]any) *protocol.CompletionList {
	t.Helper()
	offset := strings.Index(src, caret)
	require.GreaterOrEqual(t, offset, 0, "missing caret marker")
	content := strings.Replace(src, caret, "", 1)

	s, _ := newTestServer(t, map[string]string{"main.rs": content}, settings)
	res, err := s.textDocumentCompletion(&protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: textDocument(),
			Position:     offsetPosition([]byte(content), offset),
		},
	})
	require.NoError(t, err)
	list, ok := res.(*protocol.CompletionList)
	require.True(t, ok)
	return list
}

func itemLabels(list *protocol.CompletionList) []string {
	var labels []string
	for _, item := range list.Items {
		labels = append(labels, item.Label)
	}
	return labels
}

func findItem(t *testing.T, list *protocol.CompletionList, label string) protocol.CompletionItem {
	t.Helper()
	for _, item := range list.Items {
		if item.Label == label {
			return item
		}
	}
	require.Failf(t, "item not found", "%q not in %v", label, itemLabels(list))
	return protocol.CompletionItem{}
}

func TestTextDocumentCompletion(t *testing.T) {
	list := completeAt(t, fmt.Sprintf(completionSrc, "let q: Point = /*caret*/;"), nil)
	assert.False(t, list.IsIncomplete)
	assert.Equal(t, []string{"p", "make", "Point::new", "Point::origin", "Point::scale", "offset", "Point"}, itemLabels(list))

	for _, tt := range []struct {
		label   string
		kind    protocol.CompletionItemKind
		newText string
		snippet bool
		command bool
	}{
		{"p", protocol.CompletionItemKindVariable, "p", false, false},
		{"Point", protocol.CompletionItemKindStruct, `Point { x: ($0), y: () \}`, true, false},
		{"Point::new", protocol.CompletionItemKindFunction, "Point::new($0)", true, true},
		{"Point::origin", protocol.CompletionItemKindFunction, "Point::origin()", false, false},
		{"Point::scale", protocol.CompletionItemKindMethod, "Point::scale", false, false},
	} {
		t.Run(tt.label, func(t *testing.T) {
			item := findItem(t, list, tt.label)
			assert.Equal(t, tt.kind, util.FromPtr(item.Kind))

			edit, ok := item.TextEdit.(protocol.TextEdit)
			require.True(t, ok)
			assert.Equal(t, tt.newText, edit.NewText)
			assert.Equal(t, edit.Range.Start, edit.Range.End)
			if tt.snippet {
				assert.Equal(t, protocol.InsertTextFormatSnippet, util.FromPtr(item.InsertTextFormat))
			} else {
				assert.Nil(t, item.InsertTextFormat)
			}
			if tt.command {
				require.NotNil(t, item.Command)
				assert.Equal(t, triggerParameterHints, item.Command.Command)
			} else {
				assert.Nil(t, item.Command)
			}
		})
	}

	t.Run("SortText", func(t *testing.T) {
		for i, item := range list.Items {
			assert.Equal(t, fmt.Sprintf("%04d", i), util.FromPtr(item.SortText))
		}
	})

	t.Run("TraitDetail", func(t *testing.T) {
		assert.Equal(t, "Point of Make", util.FromPtr(findItem(t, list, "make").Detail))
	})

	t.Run("MaxItems", func(t *testing.T) {
		list := completeAt(t, fmt.Sprintf(completionSrc, "let q: Point = /*caret*/;"), map[string]any{
			"completion": map[string]any{"maxItems": 2},
		})
		assert.True(t, list.IsIncomplete)
		assert.Equal(t, []string{"p", "make"}, itemLabels(list))
	})

	t.Run("NoExpectedType", func(t *testing.T) {
		list := completeAt(t, fmt.Sprintf(completionSrc, "/*caret*/;"), nil)
		assert.False(t, list.IsIncomplete)
		assert.Empty(t, list.Items)
	})

	t.Run("FileNotFound", func(t *testing.T) {
		s, _ := newTestServer(t, nil, nil)
		_, err := s.textDocumentCompletion(&protocol.CompletionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{TextDocument: textDocument()},
		})
		assert.Error(t, err)
	})
}

func TestEscapeSnippet(t *testing.T) {
	assert.Equal(t, `a\$b\}c\\d{`, escapeSnippet(`a$b}c\d{`))
}
