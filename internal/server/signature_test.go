package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const signatureSrc = `trait Named: Display {}
trait Display {}
fn a<T: ?Sized>(x: &T) {}
fn d<'a, T: Named + Clone, U>(x: &'a T) where U: Display {}
struct P;
impl P {
    fn m(&self, x: i32, y: bool) {}
}
fn main(p: P) {
    a::<str>(&"x");
    d::<'static, u8, i32>(&1);
    a::<str, u8>(&"y");
    p.m(1, true);
    P::m(&p, 1, true);
}
`

func signatureHelpAt(t *testing.T, s *Server, needle string, delta int, retrigger bool) *protocol.SignatureHelp {
	t.Helper()
	params := &protocol.SignatureHelpParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: textDocument(),
			Position:     positionOf(t, signatureSrc, needle, delta),
		},
	}
	if retrigger {
		params.Context = &protocol.SignatureHelpContext{
			TriggerKind: protocol.SignatureHelpTriggerKindContentChange,
			IsRetrigger: true,
		}
	}
	help, err := s.textDocumentSignatureHelp(params)
	require.NoError(t, err)
	return help
}

func TestTextDocumentSignatureHelp(t *testing.T) {
	for _, tt := range []struct {
		name     string
		needle   string
		delta    int
		settings map[string]any
		label    string
		active   protocol.UInteger
	}{
		{"GenericFunction", "a::<str>", 4, nil, "T: ?Sized", 0},
		{"CurrentGeneric", "u8, i32>", 0, nil, "'a, T: Named + Clone, U: Display", 1},
		{"ExpandSupertraits", "u8, i32>", 0, map[string]any{"hints": map[string]any{"expandSupertraits": true}}, "'a, T: Named + Clone + Display, U: Display", 1},
		{"MethodCallSyntax", "true);\n    P::m", 0, nil, "x: i32, y: bool", 1},
		{"PathCallIncludesSelf", "true);\n}", 0, nil, "&self, x: i32, y: bool", 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, map[string]string{"main.rs": signatureSrc}, tt.settings)
			help := signatureHelpAt(t, s, tt.needle, tt.delta, false)
			require.NotNil(t, help)
			require.Len(t, help.Signatures, 1)
			assert.Equal(t, tt.label, help.Signatures[0].Label)
			assert.Equal(t, tt.active, *help.ActiveParameter)
			assert.Equal(t, protocol.UInteger(0), *help.ActiveSignature)
		})
	}

	t.Run("ParameterLabels", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": signatureSrc}, nil)
		help := signatureHelpAt(t, s, "u8, i32>", 0, false)
		require.NotNil(t, help)
		info := help.Signatures[0]
		var labels []string
		for _, p := range info.Parameters {
			r := p.Label.([2]protocol.UInteger)
			labels = append(labels, info.Label[r[0]:r[1]])
		}
		assert.Equal(t, []string{"'a", "T: Named + Clone", "U: Display"}, labels)
	})

	t.Run("PastLastParameter", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": signatureSrc}, nil)
		help := signatureHelpAt(t, s, "u8>(&\"y\")", 0, false)
		require.NotNil(t, help)
		assert.Equal(t, "T: ?Sized", help.Signatures[0].Label)
		assert.Equal(t, protocol.UInteger(1), *help.ActiveParameter)
	})

	t.Run("OutsideList", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": signatureSrc}, nil)
		assert.Nil(t, signatureHelpAt(t, s, "fn main", 0, false))
	})

	t.Run("RetriggerInSameList", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": signatureSrc}, nil)
		require.NotNil(t, signatureHelpAt(t, s, "u8, i32>", 0, false))
		help := signatureHelpAt(t, s, "i32>(&1)", 0, true)
		require.NotNil(t, help)
		assert.Equal(t, protocol.UInteger(2), *help.ActiveParameter)
	})

	t.Run("RetriggerInOtherListHides", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": signatureSrc}, nil)
		require.NotNil(t, signatureHelpAt(t, s, "u8, i32>", 0, false))
		assert.Nil(t, signatureHelpAt(t, s, "true);\n    P::m", 0, true))

		_, ok := s.hintSession("main.rs")
		assert.False(t, ok)
		assert.NotNil(t, signatureHelpAt(t, s, "true);\n    P::m", 0, false))
	})

	t.Run("CloseForgetsSession", func(t *testing.T) {
		s, _ := newTestServer(t, map[string]string{"main.rs": signatureSrc}, nil)
		require.NotNil(t, signatureHelpAt(t, s, "a::<str>", 4, false))
		require.NoError(t, s.didClose(&protocol.DidCloseTextDocumentParams{TextDocument: textDocument()}))
		_, ok := s.hintSession("main.rs")
		assert.False(t, ok)
	})
}
