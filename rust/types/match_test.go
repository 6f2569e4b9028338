package types

import (
	"testing"

	"github.com/goplus/rslsw/rust/syntax"
	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	vecDecl := &syntax.Node{Kind: "struct_item"}
	otherVecDecl := &syntax.Node{Kind: "struct_item"}
	i32 := &Primitive{Name: "i32"}
	str := &Primitive{Name: "str"}

	for _, tt := range []struct {
		name     string
		expected Type
		actual   Type
		want     bool
	}{
		{"SamePrimitive", i32, &Primitive{Name: "i32"}, true},
		{"DifferentPrimitive", i32, Bool, false},
		{"AdtIgnoresArguments", &Adt{Name: "Vec", Decl: vecDecl, Args: []Type{i32}}, &Adt{Name: "Vec", Decl: vecDecl, Args: []Type{str}}, true},
		{"AdtDifferentDecl", &Adt{Name: "Vec", Decl: vecDecl}, &Adt{Name: "Vec", Decl: otherVecDecl}, false},
		{"AdtByNameWhenUnresolved", &Adt{Name: "String"}, &Adt{Name: "String"}, true},
		{"AdtVsPrimitive", &Adt{Name: "bool"}, Bool, false},
		{"RefMutability", &Ref{Elem: str}, &Ref{Mut: true, Elem: str}, false},
		{"RefElem", &Ref{Elem: str}, &Ref{Elem: &Primitive{Name: "str"}}, true},
		{"Unit", Unit, &Tuple{}, true},
		{"TupleLength", &Tuple{Elems: []Type{i32}}, &Tuple{Elems: []Type{i32, i32}}, false},
		{"TupleElems", &Tuple{Elems: []Type{i32, Bool}}, &Tuple{Elems: []Type{i32, Bool}}, true},
		{"Function", &Function{Params: []Type{i32}, Result: Bool}, &Function{Params: []Type{i32}, Result: Bool}, true},
		{"Param", &Param{Name: "T"}, &Param{Name: "T"}, true},
		{"UnknownExpected", Invalid, Invalid, false},
		{"NilActual", i32, nil, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.expected, tt.actual))
		})
	}

	t.Run("MatchAny", func(t *testing.T) {
		assert.True(t, MatchAny([]Type{Bool, i32}, &Primitive{Name: "i32"}))
		assert.False(t, MatchAny(nil, i32))
	})
}

func TestString(t *testing.T) {
	assert.Equal(t, "Vec<i32>", (&Adt{Name: "Vec", Args: []Type{&Primitive{Name: "i32"}}}).String())
	assert.Equal(t, "&mut str", (&Ref{Mut: true, Elem: &Primitive{Name: "str"}}).String())
	assert.Equal(t, "(i32,)", (&Tuple{Elems: []Type{&Primitive{Name: "i32"}}}).String())
	assert.Equal(t, "()", Unit.String())
	assert.Equal(t, "fn(i32) -> bool", (&Function{Params: []Type{&Primitive{Name: "i32"}}, Result: Bool}).String())
	assert.Equal(t, "fn()", (&Function{Result: Unit}).String())
}
