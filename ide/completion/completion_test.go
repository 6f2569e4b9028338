package completion

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/goplus/rslsw/rust/resolve"
	"github.com/goplus/rslsw/rust/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caret = "/*caret*/"

// cut removes the caret marker from src and returns the content and the
// caret offset.
func cut(t *testing.T, src string) ([]byte, int) {
	t.Helper()
	offset := strings.Index(src, caret)
	require.GreaterOrEqual(t, offset, 0, "missing caret marker")
	return []byte(strings.Replace(src, caret, "", 1)), offset
}

func complete(t *testing.T, src string) (*Result, []byte) {
	t.Helper()
	content, offset := cut(t, src)
	res, err := Complete(context.Background(), "main.rs", content, offset)
	require.NoError(t, err)
	return res, content
}

func labels(vs []Variant) []string {
	var ls []string
	for _, v := range vs {
		ls = append(ls, v.Label)
	}
	return ls
}

func variant(t *testing.T, res *Result, label string) Variant {
	t.Helper()
	for _, v := range res.Variants {
		if v.Label == label {
			return v
		}
	}
	require.Failf(t, "variant not found", "%q not in %v", label, labels(res.Variants))
	return Variant{}
}

func TestClassify(t *testing.T) {
	for _, tt := range []struct {
		name string
		src  string
		want SiteKind
	}{
		{"Let", "fn main() {\n    let x = /*caret*/;\n}\n", LetInitializer},
		{"LetNoSpace", "fn main() {\n    let x=/*caret*/;\n}\n", LetInitializer},
		{"While", "fn main() {\n    while /*caret*/ {}\n}\n", BooleanCondition},
		{"If", "fn main() {\n    if /*caret*/ {}\n}\n", BooleanCondition},
		{"IfParen", "fn main() {\n    if (/*caret*/) {}\n}\n", BooleanCondition},
		{"ValueArgumentList", "fn foo(x: i32) -> i32 {\n    x\n}\nfn main() {\n    foo(/*caret*/);\n}\n", ArgumentPosition},
		{"ValueArgumentWithPrefix", "fn foo(x: i32) -> i32 {\n    x\n}\nfn main() {\n    foo(a/*caret*/);\n}\n", ArgumentPosition},
		{"NestedIf", "fn foo(x: i32) -> i32 {\n    x\n}\nfn main() {\n    foo(if /*caret*/ { 5 } else { 7 });\n}\n", BooleanCondition},
		{"ArgumentInsideLet", "fn foo(x: i32) -> i32 {\n    x\n}\nfn main() {\n    let y = foo(/*caret*/);\n}\n", ArgumentPosition},
		{"Returnable", "struct S;\nfn foo(x: i32) -> S {\n    /*caret*/\n}\n", ReturnPosition},
		{"ReturnableComment", "struct S;\nfn foo(x: i32) -> S {\n    /*caret*/// comment\n}\n", ReturnPosition},
		{"ReturnExpression", "struct S;\nfn foo(x: i32) -> S {\n    if 5 == 5 {\n        return /*caret*/;\n    }\n    S\n}\n", ReturnPosition},
		{"Statement", "fn main() {\n    /*caret*/;\n    let y = 1;\n}\n", None},
		{"FieldAccess", "fn main() {\n    let y = 1;\n    y./*caret*/;\n}\n", None},
	} {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := complete(t, tt.src)
			assert.Equal(t, tt.want, res.Site.Kind, "got %s", res.Site.Kind)
		})
	}
}

const collectSrc = `struct Point { x: i32, y: i32 }
struct Unit;
struct Vec3 { a: i32, b: i32, c: i32 }
trait Make { fn make() -> Point; }
impl Point {
    fn new(x: i32, y: i32) -> Self { Point { x, y } }
    fn origin() -> Point { Point { x: 0, y: 0 } }
    fn norm(&self) -> i32 { self.x }
    fn scale(&self, k: i32) -> Point { Point { x: self.x * k, y: self.y * k } }
}
fn offset(p: Point, d: i32) -> Point { p }
fn main() {
    let a = 1;
    let b = true;
    let p = Point::new(a, 2);
    %s
}
`

func TestCollect(t *testing.T) {
	for _, tt := range []struct {
		name string
		body string
		want []string
	}{
		{"Argument", "offset(p, /*caret*/);", []string{"a", "Point::norm"}},
		{"MethodCallSyntax", "p.scale(/*caret*/);", []string{"a", "Point::norm"}},
		{"PathCallSkipsSelf", "Point::scale(p, /*caret*/);", []string{"a", "Point::norm"}},
		{"PathCallSelfArgument", "Point::scale(/*caret*/);", nil},
		{"UnresolvedCallee", "unknown(/*caret*/);", nil},
		{"Boolean", "if /*caret*/ {}", []string{"b"}},
		{"LetWithType", "let q: Point = /*caret*/;", []string{"p", "make", "Point::new", "Point::origin", "Point::scale", "offset", "Point"}},
		{"LetWithoutType", "let q = /*caret*/;", nil},
		{"Return", "fn build() -> Point {\n        /*caret*/\n    }", []string{"make", "Point::new", "Point::origin", "Point::scale", "offset", "build", "Point"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := complete(t, fmt.Sprintf(collectSrc, tt.body))
			assert.Equal(t, tt.want, labels(res.Variants))
		})
	}

	t.Run("Strategies", func(t *testing.T) {
		res, _ := complete(t, fmt.Sprintf(collectSrc, "let q: Point = /*caret*/;"))
		assert.Equal(t, Plain, variant(t, res, "p").Strategy)
		assert.Equal(t, AsStructLiteral, variant(t, res, "Point").Strategy)
		assert.Equal(t, AsAssociatedCall, variant(t, res, "Point::new").Strategy)
		assert.Equal(t, Plain, variant(t, res, "Point::scale").Strategy)

		make := variant(t, res, "make")
		assert.Equal(t, AsAssociatedCall, make.Strategy)
		assert.Equal(t, " of Make", make.Detail)
		assert.Equal(t, "Make", make.Qualifier)
	})

	t.Run("Canceled", func(t *testing.T) {
		content, offset := cut(t, fmt.Sprintf(collectSrc, "offset(p, /*caret*/);"))
		f, err := syntax.Parse(context.Background(), "main.rs", WithDummy(content, offset))
		require.NoError(t, err)
		site := Classify(f, offset)
		require.Equal(t, ArgumentPosition, site.Kind)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = Collect(ctx, resolve.NewIndex(f), site, offset)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAfterInsert(t *testing.T) {
	insert := func(t *testing.T, body, label string) (Insertion, []byte) {
		t.Helper()
		res, content := complete(t, fmt.Sprintf(collectSrc, body))
		return AfterInsert(res.Index, variant(t, res, label), content, res.Start, res.End), content
	}
	apply := func(ins Insertion, content []byte) string {
		return string(content[:ins.Start]) + ins.Text + string(content[ins.End:])
	}

	t.Run("StructLiteral", func(t *testing.T) {
		ins, content := insert(t, "let q: Point = /*caret*/;", "Point")
		assert.Equal(t, "Point { x: (), y: () }", ins.Text)
		assert.Equal(t, ins.Start+len("Point { x: ("), ins.Caret)
		assert.Contains(t, apply(ins, content), "let q: Point = Point { x: (), y: () };")
	})

	t.Run("MultilineStructLiteral", func(t *testing.T) {
		ins, _ := insert(t, "let v: Vec3 = /*caret*/;", "Vec3")
		assert.Equal(t, "Vec3 {\n        a: (),\n        b: (),\n        c: ()\n    }", ins.Text)
		assert.Equal(t, ins.Start+len("Vec3 {\n        a: ("), ins.Caret)
		assert.Equal(t, len("Vec3 {\n        a: ("), ins.CaretInText())
	})

	t.Run("UnitStruct", func(t *testing.T) {
		ins, _ := insert(t, "let u: Unit = /*caret*/;", "Unit")
		assert.Equal(t, "Unit", ins.Text)
		assert.Equal(t, ins.Start+4, ins.Caret)
	})

	t.Run("AssociatedCallWithParams", func(t *testing.T) {
		ins, _ := insert(t, "let q: Point = /*caret*/;", "Point::new")
		assert.Equal(t, "Point::new()", ins.Text)
		assert.Equal(t, ins.Start+len("Point::new("), ins.Caret)
		assert.True(t, ins.TriggerHints)
	})

	t.Run("AssociatedCallWithoutParams", func(t *testing.T) {
		ins, _ := insert(t, "let q: Point = /*caret*/;", "Point::origin")
		assert.Equal(t, "Point::origin()", ins.Text)
		assert.Equal(t, ins.Start+len("Point::origin()"), ins.Caret)
		assert.False(t, ins.TriggerHints)
	})

	t.Run("AlreadyQualified", func(t *testing.T) {
		ins, content := insert(t, "let q: Point = Point::ne/*caret*/;", "Point::new")
		assert.Equal(t, "new()", ins.Text)
		assert.Contains(t, apply(ins, content), "let q: Point = Point::new();")
	})

	t.Run("ExistingParen", func(t *testing.T) {
		ins, content := insert(t, "let q: Point = /*caret*/(1, 2);", "Point::new")
		assert.Equal(t, "Point::new", ins.Text)
		assert.Equal(t, ins.Start+len("Point::new("), ins.Caret)
		assert.Equal(t, -1, ins.CaretInText())
		assert.Contains(t, apply(ins, content), "let q: Point = Point::new(1, 2);")
	})

	t.Run("Plain", func(t *testing.T) {
		ins, _ := insert(t, "let q: Point = /*caret*/;", "p")
		assert.Equal(t, "p", ins.Text)
		assert.Equal(t, ins.Start+1, ins.Caret)
	})
}
