package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"introspect/internal/aggregator"
	"introspect/internal/model"
)

func load(t *testing.T, mapType func(string) string, docs ...string) *aggregator.Aggregator {
	t.Helper()
	var manifests []*Manifest
	for _, doc := range docs {
		m, err := New(nil).Parse([]byte(doc), ".yaml")
		require.NoError(t, err)
		manifests = append(manifests, m)
	}
	agg := aggregator.New(nil)
	NewFrontend(agg, nil, mapType).Load(manifests...)
	return agg
}

func recordByName(t *testing.T, agg *aggregator.Aggregator, name string) *model.Record {
	t.Helper()
	for _, r := range agg.Records() {
		if r.Name == name {
			return r
		}
	}
	require.Failf(t, "record not found", "%s", name)
	return nil
}

func TestFrontendSelfReference(t *testing.T) {
	agg := load(t, nil, `
records:
  - name: node
    fields:
      - {name: next, type: "node*"}
      - {name: value, type: int}
  - name: a
    fields: [{name: b, type: b}]
  - name: b
    fields: [{name: a, type: "const a*"}]
`)
	node := recordByName(t, agg, "node")
	next, ok := node.Fields[0].Type.(*model.Pointer)
	require.True(t, ok)
	assert.Same(t, node, next.Pointee)

	a := recordByName(t, agg, "a")
	b := recordByName(t, agg, "b")
	assert.Same(t, b, a.Fields[0].Type)
	back, ok := b.Fields[0].Type.(*model.Pointer)
	require.True(t, ok)
	assert.Same(t, a, back.Pointee)
	assert.Equal(t, "const a*", model.Spell(back, ""))

	// Records are registered once even when reached through references first.
	assert.Len(t, agg.Records(), 3)
}

func TestFrontendSkipsUnnamed(t *testing.T) {
	agg := load(t, nil, `
records:
  - namespace: geo
    fields: [{name: x, type: int}]
  - name: holder
    fields:
      - {name: "", type: int}
      - {name: ok, type: int}
enums:
  - {values: [a]}
`)
	require.Len(t, agg.Records(), 1)
	holder := agg.Records()[0]
	assert.Equal(t, []string{"ok"}, holder.FieldNames())
	assert.Empty(t, agg.Enums())

	diags := agg.Diagnostics()
	require.Len(t, diags, 3)
	assert.Equal(t, "anonymous record in geo", diags[0].What)
	assert.Equal(t, "unnamed declaration", diags[0].Reason)
	assert.Equal(t, "holder::<anonymous field>", diags[1].What)
	assert.Equal(t, "anonymous enum", diags[2].What)
}

func TestFrontendTemplatesAndNesting(t *testing.T) {
	agg := load(t, nil, `
records:
  - name: vec
    namespace: "inline v1"
    template_arguments:
      - {kind: typename, name: T, type: int}
      - {kind: int, name: N, value: "3"}
    fields: [{name: data, type: "int[3]"}]
  - name: partial
    namespace: geo
    template_arguments:
      - {kind: typename, name: T}
  - id: geo::outer
    name: outer
    namespace: geo
  - name: inner
    namespace: geo
    parent: geo::outer
    fields: [{name: z, type: int}]
  - name: user
    fields: [{name: i, type: "geo::outer::inner"}]
`)
	vec := recordByName(t, agg, "vec")
	assert.True(t, vec.ForwardDeclarable)
	assert.Equal(t, "inline v1::vec<int, 3>", vec.Spell("", model.Qualified))
	assert.Equal(t, "v1::vec<int, 3>", vec.Spell("", model.Unqualified))

	partial := recordByName(t, agg, "partial")
	assert.False(t, partial.ForwardDeclarable)
	assert.Equal(t, "geo::partial<<unknown>>", partial.Spell("", model.Unqualified))

	outer := recordByName(t, agg, "outer")
	inner := recordByName(t, agg, "inner")
	assert.Same(t, outer, inner.Parent)
	assert.False(t, inner.ForwardDeclarable)
	assert.Equal(t, "geo::outer::inner", inner.Spell("", model.Unqualified))

	user := recordByName(t, agg, "user")
	assert.Same(t, inner, user.Fields[0].Type)
}

func TestFrontendNestedBeforeParent(t *testing.T) {
	agg := load(t, nil, `
records:
  - name: holder
    fields: [{name: item, type: "outer::inner"}]
  - name: inner
    parent: outer
    fields: [{name: z, type: int}]
  - name: outer
    fields: [{name: child, type: "outer::inner"}]
`)
	outer := recordByName(t, agg, "outer")
	inner := recordByName(t, agg, "inner")
	holder := recordByName(t, agg, "holder")

	assert.Same(t, outer, inner.Parent)
	assert.Same(t, inner, outer.Fields[0].Type)
	assert.Same(t, inner, holder.Fields[0].Type)
	assert.Equal(t, "outer::inner", model.Spell(outer.Fields[0].Type, ""))
	assert.Empty(t, agg.Diagnostics())
}

func TestFrontendFunctions(t *testing.T) {
	agg := load(t, nil, `
records:
  - name: widget
    functions:
      - {name: widget}
      - {name: "~widget"}
      - {name: "operator bool", result: bool}
      - {name: draw, result: void}
      - {name: draw, result: void, parameters: [{type: int}]}
      - {name: get, result: "const int&", const: true, ref: "&"}
      - {name: take, result: void, ref: "&&", parameters: [{name: v, type: "std::string&&"}]}
`)
	w := recordByName(t, agg, "widget")
	var names []string
	for _, f := range w.Functions {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"draw", "draw", "get", "take"}, names)
	assert.True(t, w.Functions[0].Overloaded)
	assert.False(t, w.Functions[2].Overloaded)
	assert.Equal(t, "get() const&", w.Functions[2].Signature())
	assert.Equal(t, "take(std::string&&)&&", w.Functions[3].Signature())
}

func TestFrontendEnums(t *testing.T) {
	agg := load(t, nil, `
records:
  - name: pixel
    fields: [{name: c, type: "geo::color"}]
enums:
  - {name: color, namespace: geo, scoped: true, underlying: "unsigned char", values: [red, green], constants: [1, 2]}
  - {name: mode, values: [on, off], constants: [1]}
`)
	enums := agg.Enums()
	require.Len(t, enums, 2)
	color := enums[0]
	assert.Equal(t, "color", color.Name)
	assert.Equal(t, []int64{1, 2}, color.Constants)
	assert.Equal(t, "enum class color : unsigned char;", color.ForwardDeclaration())

	pixel := recordByName(t, agg, "pixel")
	assert.Same(t, color, pixel.Fields[0].Type)

	mode := enums[1]
	assert.Nil(t, mode.Constants, "mismatched constants fall back to ordinals")
	assert.Equal(t, int64(1), mode.Constant(1))
}

func TestFrontendAcrossManifests(t *testing.T) {
	first := `
records:
  - name: point
    namespace: geo
    fields: [{name: x, type: int}]
  - name: line
    namespace: geo
    fields: [{name: from, type: "geo::point"}]
trivial_types: [int]
`
	second := `
records:
  - name: point
    namespace: geo
    fields: [{name: x, type: int}]
trivial_types: [int, "std::__1::basic_string<char>"]
`
	mapType := func(s string) string {
		if strings.HasPrefix(s, "std::__1::basic_string") {
			return "std::string"
		}
		return s
	}
	agg := load(t, mapType, first, second)

	assert.Len(t, agg.Records(), 2)
	assert.Equal(t, []string{"int", "std::string"}, agg.TrivialTypes())
	line := recordByName(t, agg, "line")
	assert.Same(t, recordByName(t, agg, "point"), line.Fields[0].Type)
}
