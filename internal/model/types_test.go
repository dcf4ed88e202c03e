package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpell(t *testing.T) {
	integer := &Builtin{Name: "int"}
	point := &Record{Decl: Decl{Name: "point", Namespace: "geo::inline v1"}}
	vec := &Record{
		Decl: Decl{Name: "vec", Namespace: "geo"},
		TemplateArguments: []TemplateArgument{
			{Kind: "typename", Name: "T", Type: point},
			{Kind: "int", Name: "N", Value: "3"},
		},
	}
	inner := &Record{Decl: Decl{Name: "inner"}, Parent: point}

	tests := []struct {
		name   string
		typ    Type
		prefix string
		opt    NamespaceOption
		want   string
	}{
		{"builtin", integer, "P::", Unqualified, "int"},
		{"pointer to const", &Pointer{Pointee: integer, CV: CVConst}, "", Unqualified, "const int*"},
		{"lvalue reference", &Reference{Pointee: point, CV: CVConst, Ref: RefLValue}, "", Unqualified, "const geo::v1::point&"},
		{"rvalue reference", &Reference{Pointee: integer, Ref: RefRValue}, "", Unqualified, "int&&"},
		{"cv qualified", &CVQualified{Inner: integer, CV: CVConstVolatile}, "", Unqualified, "const volatile int"},
		{"constant array", &ConstantArray{Element: integer, Size: 4}, "", Unqualified, "int[4]"},
		{"qualified keeps inline marker", point, "", Qualified, "geo::inline v1::point"},
		{"no namespace", point, "", None, "point"},
		{"prefixed record", point, "typename G::", Unqualified, "typename G::geo::v1::point"},
		{"template values", vec, "", Unqualified, "geo::vec<geo::v1::point, 3>"},
		{"nested record", inner, "", Unqualified, "geo::v1::point::inner"},
		{"nil pointee", &Pointer{}, "", Unqualified, "<unknown>*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Spell(tt.prefix, tt.opt))
		})
	}
}

func TestTemplateArgumentDeclaration(t *testing.T) {
	args := []TemplateArgument{
		{Kind: "typename", Name: "T"},
		{Kind: "int", Name: "Ns", IsPack: true},
		{Kind: "typename", Name: "C", TemplateTemplateArguments: []TemplateArgument{{Kind: "typename", Name: "U"}}},
	}
	assert.Equal(t, "typename T, int... Ns, template <typename U> typename C", TemplateParameterList(args))
}

func TestFinalize(t *testing.T) {
	r := &Record{
		Decl: Decl{Name: "widget"},
		Functions: []*Function{
			{Name: "widget"},
			{Name: "~widget"},
			{Name: "operator bool"},
			{Name: "operator=="},
			{Name: "draw"},
			{Name: "draw", Parameters: []Parameter{{Name: "n", Type: &Builtin{Name: "int"}}}},
			{Name: "size"},
		},
	}
	r.Finalize()

	require.Len(t, r.Functions, 4)
	names := []string{}
	for _, f := range r.Functions {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"operator==", "draw", "draw", "size"}, names)
	assert.True(t, r.Functions[1].Overloaded)
	assert.True(t, r.Functions[2].Overloaded)
	assert.False(t, r.Functions[3].Overloaded)
}

func TestSignature(t *testing.T) {
	f := &Function{
		Name:         "get",
		Parameters:   []Parameter{{Type: &Reference{Pointee: &Builtin{Name: "int"}, CV: CVConst, Ref: RefLValue}}},
		IsConst:      true,
		RefQualifier: RefLValue,
	}
	assert.Equal(t, "get(const int&) const&", f.Signature())
}

func TestEnumForwardDeclaration(t *testing.T) {
	assert.Equal(t, "enum class color;", (&Enum{Decl: Decl{Name: "color"}, Scoped: true}).ForwardDeclaration())
	assert.Equal(t, "enum mode : unsigned char;", (&Enum{Decl: Decl{Name: "mode"}, Underlying: &Builtin{Name: "unsigned char"}}).ForwardDeclaration())
	assert.Empty(t, (&Enum{Decl: Decl{Name: "legacy"}}).ForwardDeclaration())
}

func TestStripInline(t *testing.T) {
	assert.Equal(t, "a::v1::b", StripInline("a::inline v1::b"))
	assert.Equal(t, "a", StripInline("a"))
}
