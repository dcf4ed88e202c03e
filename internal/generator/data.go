package generator

import (
	"fmt"
	"sort"
	"strings"

	"introspect/internal/config"
	"introspect/internal/model"
	"introspect/internal/nstree"
	"introspect/internal/splitter"
)

// TemplateData represents data passed to templates.
type TemplateData struct {
	Config     *config.Config
	Namespace  string
	GlobalName string
	Includes   []string

	RecordForwards []string
	EnumForwards   []string
	Global         *NamespaceView

	FieldPredicates     []string
	FunctionPredicates  []string
	EnumValuePredicates []string

	Records      []RecordView
	TrivialTypes []string
	Enums        []EnumView
}

// NamespaceView is one block of the alias tree.
type NamespaceView struct {
	Name     string
	Depth    int
	Aliases  []AliasView
	Children []*NamespaceView
}

// AliasView is one "using Name = ::ns::Name;" line.
type AliasView struct {
	Template string
	Name     string
	Target   string
}

// RecordView holds one reflect_impl and proxy_impl specialization.
type RecordView struct {
	Name string
	// Type is value_type: the decorated record spelling for nominal selection,
	// otherwise the template parameter T.
	Type    string
	Nominal bool
	// Primary is set for the unconstrained record, which defines the primary
	// templates instead of specializing them.
	Primary    bool
	Requires   []string
	Fields     []FieldView
	Functions  []FunctionView
	Forwarders []ForwarderView
	Overloads  []string
}

// FieldView is one field descriptor.
type FieldView struct {
	Ordinal int
	Name    string
}

// FunctionView is one function descriptor.
type FunctionView struct {
	Ordinal int
	Name    string
	Pointer string
}

// ForwarderView is one proxy member forwarding to the interception functor.
type ForwarderView struct {
	Name       string
	Result     string
	Parameters string
	Qualifiers string
	Pointer    string
	// Call is the argument tail passed to the functor after the name.
	Call      string
	Static    bool
	Constexpr bool
}

// EnumView holds one enum_value_adapter_impl specialization.
type EnumView struct {
	Name     string
	Requires []string
	Entries  []splitter.EnumEntry
}

func (g *Generator) buildData(in *Input) *TemplateData {
	g.spellings.Purge()

	opts := g.config.Options
	data := &TemplateData{
		Config:              g.config,
		Namespace:           opts.Namespace,
		GlobalName:          opts.GlobalName,
		Includes:            append(append([]string(nil), DefaultIncludes...), opts.Includes...),
		RecordForwards:      recordForwards(in.Records),
		EnumForwards:        enumForwards(in.Enums),
		Global:              namespaceView(in.Tree),
		FieldPredicates:     fieldNames(in.Fields),
		FunctionPredicates:  functionNames(in.Functions),
		EnumValuePredicates: in.EnumValues,
		TrivialTypes:        in.TrivialTypes,
	}

	registry := in.Registry
	if registry == nil {
		registry = splitter.NewRegistry(in.Records)
	}
	traits := registry.Traits()
	sort.SliceStable(traits, func(i, j int) bool {
		return traits[i].Record.Spell("", model.Qualified) < traits[j].Record.Spell("", model.Qualified)
	})

	primary := false
	for _, t := range traits {
		view := g.recordView(t)
		if view.Primary {
			if primary {
				// Only the first unconstrained record can define the primary template.
				g.log.Warnw("Skipping second unconstrained record", "record", view.Name)
				continue
			}
			primary = true
		}
		data.Records = append(data.Records, view)
	}

	enums := append([]*model.Enum(nil), in.Enums...)
	sort.SliceStable(enums, func(i, j int) bool {
		return enums[i].Spell("", model.Qualified) < enums[j].Spell("", model.Qualified)
	})
	for _, e := range enums {
		if len(e.Values) == 0 {
			g.log.Debugw("Skipping enum without values", "enum", e.Spell("", model.Unqualified))
			continue
		}
		data.Enums = append(data.Enums, enumView(e))
	}

	g.log.Debugw("Rendering header",
		"records", len(data.Records),
		"enums", len(data.Enums),
		"trivial_types", len(data.TrivialTypes))
	return data
}

func (g *Generator) recordView(t *splitter.Trait) RecordView {
	r := t.Record
	view := RecordView{Name: r.Name}
	switch {
	case t.Nominal != "":
		view.Nominal = true
		view.Type = g.spell(r, helperPrefix)
	case t.Unconstrained():
		view.Primary = true
		view.Type = "T"
	default:
		view.Type = "T"
		for _, f := range t.Fields {
			view.Requires = append(view.Requires, "has_field_"+escape(f)+"<T>")
		}
		for _, f := range t.Functions {
			view.Requires = append(view.Requires, "has_function_"+escape(f)+"<T>")
		}
	}

	for i, f := range r.Fields {
		view.Fields = append(view.Fields, FieldView{Ordinal: i, Name: f.Name})
	}

	seen := make(map[string]bool)
	for _, f := range r.Functions {
		if f.IsDestructor() || f.IsOperator() {
			continue
		}
		if f.Overloaded {
			if !seen[f.Name] {
				seen[f.Name] = true
				view.Overloads = append(view.Overloads, f.Name)
			}
			continue
		}
		view.Functions = append(view.Functions, FunctionView{
			Ordinal: len(view.Functions),
			Name:    f.Name,
			Pointer: g.pointerType(f),
		})
		view.Forwarders = append(view.Forwarders, g.forwarder(f))
	}
	return view
}

// pointerType spells the member function pointer type of f, e.g.
// "double (value_type::*)(const int&) const".
func (g *Generator) pointerType(f *model.Function) string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = g.spell(p.Type, helperPrefix)
		if p.IsPack {
			params[i] += "..."
		}
	}
	result := g.spell(f.Result, helperPrefix)
	if f.IsStatic {
		return fmt.Sprintf("%s (*)(%s)", result, strings.Join(params, ", "))
	}
	return fmt.Sprintf("%s (value_type::*)(%s)%s", result, strings.Join(params, ", "), qualifiers(f))
}

func (g *Generator) forwarder(f *model.Function) ForwarderView {
	params := make([]string, len(f.Parameters))
	var call strings.Builder
	if !f.IsStatic {
		call.WriteString(", accessor(this)")
	}
	for i, p := range f.Parameters {
		name := parameterName(p, i)
		typ := g.spell(p.Type, helperPrefix)
		arg := "std::move(" + name + ")"
		if model.IsLValueReference(p.Type) {
			arg = name
		}
		if p.IsPack {
			params[i] = typ + "... " + name
			arg += "..."
		} else {
			params[i] = typ + " " + name
		}
		call.WriteString(", ")
		call.WriteString(arg)
	}

	result := "decltype(auto)"
	if f.IsVirtual {
		result = g.spell(f.Result, helperPrefix)
	}
	return ForwarderView{
		Name:       f.Name,
		Result:     result,
		Parameters: strings.Join(params, ", "),
		Qualifiers: qualifiers(f),
		Pointer:    g.pointerType(f),
		Call:       call.String(),
		Static:     f.IsStatic,
		Constexpr:  f.IsConstexpr,
	}
}

// parameterName returns the declared name or the placeholder p<i>.
func parameterName(p model.Parameter, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("p%d", i)
}

func qualifiers(f *model.Function) string {
	q := ""
	if f.IsConst {
		q = " const"
	}
	return q + f.RefQualifier.String()
}

func enumView(e *model.Enum) EnumView {
	view := EnumView{
		Name:    e.Spell(helperPrefix, model.Unqualified),
		Entries: splitter.Describe(e).Entries(),
	}
	for _, v := range e.Values {
		view.Requires = append(view.Requires, "has_enum_value_"+escape(v)+"<E>")
	}
	return view
}

func recordForwards(records []*model.Record) []string {
	set := make(map[string]bool)
	for _, r := range records {
		if r.IsNested() || !r.ForwardDeclarable {
			continue
		}
		decl := r.Name + ";"
		if r.IsStruct {
			decl = "struct " + decl
		} else {
			decl = "class " + decl
		}
		if r.IsTemplate() {
			decl = "template <" + model.TemplateParameterList(r.TemplateArguments) + "> " + decl
		}
		set[wrapNamespace(r.NamespacePath(model.Qualified), decl)] = true
	}
	return sortedKeys(set)
}

func enumForwards(enums []*model.Enum) []string {
	set := make(map[string]bool)
	for _, e := range enums {
		if e.IsNested() {
			continue
		}
		decl := e.ForwardDeclaration()
		if decl == "" {
			continue
		}
		set[wrapNamespace(e.NamespacePath(model.Qualified), decl)] = true
	}
	return sortedKeys(set)
}

func wrapNamespace(ns, decl string) string {
	if ns == "" {
		return decl
	}
	return "namespace " + ns + " { " + decl + " }"
}

func namespaceView(n *nstree.Node) *NamespaceView {
	if n == nil {
		return &NamespaceView{}
	}
	view := &NamespaceView{Name: n.Name, Depth: n.Depth()}
	ns := n.FullNamespace()

	var aliases []AliasView
	for _, r := range n.Records() {
		alias := AliasView{Name: r.Name, Target: ns + "::" + r.Name}
		if r.IsTemplate() {
			alias.Template = model.TemplateParameterList(r.TemplateArguments)
			alias.Target += "<" + r.TemplateParameterNames() + ">"
		}
		aliases = append(aliases, alias)
	}
	for _, e := range n.Enums() {
		aliases = append(aliases, AliasView{Name: e.Name, Target: ns + "::" + e.Name})
	}
	sort.SliceStable(aliases, func(i, j int) bool { return aliases[i].Name < aliases[j].Name })
	view.Aliases = aliases

	for _, c := range n.Children() {
		view.Children = append(view.Children, namespaceView(c))
	}
	return view
}

func fieldNames(fields []model.Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}

func functionNames(functions []*model.Function) []string {
	names := make([]string, 0, len(functions))
	for _, f := range functions {
		names = append(names, f.Name)
	}
	return names
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
