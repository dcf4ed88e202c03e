package model

import (
	"sort"
	"strconv"
	"strings"
)

// Decl holds the naming shared by records and enums.
type Decl struct {
	Name string
	// Namespace is the enclosing namespace path, segments separated by "::".
	// Inline namespaces carry an "inline " marker, e.g. "std::inline v1".
	Namespace string
}

// NamespacePath returns the namespace spelled according to opt.
func (d *Decl) NamespacePath(opt NamespaceOption) string {
	switch opt {
	case Qualified:
		return d.Namespace
	case None:
		return ""
	default:
		return StripInline(d.Namespace)
	}
}

func (d *Decl) spell(prefix string, opt NamespaceOption, parent *Record, suffix string) string {
	if parent != nil {
		return parent.Spell(prefix, opt) + "::" + d.Name + suffix
	}
	ns := d.NamespacePath(opt)
	if ns == "" {
		return prefix + d.Name + suffix
	}
	return prefix + ns + "::" + d.Name + suffix
}

// TemplateArgument describes one template parameter of a record together with the
// argument it is bound to.
type TemplateArgument struct {
	// Kind is "typename" for type parameters, otherwise the spelling of the
	// parameter's value type (e.g. "int").
	Kind string
	Name string
	// Type is the bound argument for type parameters.
	Type Type
	// Value is the literal spelling of non-type arguments. Integral values are
	// decimal literals.
	Value string
	IsPack bool
	// TemplateTemplateArguments describes the parameter list of a template
	// template parameter.
	TemplateTemplateArguments []TemplateArgument
}

// ValueSpelling renders the bound argument.
func (a TemplateArgument) ValueSpelling(prefix string) string {
	if a.Type != nil {
		return a.Type.Spell(prefix, Unqualified)
	}
	if a.Value == "" {
		return Unknown
	}
	return a.Value
}

// Declaration renders the parameter as it appears in a template parameter list,
// e.g. "typename T", "int... Ns" or "template <typename U> typename C".
func (a TemplateArgument) Declaration() string {
	var b strings.Builder
	if len(a.TemplateTemplateArguments) > 0 {
		b.WriteString("template <")
		b.WriteString(TemplateParameterList(a.TemplateTemplateArguments))
		b.WriteString("> ")
	}
	b.WriteString(a.Kind)
	if a.IsPack {
		b.WriteString("...")
	}
	b.WriteString(" ")
	b.WriteString(a.Name)
	return b.String()
}

// TemplateParameterList joins the declarations of args with ", ".
func TemplateParameterList(args []TemplateArgument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Declaration()
	}
	return strings.Join(parts, ", ")
}

// Field is a public data member. Fields compare by name only so that equally named
// fields of different records share one predicate.
type Field struct {
	Name string
	Type Type
}

// Parameter is one function parameter.
type Parameter struct {
	Name   string
	Type   Type
	IsPack bool
}

// Function is a public member function.
type Function struct {
	Name         string
	Parameters   []Parameter
	Result       Type
	IsVirtual    bool
	IsConst      bool
	RefQualifier RefKind
	IsConstexpr  bool
	IsNoexcept   bool
	IsStatic     bool
	// Overloaded is set by Record.Finalize when the record declares another
	// function with the same name. The address of an overloaded function cannot be
	// taken without knowing the argument types.
	Overloaded bool
}

// IsOperator reports whether f is an operator overload or conversion operator.
func (f *Function) IsOperator() bool { return strings.HasPrefix(f.Name, "operator") }

// IsConversion reports whether f is a conversion operator ("operator int").
func (f *Function) IsConversion() bool { return strings.HasPrefix(f.Name, "operator ") }

// IsDestructor reports whether f is a destructor.
func (f *Function) IsDestructor() bool { return strings.HasPrefix(f.Name, "~") }

// Signature spells the name, parameter types and qualifiers of f.
func (f *Function) Signature() string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = Spell(p.Type, "")
		if p.IsPack {
			params[i] += "..."
		}
	}
	sig := f.Name + "(" + strings.Join(params, ", ") + ")"
	if f.IsConst {
		sig += " const"
	}
	return sig + f.RefQualifier.String()
}

// Record is a struct or class declaration.
type Record struct {
	Decl
	IsStruct          bool
	TemplateArguments []TemplateArgument
	Fields            []Field
	Functions         []*Function
	// Parent is the enclosing record of a nested type. It is never owning.
	Parent *Record
	// ForwardDeclarable is set when the record can be declared as a bare
	// "struct Name;": named, declared at namespace scope and, for template
	// specializations, with every argument specified.
	ForwardDeclarable bool
}

func (r *Record) Kind() Kind { return KindRecord }

// Spell renders the record name including its template arguments.
func (r *Record) Spell(prefix string, opt NamespaceOption) string {
	return r.spell(prefix, opt, r.Parent, r.templateValues(prefix))
}

func (r *Record) templateValues(prefix string) string {
	if len(r.TemplateArguments) == 0 {
		return ""
	}
	values := make([]string, len(r.TemplateArguments))
	for i, a := range r.TemplateArguments {
		values[i] = a.ValueSpelling(prefix)
	}
	return "<" + strings.Join(values, ", ") + ">"
}

// IsNested reports whether the record is declared inside another record.
func (r *Record) IsNested() bool { return r.Parent != nil }

// IsTemplate reports whether the record is a template specialization.
func (r *Record) IsTemplate() bool { return len(r.TemplateArguments) > 0 }

// IsEmpty reports whether the record has neither fields nor functions.
func (r *Record) IsEmpty() bool { return len(r.Fields) == 0 && len(r.Functions) == 0 }

// Rejected reports whether the record was renamed to the Unknown sentinel.
func (r *Record) Rejected() bool { return r.Name == Unknown }

// TemplateParameterNames returns the parameter names, e.g. "T, N".
func (r *Record) TemplateParameterNames() string {
	names := make([]string, len(r.TemplateArguments))
	for i, a := range r.TemplateArguments {
		names[i] = a.Name
		if a.IsPack {
			names[i] += "..."
		}
	}
	return strings.Join(names, ", ")
}

// Finalize drops members whose address cannot be taken generically
// (constructors, destructors and conversion operators) and marks overloads.
func (r *Record) Finalize() {
	kept := r.Functions[:0]
	for _, f := range r.Functions {
		if f == nil || f.Name == "" || f.Name == r.Name || f.IsDestructor() || f.IsConversion() {
			continue
		}
		kept = append(kept, f)
	}
	r.Functions = kept
	MarkOverloads(r.Functions)
}

// MarkOverloads sets Overloaded on every function whose name occurs more than once.
func MarkOverloads(functions []*Function) {
	count := make(map[string]int, len(functions))
	for _, f := range functions {
		count[f.Name]++
	}
	for _, f := range functions {
		f.Overloaded = count[f.Name] > 1
	}
}

// FieldNames returns the sorted field names.
func (r *Record) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	sort.Strings(names)
	return names
}

// Enum is an enumeration declaration.
type Enum struct {
	Decl
	Scoped bool
	// Values are the enumerator names in declaration order.
	Values []string
	// Constants holds the numeric value of each enumerator, parallel to Values.
	// When empty the ordinal is used.
	Constants  []int64
	Underlying Type
	Parent     *Record
}

func (e *Enum) Kind() Kind { return KindEnum }

func (e *Enum) Spell(prefix string, opt NamespaceOption) string {
	return e.spell(prefix, opt, e.Parent, "")
}

// IsNested reports whether the enum is declared inside a record.
func (e *Enum) IsNested() bool { return e.Parent != nil }

// Rejected reports whether the enum was renamed to the Unknown sentinel.
func (e *Enum) Rejected() bool { return e.Name == Unknown }

// Constant returns the numeric value of the i-th enumerator.
func (e *Enum) Constant(i int) int64 {
	if i < len(e.Constants) {
		return e.Constants[i]
	}
	return int64(i)
}

// ForwardDeclaration renders "enum class Name : T;". Unscoped enums without a fixed
// underlying type cannot be forward declared and yield "".
func (e *Enum) ForwardDeclaration() string {
	var b strings.Builder
	b.WriteString("enum ")
	if e.Scoped {
		b.WriteString("class ")
	}
	b.WriteString(e.Name)
	if e.Underlying != nil {
		b.WriteString(" : ")
		b.WriteString(e.Underlying.Spell("", Unqualified))
	} else if !e.Scoped {
		return ""
	}
	b.WriteString(";")
	return b.String()
}

// FormatInt renders an integral template argument as a decimal literal.
func FormatInt(v int64) string { return strconv.FormatInt(v, 10) }
