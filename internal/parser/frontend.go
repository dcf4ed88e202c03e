package parser

import (
	"go.uber.org/zap"

	"introspect/internal/aggregator"
	"introspect/internal/model"
)

// spellingNode keys memoized type spellings in the aggregator's node map.
type spellingNode string

// Frontend replays manifests into an aggregator the way a compiler front end would
// report declarations: records in document order, member types resolved on
// demand.
type Frontend struct {
	agg     *aggregator.Aggregator
	log     *zap.SugaredLogger
	mapType func(string) string

	records map[string]*RecordDecl
	enums   map[string]*EnumDecl
	skipped map[any]bool

	// building holds records whose identity is still being resolved.
	building  map[*RecordDecl]bool
	// enclosing holds records whose parents are being registered.
	enclosing map[*RecordDecl]bool
}

// NewFrontend creates a Frontend feeding agg. mapType rewrites builtin spellings;
// nil keeps them unchanged.
func NewFrontend(agg *aggregator.Aggregator, log *zap.SugaredLogger, mapType func(string) string) *Frontend {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if mapType == nil {
		mapType = func(s string) string { return s }
	}
	return &Frontend{
		agg:       agg,
		log:       log,
		mapType:   mapType,
		records:   make(map[string]*RecordDecl),
		enums:     make(map[string]*EnumDecl),
		skipped:   make(map[any]bool),
		building:  make(map[*RecordDecl]bool),
		enclosing: make(map[*RecordDecl]bool),
	}
}

// Load indexes every manifest first so that references across files resolve, then
// replays them in order.
func (f *Frontend) Load(manifests ...*Manifest) {
	for _, m := range manifests {
		f.index(m)
	}
	for _, m := range manifests {
		for i := range m.Records {
			f.record(&m.Records[i])
		}
		for i := range m.Enums {
			f.enum(&m.Enums[i])
		}
		for _, t := range m.TrivialTypes {
			f.agg.TrivialType(f.mapType(t))
		}
	}
}

func (f *Frontend) index(m *Manifest) {
	for i := range m.Records {
		d := &m.Records[i]
		id := f.recordID(d)
		if id == "" {
			continue
		}
		if _, ok := f.records[id]; ok {
			f.log.Debugw("Duplicate record declaration", "id", id, "path", m.Path)
			continue
		}
		f.records[id] = d
	}
	for i := range m.Enums {
		d := &m.Enums[i]
		id := f.enumID(d)
		if id == "" {
			continue
		}
		if _, ok := f.enums[id]; ok {
			f.log.Debugw("Duplicate enum declaration", "id", id, "path", m.Path)
			continue
		}
		f.enums[id] = d
	}
}

func (f *Frontend) recordID(d *RecordDecl) string {
	if d.ID != "" {
		return d.ID
	}
	return qualify(d.Parent, d.Namespace, d.Name)
}

func (f *Frontend) enumID(d *EnumDecl) string {
	if d.ID != "" {
		return d.ID
	}
	return qualify(d.Parent, d.Namespace, d.Name)
}

func qualify(parent, ns, name string) string {
	if name == "" {
		return ""
	}
	if parent != "" {
		return parent + "::" + name
	}
	if ns = model.StripInline(ns); ns != "" {
		return ns + "::" + name
	}
	return name
}

// record registers d, returning nil when it cannot be reflected.
func (f *Frontend) record(d *RecordDecl) *model.Record {
	if f.skipped[d] {
		return nil
	}
	if f.building[d] {
		if t, ok := f.agg.Lookup(d); ok {
			r, _ := t.(*model.Record)
			return r
		}
		f.log.Warnw("Record depends on itself before it is named", "record", f.recordID(d))
		return nil
	}
	// The enclosing record goes first. Its members may name d, and they must find
	// d unstarted rather than waiting on its parent.
	if pd, ok := f.records[d.Parent]; ok && d.Parent != "" && !f.building[pd] && !f.enclosing[d] {
		f.enclosing[d] = true
		f.record(pd)
		delete(f.enclosing, d)
	}
	t := f.agg.RegisterType(d, func() model.Type {
		f.building[d] = true
		defer delete(f.building, d)
		if r := f.buildRecord(d); r != nil {
			return r
		}
		return nil
	})
	r, _ := t.(*model.Record)
	return r
}

func (f *Frontend) buildRecord(d *RecordDecl) *model.Record {
	if d.Name == "" {
		f.skipped[d] = true
		f.agg.Skip(describe("record", d.ID, d.Namespace), "unnamed declaration")
		return nil
	}

	var parent *model.Record
	if d.Parent != "" {
		pd, ok := f.records[d.Parent]
		if ok {
			parent = f.record(pd)
		}
		if parent == nil {
			f.log.Warnw("Parent record unavailable, treating as top-level",
				"record", d.Name, "parent", d.Parent)
		}
	}

	args, partial := f.templateArguments(d.TemplateArguments)
	if partial {
		f.log.Warnw("Template is not fully specialized, using available arguments",
			"record", qualify(d.Parent, d.Namespace, d.Name))
	}

	proto := model.Record{
		Decl:              model.Decl{Name: d.Name, Namespace: d.Namespace},
		IsStruct:          d.Struct == nil || *d.Struct,
		TemplateArguments: args,
		Parent:            parent,
		ForwardDeclarable: parent == nil && !partial,
	}
	if d.ForwardDeclarable != nil {
		proto.ForwardDeclarable = *d.ForwardDeclarable
	}

	r, created := f.agg.Record(proto)
	// Bind before resolving members so that self references find r.
	f.agg.Bind(d, r)
	if !created {
		return r
	}

	for _, fd := range d.Fields {
		if fd.Name == "" {
			f.agg.Skip(d.Name+"::<anonymous field>", "unnamed declaration")
			continue
		}
		r.Fields = append(r.Fields, model.Field{Name: fd.Name, Type: f.Type(fd.Type)})
	}
	for _, fn := range d.Functions {
		r.Functions = append(r.Functions, f.function(fn))
	}
	r.Finalize()

	f.log.Debugw("Registered record",
		"record", r.Spell("", model.Qualified),
		"fields", len(r.Fields),
		"functions", len(r.Functions))
	return r
}

func (f *Frontend) templateArguments(decls []TemplateArgDecl) ([]model.TemplateArgument, bool) {
	partial := false
	args := make([]model.TemplateArgument, 0, len(decls))
	for _, a := range decls {
		arg := model.TemplateArgument{
			Kind:   a.Kind,
			Name:   a.Name,
			Value:  a.Value,
			IsPack: a.Pack,
		}
		if arg.Kind == "" {
			arg.Kind = "typename"
		}
		if a.Type != "" {
			arg.Type = f.Type(a.Type)
		}
		if len(a.Template) > 0 {
			arg.TemplateTemplateArguments, _ = f.templateArguments(a.Template)
		}
		if a.Type == "" && a.Value == "" {
			partial = true
		}
		args = append(args, arg)
	}
	return args, partial
}

func (f *Frontend) function(d FunctionDecl) *model.Function {
	fn := &model.Function{
		Name:        d.Name,
		Result:      f.Type(d.Result),
		IsVirtual:   d.Virtual,
		IsConst:     d.Const,
		IsConstexpr: d.Constexpr,
		IsNoexcept:  d.Noexcept,
		IsStatic:    d.Static,
	}
	switch d.Ref {
	case "&":
		fn.RefQualifier = model.RefLValue
	case "&&":
		fn.RefQualifier = model.RefRValue
	}
	for _, p := range d.Parameters {
		fn.Parameters = append(fn.Parameters, model.Parameter{
			Name:   p.Name,
			Type:   f.Type(p.Type),
			IsPack: p.Pack,
		})
	}
	return fn
}

// enum registers d, returning nil when it cannot be reflected.
func (f *Frontend) enum(d *EnumDecl) *model.Enum {
	if f.skipped[d] {
		return nil
	}
	t := f.agg.RegisterType(d, func() model.Type {
		if e := f.buildEnum(d); e != nil {
			return e
		}
		return nil
	})
	e, _ := t.(*model.Enum)
	return e
}

func (f *Frontend) buildEnum(d *EnumDecl) *model.Enum {
	if d.Name == "" {
		f.skipped[d] = true
		f.agg.Skip(describe("enum", d.ID, d.Namespace), "unnamed declaration")
		return nil
	}
	var parent *model.Record
	if pd, ok := f.records[d.Parent]; ok && d.Parent != "" {
		parent = f.record(pd)
	}
	proto := model.Enum{
		Decl:   model.Decl{Name: d.Name, Namespace: d.Namespace},
		Scoped: d.Scoped,
		Values: d.Values,
		Parent: parent,
	}
	if len(d.Constants) > 0 {
		if len(d.Constants) == len(d.Values) {
			proto.Constants = d.Constants
		} else {
			f.log.Warnw("Enum constants do not match values, using ordinals",
				"enum", d.Name, "values", len(d.Values), "constants", len(d.Constants))
		}
	}
	if d.Underlying != "" {
		proto.Underlying = f.Type(d.Underlying)
	}
	e, _ := f.agg.Enum(proto)
	return e
}

// Type resolves a type spelling. Unparseable spellings and unknown names degrade
// to builtins.
func (f *Frontend) Type(spelling string) model.Type {
	if spelling == "" {
		return f.agg.Builtin(model.Unknown)
	}
	return f.agg.RegisterType(spellingNode(spelling), func() model.Type {
		ts, err := ParseSpelling(spelling)
		if err != nil {
			f.log.Warnw("Unparseable type, using it verbatim", "type", spelling, "error", err)
			return f.agg.Builtin(f.mapType(spelling))
		}
		return f.resolve(ts)
	})
}

func (f *Frontend) resolve(ts *TypeSpelling) model.Type {
	t := f.base(ts.Base)
	cv := ts.CV
	for _, op := range ts.ops {
		switch op.kind {
		case opPointer:
			t = f.agg.Pointer(t, cv)
			cv = op.cv
		case opLValue:
			t = f.agg.Reference(t, cv, model.RefLValue)
			cv = model.CVNone
		case opRValue:
			t = f.agg.Reference(t, cv, model.RefRValue)
			cv = model.CVNone
		case opArray:
			t = f.agg.ConstantArray(f.agg.CVQualified(t, cv), op.size)
			cv = model.CVNone
		}
	}
	return f.agg.CVQualified(t, cv)
}

func (f *Frontend) base(name string) model.Type {
	if d, ok := f.records[name]; ok {
		if r := f.record(d); r != nil {
			return r
		}
		return f.agg.Builtin(model.Unknown)
	}
	if d, ok := f.enums[name]; ok {
		if e := f.enum(d); e != nil {
			return e
		}
		return f.agg.Builtin(model.Unknown)
	}
	return f.agg.Builtin(f.mapType(name))
}

func describe(kind, id, ns string) string {
	switch {
	case id != "":
		return kind + " " + id
	case ns != "":
		return "anonymous " + kind + " in " + ns
	default:
		return "anonymous " + kind
	}
}
