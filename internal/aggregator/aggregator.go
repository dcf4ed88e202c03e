// Package aggregator owns every declaration discovered during one generation run.
//
// Entities are created through create-or-fetch methods keyed by their structural
// identity, so the front end may report the same declaration any number of times.
// The aggregator is the only owner; the model types reference each other through
// plain pointers into it. An Aggregator is not safe for concurrent use and must not
// be shared between runs.
package aggregator

import (
	"sort"

	"go.uber.org/zap"

	"introspect/internal/model"
)

// Diagnostic records a declaration that was skipped.
type Diagnostic struct {
	What   string
	Reason string
}

type pointerKey struct {
	pointee model.Type
	cv      model.CV
}

type referenceKey struct {
	pointee model.Type
	cv      model.CV
	ref     model.RefKind
}

type cvKey struct {
	inner model.Type
	cv    model.CV
}

type arrayKey struct {
	element model.Type
	size    uint64
}

// Aggregator is the registry of one generation run.
type Aggregator struct {
	log *zap.SugaredLogger

	// entries is the arena in arrival order.
	entries []model.Type

	builtins   map[string]*model.Builtin
	pointers   map[pointerKey]*model.Pointer
	references map[referenceKey]*model.Reference
	cvs        map[cvKey]*model.CVQualified
	arrays     map[arrayKey]*model.ConstantArray
	records    map[string]*model.Record
	enums      map[string]*model.Enum

	trivial     []string
	trivialSeen map[string]bool

	nodes       map[any]model.Type
	diagnostics []Diagnostic
}

// New creates an empty Aggregator. A nil logger discards diagnostics.
func New(log *zap.SugaredLogger) *Aggregator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Aggregator{
		log:         log,
		builtins:    make(map[string]*model.Builtin),
		pointers:    make(map[pointerKey]*model.Pointer),
		references:  make(map[referenceKey]*model.Reference),
		cvs:         make(map[cvKey]*model.CVQualified),
		arrays:      make(map[arrayKey]*model.ConstantArray),
		records:     make(map[string]*model.Record),
		enums:       make(map[string]*model.Enum),
		trivialSeen: make(map[string]bool),
		nodes:       make(map[any]model.Type),
	}
}

func (a *Aggregator) add(t model.Type) {
	a.entries = append(a.entries, t)
}

// Builtin returns the builtin named name.
func (a *Aggregator) Builtin(name string) *model.Builtin {
	if b, ok := a.builtins[name]; ok {
		return b
	}
	b := &model.Builtin{Name: name}
	a.builtins[name] = b
	a.add(b)
	return b
}

// Pointer returns a pointer to pointee whose pointee is qualified with cv.
func (a *Aggregator) Pointer(pointee model.Type, cv model.CV) *model.Pointer {
	key := pointerKey{pointee, cv}
	if p, ok := a.pointers[key]; ok {
		return p
	}
	p := &model.Pointer{Pointee: pointee, CV: cv}
	a.pointers[key] = p
	a.add(p)
	return p
}

// Reference returns a reference of kind ref to pointee.
func (a *Aggregator) Reference(pointee model.Type, cv model.CV, ref model.RefKind) *model.Reference {
	key := referenceKey{pointee, cv, ref}
	if r, ok := a.references[key]; ok {
		return r
	}
	r := &model.Reference{Pointee: pointee, CV: cv, Ref: ref}
	a.references[key] = r
	a.add(r)
	return r
}

// CVQualified returns inner qualified with cv. An empty qualifier returns inner.
func (a *Aggregator) CVQualified(inner model.Type, cv model.CV) model.Type {
	if cv == model.CVNone {
		return inner
	}
	key := cvKey{inner, cv}
	if c, ok := a.cvs[key]; ok {
		return c
	}
	c := &model.CVQualified{Inner: inner, CV: cv}
	a.cvs[key] = c
	a.add(c)
	return c
}

// ConstantArray returns an array of size elements.
func (a *Aggregator) ConstantArray(element model.Type, size uint64) *model.ConstantArray {
	key := arrayKey{element, size}
	if c, ok := a.arrays[key]; ok {
		return c
	}
	c := &model.ConstantArray{Element: element, Size: size}
	a.arrays[key] = c
	a.add(c)
	return c
}

// Record returns the record identified by proto's namespace, parent, name and
// template arguments, creating it from proto when it does not exist yet. The
// boolean reports whether the record was created.
func (a *Aggregator) Record(proto model.Record) (*model.Record, bool) {
	key := proto.Spell("", model.Qualified)
	if r, ok := a.records[key]; ok {
		return r, false
	}
	r := new(model.Record)
	*r = proto
	a.records[key] = r
	a.add(r)
	return r, true
}

// Enum returns the enum identified by proto's namespace, parent and name, creating
// it from proto when it does not exist yet.
func (a *Aggregator) Enum(proto model.Enum) (*model.Enum, bool) {
	key := proto.Spell("", model.Qualified)
	if e, ok := a.enums[key]; ok {
		return e, false
	}
	e := new(model.Enum)
	*e = proto
	a.enums[key] = e
	a.add(e)
	return e, true
}

// TrivialType registers a type that is reflected without members.
func (a *Aggregator) TrivialType(spelling string) {
	if spelling == "" || a.trivialSeen[spelling] {
		return
	}
	a.trivialSeen[spelling] = true
	a.trivial = append(a.trivial, spelling)
}

// TrivialTypes returns the trivial type spellings in registration order.
func (a *Aggregator) TrivialTypes() []string {
	return append([]string(nil), a.trivial...)
}

// RegisterType returns the type bound to the front end node, calling build on
// the first request. A nil result is not memoized.
func (a *Aggregator) RegisterType(node any, build func() model.Type) model.Type {
	if t, ok := a.nodes[node]; ok {
		return t
	}
	t := build()
	if t != nil {
		a.nodes[node] = t
	}
	return t
}

// Bind associates node with t before t is complete. Front ends call it right
// after creating a record so that self-referential members resolve to it.
func (a *Aggregator) Bind(node any, t model.Type) {
	a.nodes[node] = t
}

// Lookup returns the type bound to node.
func (a *Aggregator) Lookup(node any) (model.Type, bool) {
	t, ok := a.nodes[node]
	return t, ok
}

// Skip records a declaration that cannot be reflected. It never fails the run.
func (a *Aggregator) Skip(what, reason string) {
	a.diagnostics = append(a.diagnostics, Diagnostic{What: what, Reason: reason})
	a.log.Warnw("Skipping declaration", "declaration", what, "reason", reason)
}

// Diagnostics returns the skipped declarations in the order they were reported.
func (a *Aggregator) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), a.diagnostics...)
}

// Len returns the number of entities owned.
func (a *Aggregator) Len() int { return len(a.entries) }

// InOrder returns all entities of kind T in registration order.
func InOrder[T model.Type](a *Aggregator) []T {
	var result []T
	for _, e := range a.entries {
		if t, ok := e.(T); ok {
			result = append(result, t)
		}
	}
	return result
}

// Fetch returns all entities of kind T ordered by name.
func Fetch[T model.Type](a *Aggregator) []T {
	result := InOrder[T](a)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Spell("", model.Qualified) < result[j].Spell("", model.Qualified)
	})
	return result
}

// Records returns the records in registration order.
func (a *Aggregator) Records() []*model.Record { return InOrder[*model.Record](a) }

// Enums returns the enums in registration order.
func (a *Aggregator) Enums() []*model.Enum { return InOrder[*model.Enum](a) }
