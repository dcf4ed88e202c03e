// Package splitter decides which records receive a reflection trait.
//
// Records are compared by the requirement set of their trait: the field names and
// the names of non-overloaded functions. Two records with the same requirements
// cannot be told apart by a structurally constrained trait, so the later one is
// renamed to model.Unknown and dropped. Accepted records contribute their member names to global sets from which
// the member detection predicates are emitted once per name.
package splitter

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"introspect/internal/model"
)

// Splitter accumulates accepted records. Records must be added in the order the
// front end discovered them; the first record of a shape wins.
type Splitter struct {
	log *zap.SugaredLogger

	fields    map[string]model.Field
	functions map[string]*model.Function
	records   []*model.Record
	shapes    map[uuid.UUID][]*Trait
	rejected  []*model.Record
	trivial   []string
}

// New creates an empty Splitter.
func New(log *zap.SugaredLogger) *Splitter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Splitter{
		log:       log,
		fields:    make(map[string]model.Field),
		functions: make(map[string]*model.Function),
		shapes:    make(map[uuid.UUID][]*Trait),
	}
}

// AddRecord offers r for reflection and reports whether it was accepted. The
// splitter works on a copy without operator overloads; only a rejection writes
// back to r, by renaming it to model.Unknown.
func (s *Splitter) AddRecord(r *model.Record) bool {
	if r == nil || r.Name == "" || r.Rejected() {
		return false
	}

	candidate := *r
	candidate.Functions = withoutOperators(r.Functions)
	trait := NewTrait(&candidate)

	if !nominal(&candidate) {
		for _, accepted := range s.shapes[trait.Fingerprint] {
			if sameRequirements(accepted, trait) {
				s.log.Infow("Rejecting introspection because of duplication",
					"record", r.Spell("", model.Unqualified),
					"duplicate_of", accepted.Record.Spell("", model.Unqualified))
				r.Name = model.Unknown
				s.rejected = append(s.rejected, r)
				return false
			}
		}
		s.shapes[trait.Fingerprint] = append(s.shapes[trait.Fingerprint], trait)
	}

	for _, f := range candidate.Fields {
		if _, ok := s.fields[f.Name]; !ok {
			s.fields[f.Name] = f
		}
	}
	for _, f := range candidate.Functions {
		if f.IsDestructor() || f.Overloaded {
			continue
		}
		if _, ok := s.functions[f.Name]; !ok {
			s.functions[f.Name] = f
		}
	}
	s.records = append(s.records, &candidate)
	s.log.Debugw("Adding introspection", "record", candidate.Spell("", model.Unqualified))
	return true
}

// AddTrivialType registers a builtin-like type reflected without members.
func (s *Splitter) AddTrivialType(spelling string) {
	for _, t := range s.trivial {
		if t == spelling {
			return
		}
	}
	s.trivial = append(s.trivial, spelling)
}

// Fields returns the distinct fields of all accepted records, sorted by name.
func (s *Splitter) Fields() []model.Field {
	out := maps.Values(s.fields)
	slices.SortFunc(out, func(a, b model.Field) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Functions returns one function per distinct non-overloaded name, sorted by name.
func (s *Splitter) Functions() []*model.Function {
	out := maps.Values(s.functions)
	slices.SortFunc(out, func(a, b *model.Function) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Records returns the accepted records in insertion order.
func (s *Splitter) Records() []*model.Record {
	return append([]*model.Record(nil), s.records...)
}

// Rejected returns the records renamed to model.Unknown.
func (s *Splitter) Rejected() []*model.Record {
	return append([]*model.Record(nil), s.rejected...)
}

// TrivialTypes returns the trivial types in registration order.
func (s *Splitter) TrivialTypes() []string {
	return append([]string(nil), s.trivial...)
}

// nominal reports whether r is selected by its exact name including template
// arguments, which makes a structural comparison unnecessary.
func nominal(r *model.Record) bool {
	return r.ForwardDeclarable && r.IsTemplate()
}

func withoutOperators(functions []*model.Function) []*model.Function {
	out := make([]*model.Function, 0, len(functions))
	for _, f := range functions {
		if f.IsOperator() {
			continue
		}
		out = append(out, f)
	}
	return out
}

// sameRequirements reports whether two traits would emit the same requires clause.
func sameRequirements(lhs, rhs *Trait) bool {
	return slices.Equal(lhs.Fields, rhs.Fields) && slices.Equal(lhs.Functions, rhs.Functions)
}
