package splitter

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"introspect/internal/model"
)

// shapeSpace namespaces the name-based UUIDs used as structural fingerprints.
var shapeSpace = uuid.MustParse("6f1c3e0a-93b5-4c1e-9d0f-2a7c5b8e4d11")

// Fingerprint hashes a member set into a stable identifier. Both inputs are
// sorted on a copy, so member order does not matter.
func Fingerprint(fields, functions []string) uuid.UUID {
	f := slices.Clone(fields)
	fn := slices.Clone(functions)
	slices.Sort(f)
	slices.Sort(fn)
	return uuid.NewSHA1(shapeSpace, []byte("fields:"+strings.Join(f, ",")+";functions:"+strings.Join(fn, ",")))
}

// Trait is the selection rule of one accepted record.
type Trait struct {
	Record *model.Record
	// Nominal is the exact spelled name the trait is selected by. Empty for traits
	// selected structurally.
	Nominal string
	// Fields and Functions are the member names the candidate type must have.
	// Overloaded functions are not part of the requirement because their address
	// cannot be tested without argument types.
	Fields    []string
	Functions []string
	// Fingerprint identifies the requirement set.
	Fingerprint uuid.UUID
}

// Unconstrained reports whether the trait matches every candidate.
func (t *Trait) Unconstrained() bool {
	return t.Nominal == "" && len(t.Fields) == 0 && len(t.Functions) == 0
}

// NewTrait derives the selection rule of r. Forward declarable records are
// selected by name.
func NewTrait(r *model.Record) *Trait {
	t := &Trait{Record: r, Fields: r.FieldNames()}
	if r.ForwardDeclarable && !r.IsNested() {
		t.Nominal = r.Spell("", model.Unqualified)
	}
	seen := make(map[string]bool)
	for _, f := range r.Functions {
		if f.Overloaded || f.IsDestructor() || f.IsOperator() || seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		t.Functions = append(t.Functions, f.Name)
	}
	slices.Sort(t.Functions)
	t.Fingerprint = Fingerprint(t.Fields, t.Functions)
	return t
}

// Shape describes a candidate type asking for its trait.
type Shape struct {
	// Name is the candidate's spelled name, if it has one.
	Name      string
	Fields    []string
	Functions []string
}

// Registry maps candidate types to traits. It replaces the compile time selection
// by partial specialization: a nominal trait wins, otherwise the most constrained
// structural trait whose requirements the candidate meets.
type Registry struct {
	traits        []*Trait
	byName        map[string]*Trait
	byFingerprint map[uuid.UUID][]*Trait
}

// NewRegistry builds a registry over accepted records.
func NewRegistry(records []*model.Record) *Registry {
	reg := &Registry{
		byName:        make(map[string]*Trait),
		byFingerprint: make(map[uuid.UUID][]*Trait),
	}
	for _, r := range records {
		t := NewTrait(r)
		reg.traits = append(reg.traits, t)
		if t.Nominal != "" {
			reg.byName[t.Nominal] = t
			continue
		}
		reg.byFingerprint[t.Fingerprint] = append(reg.byFingerprint[t.Fingerprint], t)
	}
	return reg
}

// Traits returns every trait in record order.
func (reg *Registry) Traits() []*Trait {
	return append([]*Trait(nil), reg.traits...)
}

// Lookup returns the structural traits with the given fingerprint.
func (reg *Registry) Lookup(fp uuid.UUID) []*Trait {
	return reg.byFingerprint[fp]
}

// Resolve picks the trait for a candidate. It reports false when no trait
// matches or when two matching traits are not ordered by constraint.
func (reg *Registry) Resolve(s Shape) (*Trait, bool) {
	if t, ok := reg.byName[s.Name]; ok && s.Name != "" {
		return t, true
	}

	fields := toSet(s.Fields)
	functions := toSet(s.Functions)

	var matches []*Trait
	for _, t := range reg.traits {
		if t.Nominal != "" {
			continue
		}
		if containsAll(fields, t.Fields) && containsAll(functions, t.Functions) {
			matches = append(matches, t)
		}
	}

	var best *Trait
	for _, m := range matches {
		subsumesAll := true
		for _, other := range matches {
			if other != m && !subsumes(m, other) {
				subsumesAll = false
				break
			}
		}
		if subsumesAll {
			if best != nil {
				// Identical requirement sets: no unique winner.
				return nil, false
			}
			best = m
		}
	}
	return best, best != nil
}

// subsumes reports whether a is at least as constrained as b.
func subsumes(a, b *Trait) bool {
	return containsAll(toSet(a.Fields), b.Fields) && containsAll(toSet(a.Functions), b.Functions)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}

func containsAll(set map[string]bool, items []string) bool {
	for _, i := range items {
		if !set[i] {
			return false
		}
	}
	return true
}
