package splitter

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"introspect/internal/model"
)

// EnumSplitter accepts enums for reflection. Enums are selected by the set of their
// enumerator names, so an enum repeating an accepted value set is rejected like a
// duplicate record.
type EnumSplitter struct {
	log *zap.SugaredLogger

	values   map[string]bool
	enums    []*model.Enum
	shapes   map[uuid.UUID]*model.Enum
	rejected []*model.Enum
}

// NewEnumSplitter creates an empty EnumSplitter.
func NewEnumSplitter(log *zap.SugaredLogger) *EnumSplitter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &EnumSplitter{
		log:    log,
		values: make(map[string]bool),
		shapes: make(map[uuid.UUID]*model.Enum),
	}
}

// AddEnum offers e for reflection and reports whether it was accepted.
func (s *EnumSplitter) AddEnum(e *model.Enum) bool {
	if e == nil || e.Name == "" || e.Rejected() {
		return false
	}
	fp := Fingerprint(e.Values, nil)
	if accepted, ok := s.shapes[fp]; ok && slices.Equal(sortedCopy(accepted.Values), sortedCopy(e.Values)) {
		s.log.Infow("Rejecting enum introspection because of duplication",
			"enum", e.Spell("", model.Unqualified),
			"duplicate_of", accepted.Spell("", model.Unqualified))
		e.Name = model.Unknown
		s.rejected = append(s.rejected, e)
		return false
	}
	s.shapes[fp] = e
	for _, v := range e.Values {
		s.values[v] = true
	}
	s.enums = append(s.enums, e)
	return true
}

// Values returns the distinct enumerator names of all accepted enums, sorted.
func (s *EnumSplitter) Values() []string {
	out := maps.Keys(s.values)
	slices.Sort(out)
	return out
}

// Enums returns the accepted enums in insertion order.
func (s *EnumSplitter) Enums() []*model.Enum {
	return append([]*model.Enum(nil), s.enums...)
}

// Rejected returns the enums renamed to model.Unknown.
func (s *EnumSplitter) Rejected() []*model.Enum {
	return append([]*model.Enum(nil), s.rejected...)
}

func sortedCopy(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}

// EnumEntry is one enumerator with its ordinal and numeric value.
type EnumEntry struct {
	Ordinal int
	Name    string
	Value   int64
}

// EnumDescriptor converts between enumerator names and values. Entries keep
// declaration order.
type EnumDescriptor struct {
	Enum    *model.Enum
	entries []EnumEntry
	byName  map[string]int64
	byValue map[int64]string
}

// Describe builds the descriptor of e.
func Describe(e *model.Enum) *EnumDescriptor {
	d := &EnumDescriptor{
		Enum:    e,
		byName:  make(map[string]int64, len(e.Values)),
		byValue: make(map[int64]string, len(e.Values)),
	}
	for i, name := range e.Values {
		v := e.Constant(i)
		d.entries = append(d.entries, EnumEntry{Ordinal: i, Name: name, Value: v})
		d.byName[name] = v
		// The first enumerator wins for aliased values.
		if _, ok := d.byValue[v]; !ok {
			d.byValue[v] = name
		}
	}
	return d
}

// Entries returns the enumerators in declaration order.
func (d *EnumDescriptor) Entries() []EnumEntry {
	return append([]EnumEntry(nil), d.entries...)
}

// Names returns the enumerator names in declaration order.
func (d *EnumDescriptor) Names() []string {
	names := make([]string, len(d.entries))
	for i, e := range d.entries {
		names[i] = e.Name
	}
	return names
}

// Constants returns the enumerator values in declaration order.
func (d *EnumDescriptor) Constants() []int64 {
	values := make([]int64, len(d.entries))
	for i, e := range d.entries {
		values[i] = e.Value
	}
	return values
}

// ToString returns the name of value v.
func (d *EnumDescriptor) ToString(v int64) (string, bool) {
	name, ok := d.byValue[v]
	return name, ok
}

// FromString returns the value of the enumerator called name.
func (d *EnumDescriptor) FromString(name string) (int64, bool) {
	v, ok := d.byName[name]
	return v, ok
}
