// Package generator renders the reflection header from the split model.
//
// All selection decisions (which records survive, which members get descriptors,
// which predicates exist) are made while building TemplateData. The templates only
// format.
package generator

import (
	"embed"
	"io"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"introspect/internal/config"
	"introspect/internal/model"
	"introspect/internal/nstree"
	"introspect/internal/splitter"
)

//go:embed templates/*.tmpl
var templates embed.FS

const (
	defaultTemplate = "header.tmpl"
	// helperPrefix routes every spelled declaration through the alias tree.
	helperPrefix   = "typename GlobalNamespaceHelper::"
	spellCacheSize = 4096
)

// DefaultIncludes are emitted before the configured includes.
var DefaultIncludes = []string{"tuple", "array", "utility", "type_traits", "cstdint", "cstddef"}

// Generator executes the header template against the split model.
type Generator struct {
	config    *config.Config
	template  *template.Template
	log       *zap.SugaredLogger
	spellings *lru.Cache[spellKey, string]
}

type spellKey struct {
	t      model.Type
	prefix string
}

// New creates a new Generator using the built-in template.
func New(cfg *config.Config, log *zap.SugaredLogger) (*Generator, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cache, err := lru.New[spellKey, string](spellCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating spelling cache")
	}
	g := &Generator{config: cfg, log: log, spellings: cache}

	tmpl, err := template.New(defaultTemplate).
		Funcs(templateFuncs()).
		ParseFS(templates, "templates/"+defaultTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "parsing built-in template")
	}
	g.template = tmpl

	if cfg.Options.Template != "" {
		if err := g.LoadTemplate(cfg.Options.Template); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// LoadTemplate replaces the header template with one loaded from file.
func (g *Generator) LoadTemplate(path string) error {
	tmpl, err := template.New(filepath.Base(path)).
		Funcs(templateFuncs()).
		ParseFiles(path)
	if err != nil {
		return errors.Wrapf(err, "loading template %s", path)
	}
	g.template = tmpl
	return nil
}

// Input is everything the renderer consumes. Records and Enums are the accepted
// entities only.
type Input struct {
	Records      []*model.Record
	Enums        []*model.Enum
	Fields       []model.Field
	Functions    []*model.Function
	EnumValues   []string
	TrivialTypes []string
	Tree         *nstree.Node
	Registry     *splitter.Registry
}

// NewInput collects the output of both splitters and builds the namespace tree.
func NewInput(records *splitter.Splitter, enums *splitter.EnumSplitter) *Input {
	in := &Input{
		Records:      records.Records(),
		Fields:       records.Fields(),
		Functions:    records.Functions(),
		TrivialTypes: records.TrivialTypes(),
		Tree:         nstree.New(),
	}
	if enums != nil {
		in.Enums = enums.Enums()
		in.EnumValues = enums.Values()
	}
	for _, r := range in.Records {
		in.Tree.Insert(r)
	}
	for _, e := range in.Enums {
		in.Tree.Insert(e)
	}
	in.Registry = splitter.NewRegistry(in.Records)
	return in
}

// Generate writes the header for in to w.
func (g *Generator) Generate(in *Input, w io.Writer) error {
	data := g.buildData(in)
	if err := g.template.Execute(w, data); err != nil {
		return errors.Wrap(err, "executing template")
	}
	return nil
}

// Render returns the header for in.
func (g *Generator) Render(in *Input) (string, error) {
	var b strings.Builder
	if err := g.Generate(in, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// spell renders t through the cache.
func (g *Generator) spell(t model.Type, prefix string) string {
	if t == nil {
		return model.Unknown
	}
	key := spellKey{t: t, prefix: prefix}
	if s, ok := g.spellings.Get(key); ok {
		return s
	}
	s := t.Spell(prefix, model.Unqualified)
	g.spellings.Add(key, s)
	return s
}
