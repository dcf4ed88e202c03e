// Package pipeline runs one generation: manifests are parsed and replayed into an
// aggregator, split into accepted records and enums, and rendered into a header.
package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"introspect/internal/aggregator"
	"introspect/internal/config"
	"introspect/internal/generator"
	"introspect/internal/logging"
	"introspect/internal/model"
	"introspect/internal/parser"
	"introspect/internal/splitter"
)

// Failure classes reported by Run. The CLI maps them to exit codes.
var (
	ErrDiscovery = errors.New("input discovery failed")
	ErrOutput    = errors.New("output not writable")
)

// manifestExts are the extensions picked up when an input is a directory.
var manifestExts = map[string]bool{".yaml": true, ".yml": true, ".json": true, ".toml": true}

// Result describes one generation run. Names are spelled without inline
// namespaces.
type Result struct {
	RunID       string
	Inputs      []string
	Header      string
	Records     []string
	Enums       []string
	Rejected    []string
	Filtered    []string
	Diagnostics []aggregator.Diagnostic
}

// Pipeline holds the configuration shared by successive runs.
type Pipeline struct {
	cfg *config.Config
	log *zap.SugaredLogger
}

// New creates a Pipeline. A nil cfg uses the defaults.
func New(cfg *config.Config, log *zap.SugaredLogger) *Pipeline {
	if cfg == nil {
		cfg = config.New()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{cfg: cfg, log: log}
}

// Discover expands inputs into manifest files. Directories are walked for files
// with a manifest extension, in lexical order; plain files are taken as given.
func Discover(inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, errors.Mark(errors.New("no inputs given"), ErrDiscovery)
	}
	var files []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "input %s", in), ErrDiscovery)
		}
		if !info.IsDir() {
			files = append(files, in)
			continue
		}
		var found []string
		err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && manifestExts[strings.ToLower(filepath.Ext(path))] {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "walking %s", in), ErrDiscovery)
		}
		if len(found) == 0 {
			return nil, errors.Mark(errors.Newf("no manifests under %s", in), ErrDiscovery)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// CheckOutput verifies that the directory holding output exists and is a directory.
func CheckOutput(output string) error {
	dir := filepath.Dir(output)
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "output directory %s", dir), ErrOutput)
	}
	if !info.IsDir() {
		return errors.Mark(errors.Newf("output directory %s is not a directory", dir), ErrOutput)
	}
	return nil
}

// Generate renders the header for inputs without writing it.
func (p *Pipeline) Generate(inputs []string) (*Result, error) {
	log, runID := logging.WithRun(p.log)
	res := &Result{RunID: runID}

	files, err := Discover(inputs)
	if err != nil {
		return nil, err
	}
	res.Inputs = files

	ps := parser.New(log)
	manifests := make([]*parser.Manifest, 0, len(files))
	for _, path := range files {
		m, err := ps.ParseFile(path)
		if err != nil {
			return nil, errors.Mark(err, ErrDiscovery)
		}
		manifests = append(manifests, m)
	}

	agg := aggregator.New(log)
	parser.NewFrontend(agg, log, p.cfg.MapType).Load(manifests...)
	for _, t := range p.cfg.Options.TrivialTypes {
		agg.TrivialType(p.cfg.MapType(t))
	}
	res.Diagnostics = agg.Diagnostics()

	records := splitter.New(log)
	for _, r := range agg.Records() {
		name := r.Spell("", model.Unqualified)
		if !p.cfg.ShouldIncludeType(stripTemplateArgs(name)) {
			res.Filtered = append(res.Filtered, name)
			continue
		}
		if records.AddRecord(r) {
			res.Records = append(res.Records, name)
		} else {
			res.Rejected = append(res.Rejected, name)
		}
	}
	for _, t := range agg.TrivialTypes() {
		records.AddTrivialType(t)
	}

	enums := splitter.NewEnumSplitter(log)
	for _, e := range agg.Enums() {
		name := e.Spell("", model.Unqualified)
		if !p.cfg.ShouldIncludeType(stripTemplateArgs(name)) {
			res.Filtered = append(res.Filtered, name)
			continue
		}
		if enums.AddEnum(e) {
			res.Enums = append(res.Enums, name)
		} else {
			res.Rejected = append(res.Rejected, name)
		}
	}

	gen, err := generator.New(p.cfg, log)
	if err != nil {
		return nil, err
	}
	header, err := gen.Render(generator.NewInput(records, enums))
	if err != nil {
		return nil, err
	}
	res.Header = header

	log.Infow("Generated header",
		"inputs", len(files),
		"records", len(res.Records),
		"enums", len(res.Enums),
		"rejected", len(res.Rejected),
		"skipped", len(res.Diagnostics))
	return res, nil
}

// Run generates the header for inputs and writes it to output.
func (p *Pipeline) Run(inputs []string, output string) (*Result, error) {
	if err := CheckOutput(output); err != nil {
		return nil, err
	}
	res, err := p.Generate(inputs)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(output, []byte(res.Header), 0o644); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "writing %s", output), ErrOutput)
	}
	p.log.Infow("Wrote header", "path", output, "run", res.RunID)
	return res, nil
}

// Check generates the header for inputs and reports whether output already holds
// exactly that text. A missing output file is out of date.
func (p *Pipeline) Check(inputs []string, output string) (bool, *Result, error) {
	res, err := p.Generate(inputs)
	if err != nil {
		return false, nil, err
	}
	existing, err := os.ReadFile(output)
	if os.IsNotExist(err) {
		return false, res, nil
	}
	if err != nil {
		return false, nil, errors.Mark(errors.Wrapf(err, "reading %s", output), ErrOutput)
	}
	return string(existing) == res.Header, res, nil
}

// stripTemplateArgs removes template argument lists so that filters select all
// specializations of a template: "geo::box<int>::item" becomes "geo::box::item".
func stripTemplateArgs(name string) string {
	if !strings.Contains(name, "<") {
		return name
	}
	var b strings.Builder
	depth := 0
	for _, c := range name {
		switch {
		case c == '<':
			depth++
		case c == '>':
			depth--
		case depth == 0:
			b.WriteRune(c)
		}
	}
	return b.String()
}
