// Package parser reads declaration manifests and replays them into an aggregator,
// standing in for a compiler front end.
package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Parser reads manifest files.
type Parser struct {
	log *zap.SugaredLogger
}

// New creates a new Parser.
func New(log *zap.SugaredLogger) *Parser {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Parser{log: log}
}

// ParseFile reads a manifest, choosing the format by extension.
func (p *Parser) ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	m, err := p.Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	m.Path = path
	p.log.Debugw("Parsed manifest",
		"path", path,
		"records", len(m.Records),
		"enums", len(m.Enums),
		"trivial_types", len(m.TrivialTypes))
	return m, nil
}

// Parse decodes a manifest. ext selects the format (".yaml", ".yml", ".json",
// ".toml"); anything else is tried as YAML, then JSON.
func (p *Parser) Parse(data []byte, ext string) (*Manifest, error) {
	var m Manifest
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "parsing YAML manifest")
		}
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "parsing JSON manifest")
		}
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, "parsing TOML manifest")
		}
	default:
		// Try YAML first, then JSON
		if err := yaml.Unmarshal(data, &m); err != nil {
			if err := json.Unmarshal(data, &m); err != nil {
				return nil, errors.New("unable to parse manifest as YAML or JSON")
			}
		}
	}
	return &m, nil
}
