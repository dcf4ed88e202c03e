package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvNamespace = "INTROSPECT_NAMESPACE"
	EnvIncludes  = "INTROSPECT_INCLUDES"
	EnvExclude   = "INTROSPECT_EXCLUDE"
)

// Config represents the complete configuration.
type Config struct {
	// TypeMappings rewrites builtin spellings reported by the front end, e.g.
	// "std::__1::basic_string<char>" to "std::string".
	TypeMappings map[string]string `yaml:"typeMappings" json:"typeMappings" toml:"typeMappings"`
	Options      Options           `yaml:"options" json:"options" toml:"options"`
}

// Options represents generation options.
type Options struct {
	// Namespace is the namespace wrapping all generated specializations.
	Namespace string `yaml:"namespace" json:"namespace" toml:"namespace"`
	// GlobalName is the struct that holds the namespace alias tree.
	GlobalName string `yaml:"globalName" json:"globalName" toml:"globalName"`
	// Includes are extra headers emitted after the standard prelude.
	Includes     []string `yaml:"includes" json:"includes" toml:"includes"`
	IncludeTypes []string `yaml:"includeTypes" json:"includeTypes" toml:"includeTypes"`
	ExcludeTypes []string `yaml:"excludeTypes" json:"excludeTypes" toml:"excludeTypes"`
	// SkipStd drops declarations from the std namespace and reserved namespaces.
	SkipStd      bool     `yaml:"skipStd" json:"skipStd" toml:"skipStd"`
	TrivialTypes []string `yaml:"trivialTypes" json:"trivialTypes" toml:"trivialTypes"`
	// Template replaces the built-in header template.
	Template string `yaml:"template" json:"template" toml:"template"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		TypeMappings: DefaultTypeMappings(),
		Options:      DefaultOptions(),
	}
}

// LoadFile loads configuration from a file (YAML, JSON or TOML based on extension).
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config file")
	}

	ext := strings.ToLower(filepath.Ext(path))

	var loaded Config
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return errors.Wrap(err, "parsing YAML config")
		}
	case ".json":
		if err := json.Unmarshal(data, &loaded); err != nil {
			return errors.Wrap(err, "parsing JSON config")
		}
	case ".toml":
		if err := toml.Unmarshal(data, &loaded); err != nil {
			return errors.Wrap(err, "parsing TOML config")
		}
	default:
		// Try YAML first, then JSON
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			if err := json.Unmarshal(data, &loaded); err != nil {
				return errors.Newf("unable to parse config %s as YAML or JSON", path)
			}
		}
	}

	// Merge loaded config with defaults
	c.merge(&loaded)

	return nil
}

// merge merges the loaded config into the current config.
func (c *Config) merge(loaded *Config) {
	for k, v := range loaded.TypeMappings {
		c.TypeMappings[k] = v
	}

	if loaded.Options.Namespace != "" {
		c.Options.Namespace = loaded.Options.Namespace
	}
	if loaded.Options.GlobalName != "" {
		c.Options.GlobalName = loaded.Options.GlobalName
	}
	if loaded.Options.Template != "" {
		c.Options.Template = loaded.Options.Template
	}
	if loaded.Options.SkipStd {
		c.Options.SkipStd = true
	}
	c.Options.Includes = appendUnique(c.Options.Includes, loaded.Options.Includes...)
	c.Options.TrivialTypes = appendUnique(c.Options.TrivialTypes, loaded.Options.TrivialTypes...)
	c.Options.IncludeTypes = loaded.Options.IncludeTypes
	c.Options.ExcludeTypes = loaded.Options.ExcludeTypes
}

// ApplyEnv overrides options from the environment. A .env file in the working
// directory is loaded first when present; variables already set win. An
// unreadable or malformed .env file is returned as an error after the
// environment has still been applied.
func (c *Config) ApplyEnv() error {
	var err error
	if loadErr := godotenv.Load(); loadErr != nil && !os.IsNotExist(loadErr) {
		err = errors.Wrap(loadErr, "loading .env")
	}

	if ns := strings.TrimSpace(os.Getenv(EnvNamespace)); ns != "" {
		c.Options.Namespace = ns
	}
	if v := os.Getenv(EnvIncludes); v != "" {
		c.Options.Includes = appendUnique(c.Options.Includes, splitList(v)...)
	}
	if v := os.Getenv(EnvExclude); v != "" {
		c.Options.ExcludeTypes = appendUnique(c.Options.ExcludeTypes, splitList(v)...)
	}
	return err
}

// Validate checks that the options can produce a well-formed header.
func (c *Config) Validate() error {
	for name, v := range map[string]string{"namespace": c.Options.Namespace, "globalName": c.Options.GlobalName} {
		if !isIdentifier(v) {
			return errors.WithHint(
				errors.Newf("option %s: %q is not a valid identifier", name, v),
				"use letters, digits and underscores only",
			)
		}
	}
	return nil
}

// MapType rewrites a builtin spelling using the configured mappings.
func (c *Config) MapType(spelling string) string {
	if mapped, ok := c.TypeMappings[spelling]; ok {
		return mapped
	}
	return spelling
}

// ShouldIncludeType checks if a declaration should be reflected based on config.
// name is the qualified spelling without inline markers, e.g. "geo::point".
func (c *Config) ShouldIncludeType(name string) bool {
	if c.Options.SkipStd && isReserved(name) {
		return false
	}

	// Check include list (if specified, type must be in it)
	if len(c.Options.IncludeTypes) > 0 {
		found := false
		for _, t := range c.Options.IncludeTypes {
			if matches(t, name) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	// Check exclude list
	for _, t := range c.Options.ExcludeTypes {
		if matches(t, name) {
			return false
		}
	}

	return true
}

// matches compares a configured pattern with a qualified name. A pattern ending in
// "::" selects a whole namespace.
func matches(pattern, name string) bool {
	if strings.HasSuffix(pattern, "::") {
		return strings.HasPrefix(name, pattern)
	}
	return pattern == name
}

func isReserved(name string) bool {
	return name == "std" || strings.HasPrefix(name, "std::") || strings.HasPrefix(name, "__")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
