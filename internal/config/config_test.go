package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, "tsmp", cfg.Options.Namespace)
	assert.Equal(t, "global_t", cfg.Options.GlobalName)
	assert.Contains(t, cfg.Options.TrivialTypes, "int")
	assert.Equal(t, "bool", cfg.MapType("_Bool"))
	assert.Equal(t, "geo::point", cfg.MapType("geo::point"))
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "introspect.yaml", `
typeMappings:
  my_int: int
options:
  namespace: refl
  includes: [reflect.hpp]
  excludeTypes: ["detail::"]
  skipStd: true
`},
		{"json", "introspect.json", `{
  "typeMappings": {"my_int": "int"},
  "options": {"namespace": "refl", "includes": ["reflect.hpp"], "excludeTypes": ["detail::"], "skipStd": true}
}`},
		{"toml", "introspect.toml", `
[typeMappings]
my_int = "int"

[options]
namespace = "refl"
includes = ["reflect.hpp"]
excludeTypes = ["detail::"]
skipStd = true
`},
		{"unknown extension", "introspect.conf", `{"typeMappings": {"my_int": "int"}, "options": {"namespace": "refl", "includes": ["reflect.hpp"], "excludeTypes": ["detail::"], "skipStd": true}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			require.NoError(t, cfg.LoadFile(writeFile(t, tt.file, tt.content)))

			assert.Equal(t, "refl", cfg.Options.Namespace)
			assert.Equal(t, "global_t", cfg.Options.GlobalName, "unset options keep defaults")
			assert.Equal(t, []string{"reflect.hpp"}, cfg.Options.Includes)
			assert.True(t, cfg.Options.SkipStd)
			assert.Equal(t, "int", cfg.MapType("my_int"))
			assert.Equal(t, "bool", cfg.MapType("_Bool"))
			assert.False(t, cfg.ShouldIncludeType("detail::impl"))
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	cfg := New()
	assert.Error(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, cfg.LoadFile(writeFile(t, "bad.json", "{")))
	assert.Error(t, cfg.LoadFile(writeFile(t, "bad.toml", "= =")))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvNamespace, "meta")
	t.Setenv(EnvIncludes, "a.hpp, b.hpp,")
	t.Setenv(EnvExclude, "std::,detail::impl")

	cfg := New()
	cfg.Options.Includes = []string{"a.hpp"}
	require.NoError(t, cfg.ApplyEnv(), "no .env file")

	assert.Equal(t, "meta", cfg.Options.Namespace)
	assert.Equal(t, []string{"a.hpp", "b.hpp"}, cfg.Options.Includes)
	assert.Equal(t, []string{"std::", "detail::impl"}, cfg.Options.ExcludeTypes)
}

func TestApplyEnvMalformedDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("not-valid = 1\n"), 0o644))
	t.Setenv(EnvNamespace, "meta")

	cfg := New()
	err := cfg.ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading .env")
	assert.Equal(t, "meta", cfg.Options.Namespace)
}

func TestApplyEnvDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("INTROSPECT_EXCLUDE=detail::\n"), 0o644))
	t.Setenv(EnvExclude, "")
	os.Unsetenv(EnvExclude)

	cfg := New()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, []string{"detail::"}, cfg.Options.ExcludeTypes)
}

func TestShouldIncludeType(t *testing.T) {
	cfg := New()
	cfg.Options.SkipStd = true
	cfg.Options.IncludeTypes = []string{"geo::", "top"}
	cfg.Options.ExcludeTypes = []string{"geo::detail::"}

	tests := []struct {
		name string
		want bool
	}{
		{"geo::point", true},
		{"top", true},
		{"other", false},
		{"geo::detail::impl", false},
		{"std::string", false},
		{"__gnu_cxx::iter", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.ShouldIncludeType(tt.name))
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := New()
	cfg.Options.Namespace = "9lives"
	assert.Error(t, cfg.Validate())

	cfg.Options.Namespace = "ok_ns"
	cfg.Options.GlobalName = "global t"
	assert.Error(t, cfg.Validate())

	cfg.Options.GlobalName = "global_t"
	assert.NoError(t, cfg.Validate())
}
