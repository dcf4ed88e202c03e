package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlManifest = `
records:
  - name: point
    namespace: geo
    fields:
      - {name: x, type: double}
      - {name: y, type: double}
    functions:
      - name: length
        result: double
        const: true
        parameters: [{name: scale, type: "const double&"}]
  - name: vec
    namespace: geo
    struct: false
    template_arguments:
      - {kind: typename, name: T, type: int}
      - {kind: int, name: N, value: "3"}
enums:
  - {name: color, namespace: geo, scoped: true, underlying: int, values: [red, green], constants: [0, 7]}
trivial_types: [int, double]
`

const jsonManifest = `{
  "records": [
    {"name": "point", "namespace": "geo",
     "fields": [{"name": "x", "type": "double"}, {"name": "y", "type": "double"}],
     "functions": [{"name": "length", "result": "double", "const": true,
                    "parameters": [{"name": "scale", "type": "const double&"}]}]},
    {"name": "vec", "namespace": "geo", "struct": false,
     "template_arguments": [{"kind": "typename", "name": "T", "type": "int"},
                            {"kind": "int", "name": "N", "value": "3"}]}
  ],
  "enums": [{"name": "color", "namespace": "geo", "scoped": true, "underlying": "int",
             "values": ["red", "green"], "constants": [0, 7]}],
  "trivial_types": ["int", "double"]
}`

const tomlManifest = `
trivial_types = ["int", "double"]

[[records]]
name = "point"
namespace = "geo"
fields = [{name = "x", type = "double"}, {name = "y", type = "double"}]

  [[records.functions]]
  name = "length"
  result = "double"
  const = true
  parameters = [{name = "scale", type = "const double&"}]

[[records]]
name = "vec"
namespace = "geo"
struct = false
template_arguments = [
  {kind = "typename", name = "T", type = "int"},
  {kind = "int", name = "N", value = "3"},
]

[[enums]]
name = "color"
namespace = "geo"
scoped = true
underlying = "int"
values = ["red", "green"]
constants = [0, 7]
`

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name, ext, data string
	}{
		{"yaml", ".yaml", yamlManifest},
		{"yml", ".yml", yamlManifest},
		{"json", ".json", jsonManifest},
		{"toml", ".toml", tomlManifest},
		{"fallback yaml", ".manifest", yamlManifest},
		{"fallback json", "", jsonManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(nil).Parse([]byte(tt.data), tt.ext)
			require.NoError(t, err)

			require.Len(t, m.Records, 2)
			point := m.Records[0]
			assert.Equal(t, "point", point.Name)
			assert.Equal(t, "geo", point.Namespace)
			assert.Nil(t, point.Struct)
			assert.Equal(t, []FieldDecl{{Name: "x", Type: "double"}, {Name: "y", Type: "double"}}, point.Fields)
			require.Len(t, point.Functions, 1)
			assert.True(t, point.Functions[0].Const)
			assert.Equal(t, []ParameterDecl{{Name: "scale", Type: "const double&"}}, point.Functions[0].Parameters)

			vec := m.Records[1]
			require.NotNil(t, vec.Struct)
			assert.False(t, *vec.Struct)
			require.Len(t, vec.TemplateArguments, 2)
			assert.Equal(t, "int", vec.TemplateArguments[0].Type)
			assert.Equal(t, "3", vec.TemplateArguments[1].Value)

			require.Len(t, m.Enums, 1)
			assert.Equal(t, []string{"red", "green"}, m.Enums[0].Values)
			assert.Equal(t, []int64{0, 7}, m.Enums[0].Constants)
			assert.Equal(t, []string{"int", "double"}, m.TrivialTypes)
		})
	}
}

func TestParseErrors(t *testing.T) {
	p := New(nil)
	_, err := p.Parse([]byte("records: [unterminated"), ".yaml")
	assert.Error(t, err)
	_, err = p.Parse([]byte("{"), ".json")
	assert.Error(t, err)
	_, err = p.Parse([]byte("records = "), ".toml")
	assert.Error(t, err)
	_, err = p.Parse([]byte("records: [unterminated"), ".txt")
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlManifest), 0o644))

	m, err := New(nil).ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, m.Path)
	assert.Len(t, m.Records, 2)

	_, err = New(nil).ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
