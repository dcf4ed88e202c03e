package parser

// Manifest is the declaration list a front end hands to the generator. Type
// references are spellings such as "const geo::point&"; the base name refers to a
// declared id or, failing that, to a builtin.
type Manifest struct {
	Records      []RecordDecl `yaml:"records" json:"records" toml:"records"`
	Enums        []EnumDecl   `yaml:"enums" json:"enums" toml:"enums"`
	TrivialTypes []string     `yaml:"trivial_types" json:"trivial_types" toml:"trivial_types"`

	// Path is the file the manifest was read from.
	Path string `yaml:"-" json:"-" toml:"-"`
}

// RecordDecl describes a struct or class.
type RecordDecl struct {
	// ID is the front end identity. Defaults to the qualified name.
	ID        string `yaml:"id" json:"id" toml:"id"`
	Name      string `yaml:"name" json:"name" toml:"name"`
	Namespace string `yaml:"namespace" json:"namespace" toml:"namespace"`
	// Struct defaults to true.
	Struct *bool `yaml:"struct" json:"struct" toml:"struct"`
	// ForwardDeclarable defaults to true for named top-level records whose
	// template arguments are all bound.
	ForwardDeclarable *bool             `yaml:"forward_declarable" json:"forward_declarable" toml:"forward_declarable"`
	Parent            string            `yaml:"parent" json:"parent" toml:"parent"`
	TemplateArguments []TemplateArgDecl `yaml:"template_arguments" json:"template_arguments" toml:"template_arguments"`
	Fields            []FieldDecl       `yaml:"fields" json:"fields" toml:"fields"`
	Functions         []FunctionDecl    `yaml:"functions" json:"functions" toml:"functions"`
}

// TemplateArgDecl describes one template parameter and its bound argument. Type
// binds a type parameter, Value a non-type parameter.
type TemplateArgDecl struct {
	Kind     string            `yaml:"kind" json:"kind" toml:"kind"`
	Name     string            `yaml:"name" json:"name" toml:"name"`
	Type     string            `yaml:"type" json:"type" toml:"type"`
	Value    string            `yaml:"value" json:"value" toml:"value"`
	Pack     bool              `yaml:"pack" json:"pack" toml:"pack"`
	Template []TemplateArgDecl `yaml:"template" json:"template" toml:"template"`
}

// FieldDecl describes a public data member.
type FieldDecl struct {
	Name string `yaml:"name" json:"name" toml:"name"`
	Type string `yaml:"type" json:"type" toml:"type"`
}

// FunctionDecl describes a public member function.
type FunctionDecl struct {
	Name       string          `yaml:"name" json:"name" toml:"name"`
	Result     string          `yaml:"result" json:"result" toml:"result"`
	Parameters []ParameterDecl `yaml:"parameters" json:"parameters" toml:"parameters"`
	Const      bool            `yaml:"const" json:"const" toml:"const"`
	Virtual    bool            `yaml:"virtual" json:"virtual" toml:"virtual"`
	Static     bool            `yaml:"static" json:"static" toml:"static"`
	Constexpr  bool            `yaml:"constexpr" json:"constexpr" toml:"constexpr"`
	Noexcept   bool            `yaml:"noexcept" json:"noexcept" toml:"noexcept"`
	// Ref is the ref qualifier: "", "&" or "&&".
	Ref string `yaml:"ref" json:"ref" toml:"ref"`
}

// ParameterDecl describes a function parameter. Name may be empty.
type ParameterDecl struct {
	Name string `yaml:"name" json:"name" toml:"name"`
	Type string `yaml:"type" json:"type" toml:"type"`
	Pack bool   `yaml:"pack" json:"pack" toml:"pack"`
}

// EnumDecl describes an enumeration.
type EnumDecl struct {
	ID         string   `yaml:"id" json:"id" toml:"id"`
	Name       string   `yaml:"name" json:"name" toml:"name"`
	Namespace  string   `yaml:"namespace" json:"namespace" toml:"namespace"`
	Parent     string   `yaml:"parent" json:"parent" toml:"parent"`
	Scoped     bool     `yaml:"scoped" json:"scoped" toml:"scoped"`
	Underlying string   `yaml:"underlying" json:"underlying" toml:"underlying"`
	Values     []string `yaml:"values" json:"values" toml:"values"`
	Constants  []int64  `yaml:"constants" json:"constants" toml:"constants"`
}
