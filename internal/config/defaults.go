// Package config provides configuration handling for introspect.
package config

// DefaultTypeMappings returns spellings normalized before rendering. Standard
// library implementations report their internal names; the public alias is what
// generated code should refer to.
func DefaultTypeMappings() map[string]string {
	return map[string]string{
		// Strings
		"std::basic_string<char>":                                               "std::string",
		"std::basic_string<char, std::char_traits<char>, std::allocator<char>>": "std::string",
		"std::__1::basic_string<char>":                                          "std::string",
		"std::__cxx11::basic_string<char>":                                      "std::string",
		"std::basic_string_view<char>":                                          "std::string_view",
		"std::__1::basic_string_view<char>":                                     "std::string_view",

		// C spellings
		"_Bool":                  "bool",
		"long long int":          "long long",
		"unsigned long long int": "unsigned long long",
		"long int":               "long",
		"unsigned long int":      "unsigned long",
		"short int":              "short",
		"unsigned short int":     "unsigned short",
	}
}

// DefaultTrivialTypes returns the builtins reflected with empty member lists.
func DefaultTrivialTypes() []string {
	return []string{
		"bool",
		"char",
		"short",
		"int",
		"long",
		"long long",
		"unsigned char",
		"unsigned short",
		"unsigned int",
		"unsigned long",
		"unsigned long long",
		"float",
		"double",
		"long double",
	}
}

// DefaultOptions returns default generation options.
func DefaultOptions() Options {
	return Options{
		Namespace:    "tsmp",
		GlobalName:   "global_t",
		TrivialTypes: DefaultTrivialTypes(),
	}
}
