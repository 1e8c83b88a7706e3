package gets

// Schema is the versioned GETS target field list that uploads are
// compared against. It is a read-only data artifact: loaded once and
// never mutated.
type Schema struct {
	Version string  `yaml:"version" json:"version"`
	Fields  []Field `yaml:"fields" json:"fields"`
}

// Field is a single entry in the GETS schema.
type Field struct {
	Path     string   `yaml:"path" json:"path"`
	Type     string   `yaml:"type" json:"type"`
	Required bool     `yaml:"required" json:"required"`
	Format   string   `yaml:"format,omitempty" json:"format,omitempty"`
	Enum     []string `yaml:"enum,omitempty" json:"enum,omitempty"`
	Pattern  string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// RequiredCount returns the number of required fields in the schema.
func (s Schema) RequiredCount() int {
	n := 0
	for _, f := range s.Fields {
		if f.Required {
			n++
		}
	}
	return n
}
