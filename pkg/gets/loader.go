package gets

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed gets_schema.yaml
var embeddedSchema []byte

// Load returns the embedded GETS schema artifact.
func Load() (Schema, error) {
	return ParseSchema(embeddedSchema)
}

// LoadFile reads a schema artifact from disk, for validating candidate
// schema revisions before they are embedded.
func LoadFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema %s: %w", path, err)
	}
	return ParseSchema(data)
}

// ParseSchema parses YAML data into a Schema and validates it.
func ParseSchema(data []byte) (Schema, error) {
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return Schema{}, fmt.Errorf("parse schema: %w", err)
	}

	if result := ValidateSchema(schema); !result.Valid() {
		return Schema{}, fmt.Errorf("%s", result.Error())
	}
	return schema, nil
}

// MustLoad loads the embedded schema or panics. The artifact ships with
// the binary, so a failure here is a build defect, not a runtime one.
func MustLoad() Schema {
	schema, err := Load()
	if err != nil {
		panic(err)
	}
	return schema
}
