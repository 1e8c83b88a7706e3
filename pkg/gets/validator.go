package gets

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a single schema validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult holds all validation errors for a schema artifact.
type ValidationResult struct {
	Errors []ValidationError
}

// Valid returns true if no validation errors were found.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Error returns a combined error message from all validation errors.
func (r ValidationResult) Error() string {
	if r.Valid() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("schema validation failed: %s", strings.Join(msgs, "; "))
}

// validFieldTypes lists the recognized schema field types.
var validFieldTypes = map[string]bool{
	"string": true,
	"number": true,
	"date":   true,
}

// ValidateSchema checks a schema artifact for structural correctness:
// a version tag, unique non-empty paths, known types, and well-formed
// patterns.
func ValidateSchema(schema Schema) ValidationResult {
	var result ValidationResult

	if schema.Version == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field: "version", Message: "required",
		})
	}

	if len(schema.Fields) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field: "fields", Message: "at least one field required",
		})
	}

	paths := make(map[string]bool)
	for i, f := range schema.Fields {
		if f.Path == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field: fmt.Sprintf("fields[%d].path", i), Message: "required",
			})
		} else if paths[f.Path] {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("fields[%d].path", i),
				Message: fmt.Sprintf("duplicate path %q", f.Path),
			})
		} else {
			paths[f.Path] = true
		}

		if f.Type == "" {
			result.Errors = append(result.Errors, ValidationError{
				Field: fmt.Sprintf("fields[%d].type", i), Message: "required",
			})
		} else if !validFieldTypes[f.Type] {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("fields[%d].type", i),
				Message: fmt.Sprintf("unknown type %q", f.Type),
			})
		}

		for j, e := range f.Enum {
			if strings.TrimSpace(e) == "" {
				result.Errors = append(result.Errors, ValidationError{
					Field:   fmt.Sprintf("fields[%d].enum[%d]", i, j),
					Message: "empty enum value",
				})
			}
		}

		if f.Pattern != "" {
			if _, err := regexp.Compile(f.Pattern); err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Field:   fmt.Sprintf("fields[%d].pattern", i),
					Message: fmt.Sprintf("invalid pattern: %v", err),
				})
			}
		}
	}

	return result
}
