package invoice

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// MaxRows is the hard cap on rows accepted from a single upload.
// Ingestion truncates anything beyond it before the pipeline runs.
const MaxRows = 200

// Kind discriminates the value variants a row field can hold.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindLines
)

// Value is one field of an invoice row: a string, a number, or a nested
// list of line rows. Source systems disagree on shapes, so the union is
// deliberately small and everything else is carried as its string form.
type Value struct {
	Kind  Kind
	Str   string
	Num   float64
	Lines []Row
}

// Row is an open-ended field bag for a single invoice record.
// Field names vary by source system; nothing about the shape is fixed.
type Row map[string]Value

// String constructs a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number constructs a numeric value.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Nested constructs a nested lines value.
func Nested(rows []Row) Value { return Value{Kind: KindLines, Lines: rows} }

// MarshalJSON writes the underlying variant, not the wrapper struct,
// so stored rows look exactly like the uploaded data.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Num)
	case KindLines:
		return json.Marshal(v.Lines)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON reads a raw JSON value back into the matching variant.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

// fromAny converts a decoded JSON value into a Value. Arrays of objects
// become nested line rows; everything else degrades to its string form.
func fromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return String("")
	case string:
		return String(t)
	case float64:
		return Number(t)
	case bool:
		return String(strconv.FormatBool(t))
	case []any:
		lines := make([]Row, 0, len(t))
		for _, el := range t {
			obj, ok := el.(map[string]any)
			if !ok {
				return String(fmt.Sprintf("%v", t))
			}
			lines = append(lines, rowFromMap(obj))
		}
		return Nested(lines)
	case map[string]any:
		return Nested([]Row{rowFromMap(t)})
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

func rowFromMap(obj map[string]any) Row {
	row := make(Row, len(obj))
	for k, el := range obj {
		row[k] = fromAny(el)
	}
	return row
}

// FieldNames returns the row's field names in sorted order. Candidate
// ordering must be stable across parse/store/reload, and map iteration
// is not, so sorted order is the canonical one.
func (r Row) FieldNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
