package invoice

import (
	"fmt"
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	input := "invoice_id,total_excl_vat,currency\nINV-1,100.50,AED\nINV-2,200,SAR\n"

	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	v, ok := rows[0]["invoice_id"]
	if !ok || v.Str != "INV-1" {
		t.Errorf("invoice_id = %+v", v)
	}
	if n, ok := rows[0].NumberField("total_excl_vat"); !ok || n != 100.50 {
		t.Errorf("total_excl_vat = %v, %v", n, ok)
	}
}

func TestParseCSVSkipsEmptyRows(t *testing.T) {
	input := "a,b\n1,2\n,\n3,4\n"

	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2 (blank row skipped)", len(rows))
	}
}

func TestParseCSVRowCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("id\n")
	for i := 0; i < MaxRows+50; i++ {
		fmt.Fprintf(&b, "row-%d\n", i)
	}

	rows, err := ParseCSV(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != MaxRows {
		t.Errorf("rows = %d, want cap %d", len(rows), MaxRows)
	}
}

func TestParseCSVEmptyInput(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}

func TestParseJSON(t *testing.T) {
	input := `[
		{"invoice_id": "INV-1", "total_excl_vat": 100, "lines": [{"qty": 2, "unit_price": 50}]},
		{"invoice_id": "INV-2", "total_excl_vat": 200}
	]`

	rows, err := ParseJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	if n, ok := rows[0].NumberField("total_excl_vat"); !ok || n != 100 {
		t.Errorf("total_excl_vat = %v, %v", n, ok)
	}

	lines := rows[0].LineRows()
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if qty, ok := lines[0].NumberField("qty"); !ok || qty != 2 {
		t.Errorf("qty = %v, %v", qty, ok)
	}
}

func TestParseJSONRowCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < MaxRows+10; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id": %d}`, i)
	}
	b.WriteString("]")

	rows, err := ParseJSON(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(rows) != MaxRows {
		t.Errorf("rows = %d, want cap %d", len(rows), MaxRows)
	}
}

func TestParseSniffsFormat(t *testing.T) {
	jsonRows, err := Parse(strings.NewReader(`  [{"a": "1"}]`))
	if err != nil {
		t.Fatalf("Parse json: %v", err)
	}
	if len(jsonRows) != 1 {
		t.Errorf("json rows = %d, want 1", len(jsonRows))
	}

	csvRows, err := Parse(strings.NewReader("a\n1\n"))
	if err != nil {
		t.Fatalf("Parse csv: %v", err)
	}
	if len(csvRows) != 1 {
		t.Errorf("csv rows = %d, want 1", len(csvRows))
	}
}
