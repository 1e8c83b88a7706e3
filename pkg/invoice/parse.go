package invoice

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// Parse reads an upload in either JSON or CSV form. The format is
// sniffed from the first non-whitespace byte: a '[' means a JSON array,
// anything else is treated as CSV with a header row.
func Parse(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	if isJSON(br) {
		return ParseJSON(br)
	}
	return ParseCSV(br)
}

func isJSON(br *bufio.Reader) bool {
	buf, _ := br.Peek(64)
	for _, c := range buf {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return c == '['
		}
	}
	return false
}

// ParseJSON decodes a JSON array of row objects, truncated to MaxRows.
func ParseJSON(r io.Reader) ([]Row, error) {
	var raw []map[string]any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse json rows: %w", err)
	}

	if len(raw) > MaxRows {
		raw = raw[:MaxRows]
	}
	rows := make([]Row, 0, len(raw))
	for _, obj := range raw {
		rows = append(rows, rowFromMap(obj))
	}
	return rows, nil
}

// ParseCSV decodes header-keyed CSV records, truncated to MaxRows.
// Every cell arrives as a string; numeric coercion happens at lookup
// time, not here. Rows with no non-empty cell are skipped.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv header: %w", err)
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}

	var rows []Row
	for len(rows) < MaxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv row %d: %w", len(rows)+2, err)
		}

		row := make(Row, len(header))
		empty := true
		for i, cell := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = String(cell)
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
