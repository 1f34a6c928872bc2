package database

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Row is one record of a table keyed by canonical (snake_case) column name.
type Row map[string]string

// Table is a parsed delimited file. Headers keep the spelling found in the
// file so a rewrite reproduces the original header line.
type Table struct {
	Headers []string
	Rows    []Row
}

// CanonicalColumn maps any spelling of a column name (productId,
// product_id, "Product Id", image1) to its snake_case form.
func CanonicalColumn(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	runes := []rune(name)

	var b strings.Builder
	for i, r := range runes {
		switch {
		case r == ' ' || r == '-' || r == '.':
			b.WriteByte('_')
		case unicode.IsUpper(r):
			if i > 0 && runes[i-1] != '_' && !unicode.IsUpper(runes[i-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsDigit(r):
			if i > 0 && unicode.IsLetter(runes[i-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return strings.Trim(out, "_")
}

// NormalizeRow re-keys a loosely named record onto canonical column names.
// When two aliases carry a value the first non-empty one wins.
func NormalizeRow(raw map[string]string) Row {
	row := make(Row, len(raw))
	for k, v := range raw {
		key := CanonicalColumn(k)
		if key == "" {
			continue
		}
		if existing, ok := row[key]; ok && existing != "" {
			continue
		}
		row[key] = v
	}
	return row
}

// Get returns the value of a column by any of its spellings.
func (r Row) Get(name string) string {
	return r[CanonicalColumn(name)]
}

// First returns the first non-empty value among the given aliases.
func (r Row) First(names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

// Set assigns a column by any of its spellings.
func (r Row) Set(name, value string) {
	r[CanonicalColumn(name)] = value
}

// Has reports whether the column is present, even if empty.
func (r Row) Has(name string) bool {
	_, ok := r[CanonicalColumn(name)]
	return ok
}

// Bool treats "true", "1" and "yes" as true.
func (r Row) Bool(names ...string) bool {
	return ParseBool(r.First(names...))
}

// Int parses an integer column, tolerating decimal input ("5.0").
func (r Row) Int(names ...string) int {
	v := r.First(names...)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

// Decimal parses a numeric column; malformed values read as zero.
func (r Row) Decimal(names ...string) decimal.Decimal {
	return ParseDecimal(r.First(names...))
}

// List splits a pipe-delimited column, dropping blank entries.
func (r Row) List(names ...string) []string {
	return SplitList(r.First(names...))
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ParseBool follows the loose flag spelling found in hand-edited tables.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// ParseDecimal strips currency noise and parses a number, zero on failure.
func ParseDecimal(v string) decimal.Decimal {
	v = strings.TrimSpace(v)
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimLeft(v, "$€£ "))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SplitList splits a pipe-delimited list, trimming entries and dropping empty ones.
func SplitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return []string{}
	}
	parts := strings.Split(v, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewTable creates an empty table with the given header line.
func NewTable(headers ...string) *Table {
	return &Table{Headers: append([]string(nil), headers...), Rows: []Row{}}
}

// ParseTable reads a header line followed by data lines. Blank lines are
// skipped, short lines are padded with empty values.
func ParseTable(text string) (*Table, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	if strings.TrimSpace(text) == "" {
		return NewTable(), nil
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse table: %w", err)
	}
	if len(records) == 0 {
		return NewTable(), nil
	}

	headers := make([]string, len(records[0]))
	keys := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
		keys[i] = CanonicalColumn(h)
	}

	table := &Table{Headers: headers, Rows: make([]Row, 0, len(records)-1)}
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := make(Row, len(keys))
		for i, key := range keys {
			if key == "" {
				continue
			}
			if i < len(record) {
				if row[key] == "" {
					row[key] = record[i]
				}
			} else if _, ok := row[key]; !ok {
				row[key] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func isBlankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Serialize writes the table back in header order, quoting only where needed.
func (t *Table) Serialize() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.Headers); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	keys := t.Columns()
	record := make([]string, len(keys))
	for _, row := range t.Rows {
		for i, key := range keys {
			record[i] = row[key]
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to serialize table: %w", err)
	}
	return buf.String(), nil
}

// Columns returns the canonical names of the headers, in order.
func (t *Table) Columns() []string {
	keys := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		keys[i] = CanonicalColumn(h)
	}
	return keys
}

// EnsureColumns appends headers for any canonical columns the table lacks.
func (t *Table) EnsureColumns(names ...string) {
	have := make(map[string]bool, len(t.Headers))
	for _, key := range t.Columns() {
		have[key] = true
	}
	for _, name := range names {
		key := CanonicalColumn(name)
		if key != "" && !have[key] {
			t.Headers = append(t.Headers, key)
			have[key] = true
		}
	}
}

// IndexOf returns the position of the first row whose column equals value, or -1.
func (t *Table) IndexOf(column, value string) int {
	key := CanonicalColumn(column)
	for i, row := range t.Rows {
		if row[key] == value {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Headers: append([]string(nil), t.Headers...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}
