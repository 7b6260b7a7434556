// Package importer validates spreadsheet batches against the catalog and
// commits accepted rows. One generic engine runs every profile; each
// profile contributes only its column table and a commit adapter, and the
// same column table drives template generation so the validator and the
// downloadable template cannot drift apart.
package importer

import (
	"context"
	"time"

	"github.com/jpcardenas/archivador/internal/catalog"
)

// Kind selects the validation behavior of a column.
type Kind int

const (
	// KindText accepts any non-blank value as-is.
	KindText Kind = iota
	// KindCatalog resolves the trimmed value against a preloaded lookup.
	KindCatalog
	// KindHierarchy is KindCatalog plus a parent-consistency check
	// against another resolved column in the same row.
	KindHierarchy
	// KindDate runs the layout cascade, then Excel serial numbers.
	KindDate
	// KindInt parses a non-negative integer.
	KindInt
	// KindYear parses a year between the configured floor and the
	// current year.
	KindYear
	// KindEmail validates format and rejects addresses already present
	// in the system or earlier in the same batch.
	KindEmail
	// KindPassword enforces a minimum length and emits a bcrypt hash,
	// falling back to the configured default when blank.
	KindPassword
)

// ColumnSpec describes one positional column of an import profile. The
// slice order is the column order, both for the parser and the template.
type ColumnSpec struct {
	// Field keys the parsed value in the Row.
	Field string
	// Header is the template header label, asterisk included for
	// required columns.
	Header string
	// Width is the template column width hint.
	Width float64

	Required bool
	// RequiredMsg is emitted verbatim when a required column is blank.
	// Stored per column because the Spanish phrasing is gendered.
	RequiredMsg string

	Kind   Kind
	Lookup catalog.LookupKind
	// NotFound is the label in "{NotFound} '{v}' no existe".
	NotFound string
	// ParentField names the column whose resolved id must match this
	// value's stored parent reference (KindHierarchy only).
	ParentField string
	// MismatchFmt formats the parent-mismatch error; it takes the raw
	// cell value.
	MismatchFmt string
	// InvalidMsg is the fixed message for a malformed KindInt or short
	// KindPassword value.
	InvalidMsg string
	// NotBefore names a date column that must not sort after this one
	// (KindDate only). The check fires once per row, on this column.
	NotBefore string
	// RangeMsg is the message when the two dates are out of order.
	RangeMsg string

	// Sheet names the reference sheet listing valid values for this
	// column; empty means no sheet.
	Sheet string
}

// Value is one parsed cell. Present is false for blank optional cells.
type Value struct {
	Present bool
	Text    string
	Entry   catalog.Entry
	Date    time.Time
	Int     int
}

// Row is a validated spreadsheet row ready for commit.
type Row struct {
	// Number is the human-facing file position (data index + 2).
	Number int
	vals   map[string]Value
}

// Text returns the string value of a field and whether it was present.
func (r *Row) Text(field string) (string, bool) {
	v, ok := r.vals[field]
	return v.Text, ok && v.Present
}

// ID returns the resolved catalog id of a field, nil when absent.
func (r *Row) ID(field string) *int64 {
	v, ok := r.vals[field]
	if !ok || !v.Present {
		return nil
	}
	id := v.Entry.ID
	return &id
}

// Date returns the parsed date of a field and whether one was present.
func (r *Row) Date(field string) (time.Time, bool) {
	v, ok := r.vals[field]
	return v.Date, ok && v.Present
}

// Int returns the parsed integer of a field, or 0 when absent.
func (r *Row) Int(field string) int {
	return r.vals[field].Int
}

// TextPtr returns the string value as a nullable column value.
func (r *Row) TextPtr(field string) *string {
	v, ok := r.vals[field]
	if !ok || !v.Present || v.Text == "" {
		return nil
	}
	s := v.Text
	return &s
}

// DatePtr returns the parsed date as a nullable column value.
func (r *Row) DatePtr(field string) *time.Time {
	v, ok := r.vals[field]
	if !ok || !v.Present {
		return nil
	}
	t := v.Date
	return &t
}

// CreateFunc persists one validated row. A non-nil error becomes an
// "Error al guardar" entry for that row; the batch continues.
type CreateFunc func(ctx context.Context, row *Row) error

// Result is the outcome of an import batch. Details maps reported row
// numbers to their error messages.
type Result struct {
	Success int              `json:"success"`
	Errors  int              `json:"errors"`
	Details map[int][]string `json:"details"`
}
