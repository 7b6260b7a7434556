// Package catalog holds the classification hierarchy and the lookup
// catalogs that inventory records and administrative acts reference:
// organizational units, documentary series/subseries/classes/types and
// the small auxiliary catalogs resolved by display name during imports.
package catalog

import "time"

// Context restricts which workflow a classification node may be used in.
type Context string

const (
	ContextFUID Context = "fuid" // inventory-record workflow
	ContextCCD  Context = "ccd"  // administrative-act workflow
)

// Valid reports whether c is one of the two known contexts.
func (c Context) Valid() bool {
	return c == ContextFUID || c == ContextCCD
}

// OrganizationalUnit is an organizational unit of the entity. Its code
// is a component of generated identifiers.
type OrganizationalUnit struct {
	ID       int64  `json:"id"`
	EntityID *int64 `json:"entity_id,omitempty"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Series is a top-level documentary classification node.
type Series struct {
	ID       int64   `json:"id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Context  Context `json:"context"`
	IsActive bool    `json:"is_active"`
}

// Subseries belongs to exactly one series and inherits its context.
type Subseries struct {
	ID       int64   `json:"id"`
	SeriesID int64   `json:"documentary_series_id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Context  Context `json:"context"`
	IsActive bool    `json:"is_active"`
}

// Class is an optional third classification level under a subseries.
type Class struct {
	ID          int64  `json:"id"`
	SubseriesID *int64 `json:"documentary_subseries_id,omitempty"`
	Name        string `json:"name"`
	IsActive    bool   `json:"is_active"`
}

// DocumentType is the fourth classification level, under a class.
type DocumentType struct {
	ID       int64  `json:"id"`
	ClassID  *int64 `json:"documentary_class_id,omitempty"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Item is a simple lookup-catalog row (storage medium, priority level,
// process type and so on).
type Item struct {
	ID       int64  `json:"id"`
	Code     string `json:"code,omitempty"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// UnitAssignment associates a unit with a series (and optionally a
// subseries), restricting which units may file under which nodes. It is
// consulted when presenting selectable options, not during import
// validation.
type UnitAssignment struct {
	ID          int64     `json:"id"`
	UnitID      int64     `json:"organizational_unit_id"`
	SeriesID    int64     `json:"documentary_series_id"`
	SubseriesID *int64    `json:"documentary_subseries_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
