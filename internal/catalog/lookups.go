package catalog

import "strings"

// LookupKind identifies one of the preloaded name→id maps an import
// column can resolve against.
type LookupKind int

const (
	LookupUnit LookupKind = iota
	LookupSeries
	LookupSubseries
	LookupClass
	LookupDocumentType
	LookupStorageMedium
	LookupDocumentPurpose
	LookupProcessType
	LookupValidityStatus
	LookupPriorityLevel
	LookupProject
	LookupUserEmail
	LookupRole
)

// Entry is a resolved lookup value. ParentID carries the stored parent
// reference for hierarchy nodes (series id for a subseries, subseries id
// for a class, class id for a document type); zero means no parent.
// Code is set for nodes that contribute to identifier generation.
type Entry struct {
	ID       int64
	ParentID int64
	Code     string
}

// Lookups holds every catalog an import batch resolves names against.
// It is built once per import (one query per catalog) so that per-row
// resolution is a map access, and is read-only afterwards.
type Lookups struct {
	maps  map[LookupKind]map[string]Entry
	order map[LookupKind][]string
}

// NewLookups returns an empty Lookups, ready for Add calls.
func NewLookups() *Lookups {
	return &Lookups{
		maps:  make(map[LookupKind]map[string]Entry),
		order: make(map[LookupKind][]string),
	}
}

// Add registers a display name for a kind. First registration of a name
// defines its listing position in template reference sheets; duplicate
// display keys (e.g. a "code - name" alias) do not re-enter the listing.
func (l *Lookups) Add(kind LookupKind, name string, e Entry) {
	m, ok := l.maps[kind]
	if !ok {
		m = make(map[string]Entry)
		l.maps[kind] = m
	}
	if _, exists := m[name]; !exists {
		l.order[kind] = append(l.order[kind], name)
	}
	m[name] = e
}

// AddAlias registers an extra resolvable key for a kind without listing
// it in template reference sheets. Used for the "code - name" display
// form accepted by the acts importer alongside the bare name.
func (l *Lookups) AddAlias(kind LookupKind, alias string, e Entry) {
	m, ok := l.maps[kind]
	if !ok {
		m = make(map[string]Entry)
		l.maps[kind] = m
	}
	m[alias] = e
}

// Resolve looks up a display name, trimming surrounding whitespace.
// Matching is exact and case-sensitive.
func (l *Lookups) Resolve(kind LookupKind, name string) (Entry, bool) {
	m, ok := l.maps[kind]
	if !ok {
		return Entry{}, false
	}
	e, ok := m[strings.TrimSpace(name)]
	return e, ok
}

// Contains reports whether name resolves for kind.
func (l *Lookups) Contains(kind LookupKind, name string) bool {
	_, ok := l.Resolve(kind, name)
	return ok
}

// Names returns the listed display names for a kind in registration
// order (which mirrors catalog preload order).
func (l *Lookups) Names(kind LookupKind) []string {
	return l.order[kind]
}
