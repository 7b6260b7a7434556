package catalog

import (
	"context"
	"fmt"
)

// preload.go builds the per-import Lookups from current catalog state.
// Each importer profile preloads exactly the catalogs its columns
// resolve against, in one query per catalog, before any row is read.

// PreloadInventoryLookups loads every catalog the inventory-record
// importer resolves by name. Series and subseries are restricted to the
// fuid context.
func (s *Store) PreloadInventoryLookups(ctx context.Context) (*Lookups, error) {
	lk := NewLookups()

	if err := s.loadUnits(ctx, lk); err != nil {
		return nil, err
	}
	if err := s.loadHierarchy(ctx, lk, ContextFUID, false); err != nil {
		return nil, err
	}
	if err := s.loadClasses(ctx, lk); err != nil {
		return nil, err
	}
	if err := s.loadDocumentTypes(ctx, lk); err != nil {
		return nil, err
	}
	for _, kind := range []LookupKind{
		LookupStorageMedium, LookupDocumentPurpose, LookupProcessType,
		LookupValidityStatus, LookupPriorityLevel, LookupProject,
	} {
		items, err := s.activeItems(ctx, kind)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			lk.Add(kind, it.Name, Entry{ID: it.ID, Code: it.Code})
		}
	}

	return lk, nil
}

// PreloadActLookups loads the catalogs the administrative-act importer
// needs. Series and subseries are restricted to the ccd context and are
// resolvable both by bare name and by the "code - name" display form the
// act templates list.
func (s *Store) PreloadActLookups(ctx context.Context) (*Lookups, error) {
	lk := NewLookups()

	if err := s.loadUnits(ctx, lk); err != nil {
		return nil, err
	}
	if err := s.loadHierarchy(ctx, lk, ContextCCD, true); err != nil {
		return nil, err
	}
	if err := s.loadUserEmails(ctx, lk); err != nil {
		return nil, err
	}

	return lk, nil
}

// PreloadUserLookups loads the catalogs the user importer needs,
// including every existing email for uniqueness checks.
func (s *Store) PreloadUserLookups(ctx context.Context) (*Lookups, error) {
	lk := NewLookups()

	if err := s.loadUnits(ctx, lk); err != nil {
		return nil, err
	}
	if err := s.loadUserEmails(ctx, lk); err != nil {
		return nil, err
	}
	if err := s.loadRoles(ctx, lk); err != nil {
		return nil, err
	}

	return lk, nil
}

func (s *Store) loadUnits(ctx context.Context, lk *Lookups) error {
	units, err := s.ActiveUnits(ctx)
	if err != nil {
		return err
	}
	for _, u := range units {
		lk.Add(LookupUnit, u.Name, Entry{ID: u.ID, Code: u.Code})
	}
	return nil
}

// loadHierarchy loads active series and subseries for a context. When
// codeAliases is set, the "code - name" display form resolves too (the
// acts templates list series that way).
func (s *Store) loadHierarchy(ctx context.Context, lk *Lookups, c Context, codeAliases bool) error {
	series, err := s.ActiveSeries(ctx, c)
	if err != nil {
		return err
	}
	for _, sr := range series {
		e := Entry{ID: sr.ID, Code: sr.Code}
		if codeAliases {
			lk.Add(LookupSeries, fmt.Sprintf("%s - %s", sr.Code, sr.Name), e)
			lk.AddAlias(LookupSeries, sr.Name, e)
		} else {
			lk.Add(LookupSeries, sr.Name, e)
		}
	}

	subseries, err := s.ActiveSubseries(ctx, c)
	if err != nil {
		return err
	}
	for _, sb := range subseries {
		e := Entry{ID: sb.ID, ParentID: sb.SeriesID, Code: sb.Code}
		if codeAliases {
			lk.Add(LookupSubseries, fmt.Sprintf("%s - %s", sb.Code, sb.Name), e)
			lk.AddAlias(LookupSubseries, sb.Name, e)
		} else {
			lk.Add(LookupSubseries, sb.Name, e)
		}
	}

	return nil
}

func (s *Store) loadClasses(ctx context.Context, lk *Lookups) error {
	const q = `
		SELECT id, documentary_subseries_id, name
		FROM documentary_classes
		WHERE is_active
		ORDER BY name`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     int64
			parent *int64
			name   string
		)
		if err := rows.Scan(&id, &parent, &name); err != nil {
			return fmt.Errorf("scan class: %w", err)
		}
		e := Entry{ID: id}
		if parent != nil {
			e.ParentID = *parent
		}
		lk.Add(LookupClass, name, e)
	}
	return rows.Err()
}

func (s *Store) loadDocumentTypes(ctx context.Context, lk *Lookups) error {
	const q = `
		SELECT id, documentary_class_id, name
		FROM document_types
		WHERE is_active
		ORDER BY name`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("list document types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     int64
			parent *int64
			name   string
		)
		if err := rows.Scan(&id, &parent, &name); err != nil {
			return fmt.Errorf("scan document type: %w", err)
		}
		e := Entry{ID: id}
		if parent != nil {
			e.ParentID = *parent
		}
		lk.Add(LookupDocumentType, name, e)
	}
	return rows.Err()
}

func (s *Store) loadUserEmails(ctx context.Context, lk *Lookups) error {
	rows, err := s.db.Query(ctx, `SELECT id, email FROM users ORDER BY email`)
	if err != nil {
		return fmt.Errorf("list user emails: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    int64
			email string
		)
		if err := rows.Scan(&id, &email); err != nil {
			return fmt.Errorf("scan user email: %w", err)
		}
		lk.Add(LookupUserEmail, email, Entry{ID: id})
	}
	return rows.Err()
}

func (s *Store) loadRoles(ctx context.Context, lk *Lookups) error {
	rows, err := s.db.Query(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("scan role: %w", err)
		}
		lk.Add(LookupRole, name, Entry{ID: id})
	}
	return rows.Err()
}
