package catalog

import (
	"context"
	"fmt"

	"github.com/jpcardenas/archivador/internal/database"
)

// Store is the data-access layer for catalogs and the classification
// hierarchy. All queries are plain SQL through pgx.
type Store struct {
	db database.DBTX
}

// NewStore creates a Store backed by db.
func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

// itemTables maps auxiliary-catalog lookup kinds to their tables. Kept
// in one place so preloads and listings cannot drift apart.
var itemTables = map[LookupKind]string{
	LookupStorageMedium:   "storage_mediums",
	LookupDocumentPurpose: "document_purposes",
	LookupProcessType:     "process_types",
	LookupValidityStatus:  "validity_statuses",
	LookupPriorityLevel:   "priority_levels",
	LookupProject:         "projects",
}

// ActiveUnits returns active organizational units ordered by name.
func (s *Store) ActiveUnits(ctx context.Context) ([]OrganizationalUnit, error) {
	const q = `
		SELECT id, entity_id, code, name, is_active
		FROM organizational_units
		WHERE is_active
		ORDER BY name`

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var units []OrganizationalUnit
	for rows.Next() {
		var u OrganizationalUnit
		if err := rows.Scan(&u.ID, &u.EntityID, &u.Code, &u.Name, &u.IsActive); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// UnitByID returns one organizational unit regardless of active flag.
func (s *Store) UnitByID(ctx context.Context, id int64) (*OrganizationalUnit, error) {
	const q = `
		SELECT id, entity_id, code, name, is_active
		FROM organizational_units
		WHERE id = $1`

	var u OrganizationalUnit
	err := s.db.QueryRow(ctx, q, id).Scan(&u.ID, &u.EntityID, &u.Code, &u.Name, &u.IsActive)
	if err != nil {
		return nil, fmt.Errorf("unit %d: %w", id, err)
	}
	return &u, nil
}

// ActiveSeries returns active series for a context ordered by code.
func (s *Store) ActiveSeries(ctx context.Context, c Context) ([]Series, error) {
	const q = `
		SELECT id, code, name, context, is_active
		FROM documentary_series
		WHERE is_active AND context = $1
		ORDER BY code`

	rows, err := s.db.Query(ctx, q, string(c))
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var series []Series
	for rows.Next() {
		var sr Series
		if err := rows.Scan(&sr.ID, &sr.Code, &sr.Name, &sr.Context, &sr.IsActive); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		series = append(series, sr)
	}
	return series, rows.Err()
}

// SeriesByID returns one series.
func (s *Store) SeriesByID(ctx context.Context, id int64) (*Series, error) {
	const q = `SELECT id, code, name, context, is_active FROM documentary_series WHERE id = $1`

	var sr Series
	err := s.db.QueryRow(ctx, q, id).Scan(&sr.ID, &sr.Code, &sr.Name, &sr.Context, &sr.IsActive)
	if err != nil {
		return nil, fmt.Errorf("series %d: %w", id, err)
	}
	return &sr, nil
}

// ActiveSubseries returns active subseries for a context ordered by code.
func (s *Store) ActiveSubseries(ctx context.Context, c Context) ([]Subseries, error) {
	const q = `
		SELECT id, documentary_series_id, code, name, context, is_active
		FROM documentary_subseries
		WHERE is_active AND context = $1
		ORDER BY code`

	rows, err := s.db.Query(ctx, q, string(c))
	if err != nil {
		return nil, fmt.Errorf("list subseries: %w", err)
	}
	defer rows.Close()

	var subs []Subseries
	for rows.Next() {
		var sb Subseries
		if err := rows.Scan(&sb.ID, &sb.SeriesID, &sb.Code, &sb.Name, &sb.Context, &sb.IsActive); err != nil {
			return nil, fmt.Errorf("scan subseries: %w", err)
		}
		subs = append(subs, sb)
	}
	return subs, rows.Err()
}

// SubseriesByID returns one subseries.
func (s *Store) SubseriesByID(ctx context.Context, id int64) (*Subseries, error) {
	const q = `
		SELECT id, documentary_series_id, code, name, context, is_active
		FROM documentary_subseries
		WHERE id = $1`

	var sb Subseries
	err := s.db.QueryRow(ctx, q, id).Scan(&sb.ID, &sb.SeriesID, &sb.Code, &sb.Name, &sb.Context, &sb.IsActive)
	if err != nil {
		return nil, fmt.Errorf("subseries %d: %w", id, err)
	}
	return &sb, nil
}

// SetSeriesContext changes a series' context and cascades it to all
// child subseries, keeping the inheritance invariant on write.
func (s *Store) SetSeriesContext(ctx context.Context, seriesID int64, c Context) error {
	if !c.Valid() {
		return fmt.Errorf("invalid context %q", c)
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE documentary_series SET context = $1, updated_at = now() WHERE id = $2`,
		string(c), seriesID); err != nil {
		return fmt.Errorf("update series context: %w", err)
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE documentary_subseries SET context = $1, updated_at = now() WHERE documentary_series_id = $2`,
		string(c), seriesID); err != nil {
		return fmt.Errorf("cascade context to subseries: %w", err)
	}

	return nil
}

// AssignmentsForUnit returns the classification nodes a unit may file
// under, for populating selectable options per workflow.
func (s *Store) AssignmentsForUnit(ctx context.Context, unitID int64, c Context) ([]UnitAssignment, error) {
	const q = `
		SELECT uc.id, uc.organizational_unit_id, uc.documentary_series_id,
		       uc.documentary_subseries_id, uc.created_at
		FROM unit_classifications uc
		JOIN documentary_series ds ON ds.id = uc.documentary_series_id
		WHERE uc.organizational_unit_id = $1 AND ds.context = $2 AND ds.is_active
		ORDER BY uc.id`

	rows, err := s.db.Query(ctx, q, unitID, string(c))
	if err != nil {
		return nil, fmt.Errorf("list unit assignments: %w", err)
	}
	defer rows.Close()

	var out []UnitAssignment
	for rows.Next() {
		var a UnitAssignment
		if err := rows.Scan(&a.ID, &a.UnitID, &a.SeriesID, &a.SubseriesID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan unit assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// activeItems lists one auxiliary catalog's active rows ordered by name.
func (s *Store) activeItems(ctx context.Context, kind LookupKind) ([]Item, error) {
	table, ok := itemTables[kind]
	if !ok {
		return nil, fmt.Errorf("no item table for lookup kind %d", kind)
	}

	q := fmt.Sprintf(`SELECT id, COALESCE(code, ''), name, is_active FROM %s WHERE is_active ORDER BY name`, table)

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &it.IsActive); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
