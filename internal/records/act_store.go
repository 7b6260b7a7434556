package records

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/jpcardenas/archivador/internal/catalog"
	"github.com/jpcardenas/archivador/internal/database"
	"github.com/jpcardenas/archivador/internal/logging"
	"github.com/jpcardenas/archivador/internal/numbering"
)

// ActStore persists administrative acts and allocates their filing
// numbers.
type ActStore struct {
	db      database.DBTX
	catalog *catalog.Store
	alloc   *numbering.Allocator
	now     func() time.Time
}

// NewActStore creates an ActStore sharing the given allocator with the
// other stores so all filing-number scopes serialize through one place.
func NewActStore(db database.DBTX, alloc *numbering.Allocator) *ActStore {
	return &ActStore{
		db:      db,
		catalog: catalog.NewStore(db),
		alloc:   alloc,
		now:     time.Now,
	}
}

// CodesWithPrefix implements numbering.SequenceSource over the
// administrative_acts table, soft-deleted rows included.
func (s *ActStore) CodesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	const q = `SELECT filing_number FROM administrative_acts WHERE filing_number LIKE $1 || '%'`

	rows, err := s.db.Query(ctx, q, prefix)
	if err != nil {
		return nil, fmt.Errorf("list filing numbers: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan filing number: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// scopeCodes resolves the classification codes that make up the filing
// number prefix. Unresolvable references degrade to absent codes rather
// than failing the save.
func (s *ActStore) scopeCodes(ctx context.Context, act *AdministrativeAct) (unit, series, subseries numbering.Code) {
	if act.OrganizationalUnitID != nil {
		if u, err := s.catalog.UnitByID(ctx, *act.OrganizationalUnitID); err == nil {
			unit = numbering.NewCode(u.Code)
		}
	}
	if act.DocumentarySeriesID != nil {
		if sr, err := s.catalog.SeriesByID(ctx, *act.DocumentarySeriesID); err == nil {
			series = numbering.NewCode(sr.Code)
		}
	}
	if act.DocumentarySubseriesID != nil {
		if sub, err := s.catalog.SubseriesByID(ctx, *act.DocumentarySubseriesID); err == nil {
			subseries = numbering.NewCode(sub.Code)
		}
	}
	return unit, series, subseries
}

// PreviewFilingNumber computes the filing number the next created act
// would receive for the given scope, without persisting anything.
func (s *ActStore) PreviewFilingNumber(ctx context.Context, act *AdministrativeAct) (string, error) {
	vigencia := act.Vigencia
	if vigencia == 0 {
		vigencia = s.now().Year()
	}
	unit, series, subseries := s.scopeCodes(ctx, act)
	return numbering.NextFilingNumber(ctx, s, vigencia, unit, series, subseries)
}

// Create assigns the filing number and slug, then inserts the act. An
// empty vigencia defaults to the current year. The filing number is
// generated under the per-prefix allocator; a collision that still
// reaches the unique index comes back as ErrDuplicateCode.
func (s *ActStore) Create(ctx context.Context, act *AdministrativeAct, actingUser int64) error {
	if act.Vigencia == 0 {
		act.Vigencia = s.now().Year()
	}
	unit, series, subseries := s.scopeCodes(ctx, act)
	prefix := numbering.ActPrefix(act.Vigencia, unit, series, subseries) + "."

	if !unit.Valid || !series.Valid {
		logging.FromContext(ctx).Warn("administrative act created with sentinel scope codes",
			"prefix", prefix, "subject", act.Subject)
	}

	return s.alloc.Do(prefix, func() error {
		number, err := numbering.NextFilingNumber(ctx, s, act.Vigencia, unit, series, subseries)
		if err != nil {
			return err
		}
		act.FilingNumber = number
		act.Slug = Slugify(act.Subject) + "-" + uuid.NewString()[:8]
		act.CreatedBy = nullableID(actingUser)

		const q = `
			INSERT INTO administrative_acts (
				user_id, organizational_unit_id, act_classification_id,
				documentary_series_id, documentary_subseries_id,
				vigencia, filing_number, subject, slug, folios, notes, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, created_at, updated_at`

		err = s.db.QueryRow(ctx, q,
			act.UserID, act.OrganizationalUnitID, act.ActClassificationID,
			act.DocumentarySeriesID, act.DocumentarySubseriesID,
			act.Vigencia, act.FilingNumber, act.Subject, act.Slug,
			act.Folios, act.Notes, act.CreatedBy,
		).Scan(&act.ID, &act.CreatedAt, &act.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrDuplicateCode, act.FilingNumber)
			}
			return fmt.Errorf("insert administrative act: %w", err)
		}
		return nil
	})
}

// Update modifies an act. The filing number and slug are immutable once
// assigned.
func (s *ActStore) Update(ctx context.Context, act *AdministrativeAct, actingUser int64) error {
	act.UpdatedBy = nullableID(actingUser)

	const q = `
		UPDATE administrative_acts SET
			user_id = $1, organizational_unit_id = $2, act_classification_id = $3,
			documentary_series_id = $4, documentary_subseries_id = $5,
			vigencia = $6, subject = $7, folios = $8, notes = $9,
			updated_by = $10, updated_at = now()
		WHERE id = $11 AND deleted_at IS NULL`

	tag, err := s.db.Exec(ctx, q,
		act.UserID, act.OrganizationalUnitID, act.ActClassificationID,
		act.DocumentarySeriesID, act.DocumentarySubseriesID,
		act.Vigencia, act.Subject, act.Folios, act.Notes,
		act.UpdatedBy, act.ID,
	)
	if err != nil {
		return fmt.Errorf("update administrative act %d: %w", act.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marks an act deleted. Its filing number stays consumed.
func (s *ActStore) SoftDelete(ctx context.Context, id int64, actingUser int64) error {
	const q = `
		UPDATE administrative_acts
		SET deleted_at = now(), updated_by = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL`

	tag, err := s.db.Exec(ctx, q, nullableID(actingUser), id)
	if err != nil {
		return fmt.Errorf("soft delete administrative act %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore clears the soft-delete marker.
func (s *ActStore) Restore(ctx context.Context, id int64, actingUser int64) error {
	const q = `
		UPDATE administrative_acts
		SET deleted_at = NULL, updated_by = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NOT NULL`

	tag, err := s.db.Exec(ctx, q, nullableID(actingUser), id)
	if err != nil {
		return fmt.Errorf("restore administrative act %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ForceDelete permanently removes an act.
func (s *ActStore) ForceDelete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM administrative_acts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("force delete administrative act %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Slugify lowercases and transliterates the subject, so accented
// characters survive as their ASCII forms instead of dropping out.
func Slugify(s string) string {
	return slug.Make(s)
}
