package records

import (
	"context"
	"fmt"
	"time"

	"github.com/jpcardenas/archivador/internal/catalog"
	"github.com/jpcardenas/archivador/internal/database"
	"github.com/jpcardenas/archivador/internal/logging"
	"github.com/jpcardenas/archivador/internal/numbering"
)

// InventoryStore persists inventory records and allocates their
// reference codes.
type InventoryStore struct {
	db      database.DBTX
	catalog *catalog.Store
	alloc   *numbering.Allocator
	now     func() time.Time
}

// NewInventoryStore creates an InventoryStore. The allocator serializes
// reference-code generation per year/unit scope.
func NewInventoryStore(db database.DBTX, alloc *numbering.Allocator) *InventoryStore {
	return &InventoryStore{
		db:      db,
		catalog: catalog.NewStore(db),
		alloc:   alloc,
		now:     time.Now,
	}
}

// CodesWithPrefix implements numbering.SequenceSource over the
// inventory_records table. Soft-deleted rows are included on purpose:
// a deleted record never frees its sequence number.
func (s *InventoryStore) CodesWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	const q = `SELECT reference_code FROM inventory_records WHERE reference_code LIKE $1 || '%'`

	rows, err := s.db.Query(ctx, q, prefix)
	if err != nil {
		return nil, fmt.Errorf("list reference codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan reference code: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// unitCode resolves the unit code used in the identifier prefix. A
// missing or unresolvable unit yields an absent code, which renders as
// the sentinel; creation is never blocked on it.
func (s *InventoryStore) unitCode(ctx context.Context, unitID *int64) numbering.Code {
	if unitID == nil {
		return numbering.Code{}
	}
	u, err := s.catalog.UnitByID(ctx, *unitID)
	if err != nil {
		return numbering.Code{}
	}
	return numbering.NewCode(u.Code)
}

// PreviewReferenceCode computes the code the next created record would
// receive for the given unit, without persisting anything. It shares
// the assignment path exactly, so preview and actual cannot drift.
func (s *InventoryStore) PreviewReferenceCode(ctx context.Context, unitID *int64) (string, error) {
	return numbering.NextReferenceCode(ctx, s, s.now().Year(), s.unitCode(ctx, unitID))
}

// Create assigns the reference code and inserts the record. The code is
// generated under the per-prefix allocator; a collision that still
// reaches the unique index is reported as ErrDuplicateCode.
func (s *InventoryStore) Create(ctx context.Context, rec *InventoryRecord, actingUser int64) error {
	year := s.now().Year()
	unit := s.unitCode(ctx, rec.OrganizationalUnitID)
	prefix := numbering.RecordPrefix(year, unit) + "-"

	if !unit.Valid {
		logging.FromContext(ctx).Warn("inventory record created with sentinel unit code",
			"prefix", prefix, "title", rec.Title)
	}

	return s.alloc.Do(prefix, func() error {
		code, err := numbering.NextReferenceCode(ctx, s, year, unit)
		if err != nil {
			return err
		}
		rec.ReferenceCode = code
		rec.CreatedBy = nullableID(actingUser)

		const q = `
			INSERT INTO inventory_records (
				organizational_unit_id, documentary_series_id, documentary_subseries_id,
				documentary_class_id, document_type_id, reference_code, title, description,
				start_date, end_date, has_start_date, has_end_date,
				box, folder, volume, folios,
				storage_medium_id, document_purpose_id, process_type_id,
				validity_status_id, priority_level_id, project_id,
				notes, created_by
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8,
				$9, $10, $11, $12,
				$13, $14, $15, $16,
				$17, $18, $19, $20, $21, $22, $23, $24
			)
			RETURNING id, created_at, updated_at`

		err = s.db.QueryRow(ctx, q,
			rec.OrganizationalUnitID, rec.DocumentarySeriesID, rec.DocumentarySubseriesID,
			rec.DocumentaryClassID, rec.DocumentTypeID, rec.ReferenceCode, rec.Title, rec.Description,
			rec.StartDate, rec.EndDate, rec.HasStartDate, rec.HasEndDate,
			rec.Box, rec.Folder, rec.Volume, rec.Folios,
			rec.StorageMediumID, rec.DocumentPurposeID, rec.ProcessTypeID,
			rec.ValidityStatusID, rec.PriorityLevelID, rec.ProjectID,
			rec.Notes, rec.CreatedBy,
		).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrDuplicateCode, rec.ReferenceCode)
			}
			return fmt.Errorf("insert inventory record: %w", err)
		}
		return nil
	})
}

// Update modifies a record in place. The reference code is immutable
// and deliberately absent from the statement.
func (s *InventoryStore) Update(ctx context.Context, rec *InventoryRecord, actingUser int64) error {
	rec.UpdatedBy = nullableID(actingUser)

	const q = `
		UPDATE inventory_records SET
			organizational_unit_id = $1, documentary_series_id = $2, documentary_subseries_id = $3,
			documentary_class_id = $4, document_type_id = $5, title = $6, description = $7,
			start_date = $8, end_date = $9, has_start_date = $10, has_end_date = $11,
			box = $12, folder = $13, volume = $14, folios = $15,
			storage_medium_id = $16, document_purpose_id = $17, process_type_id = $18,
			validity_status_id = $19, priority_level_id = $20, project_id = $21,
			notes = $22, updated_by = $23, updated_at = now()
		WHERE id = $24 AND deleted_at IS NULL`

	tag, err := s.db.Exec(ctx, q,
		rec.OrganizationalUnitID, rec.DocumentarySeriesID, rec.DocumentarySubseriesID,
		rec.DocumentaryClassID, rec.DocumentTypeID, rec.Title, rec.Description,
		rec.StartDate, rec.EndDate, rec.HasStartDate, rec.HasEndDate,
		rec.Box, rec.Folder, rec.Volume, rec.Folios,
		rec.StorageMediumID, rec.DocumentPurposeID, rec.ProcessTypeID,
		rec.ValidityStatusID, rec.PriorityLevelID, rec.ProjectID,
		rec.Notes, rec.UpdatedBy, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update inventory record %d: %w", rec.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marks a record deleted; it remains recoverable and keeps
// its sequence number.
func (s *InventoryStore) SoftDelete(ctx context.Context, id int64, actingUser int64) error {
	const q = `
		UPDATE inventory_records
		SET deleted_at = now(), updated_by = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL`

	tag, err := s.db.Exec(ctx, q, nullableID(actingUser), id)
	if err != nil {
		return fmt.Errorf("soft delete inventory record %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore clears the soft-delete marker.
func (s *InventoryStore) Restore(ctx context.Context, id int64, actingUser int64) error {
	const q = `
		UPDATE inventory_records
		SET deleted_at = NULL, updated_by = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NOT NULL`

	tag, err := s.db.Exec(ctx, q, nullableID(actingUser), id)
	if err != nil {
		return fmt.Errorf("restore inventory record %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ForceDelete permanently removes a record. Permission gating happens
// at the HTTP layer; the identifier's sequence slot stays consumed only
// while the row exists, so this can reopen a gap.
func (s *InventoryStore) ForceDelete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM inventory_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("force delete inventory record %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
