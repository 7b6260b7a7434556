// Package records implements the two record entities of the system,
// inventory records (FUID) and administrative acts (CCD), plus the
// user accounts imports can create. Stores assign the sequential
// identifier exactly once at creation, stamp audit fields from the
// explicit acting user, and soft-delete by default.
package records

import (
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store-level errors.
var (
	// ErrNotFound is returned when a record does not exist or is deleted.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateCode is returned when a generated identifier collides
	// with an existing one (two writers raced on the same prefix).
	ErrDuplicateCode = errors.New("identifier already assigned")

	// ErrDuplicateEmail is returned when a user email already exists.
	ErrDuplicateEmail = errors.New("email already exists")
)

// InventoryRecord is one described holding of physical or digital
// documents in the FUID workflow.
type InventoryRecord struct {
	ID                     int64
	OrganizationalUnitID   *int64
	DocumentarySeriesID    *int64
	DocumentarySubseriesID *int64
	DocumentaryClassID     *int64
	DocumentTypeID         *int64
	ReferenceCode          string
	Title                  string
	Description            *string
	StartDate              *time.Time
	EndDate                *time.Time
	// HasStartDate/HasEndDate distinguish "undated" (false) from "date
	// unknown" (true with a nil date).
	HasStartDate      bool
	HasEndDate        bool
	Box               *string
	Folder            *string
	Volume            *string
	Folios            int
	StorageMediumID   *int64
	DocumentPurposeID *int64
	ProcessTypeID     *int64
	ValidityStatusID  *int64
	PriorityLevelID   *int64
	ProjectID         *int64
	Notes             *string
	CreatedBy         *int64
	UpdatedBy         *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// AdministrativeAct is one administrative act (decree, resolution,
// circular) in the CCD workflow.
type AdministrativeAct struct {
	ID                     int64
	UserID                 *int64
	OrganizationalUnitID   *int64
	ActClassificationID    *int64
	DocumentarySeriesID    *int64
	DocumentarySubseriesID *int64
	Vigencia               int
	FilingNumber           string
	Subject                string
	Slug                   string
	Folios                 int
	Notes                  *string
	CreatedBy              *int64
	UpdatedBy              *int64
	CreatedAt              time.Time
	UpdatedAt              time.Time
	DeletedAt              *time.Time
}

// User is an application account; imports create these with an already
// hashed password.
type User struct {
	ID                   int64
	Name                 string
	LastName             *string
	Email                string
	Phone                *string
	DocumentNumber       *string
	OrganizationalUnitID *int64
	PasswordHash         string
	RoleID               *int64
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// isUniqueViolation reports whether err is a PostgreSQL unique-index
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// nullableID converts an acting-user id to a nullable column value;
// zero means "no authenticated user".
func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
