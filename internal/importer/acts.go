package importer

import (
	"context"

	"github.com/jpcardenas/archivador/internal/catalog"
	"github.com/jpcardenas/archivador/internal/records"
)

func init() {
	Register(actsProfile)
}

// actsProfile maps the CCD administrative-act spreadsheet. Its series
// and subseries lookups are preloaded with both the bare name and the
// "code - name" display form; the templates list the latter.
var actsProfile = &Profile{
	Key:   "administrative-acts",
	Name:  "Actos Administrativos",
	Title: "Actos Administrativos",
	Columns: []ColumnSpec{
		{
			Field: "organizational_unit", Header: "Unidad Organizacional *", Width: 30,
			Required: true, RequiredMsg: "Unidad Organizacional es requerida",
			Kind: KindCatalog, Lookup: catalog.LookupUnit,
			NotFound: "Unidad Organizacional", Sheet: "Unidades",
		},
		{
			Field: "documentary_series", Header: "Serie Documental *", Width: 25,
			Required: true, RequiredMsg: "Serie Documental es requerida",
			Kind: KindCatalog, Lookup: catalog.LookupSeries,
			NotFound: "Serie Documental", Sheet: "Series",
		},
		{
			Field: "documentary_subseries", Header: "Subserie Documental", Width: 30,
			Kind: KindHierarchy, Lookup: catalog.LookupSubseries,
			NotFound: "Subserie Documental", ParentField: "documentary_series",
			MismatchFmt: "Subserie '%s' no pertenece a la serie seleccionada",
			Sheet:       "Subseries",
		},
		{
			Field: "vigencia", Header: "Vigencia * (Año)", Width: 15,
			Required: true, RequiredMsg: "Vigencia es requerida", Kind: KindYear,
		},
		{
			Field: "subject", Header: "Asunto *", Width: 50,
			Required: true, RequiredMsg: "Asunto es requerido", Kind: KindText,
		},
		{
			Field: "user_email", Header: "Correo del Usuario", Width: 30,
			Kind: KindCatalog, Lookup: catalog.LookupUserEmail,
			NotFound: "Usuario con correo", Sheet: "Usuarios",
		},
		{Field: "notes", Header: "Notas", Width: 40, Kind: KindText},
	},
}

// ActCreate adapts a validated row into an administrative act and
// persists it, assigning the filing number and slug.
func ActCreate(store *records.ActStore, actingUser int64) CreateFunc {
	return func(ctx context.Context, row *Row) error {
		subject, _ := row.Text("subject")
		act := &records.AdministrativeAct{
			OrganizationalUnitID:   row.ID("organizational_unit"),
			DocumentarySeriesID:    row.ID("documentary_series"),
			DocumentarySubseriesID: row.ID("documentary_subseries"),
			Vigencia:               row.Int("vigencia"),
			Subject:                subject,
			UserID:                 row.ID("user_email"),
			Notes:                  row.TextPtr("notes"),
		}
		return store.Create(ctx, act, actingUser)
	}
}
