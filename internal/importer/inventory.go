package importer

import (
	"context"

	"github.com/jpcardenas/archivador/internal/catalog"
	"github.com/jpcardenas/archivador/internal/records"
)

func init() {
	Register(inventoryProfile)
}

// inventoryProfile maps the FUID inventory spreadsheet. Column order is
// the file's column order; hierarchy columns check against the column
// resolved before them.
var inventoryProfile = &Profile{
	Key:   "inventory-records",
	Name:  "Registros de Inventario",
	Title: "Registros de Inventario",
	Columns: []ColumnSpec{
		{
			Field: "organizational_unit", Header: "Unidad Organizacional *", Width: 25,
			Required: true, RequiredMsg: "Unidad Organizacional es requerida",
			Kind: KindCatalog, Lookup: catalog.LookupUnit,
			NotFound: "Unidad Organizacional", Sheet: "Unidades",
		},
		{
			Field: "documentary_series", Header: "Serie Documental *", Width: 20,
			Required: true, RequiredMsg: "Serie Documental es requerida",
			Kind: KindCatalog, Lookup: catalog.LookupSeries,
			NotFound: "Serie Documental", Sheet: "Series",
		},
		{
			Field: "documentary_subseries", Header: "Subserie Documental", Width: 20,
			Kind: KindHierarchy, Lookup: catalog.LookupSubseries,
			NotFound: "Subserie Documental", ParentField: "documentary_series",
			MismatchFmt: "Subserie '%s' no pertenece a la serie seleccionada",
			Sheet:       "Subseries",
		},
		{
			Field: "documentary_class", Header: "Clase Documental", Width: 20,
			Kind: KindHierarchy, Lookup: catalog.LookupClass,
			NotFound: "Clase Documental", ParentField: "documentary_subseries",
			MismatchFmt: "Clase '%s' no pertenece a la subserie seleccionada",
			Sheet:       "Clases",
		},
		{
			Field: "document_type", Header: "Tipo de Documento", Width: 20,
			Kind: KindHierarchy, Lookup: catalog.LookupDocumentType,
			NotFound: "Tipo de Documento", ParentField: "documentary_class",
			MismatchFmt: "Tipo '%s' no pertenece a la clase seleccionada",
			Sheet:       "Tipos Doc",
		},
		{
			Field: "title", Header: "Título *", Width: 40,
			Required: true, RequiredMsg: "Título es requerido", Kind: KindText,
		},
		{Field: "description", Header: "Descripción", Width: 40, Kind: KindText},
		{Field: "start_date", Header: "Fecha Inicial (DD/MM/YYYY)", Width: 18, Kind: KindDate},
		{
			Field: "end_date", Header: "Fecha Final (DD/MM/YYYY)", Width: 18,
			Kind: KindDate, NotBefore: "start_date",
			RangeMsg: "La fecha inicial no puede ser mayor que la fecha final",
		},
		{Field: "box", Header: "Caja", Width: 10, Kind: KindText},
		{Field: "folder", Header: "Carpeta", Width: 10, Kind: KindText},
		{Field: "volume", Header: "Tomo", Width: 10, Kind: KindText},
		{
			Field: "folios", Header: "Folios", Width: 10,
			Kind: KindInt, InvalidMsg: "Folios debe ser un número positivo",
		},
		{
			Field: "storage_medium", Header: "Soporte", Width: 15,
			Kind: KindCatalog, Lookup: catalog.LookupStorageMedium,
			NotFound: "Soporte", Sheet: "Soportes",
		},
		{
			Field: "document_purpose", Header: "Objeto", Width: 15,
			Kind: KindCatalog, Lookup: catalog.LookupDocumentPurpose,
			NotFound: "Objeto", Sheet: "Objetos",
		},
		{
			Field: "process_type", Header: "Tipo de Proceso", Width: 15,
			Kind: KindCatalog, Lookup: catalog.LookupProcessType,
			NotFound: "Tipo de Proceso", Sheet: "Tipos Proceso",
		},
		{
			Field: "validity_status", Header: "Estado de Vigencia", Width: 15,
			Kind: KindCatalog, Lookup: catalog.LookupValidityStatus,
			NotFound: "Estado de Vigencia", Sheet: "Estados Vigencia",
		},
		{
			Field: "priority_level", Header: "Nivel de Prioridad", Width: 15,
			Kind: KindCatalog, Lookup: catalog.LookupPriorityLevel,
			NotFound: "Nivel de Prioridad", Sheet: "Niveles Prioridad",
		},
		{
			Field: "project", Header: "Proyecto", Width: 20,
			Kind: KindCatalog, Lookup: catalog.LookupProject,
			NotFound: "Proyecto", Sheet: "Proyectos",
		},
		{Field: "notes", Header: "Notas", Width: 30, Kind: KindText},
	},
}

// InventoryCreate adapts a validated row into an inventory record and
// persists it, assigning the reference code.
func InventoryCreate(store *records.InventoryStore, actingUser int64) CreateFunc {
	return func(ctx context.Context, row *Row) error {
		title, _ := row.Text("title")
		startDate := row.DatePtr("start_date")
		endDate := row.DatePtr("end_date")
		rec := &records.InventoryRecord{
			OrganizationalUnitID:   row.ID("organizational_unit"),
			DocumentarySeriesID:    row.ID("documentary_series"),
			DocumentarySubseriesID: row.ID("documentary_subseries"),
			DocumentaryClassID:     row.ID("documentary_class"),
			DocumentTypeID:         row.ID("document_type"),
			Title:                  title,
			Description:            row.TextPtr("description"),
			StartDate:              startDate,
			EndDate:                endDate,
			HasStartDate:           startDate != nil,
			HasEndDate:             endDate != nil,
			Box:                    row.TextPtr("box"),
			Folder:                 row.TextPtr("folder"),
			Volume:                 row.TextPtr("volume"),
			Folios:                 row.Int("folios"),
			StorageMediumID:        row.ID("storage_medium"),
			DocumentPurposeID:      row.ID("document_purpose"),
			ProcessTypeID:          row.ID("process_type"),
			ValidityStatusID:       row.ID("validity_status"),
			PriorityLevelID:        row.ID("priority_level"),
			ProjectID:              row.ID("project"),
			Notes:                  row.TextPtr("notes"),
		}
		return store.Create(ctx, rec, actingUser)
	}
}
