package importer

import (
	"testing"

	"github.com/jpcardenas/archivador/internal/catalog"
	"github.com/jpcardenas/archivador/internal/config"
)

func TestTemplateHeadersMatchColumns(t *testing.T) {
	for _, p := range All() {
		f, err := testEngine().Template(p, testLookups())
		if err != nil {
			t.Fatalf("%s: Template: %v", p.Key, err)
		}
		rows, err := f.GetRows(p.Title)
		if err != nil {
			t.Fatalf("%s: read data sheet: %v", p.Key, err)
		}
		if len(rows) == 0 {
			t.Fatalf("%s: data sheet is empty", p.Key)
		}
		header := rows[0]
		if len(header) != len(p.Columns) {
			t.Fatalf("%s: header has %d cells, want %d", p.Key, len(header), len(p.Columns))
		}
		for i, col := range p.Columns {
			if header[i] != col.Header {
				t.Errorf("%s: column %d header = %q, want %q", p.Key, i, header[i], col.Header)
			}
		}
	}
}

func TestTemplateReferenceSheets(t *testing.T) {
	lookups := testLookups()
	f, err := testEngine().Template(inventoryProfile, lookups)
	if err != nil {
		t.Fatalf("Template: %v", err)
	}

	rows, err := f.GetRows("Unidades")
	if err != nil {
		t.Fatalf("read Unidades sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Unidades has %d rows, want 3", len(rows))
	}
	if rows[0][0] != "Valores Disponibles" {
		t.Errorf("Unidades header = %q", rows[0][0])
	}
	if rows[1][0] != "Despacho Jurídico" || rows[2][0] != "Talento Humano" {
		t.Errorf("Unidades values = %q, %q", rows[1][0], rows[2][0])
	}

	// Every declared reference sheet must exist.
	for _, col := range inventoryProfile.Columns {
		if col.Sheet == "" {
			continue
		}
		if idx, err := f.GetSheetIndex(col.Sheet); err != nil || idx < 0 {
			t.Errorf("sheet %q missing", col.Sheet)
		}
	}
}

func TestTemplateNotes(t *testing.T) {
	f, err := testEngine().Template(usersProfile, testLookups())
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	got, err := f.GetCellValue(usersProfile.Title, "A3")
	if err != nil {
		t.Fatalf("read A3: %v", err)
	}
	if got != "Notas:" {
		t.Errorf("A3 = %q, want Notas:", got)
	}
	first, _ := f.GetCellValue(usersProfile.Title, "A4")
	if first != "- Los campos marcados con * son obligatorios" {
		t.Errorf("A4 = %q", first)
	}
}

func TestTemplateNotesRenderConfiguredPassword(t *testing.T) {
	e := NewEngine(&config.ImportConfig{
		MaxRows:         1000,
		VigenciaFloor:   2020,
		DefaultPassword: "clave-inicial",
	})
	f, err := e.Template(usersProfile, testLookups())
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	got, err := f.GetCellValue(usersProfile.Title, "A5")
	if err != nil {
		t.Fatalf("read A5: %v", err)
	}
	want := `- Si no se proporciona contraseña, se asignará "clave-inicial" por defecto`
	if got != want {
		t.Errorf("A5 = %q, want %q", got, want)
	}
}

func TestTemplateActsListsCodeNameForms(t *testing.T) {
	// The acts preload lists series as "code - name" and keeps the bare
	// name as an unlisted alias; the sheet must reflect the listed form
	// only.
	acts := catalog.NewLookups()
	acts.Add(catalog.LookupUnit, "Despacho Jurídico", catalog.Entry{ID: 1, Code: "100"})
	acts.Add(catalog.LookupSeries, "01 - Contratos", catalog.Entry{ID: 10, Code: "01"})
	acts.AddAlias(catalog.LookupSeries, "Contratos", catalog.Entry{ID: 10, Code: "01"})
	f, err := testEngine().Template(actsProfile, acts)
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	rows, err := f.GetRows("Series")
	if err != nil {
		t.Fatalf("read Series sheet: %v", err)
	}
	if len(rows) < 2 || rows[1][0] != "01 - Contratos" {
		t.Errorf("Series values = %v, want first value \"01 - Contratos\"", rows)
	}
}
