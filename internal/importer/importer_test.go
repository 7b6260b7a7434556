package importer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/jpcardenas/archivador/internal/catalog"
	"github.com/jpcardenas/archivador/internal/config"
)

func testEngine() *Engine {
	e := NewEngine(&config.ImportConfig{
		MaxRows:         1000,
		VigenciaFloor:   2020,
		DefaultPassword: "password123",
	})
	e.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return e
}

func testLookups() *catalog.Lookups {
	l := catalog.NewLookups()
	l.Add(catalog.LookupUnit, "Despacho Jurídico", catalog.Entry{ID: 1, Code: "100"})
	l.Add(catalog.LookupUnit, "Talento Humano", catalog.Entry{ID: 2, Code: "200"})
	l.Add(catalog.LookupSeries, "Contratos", catalog.Entry{ID: 10, Code: "01"})
	l.Add(catalog.LookupSeries, "Resoluciones", catalog.Entry{ID: 11, Code: "02"})
	l.Add(catalog.LookupSubseries, "Contratos de Obra", catalog.Entry{ID: 20, ParentID: 10, Code: "01"})
	l.Add(catalog.LookupSubseries, "Resoluciones Internas", catalog.Entry{ID: 21, ParentID: 11, Code: "01"})
	l.Add(catalog.LookupClass, "Actas de Inicio", catalog.Entry{ID: 30, ParentID: 20})
	l.Add(catalog.LookupStorageMedium, "Papel", catalog.Entry{ID: 40})
	l.Add(catalog.LookupUserEmail, "ana@example.com", catalog.Entry{ID: 50})
	l.Add(catalog.LookupRole, "Archivista", catalog.Entry{ID: 60})
	return l
}

// buildSheet writes rows (header included) into an in-memory xlsx.
func buildSheet(t *testing.T, rows [][]any) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write sheet: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

// collect is a CreateFunc that records every committed row and can be
// told to fail specific row numbers.
type collect struct {
	rows []*Row
	fail map[int]error
}

func (c *collect) create(_ context.Context, row *Row) error {
	if err := c.fail[row.Number]; err != nil {
		return err
	}
	c.rows = append(c.rows, row)
	return nil
}

func inventoryRow(unit, series, subseries, title string) []any {
	return []any{unit, series, subseries, "", "", title}
}

func TestRunCommitsValidRows(t *testing.T) {
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Clase", "Tipo", "Título"},
		inventoryRow("Despacho Jurídico", "Contratos", "Contratos de Obra", "Expediente 001"),
		inventoryRow("Talento Humano", "Resoluciones", "", "Expediente 002"),
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), inventoryProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 2 || res.Errors != 0 {
		t.Fatalf("got success=%d errors=%d, want 2/0", res.Success, res.Errors)
	}
	if len(c.rows) != 2 {
		t.Fatalf("committed %d rows, want 2", len(c.rows))
	}
	if id := c.rows[0].ID("organizational_unit"); id == nil || *id != 1 {
		t.Errorf("row 2 unit id = %v, want 1", id)
	}
	if id := c.rows[1].ID("documentary_subseries"); id != nil {
		t.Errorf("row 3 subseries id = %v, want nil", id)
	}
}

func TestRunMissingRequiredField(t *testing.T) {
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Clase", "Tipo", "Título"},
		inventoryRow("Despacho Jurídico", "Contratos", "", "Expediente 001"),
		inventoryRow("Talento Humano", "Resoluciones", "", "Expediente 002"),
		inventoryRow("", "Contratos", "", "Expediente 003"),
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), inventoryProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 2 || res.Errors != 1 {
		t.Fatalf("got success=%d errors=%d, want 2/1", res.Success, res.Errors)
	}
	if len(res.Details) != 1 {
		t.Fatalf("details has %d keys, want 1: %v", len(res.Details), res.Details)
	}
	msgs := res.Details[4]
	if len(msgs) != 1 || msgs[0] != "Unidad Organizacional es requerida" {
		t.Errorf("row 4 messages = %v", msgs)
	}
}

func TestRunRowIsolation(t *testing.T) {
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Clase", "Tipo", "Título"},
		inventoryRow("Despacho Jurídico", "Contratos", "", "Uno"),
		inventoryRow("No Existe", "Contratos", "", "Dos"),
		inventoryRow("Talento Humano", "Resoluciones", "", "Tres"),
		inventoryRow("Despacho Jurídico", "Contratos", "", "Cuatro"),
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), inventoryProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 3 || res.Errors != 1 {
		t.Fatalf("got success=%d errors=%d, want 3/1", res.Success, res.Errors)
	}
	msgs := res.Details[3]
	if len(msgs) != 1 || msgs[0] != "Unidad Organizacional 'No Existe' no existe" {
		t.Errorf("row 3 messages = %v", msgs)
	}
}

func TestRunBlankRowsSkipped(t *testing.T) {
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Clase", "Tipo", "Título"},
		inventoryRow("Despacho Jurídico", "Contratos", "", "Uno"),
		{"", "  ", ""},
		inventoryRow("", "Contratos", "", "Dos"),
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), inventoryProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 1 || res.Errors != 1 {
		t.Fatalf("got success=%d errors=%d, want 1/1", res.Success, res.Errors)
	}
	// The blank row keeps its file position: the failing row is still
	// reported as row 4, not compacted to 3.
	if _, ok := res.Details[4]; !ok {
		t.Errorf("details = %v, want key 4", res.Details)
	}
}

func TestRunCrossHierarchyMismatch(t *testing.T) {
	// Subseries exists but belongs to Resoluciones, not Contratos.
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Clase", "Tipo", "Título"},
		inventoryRow("Despacho Jurídico", "Contratos", "Resoluciones Internas", "Uno"),
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), inventoryProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Errors != 1 {
		t.Fatalf("got errors=%d, want 1", res.Errors)
	}
	msgs := res.Details[2]
	want := "Subserie 'Resoluciones Internas' no pertenece a la serie seleccionada"
	if len(msgs) != 1 || msgs[0] != want {
		t.Errorf("messages = %v, want [%s]", msgs, want)
	}
}

func TestRunHierarchyCheckSkippedWithoutParent(t *testing.T) {
	// When the series itself failed, the subseries is judged only on
	// existence; a mismatch error would be noise on top of the series
	// error.
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Clase", "Tipo", "Título"},
		inventoryRow("Despacho Jurídico", "No Existe", "Resoluciones Internas", "Uno"),
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), inventoryProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	msgs := res.Details[2]
	if len(msgs) != 1 || msgs[0] != "Serie Documental 'No Existe' no existe" {
		t.Errorf("messages = %v", msgs)
	}
}

func TestRunDateOrder(t *testing.T) {
	row := inventoryRow("Despacho Jurídico", "Contratos", "", "Uno")
	row = append(row, "", "2025-06-01", "2025-01-01")
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Clase", "Tipo", "Título", "Desc", "Inicio", "Fin"},
		row,
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), inventoryProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	msgs := res.Details[2]
	want := "La fecha inicial no puede ser mayor que la fecha final"
	if len(msgs) != 1 || msgs[0] != want {
		t.Errorf("messages = %v, want [%s]", msgs, want)
	}
}

func TestRunUnparseableDateIsAbsent(t *testing.T) {
	row := inventoryRow("Despacho Jurídico", "Contratos", "", "Uno")
	row = append(row, "", "no es fecha", "15/01/2025")
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Clase", "Tipo", "Título", "Desc", "Inicio", "Fin"},
		row,
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), inventoryProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 1 || res.Errors != 0 {
		t.Fatalf("got success=%d errors=%d details=%v, want 1/0", res.Success, res.Errors, res.Details)
	}
	if _, has := c.rows[0].Date("start_date"); has {
		t.Error("unparseable start date should be absent")
	}
	end, has := c.rows[0].Date("end_date")
	if !has || !end.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end date = %v (present=%v), want 2025-01-15", end, has)
	}
}

func TestRunFolios(t *testing.T) {
	bad := inventoryRow("Despacho Jurídico", "Contratos", "", "Uno")
	bad = append(bad, "", "", "", "", "", "", "-3")
	good := inventoryRow("Despacho Jurídico", "Contratos", "", "Dos")
	good = append(good, "", "", "", "", "", "", "12")
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Clase", "Tipo", "Título", "Desc", "Inicio", "Fin", "Caja", "Carpeta", "Tomo", "Folios"},
		bad,
		good,
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), inventoryProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 1 || res.Errors != 1 {
		t.Fatalf("got success=%d errors=%d, want 1/1", res.Success, res.Errors)
	}
	msgs := res.Details[2]
	if len(msgs) != 1 || msgs[0] != "Folios debe ser un número positivo" {
		t.Errorf("messages = %v", msgs)
	}
	if got := c.rows[0].Int("folios"); got != 12 {
		t.Errorf("folios = %d, want 12", got)
	}
}

func TestParseCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"12", 12, true},
		{"0", 0, true},
		{"3.0", 3, true},
		{"3.7", 3, true},
		{"-3", 0, false},
		{"-3.5", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		got, ok := parseCount(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("parseCount(%q) = %d, %v, want %d, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func actRow(unit, series, vigencia, subject string) []any {
	return []any{unit, series, "", vigencia, subject}
}

func TestRunVigenciaRange(t *testing.T) {
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Vigencia", "Asunto"},
		actRow("Despacho Jurídico", "Contratos", "2026", "Apertura"),
		actRow("Despacho Jurídico", "Contratos", "2019", "Demasiado vieja"),
		actRow("Despacho Jurídico", "Contratos", "2027", "Futura"),
		actRow("Despacho Jurídico", "Contratos", "no", "No numérica"),
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), actsProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 1 || res.Errors != 3 {
		t.Fatalf("got success=%d errors=%d, want 1/3", res.Success, res.Errors)
	}
	want := "Vigencia '2019' no es valida (debe ser entre 2020 y 2026)"
	if msgs := res.Details[3]; len(msgs) != 1 || msgs[0] != want {
		t.Errorf("row 3 messages = %v, want [%s]", msgs, want)
	}
	if got := c.rows[0].Int("vigencia"); got != 2026 {
		t.Errorf("vigencia = %d, want 2026", got)
	}
}

func TestRunActUserEmailLookup(t *testing.T) {
	known := actRow("Despacho Jurídico", "Contratos", "2026", "Uno")
	known = append(known, "ana@example.com")
	unknown := actRow("Despacho Jurídico", "Contratos", "2026", "Dos")
	unknown = append(unknown, "nadie@example.com")
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Vigencia", "Asunto", "Correo"},
		known,
		unknown,
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), actsProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 1 || res.Errors != 1 {
		t.Fatalf("got success=%d errors=%d, want 1/1", res.Success, res.Errors)
	}
	msgs := res.Details[3]
	if len(msgs) != 1 || msgs[0] != "Usuario con correo 'nadie@example.com' no existe" {
		t.Errorf("messages = %v", msgs)
	}
	if id := c.rows[0].ID("user_email"); id == nil || *id != 50 {
		t.Errorf("user id = %v, want 50", id)
	}
}

func userRow(name, email, password string) []any {
	return []any{name, "", email, "", "", "", password}
}

func TestRunUserEmailUniqueness(t *testing.T) {
	sheet := buildSheet(t, [][]any{
		{"Nombre", "Apellido", "Correo", "Teléfono", "Documento", "Unidad", "Contraseña", "Rol"},
		userRow("Ana", "ana@example.com", ""),
		userRow("Luis", "luis@example.com", "secreto123"),
		userRow("Otra Ana", "luis@example.com", "secreto123"),
		userRow("Mal", "no-es-correo", "secreto123"),
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), usersProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 1 || res.Errors != 3 {
		t.Fatalf("got success=%d errors=%d details=%v, want 1/3", res.Success, res.Errors, res.Details)
	}
	if msgs := res.Details[2]; len(msgs) != 1 || msgs[0] != "El correo 'ana@example.com' ya existe en el sistema" {
		t.Errorf("row 2 messages = %v", msgs)
	}
	if msgs := res.Details[4]; len(msgs) != 1 || msgs[0] != "El correo 'luis@example.com' ya existe en el sistema" {
		t.Errorf("row 4 messages = %v", msgs)
	}
	if msgs := res.Details[5]; len(msgs) != 1 || msgs[0] != "'no-es-correo' no es un correo electrónico válido" {
		t.Errorf("row 5 messages = %v", msgs)
	}
}

func TestRunEmailReservedEvenWhenRowFails(t *testing.T) {
	// The first row's email passes validation but the row fails on the
	// short password. The address is still reserved for the batch.
	first := userRow("Ana", "nueva@example.com", "corta")
	second := userRow("Luis", "nueva@example.com", "secreto123")
	sheet := buildSheet(t, [][]any{
		{"Nombre", "Apellido", "Correo", "Teléfono", "Documento", "Unidad", "Contraseña", "Rol"},
		first,
		second,
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), usersProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 0 || res.Errors != 2 {
		t.Fatalf("got success=%d errors=%d, want 0/2", res.Success, res.Errors)
	}
	if msgs := res.Details[2]; len(msgs) != 1 || msgs[0] != "La contraseña debe tener al menos 8 caracteres" {
		t.Errorf("row 2 messages = %v", msgs)
	}
	if msgs := res.Details[3]; len(msgs) != 1 || msgs[0] != "El correo 'nueva@example.com' ya existe en el sistema" {
		t.Errorf("row 3 messages = %v", msgs)
	}
}

func TestRunDefaultPassword(t *testing.T) {
	sheet := buildSheet(t, [][]any{
		{"Nombre", "Apellido", "Correo", "Teléfono", "Documento", "Unidad", "Contraseña", "Rol"},
		userRow("Ana", "nueva@example.com", ""),
	})

	c := &collect{}
	res, err := testEngine().Run(context.Background(), usersProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 1 {
		t.Fatalf("got success=%d details=%v, want 1", res.Success, res.Details)
	}
	hash, _ := c.rows[0].Text("password")
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("password123")); err != nil {
		t.Errorf("hash does not match the default password: %v", err)
	}
}

func TestRunPersistenceErrorCaptured(t *testing.T) {
	sheet := buildSheet(t, [][]any{
		{"Unidad", "Serie", "Subserie", "Clase", "Tipo", "Título"},
		inventoryRow("Despacho Jurídico", "Contratos", "", "Uno"),
		inventoryRow("Talento Humano", "Resoluciones", "", "Dos"),
	})

	c := &collect{fail: map[int]error{2: errors.New("conexión perdida")}}
	res, err := testEngine().Run(context.Background(), inventoryProfile, testLookups(), sheet, c.create)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Success != 1 || res.Errors != 1 {
		t.Fatalf("got success=%d errors=%d, want 1/1", res.Success, res.Errors)
	}
	msgs := res.Details[2]
	if len(msgs) != 1 || msgs[0] != "Error al guardar: conexión perdida" {
		t.Errorf("messages = %v", msgs)
	}
}

func TestRunTooManyRows(t *testing.T) {
	e := testEngine()
	e.maxRows = 2
	rows := [][]any{{"Unidad", "Serie", "Subserie", "Clase", "Tipo", "Título"}}
	for i := 0; i < 3; i++ {
		rows = append(rows, inventoryRow("Despacho Jurídico", "Contratos", "", "X"))
	}
	_, err := e.Run(context.Background(), inventoryProfile, testLookups(), buildSheet(t, rows), (&collect{}).create)
	if err == nil {
		t.Fatal("expected an error for an oversized batch")
	}
}

func TestRunUnreadableFile(t *testing.T) {
	_, err := testEngine().Run(context.Background(), inventoryProfile, testLookups(),
		bytes.NewReader([]byte("esto no es un xlsx")), (&collect{}).create)
	if err == nil {
		t.Fatal("expected an error for a corrupt file")
	}
}

func TestParseDateCascade(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-03-09", "2025-03-09", true},
		{"09/03/2025", "2025-03-09", true},
		{"09-03-2025", "2025-03-09", true},
		{"03/09/2025", "2025-09-03", true}, // day-first wins for ambiguous values
		{"2025/03/09", "2025-03-09", true},
		{"45000", "2023-03-15", true}, // Excel serial
		{"mañana", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := parseDate(c.in)
		if ok != c.ok {
			t.Errorf("parseDate(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != c.want {
			t.Errorf("parseDate(%q) = %s, want %s", c.in, got.Format("2006-01-02"), c.want)
		}
	}
}

func TestRegistryProfiles(t *testing.T) {
	keys := []string{"administrative-acts", "inventory-records", "users"}
	all := All()
	if len(all) != len(keys) {
		t.Fatalf("registered %d profiles, want %d", len(all), len(keys))
	}
	for i, p := range all {
		if p.Key != keys[i] {
			t.Errorf("profile %d key = %s, want %s", i, p.Key, keys[i])
		}
	}
	if _, ok := Get("inventory-records"); !ok {
		t.Error("inventory-records profile not found")
	}
	if _, ok := Get("no-such"); ok {
		t.Error("unknown key should not resolve")
	}
}
