package importer

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/jpcardenas/archivador/internal/catalog"
	"github.com/jpcardenas/archivador/internal/config"
)

// Engine runs import batches. It is stateless across batches and safe
// for concurrent use.
type Engine struct {
	maxRows         int
	vigenciaFloor   int
	defaultPassword string
	now             func() time.Time
}

func NewEngine(cfg *config.ImportConfig) *Engine {
	return &Engine{
		maxRows:         cfg.MaxRows,
		vigenciaFloor:   cfg.VigenciaFloor,
		defaultPassword: cfg.DefaultPassword,
		now:             time.Now,
	}
}

// Run parses the spreadsheet, validates every data row against the
// profile's columns, and commits accepted rows through create. Row
// failures never abort the batch; only an unreadable file or an
// oversized batch is fatal.
func (e *Engine) Run(ctx context.Context, p *Profile, lookups *catalog.Lookups, r io.Reader, create CreateFunc) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) > 0 {
		rows = rows[1:] // header
	}
	if e.maxRows > 0 && len(rows) > e.maxRows {
		return nil, fmt.Errorf("batch of %d rows exceeds the limit of %d", len(rows), e.maxRows)
	}

	// Emails accepted earlier in this batch. Reserved as soon as the
	// email column validates, even if the row later fails elsewhere.
	seen := make(map[string]bool)

	res := &Result{Details: make(map[int][]string)}
	for i, raw := range rows {
		number := i + 2
		if blankRow(raw) {
			continue
		}

		row, rowErrors := e.validateRow(raw, number, p, lookups, seen)
		if len(rowErrors) > 0 {
			res.Details[number] = rowErrors
			res.Errors++
			continue
		}
		if err := create(ctx, row); err != nil {
			res.Details[number] = []string{"Error al guardar: " + err.Error()}
			res.Errors++
			continue
		}
		res.Success++
	}
	return res, nil
}

// validateRow applies every column spec to the raw cells. It returns
// the parsed row and the accumulated error messages; the row is usable
// only when the message list is empty.
func (e *Engine) validateRow(raw []string, number int, p *Profile, lookups *catalog.Lookups, seen map[string]bool) (*Row, []string) {
	row := &Row{Number: number, vals: make(map[string]Value)}
	var msgs []string

	for idx, spec := range p.Columns {
		value := strings.TrimSpace(cell(raw, idx))

		if value == "" {
			if spec.Required {
				msgs = append(msgs, spec.RequiredMsg)
			} else if spec.Kind == KindPassword {
				// Blank passwords fall back to the default, they are
				// not absent.
				row.vals[spec.Field] = Value{Present: true, Text: e.hashPassword(e.defaultPassword)}
			}
			continue
		}

		switch spec.Kind {
		case KindText:
			row.vals[spec.Field] = Value{Present: true, Text: value}

		case KindCatalog, KindHierarchy:
			entry, ok := lookups.Resolve(spec.Lookup, value)
			if !ok {
				msgs = append(msgs, fmt.Sprintf("%s '%s' no existe", spec.NotFound, value))
				continue
			}
			if spec.Kind == KindHierarchy {
				if parent := row.ID(spec.ParentField); parent != nil && entry.ParentID != *parent {
					msgs = append(msgs, fmt.Sprintf(spec.MismatchFmt, value))
					continue
				}
			}
			row.vals[spec.Field] = Value{Present: true, Text: value, Entry: entry}

		case KindDate:
			t, ok := parseDate(value)
			if !ok {
				continue // unparseable dates are absent, not errors
			}
			if spec.NotBefore != "" {
				if start, has := row.Date(spec.NotBefore); has && start.After(t) {
					msgs = append(msgs, spec.RangeMsg)
					continue
				}
			}
			row.vals[spec.Field] = Value{Present: true, Text: value, Date: t}

		case KindInt:
			n, ok := parseCount(value)
			if !ok {
				msgs = append(msgs, spec.InvalidMsg)
				continue
			}
			row.vals[spec.Field] = Value{Present: true, Text: value, Int: n}

		case KindYear:
			ceiling := e.now().Year()
			n, err := strconv.Atoi(value)
			if err != nil || n < e.vigenciaFloor || n > ceiling {
				msgs = append(msgs, fmt.Sprintf("Vigencia '%s' no es valida (debe ser entre %d y %d)", value, e.vigenciaFloor, ceiling))
				continue
			}
			row.vals[spec.Field] = Value{Present: true, Text: value, Int: n}

		case KindEmail:
			if !validEmail(value) {
				msgs = append(msgs, fmt.Sprintf("'%s' no es un correo electrónico válido", value))
				continue
			}
			if lookups.Contains(spec.Lookup, value) || seen[value] {
				msgs = append(msgs, fmt.Sprintf("El correo '%s' ya existe en el sistema", value))
				continue
			}
			seen[value] = true
			row.vals[spec.Field] = Value{Present: true, Text: value}

		case KindPassword:
			if len(value) < 8 {
				msgs = append(msgs, spec.InvalidMsg)
				continue
			}
			row.vals[spec.Field] = Value{Present: true, Text: e.hashPassword(value)}
		}
	}
	return row, msgs
}

func (e *Engine) hashPassword(plain string) string {
	// bcrypt rejects input past 72 bytes; truncate instead of failing
	// the row, matching what most password hashers do silently.
	b := []byte(plain)
	if len(b) > 72 {
		b = b[:72]
	}
	hash, err := bcrypt.GenerateFromPassword(b, bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(hash)
}

// parseCount reads a non-negative count. Spreadsheets hand back whole
// numbers as decimals ("3.0") often enough that a fractional part is
// truncated rather than rejected.
func parseCount(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int(f), true
}

// cell reads a positional cell; excelize drops trailing empty cells, so
// out-of-range reads are blank.
func cell(raw []string, idx int) string {
	if idx >= len(raw) {
		return ""
	}
	return raw[idx]
}

// blankRow reports whether every cell is empty or whitespace. Blank
// rows are skipped without consuming a success or error slot.
func blankRow(raw []string) bool {
	for _, c := range raw {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
