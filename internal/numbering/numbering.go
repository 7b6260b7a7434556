// Package numbering generates the sequential identifiers assigned to
// inventory records and administrative acts at creation time.
//
// Both schemes build a human-readable prefix from the record's
// classification codes and append a zero-padded sequence number. The next
// sequence is derived by parsing the numeric tail of every existing code
// under the same prefix, including soft-deleted rows, so a deleted
// record never frees its number. Because the generators are pure
// functions of a SequenceSource, the preview shown on a form and the
// code assigned on save go through the exact same path.
package numbering

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel code components used when a classification reference is
// missing. Record creation is never blocked on a missing display code;
// the identifier degrades instead (callers should log these).
const (
	SentinelUnit   = "XXX"
	SentinelSeries = "00"
)

// Code is an optional classification code. The zero value is "absent".
type Code struct {
	Value string
	Valid bool
}

// NewCode returns a Code for s, absent if s is blank after trimming.
func NewCode(s string) Code {
	s = strings.TrimSpace(s)
	if s == "" {
		return Code{}
	}
	return Code{Value: s, Valid: true}
}

// OrSentinel renders the code, falling back to the given sentinel.
func (c Code) OrSentinel(sentinel string) string {
	if !c.Valid {
		return sentinel
	}
	return c.Value
}

// SequenceSource supplies the existing identifiers under a prefix.
// Implementations must include soft-deleted rows.
type SequenceSource interface {
	// CodesWithPrefix returns every stored identifier that begins with
	// prefix (the prefix includes the trailing delimiter).
	CodesWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// ActPrefix builds the filing-number prefix for an administrative act:
// {vigencia}.{unit}.{series} plus .{subseries} when present. Missing
// unit/series codes render as sentinels; a missing subseries is simply
// omitted from the prefix.
func ActPrefix(vigencia int, unit, series, subseries Code) string {
	prefix := fmt.Sprintf("%d.%s.%s", vigencia, unit.OrSentinel(SentinelUnit), series.OrSentinel(SentinelSeries))
	if subseries.Valid {
		prefix += "." + subseries.Value
	}
	return prefix
}

// NextFilingNumber computes the next filing number for an administrative
// act, e.g. 2026.100.01.01.001. The sequence restarts at 1 for each new
// vigencia/unit/series[/subseries] scope.
func NextFilingNumber(ctx context.Context, src SequenceSource, vigencia int, unit, series, subseries Code) (string, error) {
	prefix := ActPrefix(vigencia, unit, series, subseries) + "."
	seq, err := nextSequence(ctx, src, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// RecordPrefix builds the reference-code prefix for an inventory record:
// {year}-{unit}.
func RecordPrefix(year int, unit Code) string {
	return fmt.Sprintf("%d-%s", year, unit.OrSentinel(SentinelUnit))
}

// NextReferenceCode computes the next reference code for an inventory
// record, e.g. 2026-100-000001. The sequence is scoped by year and unit
// and is derived from existing codes, not a row count, so soft-deleted
// records keep their slot.
func NextReferenceCode(ctx context.Context, src SequenceSource, year int, unit Code) (string, error) {
	prefix := RecordPrefix(year, unit) + "-"
	seq, err := nextSequence(ctx, src, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", prefix, seq), nil
}

// nextSequence returns max(existing trailing segments under prefix) + 1.
// The trailing segment is parsed as an integer; lexical comparison would
// break once a sequence outgrows its zero padding.
func nextSequence(ctx context.Context, src SequenceSource, prefix string) (int, error) {
	codes, err := src.CodesWithPrefix(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("load existing codes for %q: %w", prefix, err)
	}
	return MaxTrailingSequence(codes, prefix) + 1, nil
}

// MaxTrailingSequence extracts the greatest numeric tail among codes that
// begin with prefix. Codes whose tail is not a plain integer are ignored
// (they belong to a longer prefix, e.g. a subseries scope under the same
// series). Returns 0 when nothing matches.
func MaxTrailingSequence(codes []string, prefix string) int {
	max := 0
	for _, code := range codes {
		tail, ok := strings.CutPrefix(code, prefix)
		if !ok || tail == "" {
			continue
		}
		n, err := strconv.Atoi(tail)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}
