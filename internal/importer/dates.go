package importer

import (
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts is the cascade tried in order before falling back to
// Excel serial numbers. ISO first, then the day-first forms common in
// the regulatory templates, then the two remaining ambiguous forms.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"2006/01/02",
}

// parseDate interprets a cell as a date. It returns ok=false for blank
// or unparseable values; an unparseable date is absent, never a row
// error.
func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
