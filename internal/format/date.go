package format

import (
	"fmt"
	"strings"
	"time"
)

var months = [12]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date renders a trip date as "03 Februari 2026". The calendar day is taken as
// written in the input, without converting time zones. Input it cannot read is
// returned unchanged.
func Date(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return IndonesianDate(t)
		}
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return IndonesianDate(t)
		}
	}
	return raw
}

func IndonesianDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %d", t.Day(), months[t.Month()-1], t.Year())
}
