// Package tabular turns header-plus-records grids into raw rows.
package tabular

import (
	"errors"
	"strings"

	"github.com/username/tradelens/src/models"
)

var ErrNoHeader = errors.New("no header row found")

// ToRawRows uses the first non-blank record as the header and maps every
// following non-blank record onto it. Blank header cells are skipped; short
// records leave the missing columns out of the row.
func ToRawRows(records [][]string) ([]models.RawRow, error) {
	headerIdx := -1
	for i, rec := range records {
		if !isBlank(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrNoHeader
	}

	header := make([]string, len(records[headerIdx]))
	for i, h := range records[headerIdx] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []models.RawRow
	for _, rec := range records[headerIdx+1:] {
		if isBlank(rec) {
			continue
		}
		row := make(models.RawRow, len(header))
		for i, name := range header {
			if name == "" || i >= len(rec) {
				continue
			}
			row[name] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
