package xlsx

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/username/tradelens/src/logger"
	"github.com/username/tradelens/src/models"
	"github.com/username/tradelens/src/parsers/tabular"
	"github.com/xuri/excelize/v2"
)

// Date cells are rendered in layouts ParseTradeTime and the date/time column
// join accept. Serials below one day carry only a time of day.
const (
	cellTimeLayout  = "2006-01-02T15:04:05"
	cellClockLayout = "15:04:05"
)

type XLSXParser struct{}

func NewParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse reads the first sheet of the workbook that has a header row. Cells
// are read unformatted so numbers keep full precision; date-formatted cells
// are converted from their serial value.
func (p *XLSXParser) Parse(file io.Reader) ([]models.RawRow, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	dates := newDateCells(f)
	for _, sheet := range f.GetSheetList() {
		records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			logger.L.Warn("Skipping unreadable sheet", "sheet", sheet, "error", err)
			continue
		}
		dates.convert(sheet, records)
		rows, err := tabular.ToRawRows(records)
		if err != nil {
			continue
		}
		logger.L.Debug("Read trade rows from sheet", "sheet", sheet, "rowCount", len(rows))
		return rows, nil
	}
	return nil, fmt.Errorf("workbook has no sheet with a header row: %w", tabular.ErrNoHeader)
}

// dateCells rewrites serial date values in place, caching the date check per
// style id.
type dateCells struct {
	f        *excelize.File
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File) *dateCells {
	d := &dateCells{f: f, styles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

func (d *dateCells) convert(sheet string, records [][]string) {
	for r, rec := range records {
		for c, v := range rec {
			serial, err := strconv.ParseFloat(v, 64)
			if err != nil || serial <= 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil || !d.isDate(sheet, cell) {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, d.date1904)
			if err != nil {
				continue
			}
			layout := cellTimeLayout
			if serial < 1 {
				layout = cellClockLayout
			}
			rec[c] = t.Round(time.Second).Format(layout)
		}
	}
}

func (d *dateCells) isDate(sheet, cell string) bool {
	id, err := d.f.GetCellStyle(sheet, cell)
	if err != nil || id == 0 {
		return false
	}
	if known, ok := d.styles[id]; ok {
		return known
	}
	style, err := d.f.GetStyle(id)
	isDate := err == nil && isDateFormat(style)
	d.styles[id] = isDate
	return isDate
}

// literalFmt matches the quoted text and bracketed sections of a format code,
// such as "USD" or [Red] or [$-409].
var literalFmt = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

func isDateFormat(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		code := strings.ToLower(literalFmt.ReplaceAllString(*style.CustomNumFmt, ""))
		return strings.ContainsAny(code, "ydhs") || (strings.Contains(code, "m") && !strings.ContainsAny(code, "0#"))
	}
	switch id := style.NumFmt; {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	return false
}
