package csvfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/username/tradelens/src/models"
	"github.com/username/tradelens/src/parsers/tabular"
)

type CSVParser struct{}

func NewParser() *CSVParser {
	return &CSVParser{}
}

// Parse reads a delimited trade export. Semicolon-separated files are
// recognised from the header line.
func (p *CSVParser) Parse(file io.Reader) ([]models.RawRow, error) {
	br := bufio.NewReader(file)
	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.Comma = sniffDelimiter(br)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}

	rows, err := tabular.ToRawRows(records)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	return rows, nil
}

func sniffDelimiter(br *bufio.Reader) rune {
	peek, _ := br.Peek(4096)
	if i := bytes.IndexByte(peek, '\n'); i >= 0 {
		peek = peek[:i]
	}
	if bytes.Count(peek, []byte(";")) > bytes.Count(peek, []byte(",")) {
		return ';'
	}
	return ','
}
