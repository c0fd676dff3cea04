package parsers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/username/tradelens/src/parsers/csvfile"
	"github.com/username/tradelens/src/parsers/xlsx"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

func GetParser(format string) (Parser, error) {
	switch format {
	case FormatCSV:
		return csvfile.NewParser(), nil
	case FormatXLSX:
		return xlsx.NewParser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// DetectFormat picks the parser format from the file name, falling back to
// the content type sniffed from the file itself.
func DetectFormat(filename, detectedContentType string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	switch {
	case detectedContentType == "application/zip":
		return FormatXLSX, nil
	case strings.HasPrefix(detectedContentType, "text/"):
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}
