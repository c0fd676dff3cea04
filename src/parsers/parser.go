package parsers

import (
	"io"

	"github.com/username/tradelens/src/models"
)

// Parser turns an uploaded file into raw rows keyed by the file's own headers.
type Parser interface {
	Parse(file io.Reader) ([]models.RawRow, error)
}
