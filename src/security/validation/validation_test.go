package validation

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClientContentType(t *testing.T) {
	for _, ct := range []string{"", "text/csv", "text/plain; charset=utf-8", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"} {
		assert.NoError(t, ValidateClientContentType(ct), ct)
	}
	for _, ct := range []string{"application/pdf", "image/png"} {
		assert.Error(t, ValidateClientContentType(ct), ct)
	}
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	csv := bytes.NewReader([]byte("Date(UTC),Pair,Side\n2024-01-01,BTCUSDT,BUY\n"))
	ct, err := ValidateFileContentByMagicBytes(csv)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ct)
	rest, _ := io.ReadAll(csv)
	assert.Contains(t, string(rest), "Date(UTC)", "reader is rewound after sniffing")

	zip := bytes.NewReader([]byte("PK\x03\x04\x14\x00\x00\x00\x08\x00"))
	ct, err = ValidateFileContentByMagicBytes(zip)
	require.NoError(t, err)
	assert.Equal(t, "application/zip", ct)

	pdf := bytes.NewReader([]byte("%PDF-1.7\n%binary"))
	ct, err = ValidateFileContentByMagicBytes(pdf)
	assert.Error(t, err)
	assert.Equal(t, "application/pdf", ct)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "trades.csv", SanitizeFileName("C:\\Users\\me\\trades.csv"))
	assert.Equal(t, "passwd", SanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "report.xlsx", SanitizeFileName("rep\x00ort\n.xlsx"))
	assert.Equal(t, "upload", SanitizeFileName("  "))
	assert.Len(t, []rune(SanitizeFileName(string(bytes.Repeat([]byte("a"), 300)))), maxFileNameLength)
}
