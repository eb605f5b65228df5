package exporters

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNew(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatXLSX, FormatGFM} {
		e, err := New(format, testLog)
		require.NoError(t, err, format)
		assert.NotNil(t, e)
	}

	_, err := New("csv", testLog)
	assert.Error(t, err)
}

func TestFromPath(t *testing.T) {
	tests := []struct {
		dest   string
		format string
	}{
		{"out.json", FormatJSON},
		{"out.xlsx", FormatXLSX},
		{"out.md", FormatGFM},
		{"out.markdown", FormatGFM},
		{"report.XLSX", FormatXLSX},
	}
	for _, tt := range tests {
		f, err := FromPath(tt.dest)
		require.NoError(t, err, tt.dest)
		assert.Equal(t, tt.format, f)
	}

	_, err := FromPath("out.csv")
	assert.Error(t, err)

	_, err = FromPath("noextension")
	assert.Error(t, err)
}
