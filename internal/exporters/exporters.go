// Package exporters routes a requested output format, explicit or
// inferred from the destination file's extension, to the writer that
// implements it.
package exporters

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/zerodha/tableport/internal/exporters/gfm"
	"github.com/zerodha/tableport/internal/exporters/jsondoc"
	"github.com/zerodha/tableport/internal/exporters/xlsx"
	"github.com/zerodha/tableport/models"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatGFM  = "md"
)

// New returns the writer for the given format. An unrecognized format is
// a configuration error and is reported before any database work begins.
func New(format string, lo *slog.Logger) (models.Exporter, error) {
	switch format {
	case FormatJSON:
		return jsondoc.New(lo), nil
	case FormatXLSX:
		return xlsx.New(lo), nil
	case FormatGFM:
		return gfm.New(lo), nil
	}

	return nil, fmt.Errorf("unknown output format '%s'", format)
}

// FromPath infers the output format from the destination's extension.
func FromPath(dest string) (string, error) {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".json":
		return FormatJSON, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".md", ".markdown":
		return FormatGFM, nil
	}

	return "", fmt.Errorf("cannot infer output format from '%s'", dest)
}
