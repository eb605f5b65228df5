// Package gfm renders a result set as a GFM-style text table.
//
// The layout needs every cell rendered before column widths are known, so
// the writer makes two passes: one to render all rows to strings, one to
// compute per-column maximum widths, and buffers the whole table before a
// single write to the destination.
package gfm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zerodha/tableport/models"
)

// convFn renders one non-NULL cell of a row to its text form. NULLs are
// handled before dispatch and yield an absent (empty) cell.
type convFn func(c int, row models.Row) string

// Writer renders result sets as text tables.
type Writer struct {
	lo *slog.Logger
}

// New returns a new text-table writer.
func New(lo *slog.Logger) *Writer {
	return &Writer{lo: lo}
}

// Write renders the result set and writes it to dest in one shot.
// A zero-row result set still produces the header and separator rows.
func (w *Writer) Write(rs *models.ResultSet, dest string) error {
	var (
		head  = make([]string, len(rs.Fields))
		convs = make([]convFn, len(rs.Fields))
	)
	for i, f := range rs.Fields {
		head[i] = f.Name

		fn, err := conv(f)
		if err != nil {
			// Per-column degradation: report the column and render it
			// empty instead of failing the whole export.
			w.lo.Warn("cannot render column as text", "column", f.Name, "type", f.DBType, "error", err)
			fn = nil
		}

		convs[i] = fn
	}

	body := make([][]string, 0, len(rs.Rows)+2)
	body = append(body, head)
	for _, row := range rs.Rows {
		cells := make([]string, len(convs))
		for c, fn := range convs {
			if fn == nil || row[c] == nil {
				continue
			}

			cells[c] = fn(c, row)
		}

		body = append(body, cells)
	}

	// Column width = the longest rendered cell, header included.
	lens := make([]int, len(head))
	for _, cells := range body {
		for c, cell := range cells {
			if len(cell) > lens[c] {
				lens[c] = len(cell)
			}
		}
	}

	sep := make([]string, len(lens))
	for c, l := range lens {
		sep[c] = strings.Repeat("-", l)
	}
	body = append(body[:1], append([][]string{sep}, body[1:]...)...)

	var buf bytes.Buffer
	for _, cells := range body {
		for c, cell := range cells {
			fmt.Fprintf(&buf, "| %-*s ", lens[c], cell)
		}
		buf.WriteString("|\n")
	}

	return os.WriteFile(dest, buf.Bytes(), 0644)
}

// conv selects the text renderer for a column. Unknown and unsigned kinds
// have none and report distinct conditions.
func conv(f models.Field) (convFn, error) {
	switch f.Kind {
	case models.Int8:
		return func(c int, row models.Row) string {
			return strconv.FormatInt(int64(row[c].(int8)), 10)
		}, nil
	case models.Int16:
		return func(c int, row models.Row) string {
			return strconv.FormatInt(int64(row[c].(int16)), 10)
		}, nil
	case models.Int32:
		return func(c int, row models.Row) string {
			return strconv.FormatInt(int64(row[c].(int32)), 10)
		}, nil
	case models.Int64:
		return func(c int, row models.Row) string {
			return strconv.FormatInt(row[c].(int64), 10)
		}, nil
	case models.Float32:
		return func(c int, row models.Row) string {
			return strconv.FormatFloat(float64(row[c].(float32)), 'f', -1, 32)
		}, nil
	case models.Float64:
		return func(c int, row models.Row) string {
			return strconv.FormatFloat(row[c].(float64), 'f', -1, 64)
		}, nil
	case models.String:
		return func(c int, row models.Row) string {
			return row[c].(string)
		}, nil
	case models.Bool:
		return func(c int, row models.Row) string {
			return strconv.FormatBool(row[c].(bool))
		}, nil
	case models.Decimal:
		return func(c int, row models.Row) string {
			return row[c].(decimal.Decimal).String()
		}, nil
	case models.Date:
		return func(c int, row models.Row) string {
			return row[c].(time.Time).Format("2006-01-02")
		}, nil
	case models.Time:
		return func(c int, row models.Row) string {
			return clockString(row[c].(time.Duration))
		}, nil
	case models.DateTime:
		return func(c int, row models.Row) string {
			return row[c].(time.Time).Format("2006-01-02 15:04:05")
		}, nil
	case models.DateTimeTZ:
		return func(c int, row models.Row) string {
			return row[c].(time.Time).Format("2006-01-02 15:04:05 -07:00")
		}, nil
	case models.JSON:
		return func(c int, row models.Row) string {
			return string(row[c].(json.RawMessage))
		}, nil
	case models.Unknown:
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownType, f.DBType)
	}

	return nil, fmt.Errorf("%w: %s", models.ErrUnimplementedKind, f.Kind)
}

func clockString(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}

	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second

	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}
