// Package jsondoc renders a result set as a JSON array of objects, one
// object per row with keys in column order.
//
// Output framing is kept byte-compatible with earlier releases: a comma
// and newline follow every object, the last one included, before the
// closing bracket. With one or more rows the document is therefore not
// strict JSON. Fixing the framing would break existing consumers.
package jsondoc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zerodha/tableport/models"
)

var jsonNull = json.RawMessage("null")

// convFn renders one non-NULL cell of a row to its encoded JSON value.
// NULLs are handled before dispatch and yield a JSON null.
type convFn func(c int, row models.Row) (json.RawMessage, error)

// Writer renders result sets as JSON documents.
type Writer struct {
	lo *slog.Logger
}

// New returns a new JSON writer.
func New(lo *slog.Logger) *Writer {
	return &Writer{lo: lo}
}

// Write streams the result set to dest row by row. Unlike the other
// writers nothing is buffered beyond one row; the result set itself is
// already fully materialized by the fetcher.
func (w *Writer) Write(rs *models.ResultSet, dest string) error {
	convs := make([]convFn, len(rs.Fields))
	for i, f := range rs.Fields {
		fn, err := conv(f)
		if err != nil {
			w.lo.Warn("cannot render column as JSON", "column", f.Name, "type", f.DBType, "error", err)
			fn = nil
		}

		convs[i] = fn
	}

	keys := make([]json.RawMessage, len(rs.Fields))
	for i, f := range rs.Fields {
		k, err := json.Marshal(f.Name)
		if err != nil {
			return err
		}

		keys[i] = k
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	out := bufio.NewWriter(f)
	out.WriteString("[\n")

	for _, row := range rs.Rows {
		out.WriteByte('{')
		for c := range convs {
			if c > 0 {
				out.WriteByte(',')
			}
			out.Write(keys[c])
			out.WriteByte(':')

			v := jsonNull
			if convs[c] != nil && row[c] != nil {
				if v, err = convs[c](c, row); err != nil {
					return fmt.Errorf("error rendering column '%s': %w", rs.Fields[c].Name, err)
				}
			}
			out.Write(v)
		}
		out.WriteString("},\n")
	}

	out.WriteString("]\n")
	if err := out.Flush(); err != nil {
		return err
	}

	return f.Close()
}

// conv selects the JSON renderer for a column. Unknown and unsigned kinds
// have none and report distinct conditions.
func conv(f models.Field) (convFn, error) {
	switch f.Kind {
	case models.Int8, models.Int16, models.Int32, models.Int64,
		models.Float32, models.Float64, models.String, models.Bool:
		// These kinds' canonical values are encoded verbatim.
		return func(c int, row models.Row) (json.RawMessage, error) {
			return json.Marshal(row[c])
		}, nil
	case models.Decimal:
		return decimalConv, nil
	case models.Date:
		return timeConv("2006-01-02"), nil
	case models.Time:
		return clockConv, nil
	case models.DateTime:
		return timeConv("2006-01-02 15:04:05"), nil
	case models.DateTimeTZ:
		return timeConv("2006-01-02 15:04:05 -07:00"), nil
	case models.JSON:
		// Passthrough of the value as reported by the database.
		return func(c int, row models.Row) (json.RawMessage, error) {
			return row[c].(json.RawMessage), nil
		}, nil
	case models.Unknown:
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownType, f.DBType)
	}

	return nil, fmt.Errorf("%w: %s", models.ErrUnimplementedKind, f.Kind)
}

// decimalConv converts to float64 for encoding. A value that cannot be
// represented fails the export outright.
func decimalConv(c int, row models.Row) (json.RawMessage, error) {
	d := row[c].(decimal.Decimal)

	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("decimal %s is not representable as a number", shortDecimal(d))
	}

	return json.Marshal(f)
}

// shortDecimal caps the decimal's rendering for diagnostics. Out-of-range
// values can span thousands of digits.
func shortDecimal(d decimal.Decimal) string {
	s := d.String()
	if len(s) > 32 {
		s = s[:32] + "..."
	}

	return s
}

func timeConv(layout string) convFn {
	return func(c int, row models.Row) (json.RawMessage, error) {
		return json.Marshal(row[c].(time.Time).Format(layout))
	}
}

func clockConv(c int, row models.Row) (json.RawMessage, error) {
	d := row[c].(time.Duration)

	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}

	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second

	return json.Marshal(fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s))
}
