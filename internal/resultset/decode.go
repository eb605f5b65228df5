package resultset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zerodha/tableport/models"
)

// Canonical Go representation per kind, produced by decode() and consumed
// by every exporter:
//
//	Int8..Int64            int8, int16, int32, int64
//	Float32, Float64       float32, float64
//	String                 string
//	Bool                   bool
//	Decimal                decimal.Decimal
//	Date, DateTime,
//	DateTimeTZ             time.Time
//	Time                   time.Duration since midnight
//	JSON                   json.RawMessage
//	Unknown                string (raw bytes; never rendered)
//
// NULL is nil for every kind.

// Temporal wire layouts seen from lib/pq and go-sql-driver when values
// arrive as text rather than time.Time.
var (
	dateLayouts = []string{"2006-01-02"}

	datetimeLayouts = []string{
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05.999999999",
	}

	datetimeTZLayouts = []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999-07",
		time.RFC3339Nano,
	}
)

// decode coerces a value scanned from the driver into the canonical Go
// representation for the column's kind. Drivers hand back a narrow set of
// shapes (nil, int64, float64, bool, []byte, string, time.Time); anything
// else is a driver contract violation.
func decode(f models.Field, src any) (any, error) {
	if src == nil {
		return nil, nil
	}

	switch f.Kind {
	case models.Int8:
		n, err := toInt(src)
		return int8(n), err
	case models.Int16:
		n, err := toInt(src)
		return int16(n), err
	case models.Int32:
		n, err := toInt(src)
		return int32(n), err
	case models.Int64:
		return toInt(src)
	case models.UInt8, models.UInt16, models.UInt32, models.UInt64:
		// Carried as the raw string. Renderer selection rejects these
		// kinds, so the value is only ever used in diagnostics.
		return asString(src), nil
	case models.Float32:
		n, err := toFloat(src)
		return float32(n), err
	case models.Float64:
		return toFloat(src)
	case models.String:
		return asString(src), nil
	case models.Bool:
		return toBool(src)
	case models.Decimal:
		return toDecimal(src)
	case models.Date:
		return toTime(src, dateLayouts)
	case models.Time:
		return toClock(src)
	case models.DateTime:
		return toTime(src, datetimeLayouts)
	case models.DateTimeTZ:
		return toTime(src, datetimeTZLayouts)
	case models.JSON:
		return json.RawMessage(asString(src)), nil
	case models.Unknown:
		return asString(src), nil
	}

	return nil, fmt.Errorf("cannot decode column %s (%s)", f.Name, f.DBType)
}

func asString(src any) string {
	switch v := src.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(src any) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	}

	return 0, fmt.Errorf("unexpected integer value %T", src)
}

func toFloat(src any) (float64, error) {
	switch v := src.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	case string:
		return strconv.ParseFloat(v, 64)
	}

	return 0, fmt.Errorf("unexpected float value %T", src)
}

func toBool(src any) (bool, error) {
	switch v := src.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case []byte:
		return parseBool(string(v))
	case string:
		return parseBool(v)
	}

	return false, fmt.Errorf("unexpected bool value %T", src)
}

func parseBool(s string) (bool, error) {
	switch s {
	case "t", "T":
		return true, nil
	case "f", "F":
		return false, nil
	}

	return strconv.ParseBool(s)
}

func toDecimal(src any) (decimal.Decimal, error) {
	switch v := src.(type) {
	case []byte:
		return decimal.NewFromString(string(v))
	case string:
		return decimal.NewFromString(v)
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	}

	return decimal.Decimal{}, fmt.Errorf("unexpected decimal value %T", src)
}

func toTime(src any, layouts []string) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case []byte:
		return parseTime(string(v), layouts)
	case string:
		return parseTime(v, layouts)
	}

	return time.Time{}, fmt.Errorf("unexpected temporal value %T", src)
}

func parseTime(s string, layouts []string) (time.Time, error) {
	var err error
	for _, l := range layouts {
		var t time.Time
		if t, err = time.Parse(l, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, err
}

// toClock decodes a time-of-day value into a duration since midnight.
func toClock(src any) (time.Duration, error) {
	switch v := src.(type) {
	case time.Time:
		return time.Duration(v.Hour())*time.Hour +
			time.Duration(v.Minute())*time.Minute +
			time.Duration(v.Second())*time.Second +
			time.Duration(v.Nanosecond()), nil
	case []byte:
		return parseClock(string(v))
	case string:
		return parseClock(v)
	}

	return 0, fmt.Errorf("unexpected time value %T", src)
}

// parseClock handles the [-]H:MM:SS[.fraction] shape. MySQL TIME ranges
// to +/-838:59:59, beyond what a clock layout can parse.
func parseClock(s string) (time.Duration, error) {
	orig := s

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return 0, fmt.Errorf("cannot parse time value %q", orig)
	}

	h, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("cannot parse time value %q", orig)
	}

	m, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil || m > 59 {
		return 0, fmt.Errorf("cannot parse time value %q", orig)
	}

	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || sec >= 60 {
		return 0, fmt.Errorf("cannot parse time value %q", orig)
	}

	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second))
	if neg {
		d = -d
	}

	return d, nil
}
