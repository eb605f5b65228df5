// Package models holds the domain types shared between the fetcher and the
// exporters: the canonical column type taxonomy, the materialized result
// set, and the exporter contract.
package models

import "errors"

// Backend identifies the source database whose column type names are
// being normalized.
type Backend int

const (
	Postgres Backend = iota
	MySQL
)

// String returns the backend's URL scheme.
func (b Backend) String() string {
	switch b {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	}

	return "unknown"
}

// FieldKind is the canonical, backend-independent classification of a
// column's value type. The unsigned integer kinds are classified but have
// no renderer in any output format yet.
type FieldKind int

const (
	Int8 FieldKind = iota
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	String
	Bool
	Decimal
	Date
	Time
	DateTime
	DateTimeTZ
	JSON
	Unknown
)

var kindNames = map[FieldKind]string{
	Int8:       "int8",
	Int16:      "int16",
	Int32:      "int32",
	Int64:      "int64",
	UInt8:      "uint8",
	UInt16:     "uint16",
	UInt32:     "uint32",
	UInt64:     "uint64",
	Float32:    "float32",
	Float64:    "float64",
	String:     "string",
	Bool:       "bool",
	Decimal:    "decimal",
	Date:       "date",
	Time:       "time",
	DateTime:   "datetime",
	DateTimeTZ: "datetimetz",
	JSON:       "json",
	Unknown:    "unknown",
}

func (k FieldKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return "invalid"
}

// Field describes one column of a result set. DBType retains the raw,
// lower-cased type name the driver reported so that diagnostics for
// Unknown columns can name the offending type.
type Field struct {
	Name   string
	Kind   FieldKind
	DBType string
}

// Row is one result row's values in column order. Values are the canonical
// Go representation for the column's FieldKind; a NULL is a nil entry.
type Row []any

// ResultSet is a fully materialized query result: one shared column schema
// and the rows that conform to it. It is never mutated after creation and
// may be shared read-only across sequential exports.
type ResultSet struct {
	Fields []Field
	Rows   []Row
}

// Exporter writes a result set to a destination file in one output format.
type Exporter interface {
	Write(rs *ResultSet, dest string) error
}

var (
	// ErrUnknownType is reported when a column classified as Unknown
	// reaches renderer selection.
	ErrUnknownType = errors.New("no renderer for unknown column type")

	// ErrUnimplementedKind is reported for kinds that are classified but
	// have no renderer in any format (the unsigned integer kinds).
	ErrUnimplementedKind = errors.New("column kind not implemented")
)
