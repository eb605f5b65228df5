// Package resultset executes a single SQL query and materializes its
// result into a models.ResultSet: it classifies the driver-reported column
// types into the canonical FieldKind taxonomy and decodes every scanned
// value into that kind's canonical Go representation.
package resultset

import (
	"database/sql"
	"strings"

	"github.com/zerodha/tableport/models"
)

// commonKinds maps the known type-name spellings of both backends to their
// canonical kind. Names are the lower-cased sql.ColumnType.DatabaseTypeName().
var commonKinds = map[string]models.FieldKind{
	// Strings.
	"string":     models.String,
	"varchar":    models.String,
	"tinytext":   models.String,
	"text":       models.String,
	"mediumtext": models.String,
	"longtext":   models.String,
	"char":       models.String,
	"bpchar":     models.String,

	// Signed integers.
	"tinyint":   models.Int8,
	"int2":      models.Int16,
	"smallint":  models.Int16,
	"int4":      models.Int32,
	"int":       models.Int32,
	"mediumint": models.Int32,
	"int8":      models.Int64,
	"bigint":    models.Int64,

	// Unsigned integers are classified but have no renderer in any format.
	// MySQL spells these two ways: the information-schema order
	// ("tinyint unsigned") and the driver's order ("unsigned tinyint").
	"tinyint unsigned":   models.UInt8,
	"unsigned tinyint":   models.UInt8,
	"smallint unsigned":  models.UInt16,
	"unsigned smallint":  models.UInt16,
	"int unsigned":       models.UInt32,
	"unsigned int":       models.UInt32,
	"mediumint unsigned": models.UInt32,
	"unsigned mediumint": models.UInt32,
	"bigint unsigned":    models.UInt64,
	"unsigned bigint":    models.UInt64,

	// Floats.
	"float4": models.Float32,
	"float":  models.Float32,
	"float8": models.Float64,
	"double": models.Float64,

	// Arbitrary precision.
	"decimal": models.Decimal,
	"numeric": models.Decimal,

	"json":  models.JSON,
	"jsonb": models.JSON,

	"bool":    models.Bool,
	"boolean": models.Bool,

	// Temporal. The bare "timestamp" is handled in Classify() as it is
	// backend dependent.
	"date":        models.Date,
	"time":        models.Time,
	"datetime":    models.DateTime,
	"timestamptz": models.DateTimeTZ,
}

// Classify maps a backend-reported column type name to its canonical kind.
// The bare name "timestamp" is timezone-naive on Postgres and
// timezone-aware on MySQL, so it is dispatched on the backend before the
// shared table. Unrecognized names classify to Unknown, which is a valid
// terminal classification, not an error.
func Classify(typeName string, backend models.Backend) models.FieldKind {
	name := strings.ToLower(typeName)

	if name == "timestamp" {
		if backend == models.MySQL {
			return models.DateTimeTZ
		}

		return models.DateTime
	}

	if k, ok := commonKinds[name]; ok {
		return k
	}

	return models.Unknown
}

// Fields builds the column schema for a result set from the driver's
// column metadata.
func Fields(colTypes []*sql.ColumnType, backend models.Backend) []models.Field {
	out := make([]models.Field, len(colTypes))
	for i, ct := range colTypes {
		name := strings.ToLower(ct.DatabaseTypeName())
		out[i] = models.Field{
			Name:   ct.Name(),
			Kind:   Classify(name, backend),
			DBType: name,
		}
	}

	return out
}
