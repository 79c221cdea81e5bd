// Package typemap maps SQL column types to Java field types.
package typemap

import (
	"strings"
)

// JavaType is the field type of a generated Java member.
type JavaType struct {
	Name   string // simple type name, e.g. "BigDecimal"
	Import string // fully qualified import, empty for java.lang types
}

var (
	typeLong          = JavaType{Name: "Long"}
	typeInteger       = JavaType{Name: "Integer"}
	typeShort         = JavaType{Name: "Short"}
	typeFloat         = JavaType{Name: "Float"}
	typeDouble        = JavaType{Name: "Double"}
	typeString        = JavaType{Name: "String"}
	typeBoolean       = JavaType{Name: "Boolean"}
	typeBytes         = JavaType{Name: "byte[]"}
	typeObject        = JavaType{Name: "Object"}
	typeBigDecimal    = JavaType{Name: "BigDecimal", Import: "java.math.BigDecimal"}
	typeUUID          = JavaType{Name: "UUID", Import: "java.util.UUID"}
	typeLocalDateTime = JavaType{Name: "LocalDateTime", Import: "java.time.LocalDateTime"}
	typeLocalDate     = JavaType{Name: "LocalDate", Import: "java.time.LocalDate"}
	typeLocalTime     = JavaType{Name: "LocalTime", Import: "java.time.LocalTime"}
)

var sqlTypes = map[string]JavaType{
	"serial":                      typeLong,
	"bigserial":                   typeLong,
	"bigint":                      typeLong,
	"int8":                        typeLong,
	"smallserial":                 typeInteger,
	"int":                         typeInteger,
	"integer":                     typeInteger,
	"int4":                        typeInteger,
	"smallint":                    typeShort,
	"int2":                        typeShort,
	"numeric":                     typeBigDecimal,
	"decimal":                     typeBigDecimal,
	"real":                        typeFloat,
	"float4":                      typeFloat,
	"double":                      typeDouble,
	"double precision":            typeDouble,
	"float":                       typeDouble,
	"float8":                      typeDouble,
	"varchar":                     typeString,
	"character varying":           typeString,
	"char":                        typeString,
	"character":                   typeString,
	"text":                        typeString,
	"json":                        typeString,
	"jsonb":                       typeString,
	"uuid":                        typeUUID,
	"boolean":                     typeBoolean,
	"bool":                        typeBoolean,
	"timestamp":                   typeLocalDateTime,
	"timestamptz":                 typeLocalDateTime,
	"timestamp with time zone":    typeLocalDateTime,
	"timestamp without time zone": typeLocalDateTime,
	"datetime":                    typeLocalDateTime,
	"date":                        typeLocalDate,
	"time":                        typeLocalTime,
	"time with time zone":         typeLocalTime,
	"time without time zone":      typeLocalTime,
	"bytea":                       typeBytes,
}

// Map returns the Java type for a SQL type token. Unknown types map to Object.
func Map(sqlType string) JavaType {
	key := strings.Join(strings.Fields(strings.ToLower(sqlType)), " ")
	if t, ok := sqlTypes[key]; ok {
		return t
	}
	return typeObject
}

// Known reports whether the SQL type has a dedicated mapping.
func Known(sqlType string) bool {
	return Map(sqlType) != typeObject
}
