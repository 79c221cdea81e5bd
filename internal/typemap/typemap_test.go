package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	tests := []struct {
		sqlType    string
		wantName   string
		wantImport string
	}{
		{"SERIAL", "Long", ""},
		{"integer", "Integer", ""},
		{"smallint", "Short", ""},
		{"NUMERIC", "BigDecimal", "java.math.BigDecimal"},
		{"double  precision", "Double", ""},
		{"Character Varying", "String", ""},
		{"text", "String", ""},
		{"uuid", "UUID", "java.util.UUID"},
		{"boolean", "Boolean", ""},
		{"timestamp with time zone", "LocalDateTime", "java.time.LocalDateTime"},
		{"date", "LocalDate", "java.time.LocalDate"},
		{"time", "LocalTime", "java.time.LocalTime"},
		{"bytea", "byte[]", ""},
		{"geometry", "Object", ""},
	}
	for _, tt := range tests {
		got := Map(tt.sqlType)
		assert.Equal(t, tt.wantName, got.Name, tt.sqlType)
		assert.Equal(t, tt.wantImport, got.Import, tt.sqlType)
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("varchar"))
	assert.False(t, Known("tsvector"))
}
