// Package seeder renders sample-data INSERT scripts for an analyzed schema.
package seeder

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/andressep95/SQLift/internal/typemap"
	"github.com/andressep95/SQLift/pkg/models"
	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"
)

// DataGenerator generates fake data based on column names and types
type DataGenerator struct {
	Faker  faker.Faker
	Logger *logrus.Logger
}

// NewDataGenerator creates a new data generator
func NewDataGenerator(logger *logrus.Logger) *DataGenerator {
	return &DataGenerator{
		Faker:  faker.New(),
		Logger: logger,
	}
}

// GenerateData generates a value for a column. The result is a string,
// int64, float64, bool, time.Time, []byte or nil.
func (dg *DataGenerator) GenerateData(column *models.Column) any {
	javaType := typemap.Map(column.Type).Name
	if javaType == "String" {
		return truncate(dg.generateString(column), column.Length)
	}

	switch javaType {
	case "Long", "Integer":
		return int64(dg.Faker.IntBetween(1, 10000))
	case "Short":
		return int64(dg.Faker.IntBetween(1, 1000))
	case "BigDecimal":
		return dg.generateDecimal(column)
	case "Float", "Double":
		return dg.Faker.Float64(2, 0, 1000)
	case "Boolean":
		return dg.Faker.Boolean().Bool()
	case "LocalDate", "LocalDateTime", "LocalTime":
		return dg.generateDateTime()
	case "UUID":
		return dg.Faker.UUID().V4()
	case "byte[]":
		return []byte(dg.Faker.RandomStringWithLength(8))
	default:
		dg.Logger.Warnf("No specific generator for type %s of column %s, using NULL", column.Type, column.Name)
		return nil
	}
}

// generateString picks a generator from the column name before falling
// back to lorem text
func (dg *DataGenerator) generateString(column *models.Column) string {
	name := strings.ToLower(column.Name)

	switch {
	case strings.Contains(name, "email") || strings.Contains(name, "correo"):
		return dg.Faker.Internet().Email()
	case strings.Contains(name, "first") || name == "nombres":
		return dg.Faker.Person().FirstName()
	case strings.Contains(name, "last") || strings.Contains(name, "apellido"):
		return dg.Faker.Person().LastName()
	case strings.Contains(name, "user"):
		return dg.Faker.Internet().User()
	case strings.Contains(name, "company") || strings.Contains(name, "empresa"):
		return dg.Faker.Company().Name()
	case strings.Contains(name, "name") || strings.Contains(name, "nombre"):
		return dg.Faker.Person().Name()
	case strings.Contains(name, "phone") || strings.Contains(name, "telefono"):
		return dg.Faker.Phone().Number()
	case strings.Contains(name, "address") || strings.Contains(name, "direccion"):
		return dg.Faker.Address().Address()
	case strings.Contains(name, "city") || strings.Contains(name, "ciudad"):
		return dg.Faker.Address().City()
	case strings.Contains(name, "country") || strings.Contains(name, "pais"):
		return dg.Faker.Address().Country()
	case strings.Contains(name, "description") || strings.Contains(name, "descripcion"):
		return dg.Faker.Lorem().Sentence(8)
	case strings.Contains(name, "title") || strings.Contains(name, "titulo"):
		return dg.Faker.Lorem().Sentence(4)
	case strings.Contains(name, "url") || strings.Contains(name, "website"):
		return dg.Faker.Internet().URL()
	case strings.Contains(name, "password"):
		return dg.Faker.Internet().Password()
	case strings.Contains(name, "color"):
		return dg.Faker.Color().Hex()
	}

	if column.Length != "" {
		if n, err := strconv.Atoi(column.Length); err == nil && n <= 10 {
			return dg.Faker.RandomStringWithLength(n)
		}
	}
	return dg.Faker.Lorem().Word()
}

// generateDecimal keeps the value inside the column's precision and scale
func (dg *DataGenerator) generateDecimal(column *models.Column) float64 {
	maxValue, decimals := 1000, 2
	precision, scale := column.Precision()
	if p, err := strconv.Atoi(precision); err == nil {
		s, _ := strconv.Atoi(scale)
		decimals = s
		if digits := p - s; digits < 4 {
			maxValue = int(math.Pow10(digits)) - 1
		}
	}
	return dg.Faker.Float64(decimals, 0, maxValue)
}

// generateDateTime generates a datetime within the last 5 years
func (dg *DataGenerator) generateDateTime() time.Time {
	days := dg.Faker.IntBetween(0, 365*5)
	seconds := dg.Faker.IntBetween(0, 86399)
	return time.Now().
		AddDate(0, 0, -days).
		Add(-time.Duration(seconds) * time.Second).
		Truncate(time.Second)
}

// Literal formats a generated value as a SQL literal for the column
func Literal(value any, column *models.Column) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []byte:
		return fmt.Sprintf("'\\x%x'", v)
	case time.Time:
		switch typemap.Map(column.Type).Name {
		case "LocalDate":
			return "'" + v.Format("2006-01-02") + "'"
		case "LocalTime":
			return "'" + v.Format("15:04:05") + "'"
		default:
			return "'" + v.Format("2006-01-02 15:04:05") + "'"
		}
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
	}
}

// truncate shortens s to the column length when one is declared
func truncate(s, length string) string {
	n, err := strconv.Atoi(length)
	if err != nil || n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
