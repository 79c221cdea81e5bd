package seeder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/andressep95/SQLift/internal/analyzer"
	"github.com/andressep95/SQLift/internal/typemap"
	"github.com/andressep95/SQLift/pkg/models"
	"github.com/sirupsen/logrus"
)

// ErrInvalidRecordCount is returned for a non-positive records per table
var ErrInvalidRecordCount = errors.New("sqlift: records per table must be positive")

// Script is a rendered seed script
type Script struct {
	SQL   string
	Order []string       // tables in insertion order
	Rows  map[string]int // rows written per table
}

// Seeder renders INSERT statements with fake data for every table
type Seeder struct {
	SchemaAnalyzer *analyzer.SchemaAnalyzer
	DataGenerator  *DataGenerator
	NumRecords     int
	Logger         *logrus.Logger

	// literals of every generated row, by table then lower-cased column
	values  map[string]map[string][]string
	pending []pendingUpdate
}

// pendingUpdate is a circular foreign key left NULL on insert and set once
// the referenced table has rows
type pendingUpdate struct {
	table  *models.Table
	column string
	fk     *models.ForeignKey
	rows   int
}

// NewSeeder creates a new seeder
func NewSeeder(schemaAnalyzer *analyzer.SchemaAnalyzer, dataGenerator *DataGenerator, numRecords int, logger *logrus.Logger) *Seeder {
	return &Seeder{
		SchemaAnalyzer: schemaAnalyzer,
		DataGenerator:  dataGenerator,
		NumRecords:     numRecords,
		Logger:         logger,
	}
}

// Generate renders the seed script. Tables are written in dependency
// order with junction tables last; foreign keys point at generated rows of
// the referenced table.
func (s *Seeder) Generate() (*Script, error) {
	if s.NumRecords < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRecordCount, s.NumRecords)
	}

	s.values = make(map[string]map[string][]string)
	s.pending = nil
	orderedTables, circularTables := s.SchemaAnalyzer.GetTableInsertionOrder()
	script := &Script{Order: orderedTables, Rows: make(map[string]int)}

	var out strings.Builder
	out.WriteString("-- Sample data generated by sqlift\n")
	for _, name := range orderedTables {
		table := s.SchemaAnalyzer.Schema.Table(name)
		if table == nil {
			continue
		}
		if circularTables[name] {
			s.Logger.Infof("Seeding circular dependency table: %s", name)
		} else {
			s.Logger.Infof("Seeding table: %s", name)
		}

		rows := s.seedTable(&out, table)
		script.Rows[table.Name] = rows
	}
	s.writeUpdates(&out)

	script.SQL = out.String()
	return script, nil
}

// rowCount limits the rows of a table to the number of distinct keys its
// referenced tables can provide
func (s *Seeder) rowCount(table *models.Table) int {
	rows := s.NumRecords

	if table.HasCompositeKey() {
		product := 1
		for _, col := range table.CompositeKey {
			product *= s.keyRadix(table, col)
			if product >= rows || product == 0 {
				break
			}
		}
		if product < rows {
			rows = product
		}
	}

	for _, fk := range table.ForeignKeys {
		col := table.ColumnByName(fk.Column)
		if col == nil || fk.Cardinality != models.OneToOne {
			continue
		}
		if parent := s.parentValues(table, fk); parent != nil && len(parent) < rows {
			rows = len(parent)
		}
	}
	return rows
}

// keyRadix is the number of distinct values a composite key column can take
func (s *Seeder) keyRadix(table *models.Table, col *models.Column) int {
	if fk := table.ForeignKeyFor(col.Name); fk != nil {
		if parent := s.parentValues(table, fk); parent != nil {
			return len(parent)
		}
	}
	return s.NumRecords
}

// parentValues returns the generated literals of the column a foreign key
// references, or nil when that table has no rows yet
func (s *Seeder) parentValues(table *models.Table, fk *models.ForeignKey) []string {
	parent := s.SchemaAnalyzer.Schema.Table(fk.ReferencedTable)
	if parent == nil || parent == table {
		return nil
	}
	cols, ok := s.values[parent.Name]
	if !ok {
		return nil
	}
	return cols[strings.ToLower(fk.ReferencedColumn)]
}

func (s *Seeder) seedTable(out *strings.Builder, table *models.Table) int {
	rows := s.rowCount(table)
	if rows == 0 {
		s.Logger.Warnf("No rows can be generated for table %s, a referenced table is empty", table.Name)
		return 0
	}

	var insertable []*models.Column
	for _, col := range table.Columns {
		if table.PrimaryKey == col && col.IsSerial() {
			continue
		}
		insertable = append(insertable, col)
	}

	recorded := make(map[string][]string, len(table.Columns))
	s.values[table.Name] = recorded
	tuples := make([]string, 0, rows)

	for i := 0; i < rows; i++ {
		row := s.generateRecord(table, i, rows)
		for _, col := range table.Columns {
			key := strings.ToLower(col.Name)
			recorded[key] = append(recorded[key], row[key])
		}

		if len(insertable) == 0 {
			continue
		}
		literals := make([]string, len(insertable))
		for j, col := range insertable {
			literals[j] = row[strings.ToLower(col.Name)]
		}
		tuples = append(tuples, "("+strings.Join(literals, ", ")+")")
	}

	out.WriteString("\n")
	if len(insertable) == 0 {
		for i := 0; i < rows; i++ {
			fmt.Fprintf(out, "INSERT INTO %s DEFAULT VALUES;\n", table.Name)
		}
		return rows
	}

	names := make([]string, len(insertable))
	for i, col := range insertable {
		names[i] = col.Name
	}
	fmt.Fprintf(out, "INSERT INTO %s (%s) VALUES\n    %s;\n", table.Name, strings.Join(names, ", "), strings.Join(tuples, ",\n    "))
	return rows
}

// generateRecord returns the literal of every column of row i, keyed by
// lower-cased column name
func (s *Seeder) generateRecord(table *models.Table, i, rows int) map[string]string {
	row := make(map[string]string, len(table.Columns))

	// Key columns first, so self references can see the row's own key
	if table.HasCompositeKey() {
		digits := s.keyDigits(table, i)
		for k, col := range table.CompositeKey {
			row[strings.ToLower(col.Name)] = s.keyLiteral(table, col, digits[k])
		}
	} else if pk := table.PrimaryKey; pk != nil {
		row[strings.ToLower(pk.Name)] = s.keyLiteral(table, pk, i)
	}

	for _, col := range table.Columns {
		key := strings.ToLower(col.Name)
		if _, done := row[key]; done {
			continue
		}
		if fk := table.ForeignKeyFor(col.Name); fk != nil {
			row[key] = s.foreignKeyLiteral(table, col, fk, i, rows)
			continue
		}
		row[key] = s.columnLiteral(col, i)
	}
	return row
}

// keyDigits spreads row i over the composite key columns in mixed radix so
// every row gets a distinct key
func (s *Seeder) keyDigits(table *models.Table, i int) []int {
	digits := make([]int, len(table.CompositeKey))
	for k := len(table.CompositeKey) - 1; k >= 0; k-- {
		radix := s.keyRadix(table, table.CompositeKey[k])
		digits[k] = i % radix
		i /= radix
	}
	return digits
}

// keyLiteral returns the n-th distinct value of a key column
func (s *Seeder) keyLiteral(table *models.Table, col *models.Column, n int) string {
	if fk := table.ForeignKeyFor(col.Name); fk != nil {
		if parent := s.parentValues(table, fk); n < len(parent) {
			return parent[n]
		}
	}
	if col.IsSerial() || isInteger(col) {
		return strconv.Itoa(n + 1)
	}
	return s.uniqueLiteral(col, n)
}

func (s *Seeder) foreignKeyLiteral(table *models.Table, col *models.Column, fk *models.ForeignKey, i, rows int) string {
	parent := s.SchemaAnalyzer.Schema.Table(fk.ReferencedTable)
	switch {
	case parent == nil:
		if col.Nullable {
			return "NULL"
		}
		return Literal(s.DataGenerator.GenerateData(col), col)

	case parent == table:
		// Self reference: point at an earlier row of the same table
		own := s.values[table.Name][strings.ToLower(fk.ReferencedColumn)]
		if i == 0 || len(own) == 0 {
			if col.Nullable {
				return "NULL"
			}
			return "1"
		}
		return own[s.DataGenerator.Faker.IntBetween(0, len(own)-1)]
	}

	values := s.parentValues(table, fk)
	if values == nil {
		if col.Nullable {
			s.deferUpdate(table, col, fk, rows)
			return "NULL"
		}
		s.Logger.Warnf("Table %s references %s before it has rows, %s.%s may violate its constraint",
			table.Name, parent.Name, table.Name, col.Name)
		return strconv.Itoa(i%s.NumRecords + 1)
	}
	if fk.Cardinality == models.OneToOne || col.Unique {
		return values[i%len(values)]
	}
	return values[s.DataGenerator.Faker.IntBetween(0, len(values)-1)]
}

func (s *Seeder) deferUpdate(table *models.Table, col *models.Column, fk *models.ForeignKey, rows int) {
	for _, p := range s.pending {
		if p.table == table && p.column == col.Name {
			return
		}
	}
	s.pending = append(s.pending, pendingUpdate{table: table, column: col.Name, fk: fk, rows: rows})
}

// writeUpdates fills circular foreign keys left NULL on insert
func (s *Seeder) writeUpdates(out *strings.Builder) {
	for _, p := range s.pending {
		pk := p.table.PrimaryKey
		parent := s.parentValues(p.table, p.fk)
		if pk == nil || len(parent) == 0 {
			s.Logger.Warnf("Leaving %s.%s NULL, no rows to reference", p.table.Name, p.column)
			continue
		}

		keys := s.values[p.table.Name][strings.ToLower(pk.Name)]
		out.WriteString("\n")
		for i := 0; i < p.rows && i < len(keys); i++ {
			value := parent[i%len(parent)]
			s.values[p.table.Name][strings.ToLower(p.column)][i] = value
			fmt.Fprintf(out, "UPDATE %s SET %s = %s WHERE %s = %s;\n", p.table.Name, p.column, value, pk.Name, keys[i])
		}
	}
}

func (s *Seeder) columnLiteral(col *models.Column, i int) string {
	if col.Unique {
		return s.uniqueLiteral(col, i)
	}
	return Literal(s.DataGenerator.GenerateData(col), col)
}

// uniqueLiteral derives a value that differs for every row index
func (s *Seeder) uniqueLiteral(col *models.Column, i int) string {
	value := s.DataGenerator.GenerateData(col)
	switch v := value.(type) {
	case string:
		suffix := "_" + strconv.Itoa(i+1)
		if n, err := strconv.Atoi(col.Length); err == nil && n > 0 {
			if n <= len(suffix) {
				return Literal(truncate(strconv.Itoa(i+1), col.Length), col)
			}
			v = truncate(v, strconv.Itoa(n-len(suffix)))
		}
		return Literal(v+suffix, col)
	case int64, float64:
		return strconv.Itoa(i + 1)
	}
	return Literal(value, col)
}

func isInteger(col *models.Column) bool {
	switch typemap.Map(col.Type).Name {
	case "Long", "Integer", "Short":
		return true
	}
	return false
}
