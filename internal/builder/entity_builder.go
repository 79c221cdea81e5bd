// Package builder renders one analyzed table as Java entity source.
package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andressep95/SQLift/internal/naming"
	"github.com/andressep95/SQLift/internal/strategy"
	"github.com/andressep95/SQLift/internal/typemap"
	"github.com/andressep95/SQLift/pkg/models"
)

const indentUnit = "    "

// EntityBuilder renders entity classes for a base package and an ordered
// list of strategies
type EntityBuilder struct {
	BasePackage string
	Strategies  []strategy.Strategy

	table   *models.Table
	imports map[string]bool
}

// NewEntityBuilder creates a new entity builder
func NewEntityBuilder(basePackage string, strategies []strategy.Strategy) *EntityBuilder {
	return &EntityBuilder{
		BasePackage: basePackage,
		Strategies:  strategies,
	}
}

// WithTable sets the table the next Build renders
func (b *EntityBuilder) WithTable(table *models.Table) *EntityBuilder {
	b.table = table
	return b
}

// ClassName returns the entity class name of the current table
func (b *EntityBuilder) ClassName() string {
	if b.table == nil {
		return ""
	}
	return naming.EntityName(b.table.Name)
}

// Build renders the current table. Fields are ordered primary key,
// foreign-key associations, remaining columns, then inverse and
// many-to-many associations; the table's own column order is left untouched.
func (b *EntityBuilder) Build() (string, error) {
	table := b.table
	if table == nil {
		return "", &BuildError{Cause: ErrNoModel}
	}
	class := b.ClassName()
	if !table.HasPrimaryKey() {
		return "", &BuildError{Class: class, Table: table.Name, Cause: ErrMissingPrimaryKey}
	}

	b.imports = make(map[string]bool)
	for _, s := range b.Strategies {
		s.Begin(table)
	}

	fields := b.entityFields(class)
	w := &writer{}

	for _, s := range b.Strategies {
		w.lines(s.ClassDecoration(table)...)
	}
	w.line("public class %s {", class)
	w.indent++
	b.writeFields(w, fields)

	if !b.suppressBoilerplate() {
		b.writeConstructors(w, class, fields)
		b.writeAccessors(w, fields)
	}
	if table.HasCompositeKey() {
		b.writeKeyClass(w, class+"Id")
	}
	w.indent--
	w.line("}")

	for _, s := range b.Strategies {
		for _, imp := range s.Imports() {
			b.imports[imp] = true
		}
	}
	return b.header() + w.String(), nil
}

func (b *EntityBuilder) suppressBoilerplate() bool {
	for _, s := range b.Strategies {
		if s.SuppressBoilerplate() {
			return true
		}
	}
	return false
}

func (b *EntityBuilder) header() string {
	var h strings.Builder
	if b.BasePackage != "" {
		fmt.Fprintf(&h, "package %s;\n\n", b.BasePackage)
	}
	imports := make([]string, 0, len(b.imports))
	for imp := range b.imports {
		imports = append(imports, imp)
	}
	sort.Strings(imports)
	for _, imp := range imports {
		fmt.Fprintf(&h, "import %s;\n", imp)
	}
	if len(imports) > 0 {
		h.WriteString("\n")
	}
	return h.String()
}

// javaType maps a column type and records its import
func (b *EntityBuilder) javaType(sqlType string) string {
	t := typemap.Map(sqlType)
	if t.Import != "" {
		b.imports[t.Import] = true
	}
	return t.Name
}

func (b *EntityBuilder) entityFields(class string) []*strategy.Field {
	table := b.table
	var fields []*strategy.Field

	// Primary key
	if table.HasCompositeKey() {
		fields = append(fields, &strategy.Field{Name: "id", Type: class + "Id", Kind: strategy.EmbeddedKey})
	} else {
		pk := table.PrimaryKey
		fields = append(fields, &strategy.Field{
			Name:   naming.FieldName(pk.Name),
			Type:   b.javaType(pk.Type),
			Kind:   strategy.PrimaryKey,
			Column: pk,
		})
	}

	// Foreign key associations in declaration order
	direct := make(map[*models.ForeignKey]*models.Relationship)
	for _, rel := range table.Relations() {
		if rel.Kind == models.Direct {
			direct[rel.ForeignKey] = rel
		}
	}
	for _, fk := range table.ForeignKeys {
		rel, ok := direct[fk]
		if !ok {
			continue
		}
		col := table.ColumnByName(fk.Column)
		field := &strategy.Field{
			Name:     rel.FieldName,
			Type:     naming.EntityName(rel.Target),
			Kind:     strategy.Association,
			Column:   col,
			Relation: rel,
		}
		if table.HasCompositeKey() && table.IsPrimaryKeyColumn(fk.Column) {
			field.MapsID = naming.FieldName(fk.Column)
		} else if table.PrimaryKey != nil && table.PrimaryKey == col {
			field.SharedKey = true
		}
		fields = append(fields, field)
	}

	// Remaining columns
	for _, col := range table.Columns {
		if table.IsPrimaryKeyColumn(col.Name) {
			continue
		}
		if fk := table.ForeignKeyFor(col.Name); fk != nil {
			if _, resolved := direct[fk]; resolved {
				continue
			}
		}
		javaType := b.javaType(col.Type)
		fields = append(fields, &strategy.Field{
			Name:        naming.FieldName(col.Name),
			Type:        javaType,
			Kind:        strategy.Attribute,
			Column:      col,
			Initializer: initializer(col, javaType),
		})
	}

	// Inverse and many-to-many associations
	for _, rel := range table.Relations() {
		if rel.Kind == models.Direct {
			continue
		}
		entity := naming.EntityName(rel.Target)
		field := &strategy.Field{Name: rel.FieldName, Relation: rel, Kind: strategy.Collection}
		switch rel.Cardinality {
		case models.ManyToMany:
			b.imports["java.util.Set"] = true
			b.imports["java.util.HashSet"] = true
			field.Type = "Set<" + entity + ">"
			field.Initializer = "new HashSet<>()"
		case models.OneToOne:
			field.Type = entity
			field.Kind = strategy.Association
		default:
			b.imports["java.util.List"] = true
			b.imports["java.util.ArrayList"] = true
			field.Type = "List<" + entity + ">"
			field.Initializer = "new ArrayList<>()"
		}
		fields = append(fields, field)
	}
	return fields
}

func (b *EntityBuilder) keyFields() []*strategy.Field {
	var fields []*strategy.Field
	for _, col := range b.table.CompositeKey {
		fields = append(fields, &strategy.Field{
			Name:   naming.FieldName(col.Name),
			Type:   b.javaType(col.Type),
			Kind:   strategy.KeyAttribute,
			Column: col,
		})
	}
	return fields
}

// initializer turns a recognized column default into a field initializer
// when it fits the field type
func initializer(col *models.Column, javaType string) string {
	switch col.Default {
	case "true", "false":
		if javaType == "Boolean" {
			return col.Default
		}
	case "CURRENT_DATE":
		if javaType == "LocalDate" {
			return "LocalDate.now()"
		}
	case "CURRENT_TIMESTAMP", "NOW()":
		if javaType == "LocalDateTime" {
			return "LocalDateTime.now()"
		}
	case "CURRENT_TIME":
		if javaType == "LocalTime" {
			return "LocalTime.now()"
		}
	}
	return ""
}

func (b *EntityBuilder) decorations(field *strategy.Field) []string {
	var lines []string
	for _, s := range b.Strategies {
		if field.Relation != nil {
			lines = append(lines, s.RelationshipDecoration(b.table, field)...)
		} else {
			lines = append(lines, s.FieldDecoration(b.table, field)...)
		}
	}
	return lines
}

func (b *EntityBuilder) writeFields(w *writer, fields []*strategy.Field) {
	for _, f := range fields {
		w.blank()
		w.lines(b.decorations(f)...)
		if f.Initializer != "" {
			w.line("private %s %s = %s;", f.Type, f.Name, f.Initializer)
		} else {
			w.line("private %s %s;", f.Type, f.Name)
		}
	}
}

// constructorFields are the members set by the all-arguments constructor
func constructorFields(fields []*strategy.Field) []*strategy.Field {
	var out []*strategy.Field
	for _, f := range fields {
		if f.Initializer != "" && f.Kind == strategy.Collection {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (b *EntityBuilder) writeConstructors(w *writer, class string, fields []*strategy.Field) {
	w.blank()
	w.line("public %s() {", class)
	w.line("}")

	args := constructorFields(fields)
	if len(args) == 0 {
		return
	}
	params := make([]string, len(args))
	for i, f := range args {
		params[i] = f.Type + " " + f.Name
	}
	w.blank()
	w.line("public %s(%s) {", class, strings.Join(params, ", "))
	w.indent++
	for _, f := range args {
		w.line("this.%s = %s;", f.Name, f.Name)
	}
	w.indent--
	w.line("}")
}

func (b *EntityBuilder) writeAccessors(w *writer, fields []*strategy.Field) {
	for _, f := range fields {
		suffix := naming.CamelToPascal(f.Name)
		w.blank()
		w.line("public %s get%s() {", f.Type, suffix)
		w.indent++
		w.line("return %s;", f.Name)
		w.indent--
		w.line("}")
		w.blank()
		w.line("public void set%s(%s %s) {", suffix, f.Type, f.Name)
		w.indent++
		w.line("this.%s = %s;", f.Name, f.Name)
		w.indent--
		w.line("}")
	}
}

// writeKeyClass renders the nested composite id type. equals and hashCode
// are always explicit and cover every key field.
func (b *EntityBuilder) writeKeyClass(w *writer, keyClass string) {
	b.imports["java.io.Serializable"] = true
	b.imports["java.util.Objects"] = true
	fields := b.keyFields()

	w.blank()
	for _, s := range b.Strategies {
		w.lines(s.EmbeddableDecoration(b.table)...)
	}
	w.line("public static class %s implements Serializable {", keyClass)
	w.indent++
	b.writeFields(w, fields)
	if !b.suppressBoilerplate() {
		b.writeConstructors(w, keyClass, fields)
		b.writeAccessors(w, fields)
	}

	comparisons := make([]string, len(fields))
	names := make([]string, len(fields))
	for i, f := range fields {
		comparisons[i] = fmt.Sprintf("Objects.equals(%s, that.%s)", f.Name, f.Name)
		names[i] = f.Name
	}

	w.blank()
	w.line("@Override")
	w.line("public boolean equals(Object o) {")
	w.indent++
	w.line("if (this == o) return true;")
	w.line("if (o == null || getClass() != o.getClass()) return false;")
	w.line("%s that = (%s) o;", keyClass, keyClass)
	w.line("return %s;", strings.Join(comparisons, "\n"+strings.Repeat(indentUnit, w.indent+2)+"&& "))
	w.indent--
	w.line("}")
	w.blank()
	w.line("@Override")
	w.line("public int hashCode() {")
	w.indent++
	w.line("return Objects.hash(%s);", strings.Join(names, ", "))
	w.indent--
	w.line("}")
	w.indent--
	w.line("}")
}

// writer accumulates indented source lines
type writer struct {
	b      strings.Builder
	indent int
}

func (w *writer) line(format string, args ...any) {
	w.b.WriteString(strings.Repeat(indentUnit, w.indent))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteString("\n")
}

func (w *writer) lines(lines ...string) {
	for _, l := range lines {
		w.b.WriteString(strings.Repeat(indentUnit, w.indent))
		w.b.WriteString(l)
		w.b.WriteString("\n")
	}
}

func (w *writer) blank() {
	w.b.WriteString("\n")
}

func (w *writer) String() string {
	return w.b.String()
}
