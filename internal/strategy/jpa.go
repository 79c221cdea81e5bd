package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andressep95/SQLift/pkg/models"
)

// JPAStrategy decorates entities with persistence annotations
type JPAStrategy struct {
	prefix string
	used   map[string]bool
}

func (s *JPAStrategy) Name() string { return "jpa" }

// Prefix returns the import package of the persistence annotations
func (s *JPAStrategy) Prefix() string { return s.prefix }

func (s *JPAStrategy) Begin(*models.Table) {
	s.used = make(map[string]bool)
}

func (s *JPAStrategy) SuppressBoilerplate() bool { return false }

// use marks the persistence types an annotation line needs
func (s *JPAStrategy) use(names ...string) {
	for _, name := range names {
		s.used[name] = true
	}
}

func (s *JPAStrategy) Imports() []string {
	imports := make([]string, 0, len(s.used))
	for name := range s.used {
		imports = append(imports, s.prefix+"."+name)
	}
	sort.Strings(imports)
	return imports
}

func (s *JPAStrategy) ClassDecoration(table *models.Table) []string {
	s.use("Entity", "Table")
	lines := []string{"@Entity"}

	var constraints []string
	for _, col := range table.Columns {
		if col.Unique && !table.IsPrimaryKeyColumn(col.Name) {
			constraints = append(constraints, uniqueConstraint(table.Name, []string{col.Name}))
		}
	}
	for _, group := range table.Uniques {
		constraints = append(constraints, uniqueConstraint(table.Name, group))
	}
	if len(constraints) == 0 {
		return append(lines, fmt.Sprintf("@Table(name = %q)", table.Name))
	}

	s.use("UniqueConstraint")
	lines = append(lines, fmt.Sprintf("@Table(name = %q, uniqueConstraints = {", table.Name))
	for i, c := range constraints {
		sep := ","
		if i == len(constraints)-1 {
			sep = ""
		}
		lines = append(lines, "    "+c+sep)
	}
	return append(lines, "})")
}

func uniqueConstraint(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	name := "uk_" + table + "_" + strings.ToLower(strings.Join(columns, "_"))
	return fmt.Sprintf("@UniqueConstraint(name = %q, columnNames = {%s})", name, strings.Join(quoted, ", "))
}

func (s *JPAStrategy) EmbeddableDecoration(*models.Table) []string {
	s.use("Embeddable")
	return []string{"@Embeddable"}
}

func (s *JPAStrategy) FieldDecoration(_ *models.Table, field *Field) []string {
	switch field.Kind {
	case EmbeddedKey:
		s.use("EmbeddedId")
		return []string{"@EmbeddedId"}
	case PrimaryKey:
		s.use("Id", "Column")
		lines := []string{"@Id"}
		if field.Column.IsSerial() {
			s.use("GeneratedValue", "GenerationType")
			lines = append(lines, "@GeneratedValue(strategy = GenerationType.IDENTITY)")
		}
		return append(lines, fmt.Sprintf("@Column(name = %q)", field.Column.Name))
	case KeyAttribute, Attribute:
		if field.Column == nil {
			return nil
		}
		s.use("Column")
		return []string{columnAnnotation(field)}
	}
	return nil
}

func columnAnnotation(field *Field) string {
	col := field.Column
	args := []string{fmt.Sprintf("name = %q", col.Name)}
	if col.Length != "" {
		switch field.Type {
		case "String":
			args = append(args, "length = "+col.Length)
		case "BigDecimal":
			precision, scale := col.Precision()
			args = append(args, "precision = "+precision)
			if scale != "" {
				args = append(args, "scale = "+scale)
			}
		}
	}
	if !col.Nullable {
		args = append(args, "nullable = false")
	}
	return "@Column(" + strings.Join(args, ", ") + ")"
}

func (s *JPAStrategy) RelationshipDecoration(_ *models.Table, field *Field) []string {
	rel := field.Relation
	if rel == nil {
		return nil
	}

	switch rel.Kind {
	case models.Direct:
		marker := "ManyToOne"
		if rel.Cardinality == models.OneToOne {
			marker = "OneToOne"
		}
		s.use(marker, "FetchType", "JoinColumn")
		lines := []string{"@" + marker + "(fetch = FetchType." + rel.ForeignKey.Fetch.String() + ")"}
		if field.MapsID != "" {
			s.use("MapsId")
			lines = append(lines, fmt.Sprintf("@MapsId(%q)", field.MapsID))
		} else if field.SharedKey {
			s.use("MapsId")
			lines = append(lines, "@MapsId")
		}
		join := fmt.Sprintf("@JoinColumn(name = %q", rel.ForeignKey.Column)
		if rel.JoinReference != "" {
			join += fmt.Sprintf(", referencedColumnName = %q", rel.JoinReference)
		}
		if field.Column != nil && !field.Column.Nullable {
			join += ", nullable = false"
		}
		return append(lines, join+")")

	case models.Inverse:
		marker := "OneToMany"
		args := []string{fmt.Sprintf("mappedBy = %q", rel.MappedBy())}
		if rel.Cardinality == models.OneToOne {
			marker = "OneToOne"
			s.use("FetchType")
			args = append(args, "fetch = FetchType.LAZY")
		}
		s.use(marker)
		if c := s.cascade(rel.Cascade); c != "" {
			args = append(args, c)
		}
		if rel.OrphanRemoval {
			args = append(args, "orphanRemoval = true")
		}
		return []string{"@" + marker + "(" + strings.Join(args, ", ") + ")"}

	case models.ManyToManyOwner:
		s.use("ManyToMany", "JoinTable", "JoinColumn")
		return []string{
			"@ManyToMany",
			fmt.Sprintf("@JoinTable(name = %q,", rel.Via),
			fmt.Sprintf("    joinColumns = @JoinColumn(name = %q),", rel.JoinColumn),
			fmt.Sprintf("    inverseJoinColumns = @JoinColumn(name = %q))", rel.InverseJoin),
		}

	case models.ManyToManyInverse:
		s.use("ManyToMany")
		return []string{fmt.Sprintf("@ManyToMany(mappedBy = %q)", rel.MappedBy())}
	}
	return nil
}

func (s *JPAStrategy) cascade(types []models.CascadeType) string {
	if len(types) == 0 {
		return ""
	}
	s.use("CascadeType")
	if len(types) == 1 {
		return "cascade = CascadeType." + string(types[0])
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = "CascadeType." + string(t)
	}
	return "cascade = {" + strings.Join(parts, ", ") + "}"
}
