package analyzer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/andressep95/SQLift/internal/naming"
	"github.com/andressep95/SQLift/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/yourbasic/graph"
)

var (
	referentialClauseRegex = regexp.MustCompile(`(?i)\bON\s+(?:DELETE|UPDATE)\b`)
	junctionSuffixes       = []string{"_rel", "_map", "_link"}
)

// SchemaAnalyzer resolves foreign keys into associations, classifies junction
// tables and builds the table dependency graph
type SchemaAnalyzer struct {
	Schema          *models.Schema
	DependencyGraph *graph.Mutable
	TableIndexMap   map[string]int
	IndexTableMap   map[int]string
	JunctionTables  map[string]bool
	Unresolved      map[string][]*models.ForeignKey
	SelfReferences  map[string][]*models.ForeignKey
	CircularGroups  [][]string
	Logger          *logrus.Logger
}

// NewSchemaAnalyzer creates a new schema analyzer
func NewSchemaAnalyzer(schema *models.Schema, logger *logrus.Logger) *SchemaAnalyzer {
	return &SchemaAnalyzer{
		Schema:         schema,
		TableIndexMap:  make(map[string]int),
		IndexTableMap:  make(map[int]string),
		JunctionTables: make(map[string]bool),
		Unresolved:     make(map[string][]*models.ForeignKey),
		SelfReferences: make(map[string][]*models.ForeignKey),
		Logger:         logger,
	}
}

// AnalyzeSchema resolves associations over the whole schema. It can be run
// repeatedly; relations are keyed, so a second run replaces rather than
// duplicates them.
func (sa *SchemaAnalyzer) AnalyzeSchema() {
	// Reset results from a previous run
	sa.JunctionTables = make(map[string]bool)
	sa.Unresolved = make(map[string][]*models.ForeignKey)
	sa.SelfReferences = make(map[string][]*models.ForeignKey)

	// Create a map of table indices for the dependency graph
	sa.TableIndexMap = make(map[string]int)
	sa.IndexTableMap = make(map[int]string)
	for i, table := range sa.Schema.Tables {
		sa.TableIndexMap[table.Name] = i
		sa.IndexTableMap[i] = table.Name
	}
	sa.DependencyGraph = graph.New(len(sa.Schema.Tables))

	// Resolve associations, then name them once junctions are known
	sa.resolveForeignKeys()
	sa.detectJunctionTables()
	sa.assignFieldNames()

	// Find circular dependencies
	sa.detectCircularGroups()

	sa.Logger.Infof("Analyzed %d tables: %d junction, %d unresolved references, %d circular groups",
		len(sa.Schema.Tables), len(sa.JunctionTables), sa.unresolvedTotal(), len(sa.CircularGroups))
}

// resolveForeignKeys registers the direct edge on the owning table and the
// inverse edge on the referenced table for every resolvable foreign key
func (sa *SchemaAnalyzer) resolveForeignKeys() {
	for _, table := range sa.Schema.Tables {
		table.Category = models.Regular
		table.JunctionOf = [2]string{}

		for _, fk := range table.ForeignKeys {
			// Check if the referenced table exists
			target := sa.Schema.Table(fk.ReferencedTable)
			if target == nil {
				sa.Logger.Infof("Table %s: %s references unknown table %s, keeping it as a plain column", table.Name, fk.Column, fk.ReferencedTable)
				sa.Unresolved[table.Name] = append(sa.Unresolved[table.Name], fk)
				continue
			}

			direct := &models.Relationship{
				Kind:        models.Direct,
				Source:      table.Name,
				Target:      target.Name,
				ForeignKey:  fk,
				Cardinality: fk.Cardinality,
			}
			if !referencesPrimaryKey(target, fk.ReferencedColumn) && target.ColumnByName(fk.ReferencedColumn) != nil {
				direct.JoinReference = fk.ReferencedColumn
			}
			inverse := &models.Relationship{
				Kind:        models.Inverse,
				Source:      target.Name,
				Target:      table.Name,
				ForeignKey:  fk,
				Cardinality: models.OneToMany,
			}
			if fk.Cardinality == models.OneToOne {
				inverse.Cardinality = models.OneToOne
			}
			// Cascades live on the parent side only
			if len(fk.Cascade) > 0 {
				inverse.Cascade = fk.Cascade
				inverse.OrphanRemoval = fk.OnDelete == "CASCADE"
			}
			direct.Opposite = inverse
			inverse.Opposite = direct

			table.AddRelation(direct)
			target.AddRelation(inverse)

			if fk.SelfReference(table.Name) {
				sa.SelfReferences[table.Name] = append(sa.SelfReferences[table.Name], fk)
				continue
			}

			// Add edge to dependency graph
			// Use weight=1 for mandatory (NOT NULL) foreign keys
			// Use weight=2 for optional (nullable) foreign keys
			weight := int64(2)
			if col := table.ColumnByName(fk.Column); col != nil && !col.Nullable {
				weight = int64(1)
			}
			sa.DependencyGraph.AddCost(sa.TableIndexMap[table.Name], sa.TableIndexMap[target.Name], weight)
		}
	}
}

// detectJunctionTables classifies many-to-many tables and replaces the
// one-to-many inverse edges on both ends with a many-to-many pair
func (sa *SchemaAnalyzer) detectJunctionTables() {
	for _, table := range sa.Schema.Tables {
		if !sa.IsJunction(table) {
			continue
		}
		first, second := table.ForeignKeys[0], table.ForeignKeys[1]
		a := sa.Schema.Table(first.ReferencedTable)
		b := sa.Schema.Table(second.ReferencedTable)

		table.Category = models.Junction
		table.JunctionOf = [2]string{a.Name, b.Name}
		sa.JunctionTables[table.Name] = true

		// Replace the one-to-many inverses with a many-to-many pair
		a.RemoveRelation(inverseKey(a.Name, table.Name, first))
		b.RemoveRelation(inverseKey(b.Name, table.Name, second))

		owner := &models.Relationship{
			Kind:        models.ManyToManyOwner,
			Source:      a.Name,
			Target:      b.Name,
			ForeignKey:  first,
			Cardinality: models.ManyToMany,
			Via:         table.Name,
			JoinColumn:  first.Column,
			InverseJoin: second.Column,
		}
		mapped := &models.Relationship{
			Kind:        models.ManyToManyInverse,
			Source:      b.Name,
			Target:      a.Name,
			ForeignKey:  second,
			Cardinality: models.ManyToMany,
			Via:         table.Name,
			JoinColumn:  second.Column,
			InverseJoin: first.Column,
		}
		owner.Opposite = mapped
		mapped.Opposite = owner
		a.AddRelation(owner)
		b.AddRelation(mapped)

		sa.Logger.Debugf("Table %s is a junction between %s and %s", table.Name, a.Name, b.Name)
	}
}

func inverseKey(source, target string, fk *models.ForeignKey) string {
	r := &models.Relationship{Kind: models.Inverse, Source: source, Target: target, ForeignKey: fk}
	return r.Key()
}

// IsJunction reports whether a table only links two other tables: exactly two
// resolved foreign keys forming its composite primary key, a name built from
// the two referenced tables (or a junction suffix) and an explicit
// referential action clause.
func (sa *SchemaAnalyzer) IsJunction(table *models.Table) bool {
	if len(table.ForeignKeys) != 2 || len(table.CompositeKey) != 2 {
		return false
	}
	first, second := table.ForeignKeys[0], table.ForeignKeys[1]
	if sa.Schema.Table(first.ReferencedTable) == nil || sa.Schema.Table(second.ReferencedTable) == nil {
		return false
	}
	if !table.IsPrimaryKeyColumn(first.Column) || !table.IsPrimaryKeyColumn(second.Column) ||
		strings.EqualFold(first.Column, second.Column) {
		return false
	}

	if !junctionName(table.Name, first.ReferencedTable, second.ReferencedTable) {
		sa.Logger.Debugf("Table %s links %s and %s but its name does not, keeping it regular",
			table.Name, first.ReferencedTable, second.ReferencedTable)
		return false
	}
	if !referentialClauseRegex.MatchString(table.Statement) {
		sa.Logger.Debugf("Table %s has no ON DELETE/ON UPDATE clause, keeping it regular", table.Name)
		return false
	}
	return true
}

// junctionName checks {a}_{b}, {b}_{a} (singular or plural forms) and the
// junction suffixes
func junctionName(name, a, b string) bool {
	name = strings.ToLower(name)
	for _, suffix := range junctionSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	for _, x := range nameForms(a) {
		for _, y := range nameForms(b) {
			if name == x+"_"+y || name == y+"_"+x {
				return true
			}
		}
	}
	return false
}

func nameForms(table string) []string {
	singular := naming.Singularize(strings.ToLower(table))
	return []string{strings.ToLower(table), singular, naming.Pluralize(singular)}
}

// assignFieldNames names every association field. Scalar and direct fields
// are fixed for all tables first, so inverse fields can be disambiguated by
// the direct field they are mapped by.
func (sa *SchemaAnalyzer) assignFieldNames() {
	used := make(map[string]map[string]bool)

	// First pass: scalar and direct fields
	for _, table := range sa.Schema.Tables {
		taken := make(map[string]bool)
		used[table.Name] = taken

		// Composite keys are held in an embedded id field
		if table.HasCompositeKey() {
			taken["id"] = true
		}
		for _, col := range table.Columns {
			if col.ForeignKey && !sa.isUnresolved(table.Name, col.Name) && !table.IsPrimaryKeyColumn(col.Name) {
				continue
			}
			if table.HasCompositeKey() && table.IsPrimaryKeyColumn(col.Name) {
				continue
			}
			taken[naming.FieldName(col.Name)] = true
		}

		for _, rel := range table.Relations() {
			if rel.Kind != models.Direct {
				continue
			}
			name := naming.FieldName(naming.StripIDSuffix(rel.ForeignKey.Column))
			if taken[name] {
				name = naming.FieldName(rel.ForeignKey.Column)
			}
			rel.FieldName = uniqueName(name, taken)
		}
	}

	// Second pass: collections and inverse fields
	for _, table := range sa.Schema.Tables {
		taken := used[table.Name]
		for _, rel := range table.Relations() {
			switch rel.Kind {
			case models.ManyToManyOwner, models.ManyToManyInverse:
				rel.FieldName = uniqueName(naming.CollectionName(rel.Target), taken)
			case models.Inverse:
				name := naming.CollectionName(rel.Target)
				if rel.Cardinality == models.OneToOne {
					name = naming.AssociationName(rel.Target)
				}
				if taken[name] && rel.Opposite != nil {
					name += naming.CamelToPascal(rel.Opposite.FieldName)
				}
				rel.FieldName = uniqueName(name, taken)
			}
		}
	}
}

func uniqueName(name string, taken map[string]bool) string {
	candidate := name
	for i := 2; taken[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	taken[candidate] = true
	return candidate
}

func (sa *SchemaAnalyzer) isUnresolved(table, column string) bool {
	for _, fk := range sa.Unresolved[table] {
		if strings.EqualFold(fk.Column, column) {
			return true
		}
	}
	return false
}

func (sa *SchemaAnalyzer) unresolvedTotal() int {
	total := 0
	for _, fks := range sa.Unresolved {
		total += len(fks)
	}
	return total
}

// UnresolvedCounts returns the number of foreign keys per table whose
// referenced table is not part of the schema
func (sa *SchemaAnalyzer) UnresolvedCounts() map[string]int {
	counts := make(map[string]int, len(sa.Unresolved))
	for table, fks := range sa.Unresolved {
		counts[table] = len(fks)
	}
	return counts
}

// detectCircularGroups records the strongly connected components of the
// dependency graph that contain more than one table
func (sa *SchemaAnalyzer) detectCircularGroups() {
	sa.CircularGroups = nil
	if graph.Acyclic(sa.DependencyGraph) {
		return
	}
	for _, component := range graph.StrongComponents(sa.DependencyGraph) {
		if len(component) < 2 {
			continue
		}
		group := make([]string, 0, len(component))
		for _, idx := range component {
			group = append(group, sa.IndexTableMap[idx])
		}
		sort.Strings(group)
		sa.CircularGroups = append(sa.CircularGroups, group)
	}
	sort.Slice(sa.CircularGroups, func(i, j int) bool {
		return sa.CircularGroups[i][0] < sa.CircularGroups[j][0]
	})
	for _, group := range sa.CircularGroups {
		sa.Logger.Warnf("Circular foreign key dependency between tables: %s", strings.Join(group, ", "))
	}
}

// GetCircularTables returns tables involved in circular dependencies
func (sa *SchemaAnalyzer) GetCircularTables() map[string]bool {
	circularTables := make(map[string]bool)
	for _, group := range sa.CircularGroups {
		for _, table := range group {
			circularTables[table] = true
		}
	}
	return circularTables
}

// GetTableInsertionOrder orders tables so that referenced tables come before
// the tables that reference them. Edges inside a circular group are ignored,
// and junction tables are moved to the end.
func (sa *SchemaAnalyzer) GetTableInsertionOrder() ([]string, map[string]bool) {
	circularTables := sa.GetCircularTables()

	// Map each table to its circular group, if any
	component := make(map[string]int)
	for i, group := range sa.CircularGroups {
		for _, table := range group {
			component[table] = i + 1
		}
	}

	// Reverse the dependency edges: referenced table -> referencing table
	n := len(sa.Schema.Tables)
	ordering := graph.New(n)
	for v := 0; v < n; v++ {
		sa.DependencyGraph.Visit(v, func(w int, _ int64) bool {
			src, dst := sa.IndexTableMap[v], sa.IndexTableMap[w]
			if c := component[src]; c != 0 && c == component[dst] {
				return false
			}
			ordering.Add(w, v)
			return false
		})
	}

	// Perform topological sort
	order, ok := graph.TopSort(graph.Sort(ordering))
	if !ok {
		sa.Logger.Warn("Dependency graph still cyclic, falling back to source order")
		order = make([]int, n)
		for i := range order {
			order[i] = i
		}
	}

	var orderedTables, junctionTables []string
	for _, idx := range order {
		table := sa.IndexTableMap[idx]
		if sa.JunctionTables[table] {
			junctionTables = append(junctionTables, table)
			continue
		}
		orderedTables = append(orderedTables, table)
	}
	return append(orderedTables, junctionTables...), circularTables
}

// referencesPrimaryKey reports whether column is the target's simple primary
// key. An empty column means REFERENCES without a column list.
func referencesPrimaryKey(target *models.Table, column string) bool {
	if column == "" {
		return true
	}
	return target.PrimaryKey != nil && !target.HasCompositeKey() && strings.EqualFold(target.PrimaryKey.Name, column)
}
