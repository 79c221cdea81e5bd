package models

import (
	"strings"
)

// Column represents a single column definition of a CREATE TABLE statement
type Column struct {
	Name       string
	Type       string // normalized lower-case type token, e.g. "varchar", "double precision"
	Length     string // raw size/precision argument, e.g. "50" or "10,2"
	Nullable   bool
	Unique     bool
	Default    string // recognized default literal, empty when absent or unrecognized
	ForeignKey bool
}

// Precision splits a "precision,scale" length argument
func (c *Column) Precision() (precision, scale string) {
	parts := strings.SplitN(c.Length, ",", 2)
	precision = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		scale = strings.TrimSpace(parts[1])
	}
	return precision, scale
}

// IsSerial reports whether the column type is an auto-incrementing serial type
func (c *Column) IsSerial() bool {
	switch c.Type {
	case "serial", "bigserial", "smallserial":
		return true
	}
	return false
}

// Cardinality is the association multiplicity seen from the side holding the field
type Cardinality int

const (
	ManyToOne Cardinality = iota
	OneToOne
	OneToMany
	ManyToMany
)

func (c Cardinality) String() string {
	switch c {
	case OneToOne:
		return "ONE_TO_ONE"
	case OneToMany:
		return "ONE_TO_MANY"
	case ManyToMany:
		return "MANY_TO_MANY"
	default:
		return "MANY_TO_ONE"
	}
}

// FetchMode controls association loading
type FetchMode int

const (
	Lazy FetchMode = iota
	Eager
)

func (f FetchMode) String() string {
	if f == Eager {
		return "EAGER"
	}
	return "LAZY"
}

// CascadeType is a persistence cascade operation
type CascadeType string

const (
	CascadeAll     CascadeType = "ALL"
	CascadePersist CascadeType = "PERSIST"
	CascadeMerge   CascadeType = "MERGE"
	CascadeRemove  CascadeType = "REMOVE"
	CascadeRefresh CascadeType = "REFRESH"
	CascadeDetach  CascadeType = "DETACH"
)

// ForeignKey represents a foreign key declared inline or as a table constraint
type ForeignKey struct {
	Column           string
	ReferencedTable  string // lower-cased
	ReferencedColumn string
	Cardinality      Cardinality
	Fetch            FetchMode
	Cascade          []CascadeType // applied to the referenced (parent) side
	OnDelete         string // referential action, e.g. "CASCADE", "SET NULL"
	OnUpdate         string
	Owner            bool // the table declaring the key holds the join column
}

// NewForeignKey creates a foreign key with the default many-to-one, lazy, owning settings
func NewForeignKey(column, referencedTable, referencedColumn string) *ForeignKey {
	return &ForeignKey{
		Column:           column,
		ReferencedTable:  strings.ToLower(referencedTable),
		ReferencedColumn: referencedColumn,
		Cardinality:      ManyToOne,
		Fetch:            Lazy,
		Owner:            true,
	}
}

// SelfReference reports whether the key points back at its own table
func (fk *ForeignKey) SelfReference(table string) bool {
	return strings.EqualFold(fk.ReferencedTable, table)
}

// TableCategory represents the category of a table
type TableCategory int

const (
	Regular TableCategory = iota
	Junction
)

func (c TableCategory) String() string {
	if c == Junction {
		return "JUNCTION"
	}
	return "REGULAR"
}

// Table represents a CREATE TABLE statement and the associations resolved for it
type Table struct {
	Name         string // lower-cased
	Columns      []*Column
	PrimaryKey   *Column   // simple primary key
	CompositeKey []*Column // two or more primary key columns
	ForeignKeys  []*ForeignKey
	Uniques      [][]string // multi-column UNIQUE constraints
	Category     TableCategory
	JunctionOf   [2]string // associated tables when Category is Junction
	Statement    string    // raw statement text

	relations   []*Relationship
	relationIdx map[string]int
}

// NewTable creates an empty table with a normalized name
func NewTable(name string) *Table {
	return &Table{
		Name:        strings.ToLower(name),
		relationIdx: make(map[string]int),
	}
}

// ColumnByName looks up a column, ignoring case
func (t *Table) ColumnByName(name string) *Column {
	for _, col := range t.Columns {
		if strings.EqualFold(col.Name, name) {
			return col
		}
	}
	return nil
}

// ForeignKeyFor returns the foreign key owned by the given column
func (t *Table) ForeignKeyFor(column string) *ForeignKey {
	for _, fk := range t.ForeignKeys {
		if strings.EqualFold(fk.Column, column) {
			return fk
		}
	}
	return nil
}

// HasPrimaryKey reports whether a simple or composite key was recovered
func (t *Table) HasPrimaryKey() bool {
	return t.PrimaryKey != nil || len(t.CompositeKey) > 0
}

// HasCompositeKey reports whether the table is keyed by two or more columns
func (t *Table) HasCompositeKey() bool {
	return len(t.CompositeKey) > 1
}

// IsPrimaryKeyColumn reports whether the column takes part in the primary key
func (t *Table) IsPrimaryKeyColumn(name string) bool {
	if t.PrimaryKey != nil && strings.EqualFold(t.PrimaryKey.Name, name) {
		return true
	}
	for _, col := range t.CompositeKey {
		if strings.EqualFold(col.Name, name) {
			return true
		}
	}
	return false
}

// Relations returns the resolved associations in registration order
func (t *Table) Relations() []*Relationship {
	return t.relations
}

// AddRelation registers an association. A relation with the same key replaces
// the existing one in place, so resolving twice never duplicates fields.
func (t *Table) AddRelation(r *Relationship) {
	if t.relationIdx == nil {
		t.relationIdx = make(map[string]int)
	}
	key := r.Key()
	if i, ok := t.relationIdx[key]; ok {
		t.relations[i] = r
		return
	}
	t.relationIdx[key] = len(t.relations)
	t.relations = append(t.relations, r)
}

// RemoveRelation drops the association with the given key
func (t *Table) RemoveRelation(key string) {
	i, ok := t.relationIdx[key]
	if !ok {
		return
	}
	t.relations = append(t.relations[:i], t.relations[i+1:]...)
	delete(t.relationIdx, key)
	for k, idx := range t.relationIdx {
		if idx > i {
			t.relationIdx[k] = idx - 1
		}
	}
}

// ResetRelations clears resolved associations and classification
func (t *Table) ResetRelations() {
	t.relations = nil
	t.relationIdx = make(map[string]int)
	t.Category = Regular
	t.JunctionOf = [2]string{}
}

// RelationKind tells which side of a foreign key an association field sits on
type RelationKind int

const (
	Direct RelationKind = iota
	Inverse
	ManyToManyOwner
	ManyToManyInverse
)

func (k RelationKind) String() string {
	switch k {
	case Inverse:
		return "inverse"
	case ManyToManyOwner:
		return "many-to-many owner"
	case ManyToManyInverse:
		return "many-to-many inverse"
	default:
		return "direct"
	}
}

// Relationship is a resolved association field on Source pointing at Target.
// It is a view over a ForeignKey; it owns no column of its own.
type Relationship struct {
	Kind          RelationKind
	Source        string // table holding the field
	Target        string // table of the associated entity
	ForeignKey    *ForeignKey
	Cardinality   Cardinality
	FieldName     string
	Cascade       []CascadeType // set on the inverse side only
	OrphanRemoval bool
	Opposite      *Relationship // other side of the association, when rendered
	Via           string        // junction table for many-to-many
	JoinColumn    string        // junction column pointing at the owner side
	InverseJoin   string        // junction column pointing at the target side
	JoinReference string        // referenced column, when it is not the target's primary key
}

// Key identifies the relationship on its source table: ordered table pair plus owning column
func (r *Relationship) Key() string {
	owner := r.Source
	if r.Kind == Inverse {
		owner = r.Target
	}
	if r.Via != "" {
		owner = r.Via
	}
	column := ""
	if r.ForeignKey != nil {
		column = strings.ToLower(r.ForeignKey.Column)
	}
	return r.Kind.String() + ":" + owner + ">" + r.Source + ">" + r.Target + ":" + column
}

// Owner reports whether the source table holds the join column
func (r *Relationship) Owner() bool {
	return r.Kind == Direct || r.Kind == ManyToManyOwner
}

// Collection reports whether the field is collection valued
func (r *Relationship) Collection() bool {
	return r.Cardinality == OneToMany || r.Cardinality == ManyToMany
}

// MappedBy returns the owning-side field name an inverse field is mapped by
func (r *Relationship) MappedBy() string {
	if r.Owner() || r.Opposite == nil {
		return ""
	}
	return r.Opposite.FieldName
}

// Schema is the ordered set of tables extracted from one schema text
type Schema struct {
	Tables []*Table
	index  map[string]*Table
}

// NewSchema creates an empty schema
func NewSchema() *Schema {
	return &Schema{index: make(map[string]*Table)}
}

// AddTable appends a table; it returns false when the name is already taken
func (s *Schema) AddTable(t *Table) bool {
	if s.index == nil {
		s.index = make(map[string]*Table)
	}
	key := strings.ToLower(t.Name)
	if _, exists := s.index[key]; exists {
		return false
	}
	s.index[key] = t
	s.Tables = append(s.Tables, t)
	return true
}

// Table looks up a table by name, ignoring case
func (s *Schema) Table(name string) *Table {
	return s.index[strings.ToLower(name)]
}

// TableNames returns the table names in source order
func (s *Schema) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}
