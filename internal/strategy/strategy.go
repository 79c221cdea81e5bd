// Package strategy provides the annotation sets applied to generated entities.
//
// A Strategy only produces text; the entity builder decides where that text
// goes. Several strategies can be active at once and are applied in list
// order. Each one tracks the imports its own markers need.
package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andressep95/SQLift/pkg/models"
)

// ErrUnsupportedMode indicates an unknown persistence import family.
var ErrUnsupportedMode = errors.New("sqlift: unsupported persistence mode")

// FieldKind tells a strategy what a generated member represents
type FieldKind int

const (
	// PrimaryKey is the scalar id of a simple-key entity
	PrimaryKey FieldKind = iota
	// EmbeddedKey is the composite id field of a composite-key entity
	EmbeddedKey
	// KeyAttribute is a member of the nested composite id class
	KeyAttribute
	// Attribute is a plain column
	Attribute
	// Association is a single-valued relationship field
	Association
	// Collection is a collection-valued relationship field
	Collection
)

// Field is one member of a generated class
type Field struct {
	Name        string
	Type        string
	Kind        FieldKind
	Column      *models.Column       // backing column, nil for inverse and collection fields
	Relation    *models.Relationship // nil for scalar members
	Initializer string               // Java expression, empty for none
	MapsID      string               // composite id attribute shared with an association
	SharedKey   bool                 // association shares the entity's simple primary key
}

// Strategy contributes decorations and imports to a generated class
type Strategy interface {
	// Name identifies the strategy in logs
	Name() string
	// Begin resets per-class state before a table is rendered
	Begin(table *models.Table)
	// ClassDecoration returns the annotation lines placed above the entity class
	ClassDecoration(table *models.Table) []string
	// EmbeddableDecoration returns the annotation lines placed above a composite id class
	EmbeddableDecoration(table *models.Table) []string
	// FieldDecoration returns the annotation lines for a scalar member
	FieldDecoration(table *models.Table, field *Field) []string
	// RelationshipDecoration returns the annotation lines for an association member
	RelationshipDecoration(table *models.Table, field *Field) []string
	// Imports lists the imports needed by the decorations emitted since Begin
	Imports() []string
	// SuppressBoilerplate reports whether explicit constructors and accessors are generated elsewhere
	SuppressBoilerplate() bool
}

// JPA import families
const (
	JakartaMode = "jakarta"
	JavaxMode   = "javax"
)

// New builds the active strategy list. The boilerplate strategy comes first
// so its class annotations precede the persistence ones.
func New(lombok, jpaEnabled bool, jpaMode string) ([]Strategy, error) {
	var strategies []Strategy
	if lombok {
		strategies = append(strategies, NewLombokStrategy())
	}
	if jpaEnabled {
		jpa, err := NewJPAStrategy(jpaMode)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, jpa)
	}
	return strategies, nil
}

// NewJPAStrategy creates a persistence strategy for the given import family.
// An empty mode selects jakarta.
func NewJPAStrategy(mode string) (*JPAStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", JakartaMode:
		return &JPAStrategy{prefix: JakartaMode + ".persistence", used: make(map[string]bool)}, nil
	case JavaxMode:
		return &JPAStrategy{prefix: JavaxMode + ".persistence", used: make(map[string]bool)}, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected %s or %s)", ErrUnsupportedMode, mode, JakartaMode, JavaxMode)
	}
}
