package strategy

import (
	"github.com/andressep95/SQLift/pkg/models"
)

var lombokAnnotations = []string{"Getter", "Setter", "NoArgsConstructor", "AllArgsConstructor"}

// LombokStrategy replaces explicit constructors and accessors with Lombok annotations
type LombokStrategy struct {
	used bool
}

// NewLombokStrategy creates a new Lombok strategy
func NewLombokStrategy() *LombokStrategy {
	return &LombokStrategy{}
}

func (s *LombokStrategy) Name() string { return "lombok" }

func (s *LombokStrategy) Begin(*models.Table) { s.used = false }

func (s *LombokStrategy) SuppressBoilerplate() bool { return true }

func (s *LombokStrategy) ClassDecoration(*models.Table) []string {
	return s.annotations()
}

func (s *LombokStrategy) EmbeddableDecoration(*models.Table) []string {
	return s.annotations()
}

func (s *LombokStrategy) annotations() []string {
	s.used = true
	lines := make([]string, len(lombokAnnotations))
	for i, a := range lombokAnnotations {
		lines[i] = "@" + a
	}
	return lines
}

func (s *LombokStrategy) FieldDecoration(*models.Table, *Field) []string { return nil }

func (s *LombokStrategy) RelationshipDecoration(*models.Table, *Field) []string { return nil }

func (s *LombokStrategy) Imports() []string {
	if !s.used {
		return nil
	}
	imports := make([]string, len(lombokAnnotations))
	for i, a := range lombokAnnotations {
		imports[i] = "lombok." + a
	}
	return imports
}
