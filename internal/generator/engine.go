package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andressep95/SQLift/internal/analyzer"
	"github.com/andressep95/SQLift/internal/extractor"
	"github.com/andressep95/SQLift/pkg/models"
	"github.com/sirupsen/logrus"
)

// ErrUnsupportedEngine indicates an unknown SQL dialect selector.
var ErrUnsupportedEngine = errors.New("sqlift: unsupported engine")

// Engine turns schema text of one SQL dialect into an analyzed schema
type Engine interface {
	Name() string
	Process(sql string) (*models.Schema, *analyzer.SchemaAnalyzer)
}

// PostgresEngine handles PostgreSQL flavored CREATE TABLE text
type PostgresEngine struct {
	Logger *logrus.Logger
}

func (e *PostgresEngine) Name() string { return "postgresql" }

// Process extracts every table and resolves their relationships
func (e *PostgresEngine) Process(sql string) (*models.Schema, *analyzer.SchemaAnalyzer) {
	schema := extractor.New(e.Logger).Extract(sql)
	sa := analyzer.NewSchemaAnalyzer(schema, e.Logger)
	sa.AnalyzeSchema()
	return schema, sa
}

// NewEngine returns the engine for a dialect name
func NewEngine(name string, logger *logrus.Logger) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgresql", "postgres":
		return &PostgresEngine{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEngine, name)
	}
}
