// Package generator runs the whole schema to entity pipeline and writes the
// resulting Java sources.
package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andressep95/SQLift/internal/analyzer"
	"github.com/andressep95/SQLift/internal/builder"
	"github.com/andressep95/SQLift/internal/strategy"
	"github.com/andressep95/SQLift/pkg/models"
	"github.com/sirupsen/logrus"
)

// Settings selects the dialect, output namespace and strategies of a run
type Settings struct {
	Engine      string
	BasePackage string
	OutputDir   string
	Strategies  []strategy.Strategy
}

// GeneratedFile is one rendered entity
type GeneratedFile struct {
	Table  string
	Class  string
	Path   string // relative to the source root
	Source string
}

// Result summarizes one generation run
type Result struct {
	Files      []GeneratedFile
	Failures   []error
	Skipped    []string       // junction tables rendered as many-to-many fields instead
	Unresolved map[string]int // foreign keys per table whose target table is missing
	Schema     *models.Schema
	Analyzer   *analyzer.SchemaAnalyzer
}

// Generator drives extraction, analysis and rendering
type Generator struct {
	Settings Settings
	Engine   Engine
	Logger   *logrus.Logger
}

// New creates a generator; an unknown engine fails before any work is done
func New(settings Settings, logger *logrus.Logger) (*Generator, error) {
	engine, err := NewEngine(settings.Engine, logger)
	if err != nil {
		return nil, err
	}
	return &Generator{Settings: settings, Engine: engine, Logger: logger}, nil
}

// Generate renders one entity per regular table, in source order. A table
// that cannot be built is reported in Result.Failures and in the returned
// error; the other tables are still generated.
func (g *Generator) Generate(sql string) (*Result, error) {
	schema, sa := g.Engine.Process(sql)
	result := &Result{
		Unresolved: sa.UnresolvedCounts(),
		Schema:     schema,
		Analyzer:   sa,
	}
	if len(schema.Tables) == 0 {
		g.Logger.Warn("No CREATE TABLE statements found")
		return result, nil
	}

	b := builder.NewEntityBuilder(g.Settings.BasePackage, g.Settings.Strategies)
	for _, table := range schema.Tables {
		if table.Category == models.Junction {
			g.Logger.Debugf("Skipping junction table %s", table.Name)
			result.Skipped = append(result.Skipped, table.Name)
			continue
		}

		source, err := b.WithTable(table).Build()
		if err != nil {
			g.Logger.Errorf("Failed to generate entity for table %s: %v", table.Name, err)
			result.Failures = append(result.Failures, err)
			continue
		}
		class := b.ClassName()
		result.Files = append(result.Files, GeneratedFile{
			Table:  table.Name,
			Class:  class,
			Path:   OutputPath(g.Settings.BasePackage, class),
			Source: source,
		})
		g.Logger.Debugf("Generated %s from table %s", class, table.Name)
	}

	return result, errors.Join(result.Failures...)
}

// OutputPath derives the source file path of a class in a package
func OutputPath(basePackage, class string) string {
	dir := strings.ReplaceAll(strings.Trim(basePackage, "."), ".", string(filepath.Separator))
	return filepath.Join(dir, class+".java")
}

// FileWriter writes generated files below a source root directory
type FileWriter struct {
	Root   string
	Logger *logrus.Logger
}

// NewFileWriter creates a new file writer
func NewFileWriter(root string, logger *logrus.Logger) *FileWriter {
	return &FileWriter{Root: root, Logger: logger}
}

// Write creates missing directories and writes every file
func (fw *FileWriter) Write(files []GeneratedFile) error {
	for _, f := range files {
		path := filepath.Join(fw.Root, f.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", f.Class, err)
		}
		if err := os.WriteFile(path, []byte(f.Source), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fw.Logger.Infof("Wrote %s", path)
	}
	return nil
}
