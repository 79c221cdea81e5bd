package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// SchemaSource reads DDL text from a file or a directory of .sql files
type SchemaSource struct {
	Path   string
	Logger *logrus.Logger
}

// NewSchemaSource creates a new schema source
func NewSchemaSource(path string, logger *logrus.Logger) *SchemaSource {
	if path == "" {
		path = getEnvOrDefault("SQLIFT_SCHEMA", "schema.sql")
	}

	return &SchemaSource{
		Path:   path,
		Logger: logger,
	}
}

// Load returns the schema text. A directory contributes its .sql files in
// name order, joined by newlines.
func (ss *SchemaSource) Load() (string, error) {
	info, err := os.Stat(ss.Path)
	if err != nil {
		ss.Logger.Errorf("Error reading schema path %s: %v", ss.Path, err)
		return "", fmt.Errorf("schema path %s: %w", ss.Path, err)
	}

	if !info.IsDir() {
		data, err := os.ReadFile(ss.Path)
		if err != nil {
			return "", fmt.Errorf("read schema %s: %w", ss.Path, err)
		}
		ss.Logger.Infof("Loaded schema from %s", ss.Path)
		return string(data), nil
	}

	files, err := ss.sqlFiles()
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		ss.Logger.Warnf("No .sql files found in %s", ss.Path)
		return "", nil
	}

	parts := make([]string, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read schema %s: %w", file, err)
		}
		ss.Logger.Debugf("Read %s", file)
		parts = append(parts, string(data))
	}
	ss.Logger.Infof("Loaded %d schema files from %s", len(files), ss.Path)
	return strings.Join(parts, "\n"), nil
}

func (ss *SchemaSource) sqlFiles() ([]string, error) {
	entries, err := os.ReadDir(ss.Path)
	if err != nil {
		return nil, fmt.Errorf("list schema directory %s: %w", ss.Path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".sql") {
			continue
		}
		files = append(files, filepath.Join(ss.Path, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
