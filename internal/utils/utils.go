package utils

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/andressep95/SQLift/internal/analyzer"
	"github.com/andressep95/SQLift/internal/generator"
	"github.com/andressep95/SQLift/pkg/models"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var javaIdentifierRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	// Create a new logger
	logger := logrus.New()

	// Get log level from environment variable or parameter
	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv("SQLIFT_LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	// Parse log level, falling back to info
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	// Configure logger
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stderr)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads environment variables from an env file.
// It reports whether the file was loaded.
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	// Check if the env file exists
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// Point at the sample file when one is present
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		} else {
			logger.Debugf("No %s file found, using existing environment variables", envFile)
		}
		return false
	}

	// Load the env file
	if err := godotenv.Load(envFile); err != nil {
		logger.Warnf("Error loading %s file: %v", envFile, err)
		return false
	}
	logger.Infof("Loaded environment variables from %s", envFile)

	// Log loaded variables at debug level
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		for _, env := range os.Environ() {
			if strings.HasPrefix(env, "SQLIFT_") {
				logger.Debug(env)
			}
		}
	}
	return true
}

// GetEnvInt gets an integer value from environment variable
func GetEnvInt(varName string, defaultValue int) int {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// ValidateOutputParams validates the output package and directory
func ValidateOutputParams(basePackage, directory string, logger *logrus.Logger) bool {
	if basePackage == "" {
		logger.Error("Output package is required")
		return false
	}

	// Every package segment must be a Java identifier
	for _, segment := range strings.Split(basePackage, ".") {
		if !javaIdentifierRegex.MatchString(segment) {
			logger.Errorf("Invalid package name: %s", basePackage)
			return false
		}
	}

	if directory == "" {
		logger.Error("Output directory is required")
		return false
	}

	return true
}

// PrintSummary prints a summary of the generation run
func PrintSummary(result *generator.Result, outputDir string) {
	FprintSummary(os.Stdout, result, outputDir)
}

// FprintSummary writes the generation summary to w
func FprintSummary(w io.Writer, result *generator.Result, outputDir string) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "ENTITY GENERATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Tables processed: %d\n", len(result.Schema.Tables))
	fmt.Fprintf(w, "Entities generated: %d\n", len(result.Files))
	fmt.Fprintf(w, "Junction tables mapped as many-to-many: %d\n", len(result.Skipped))
	fmt.Fprintf(w, "Failed tables: %d\n", len(result.Failures))
	fmt.Fprintf(w, "Output directory: %s\n", outputDir)

	// Print failures
	if len(result.Failures) > 0 {
		fmt.Fprintln(w, "\nFailed tables:")
		for _, err := range result.Failures {
			fmt.Fprintf(w, "  - %v\n", err)
		}
	}

	// Print unresolved references
	if len(result.Unresolved) > 0 {
		fmt.Fprintln(w, "\nUnresolved foreign keys (rendered as plain columns):")
		for _, table := range sortedKeys(result.Unresolved) {
			fmt.Fprintf(w, "  - %s: %d\n", table, result.Unresolved[table])
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", 50))
}

// PrintSchemaAnalysis prints a detailed analysis of the schema
func PrintSchemaAnalysis(schemaAnalyzer *analyzer.SchemaAnalyzer) {
	FprintSchemaAnalysis(os.Stdout, schemaAnalyzer)
}

// FprintSchemaAnalysis writes the schema analysis report to w
func FprintSchemaAnalysis(w io.Writer, schemaAnalyzer *analyzer.SchemaAnalyzer) {
	tables := schemaAnalyzer.Schema.Tables
	junctionTables := schemaAnalyzer.JunctionTables

	// Get table insertion order
	orderedTables, circularTables := schemaAnalyzer.GetTableInsertionOrder()

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(w, "SCHEMA ANALYSIS REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	// Basic statistics
	withFKs := 0
	for _, table := range tables {
		if len(table.ForeignKeys) > 0 {
			withFKs++
		}
	}

	fmt.Fprintln(w, "\n1. BASIC STATISTICS")
	fmt.Fprintf(w, "   Total tables: %d\n", len(tables))
	fmt.Fprintf(w, "   Tables with foreign keys: %d\n", withFKs)
	fmt.Fprintf(w, "   Junction tables: %d\n", len(junctionTables))
	fmt.Fprintf(w, "   Tables in circular dependencies: %d\n", len(circularTables))

	// Categorize tables
	var standaloneTables, dependentTables []string
	for _, table := range tables {
		switch {
		case junctionTables[table.Name] || circularTables[table.Name]:
		case len(table.ForeignKeys) == 0:
			standaloneTables = append(standaloneTables, table.Name)
		default:
			dependentTables = append(dependentTables, table.Name)
		}
	}

	fmt.Fprintln(w, "\n2. TABLE CATEGORIES")
	fmt.Fprintf(w, "   Standalone tables (no foreign keys): %d\n", len(standaloneTables))
	fmt.Fprintf(w, "   Dependent tables (with foreign keys, no circular deps): %d\n", len(dependentTables))
	fmt.Fprintf(w, "   Junction tables: %d\n", len(junctionTables))
	fmt.Fprintf(w, "   Tables in circular dependencies: %d\n", len(circularTables))

	// Circular dependencies
	if len(schemaAnalyzer.CircularGroups) > 0 {
		fmt.Fprintln(w, "\n3. CIRCULAR DEPENDENCIES")
		for _, group := range schemaAnalyzer.CircularGroups {
			fmt.Fprintf(w, "   %s\n", strings.Join(group, " <-> "))
		}
	}

	// Junction tables
	if len(junctionTables) > 0 {
		fmt.Fprintln(w, "\n4. JUNCTION TABLES")
		for _, name := range sortedKeys(junctionTables) {
			table := schemaAnalyzer.Schema.Table(name)
			fmt.Fprintf(w, "   %s (%s <-> %s)\n", name, table.JunctionOf[0], table.JunctionOf[1])
		}
	}

	if len(schemaAnalyzer.SelfReferences) > 0 {
		fmt.Fprintln(w, "\n5. SELF REFERENCES")
		for _, name := range sortedKeys(schemaAnalyzer.SelfReferences) {
			fmt.Fprintf(w, "   %s: %s\n", name, fkColumns(schemaAnalyzer.SelfReferences[name]))
		}
	}

	if len(schemaAnalyzer.Unresolved) > 0 {
		fmt.Fprintln(w, "\n6. UNRESOLVED FOREIGN KEYS")
		for _, name := range sortedKeys(schemaAnalyzer.Unresolved) {
			for _, fk := range schemaAnalyzer.Unresolved[name] {
				fmt.Fprintf(w, "   %s.%s -> %s (table not found)\n", name, fk.Column, fk.ReferencedTable)
			}
		}
	}

	// Recommended insertion order
	fmt.Fprintln(w, "\n7. RECOMMENDED TABLE INSERTION ORDER")
	for i, name := range orderedTables {
		category := "Standalone"
		if junctionTables[name] {
			category = "Junction"
		} else if circularTables[name] {
			category = "Circular"
		} else if table := schemaAnalyzer.Schema.Table(name); table != nil && len(table.ForeignKeys) > 0 {
			category = "Dependent"
		}
		fmt.Fprintf(w, "   %3d. %s (%s)\n", i+1, name, category)
	}

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
}

func fkColumns(fks []*models.ForeignKey) string {
	cols := make([]string, len(fks))
	for i, fk := range fks {
		cols[i] = fk.Column
	}
	return strings.Join(cols, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
