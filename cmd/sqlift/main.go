package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/andressep95/SQLift/internal/config"
	"github.com/andressep95/SQLift/internal/generator"
	"github.com/andressep95/SQLift/internal/seeder"
	"github.com/andressep95/SQLift/internal/source"
	"github.com/andressep95/SQLift/internal/utils"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	envFile    string
	logLevel   string
	schemaPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sqlift",
		Short: "Generate Java entity classes from SQL schema files",
		Long: `SQLift

Reads CREATE TABLE statements, infers relationships between tables
(associations, inverse collections, many-to-many junction tables) and
writes one annotated Java entity class per table.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "s", "", "Schema file or directory (overrides sql.schema)")

	rootCmd.AddCommand(newInitCmd(), newGenerateCmd(), newAnalyzeCmd(), newSeedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.WriteDefault(cfgFile, force); err != nil {
				if errors.Is(err, config.ErrConfigExists) {
					color.Yellow("⚠ %s already exists, use --force to overwrite it", cfgFile)
				} else {
					color.Red("✖ %v", err)
				}
				os.Exit(1)
			}
			color.Green("✔ Created %s", cfgFile)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate entity classes from the configured schema",
		Run: func(cmd *cobra.Command, args []string) {
			logger := setup()

			cfg, err := loadConfig(logger, true)
			if err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}
			if !utils.ValidateOutputParams(cfg.SQL.Output.Package, cfg.SQL.Output.Directory, logger) {
				os.Exit(1)
			}

			settings, err := cfg.Settings()
			if err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}
			g, err := generator.New(settings, logger)
			if err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}

			sql, err := source.NewSchemaSource(cfg.SQL.Schema, logger).Load()
			if err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}

			color.Cyan("→ Generating entities from %s", cfg.SQL.Schema)
			result, genErr := g.Generate(sql)

			writer := generator.NewFileWriter(settings.OutputDir, logger)
			if err := writer.Write(result.Files); err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}

			utils.PrintSummary(result, settings.OutputDir)

			if genErr != nil {
				color.Red("✖ %d table(s) could not be generated", len(result.Failures))
				os.Exit(1)
			}
			if len(result.Unresolved) > 0 {
				color.Yellow("⚠ Some foreign keys reference unknown tables and were kept as plain columns")
			}
			color.Green("✔ Generated %d entities", len(result.Files))
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Print the relationship analysis of the schema without writing files",
		Run: func(cmd *cobra.Command, args []string) {
			logger := setup()

			cfg, err := loadConfig(logger, false)
			if err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}
			engine, err := generator.NewEngine(cfg.SQL.Engine, logger)
			if err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}

			sql, err := source.NewSchemaSource(cfg.SQL.Schema, logger).Load()
			if err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}

			schema, schemaAnalyzer := engine.Process(sql)
			if len(schema.Tables) == 0 {
				color.Yellow("⚠ No CREATE TABLE statements found in %s", cfg.SQL.Schema)
				return
			}
			utils.PrintSchemaAnalysis(schemaAnalyzer)
		},
	}
}

func newSeedCmd() *cobra.Command {
	var (
		records int
		out     string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write an INSERT script with sample data for every table",
		Run: func(cmd *cobra.Command, args []string) {
			logger := setup()

			cfg, err := loadConfig(logger, false)
			if err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}
			engine, err := generator.NewEngine(cfg.SQL.Engine, logger)
			if err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}

			sql, err := source.NewSchemaSource(cfg.SQL.Schema, logger).Load()
			if err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}

			schema, schemaAnalyzer := engine.Process(sql)
			if len(schema.Tables) == 0 {
				color.Yellow("⚠ No CREATE TABLE statements found in %s", cfg.SQL.Schema)
				return
			}

			dataGenerator := seeder.NewDataGenerator(logger)
			script, err := seeder.NewSeeder(schemaAnalyzer, dataGenerator, records, logger).Generate()
			if err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}

			if out == "-" {
				fmt.Print(script.SQL)
				return
			}
			if err := os.WriteFile(out, []byte(script.SQL), 0o644); err != nil {
				color.Red("✖ %v", err)
				os.Exit(1)
			}
			color.Green("✔ Wrote sample data for %d tables to %s", len(script.Rows), out)
		},
	}
	cmd.Flags().IntVarP(&records, "records", "r", utils.GetEnvInt("SQLIFT_SEED_RECORDS", 10), "Number of records to generate per table")
	cmd.Flags().StringVarP(&out, "out", "o", "seed.sql", "Output file, - for standard output")
	return cmd
}

func setup() *logrus.Logger {
	logger := utils.SetupLogging(logLevel)
	utils.LoadEnvironmentVariables(envFile, logger)
	return logger
}

// loadConfig reads and validates the configuration file. Without one,
// commands that only read the schema fall back to the defaults when
// --schema is given.
func loadConfig(logger *logrus.Logger, required bool) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		if required || schemaPath == "" {
			return nil, err
		}
		logger.Debugf("No usable configuration (%v), using defaults", err)
		cfg = config.Default()
	}
	if schemaPath != "" {
		cfg.SQL.Schema = schemaPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
