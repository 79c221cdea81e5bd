package extractor

import (
	"regexp"
)

var (
	// Statement boundaries
	createTableRegex = regexp.MustCompile(`(?i)\bCREATE\s+TABLE\b`)
	tableHeaderRegex = regexp.MustCompile("(?is)^CREATE\\s+TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?(?:[\"`]?\\w+[\"`]?\\.)?[\"`]?(\\w+)[\"`]?")

	// Quoted literals
	quotedRegex = regexp.MustCompile(`'(?:[^']|'')*'`)

	// Column definitions
	columnNameRegex = regexp.MustCompile("^[\"`]?(\\w+)[\"`]?")
	typeTokenRegex  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)`)
	typeArgsRegex   = regexp.MustCompile(`^\s*\(([^)]*)\)`)
	notNullRegex    = regexp.MustCompile(`(?i)\bNOT\s+NULL\b`)
	uniqueRegex     = regexp.MustCompile(`(?i)\bUNIQUE\b`)
	primaryKeyRegex = regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\b`)
	defaultRegex    = regexp.MustCompile(`(?i)\bDEFAULT\s+(TRUE|FALSE|CURRENT_TIMESTAMP|CURRENT_DATE|CURRENT_TIME|NOW\(\))`)
	referencesRegex = regexp.MustCompile("(?i)\\bREFERENCES\\s+(?:[\"`]?\\w+[\"`]?\\.)?[\"`]?(\\w+)[\"`]?\\s*(?:\\(\\s*[\"`]?(\\w+)[\"`]?\\s*\\))?")

	// Referential actions
	onDeleteRegex = regexp.MustCompile(`(?i)\bON\s+DELETE\s+(CASCADE|SET\s+NULL|SET\s+DEFAULT|RESTRICT|NO\s+ACTION)`)
	onUpdateRegex = regexp.MustCompile(`(?i)\bON\s+UPDATE\s+(CASCADE|SET\s+NULL|SET\s+DEFAULT|RESTRICT|NO\s+ACTION)`)

	// Table constraints
	constraintNameRegex = regexp.MustCompile("(?i)^CONSTRAINT\\s+[\"`]?\\w+[\"`]?\\s*")
	keyColumnsRegex     = regexp.MustCompile(`\(([^)]*)\)`)
	foreignKeyRegex     = regexp.MustCompile("(?is)^FOREIGN\\s+KEY\\s*\\(([^)]*)\\)\\s*REFERENCES\\s+(?:[\"`]?\\w+[\"`]?\\.)?[\"`]?(\\w+)[\"`]?\\s*(?:\\(([^)]*)\\))?")
	whitespaceRegex     = regexp.MustCompile(`\s+`)

	// Table-level fragments that carry nothing the model keeps. Index and
	// LIKE matches are confirmed by isSkippedConstraint, since a column named
	// key or like looks the same up to its type.
	checkConstraintRegex   = regexp.MustCompile(`(?i)^CHECK\s*\(`)
	excludeConstraintRegex = regexp.MustCompile(`(?i)^EXCLUDE\s+(?:USING\b|\()`)
	indexConstraintRegex   = regexp.MustCompile(`(?i)^(?:(?:FULLTEXT|SPATIAL)(?:\s+(?:INDEX|KEY))?|INDEX|KEY)\b\s*(?:(\w+)\s*)?\(([^)]*)\)`)
	likeClauseRegex        = regexp.MustCompile(`(?i)^LIKE\s+(\w+)`)
	typeArgumentRegex      = regexp.MustCompile(`^\s*\d+\s*(?:,\s*\d+\s*)?$`)
)

// multiWordTypes are matched before the single-token type rule.
var multiWordTypes = []string{
	"timestamp without time zone",
	"timestamp with time zone",
	"time without time zone",
	"time with time zone",
	"double precision",
	"character varying",
}
