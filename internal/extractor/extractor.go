// Package extractor recovers tables, columns and keys from CREATE TABLE text.
//
// It is not a SQL parser. Statements are located by their CREATE TABLE
// keyword, bodies are split on top-level commas and every fragment is matched
// against a small set of patterns. Malformed statements or fragments are
// logged and skipped; Extract never fails.
package extractor

import (
	"strings"

	"github.com/andressep95/SQLift/internal/typemap"
	"github.com/andressep95/SQLift/pkg/models"
	"github.com/sirupsen/logrus"
)

// Extractor turns schema text into a models.Schema
type Extractor struct {
	Logger *logrus.Logger
}

// New creates a new extractor
func New(logger *logrus.Logger) *Extractor {
	return &Extractor{Logger: logger}
}

// statement is one CREATE TABLE segment of the input
type statement struct {
	name string
	body string // text between the outer parentheses
	raw  string // full statement text
	open bool   // body had no recoverable parentheses
}

// tableBuilder accumulates key information while a table body is parsed
type tableBuilder struct {
	table      *models.Table
	inlinePK   []string
	trailingPK []string
}

// Extract parses every CREATE TABLE statement in sql. Tables are returned in
// order of first appearance.
func (e *Extractor) Extract(sql string) *models.Schema {
	schema := models.NewSchema()
	for _, stmt := range e.splitStatements(cleanSQL(sql)) {
		table := e.parseStatement(stmt)
		if !schema.AddTable(table) {
			e.Logger.Warnf("Duplicate table %s ignored, keeping first definition", table.Name)
			continue
		}
		e.Logger.Debugf("Extracted table %s: %d columns, %d foreign keys", table.Name, len(table.Columns), len(table.ForeignKeys))
	}
	return schema
}

// cleanSQL strips comments. Comment markers inside quoted literals, such as
// DEFAULT '--', are kept as text.
func cleanSQL(sql string) string {
	var out strings.Builder
	inQuote := false

	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
			out.WriteByte(ch)
		case inQuote:
			out.WriteByte(ch)
		case ch == '-' && i+1 < len(sql) && sql[i+1] == '-':
			// Line comment: drop up to the newline, which is kept
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				return out.String()
			}
			i += end - 1
		case ch == '/' && i+1 < len(sql) && sql[i+1] == '*':
			// Block comment: replaced by a single space
			out.WriteByte(' ')
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return out.String()
			}
			i += end + 3
		default:
			out.WriteByte(ch)
		}
	}
	return out.String()
}

// splitStatements cuts the input at every CREATE TABLE keyword, so an
// unterminated statement can never swallow the tables after it.
func (e *Extractor) splitStatements(sql string) []statement {
	locs := createTableRegex.FindAllStringIndex(sql, -1)
	var stmts []statement
	for i, loc := range locs {
		end := len(sql)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segment := sql[loc[0]:end]

		header := tableHeaderRegex.FindStringSubmatch(segment)
		if header == nil {
			e.Logger.Warnf("Skipping CREATE TABLE statement without a table name near %q", abbreviate(segment))
			continue
		}
		stmt := statement{name: header[1]}
		rest := segment[len(header[0]):]
		stmt.body, stmt.raw, stmt.open = extractBody(rest)
		stmt.raw = segment[:len(header[0])] + stmt.raw
		if stmt.open {
			e.Logger.Warnf("Statement for table %s is not closed, parsing up to the next statement", stmt.name)
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

// extractBody returns the text inside the outermost parentheses of rest and
// the statement text up to its terminating semicolon. When the parentheses
// are unbalanced the body runs to the first semicolon or the end of rest.
func extractBody(rest string) (body, raw string, open bool) {
	start := strings.IndexByte(rest, '(')
	if start < 0 {
		raw = rest
		if semi := strings.IndexByte(rest, ';'); semi >= 0 {
			raw = rest[:semi+1]
		}
		return "", raw, true
	}

	depth := 0
	inQuote := false
	for i := start; i < len(rest); i++ {
		ch := rest[i]
		switch {
		case ch == '\'':
			inQuote = !inQuote
		case inQuote:
		case ch == '(':
			depth++
		case ch == ')':
			depth--
			if depth == 0 {
				raw = rest[:i+1]
				if semi := strings.IndexByte(rest[i:], ';'); semi >= 0 {
					raw = rest[:i+semi+1]
				}
				return rest[start+1 : i], raw, false
			}
		}
	}

	end := len(rest)
	if semi := strings.IndexByte(rest[start:], ';'); semi >= 0 {
		end = start + semi
	}
	return rest[start+1 : end], rest[:end], true
}

func (e *Extractor) parseStatement(stmt statement) *models.Table {
	tb := &tableBuilder{table: models.NewTable(stmt.name)}
	tb.table.Statement = strings.TrimSpace(stmt.raw)

	// Constraints may precede the columns they name, so columns go first.
	var constraints []string
	for _, fragment := range splitDefinitions(stmt.body) {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		if isTableConstraint(fragment) {
			constraints = append(constraints, fragment)
			continue
		}
		e.parseColumn(tb, fragment)
	}
	for _, fragment := range constraints {
		e.parseConstraint(tb, fragment)
	}

	e.applyPrimaryKey(tb)
	e.classifyForeignKeys(tb.table)
	return tb.table
}

// splitDefinitions splits a table body on commas that are not nested in
// parentheses or quotes, so NUMERIC(10,2) stays one fragment.
func splitDefinitions(body string) []string {
	var result []string
	var current strings.Builder
	depth := 0
	inQuote := false

	for _, ch := range body {
		switch {
		case ch == '\'':
			inQuote = !inQuote
			current.WriteRune(ch)
		case inQuote:
			current.WriteRune(ch)
		case ch == '(':
			depth++
			current.WriteRune(ch)
		case ch == ')':
			if depth > 0 {
				depth--
			}
			current.WriteRune(ch)
		case ch == ',' && depth == 0:
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		result = append(result, current.String())
	}
	return result
}

func isTableConstraint(fragment string) bool {
	upper := strings.ToUpper(fragment)
	for _, prefix := range []string{"PRIMARY KEY", "FOREIGN KEY", "CONSTRAINT"} {
		if hasKeywordPrefix(upper, prefix) {
			return true
		}
	}
	if hasKeywordPrefix(upper, "UNIQUE") {
		rest := strings.TrimSpace(upper[len("UNIQUE"):])
		return strings.HasPrefix(rest, "(") || strings.HasPrefix(rest, "KEY") || strings.HasPrefix(rest, "INDEX")
	}
	return isSkippedConstraint(fragment)
}

// isSkippedConstraint recognizes CHECK, EXCLUDE, index and LIKE fragments.
// A fragment whose second token is a type, like "key VARCHAR(100)", is a
// column.
func isSkippedConstraint(fragment string) bool {
	if checkConstraintRegex.MatchString(fragment) || excludeConstraintRegex.MatchString(fragment) {
		return true
	}
	if m := indexConstraintRegex.FindStringSubmatch(fragment); m != nil {
		name, args := m[1], m[2]
		if name != "" && (typemap.Known(name) || typeArgumentRegex.MatchString(args)) {
			return false
		}
		return true
	}
	if m := likeClauseRegex.FindStringSubmatch(fragment); m != nil {
		return !typemap.Known(m[1])
	}
	return false
}

// hasKeywordPrefix matches a keyword prefix on a word boundary, so a column
// named "checked" is not mistaken for a CHECK constraint.
func hasKeywordPrefix(upper, prefix string) bool {
	upper = whitespaceRegex.ReplaceAllString(upper, " ")
	if !strings.HasPrefix(upper, prefix) {
		return false
	}
	if len(upper) == len(prefix) {
		return true
	}
	next := upper[len(prefix)]
	return next == ' ' || next == '('
}

func (e *Extractor) parseConstraint(tb *tableBuilder, fragment string) {
	table := tb.table
	fragment = strings.TrimSpace(constraintNameRegex.ReplaceAllString(fragment, ""))
	upper := strings.ToUpper(fragment)

	switch {
	case hasKeywordPrefix(upper, "PRIMARY KEY"):
		m := keyColumnsRegex.FindStringSubmatch(fragment)
		if m == nil {
			e.Logger.Warnf("Table %s: primary key constraint without columns: %s", table.Name, abbreviate(fragment))
			return
		}
		tb.trailingPK = splitIdentifiers(m[1])

	case hasKeywordPrefix(upper, "FOREIGN KEY"):
		m := foreignKeyRegex.FindStringSubmatch(fragment)
		if m == nil {
			e.Logger.Warnf("Table %s: unparseable foreign key: %s", table.Name, abbreviate(fragment))
			return
		}
		columns := splitIdentifiers(m[1])
		if len(columns) != 1 {
			e.Logger.Warnf("Table %s: multi-column foreign key (%s) is not supported, skipping", table.Name, strings.Join(columns, ", "))
			return
		}
		refColumns := splitIdentifiers(m[3])
		refColumn := "id"
		if len(refColumns) > 0 {
			refColumn = refColumns[0]
		}
		col := table.ColumnByName(columns[0])
		if col == nil {
			e.Logger.Warnf("Table %s: foreign key on unknown column %s, skipping", table.Name, columns[0])
			return
		}
		e.addForeignKey(table, col, m[2], refColumn, fragment)

	case hasKeywordPrefix(upper, "UNIQUE"):
		m := keyColumnsRegex.FindStringSubmatch(fragment)
		if m == nil {
			return
		}
		columns := splitIdentifiers(m[1])
		if len(columns) == 1 {
			if col := table.ColumnByName(columns[0]); col != nil {
				col.Unique = true
			}
			return
		}
		if len(columns) > 1 {
			table.Uniques = append(table.Uniques, columns)
		}

	default:
		e.Logger.Debugf("Table %s: skipping constraint %s", table.Name, abbreviate(fragment))
	}
}

func (e *Extractor) parseColumn(tb *tableBuilder, fragment string) {
	table := tb.table
	nameMatch := columnNameRegex.FindStringSubmatch(fragment)
	if nameMatch == nil {
		e.Logger.Warnf("Table %s: unparseable column definition: %s", table.Name, abbreviate(fragment))
		return
	}
	rest := strings.TrimSpace(fragment[len(nameMatch[0]):])

	colType, rest := parseType(rest)
	if colType == "" {
		e.Logger.Warnf("Table %s: column %s has no type, skipping", table.Name, nameMatch[1])
		return
	}
	if table.ColumnByName(nameMatch[1]) != nil {
		e.Logger.Warnf("Table %s: duplicate column %s ignored", table.Name, nameMatch[1])
		return
	}

	column := &models.Column{
		Name:     nameMatch[1],
		Type:     colType,
		Nullable: true,
	}
	if m := typeArgsRegex.FindStringSubmatch(rest); m != nil {
		column.Length = whitespaceRegex.ReplaceAllString(m[1], "")
		rest = rest[len(m[0]):]
	}

	// Keyword matching ignores quoted literals such as DEFAULT 'NOT NULL'.
	constraints := quotedRegex.ReplaceAllString(rest, "''")
	if notNullRegex.MatchString(constraints) {
		column.Nullable = false
	}
	if uniqueRegex.MatchString(constraints) {
		column.Unique = true
	}
	if m := defaultRegex.FindStringSubmatch(constraints); m != nil {
		column.Default = normalizeDefault(m[1])
	}
	if primaryKeyRegex.MatchString(constraints) {
		tb.inlinePK = append(tb.inlinePK, column.Name)
	}

	table.Columns = append(table.Columns, column)
	e.Logger.Debugf("Table %s: column %s %s(%s) nullable=%t unique=%t", table.Name, column.Name, column.Type, column.Length, column.Nullable, column.Unique)

	if m := referencesRegex.FindStringSubmatch(constraints); m != nil {
		refColumn := m[2]
		if refColumn == "" {
			refColumn = "id"
		}
		e.addForeignKey(table, column, m[1], refColumn, constraints)
	}
}

// parseType reads the type token, preferring known multi-word types.
func parseType(rest string) (string, string) {
	normalized := strings.ToLower(whitespaceRegex.ReplaceAllString(rest, " "))
	for _, t := range multiWordTypes {
		if strings.HasPrefix(normalized, t) && (len(normalized) == len(t) || !isIdentChar(normalized[len(t)])) {
			return t, cutWords(rest, strings.Fields(t))
		}
	}
	m := typeTokenRegex.FindStringSubmatch(rest)
	if m == nil {
		return "", rest
	}
	return strings.ToLower(m[1]), rest[len(m[0]):]
}

// cutWords drops the leading words of s; words only supplies their lengths.
func cutWords(s string, words []string) string {
	for _, w := range words {
		s = strings.TrimSpace(s)
		s = s[len(w):]
	}
	return s
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

func normalizeDefault(v string) string {
	switch upper := strings.ToUpper(v); upper {
	case "TRUE", "FALSE":
		return strings.ToLower(v)
	default:
		return upper
	}
}

// addForeignKey records a key once per column; inline and trailing
// declarations of the same key produce the same record.
func (e *Extractor) addForeignKey(table *models.Table, col *models.Column, refTable, refColumn, clause string) {
	col.ForeignKey = true
	fk := table.ForeignKeyFor(col.Name)
	if fk == nil {
		fk = models.NewForeignKey(col.Name, refTable, refColumn)
		table.ForeignKeys = append(table.ForeignKeys, fk)
	} else {
		e.Logger.Debugf("Table %s: foreign key on %s declared twice, merging", table.Name, col.Name)
	}
	if m := onDeleteRegex.FindStringSubmatch(clause); m != nil && fk.OnDelete == "" {
		fk.OnDelete = strings.ToUpper(whitespaceRegex.ReplaceAllString(m[1], " "))
		if fk.OnDelete == "CASCADE" {
			fk.Cascade = []models.CascadeType{models.CascadeAll}
		}
	}
	if m := onUpdateRegex.FindStringSubmatch(clause); m != nil && fk.OnUpdate == "" {
		fk.OnUpdate = strings.ToUpper(whitespaceRegex.ReplaceAllString(m[1], " "))
	}
}

// applyPrimaryKey resolves key columns. A trailing PRIMARY KEY (...) clause
// supersedes inline declarations.
func (e *Extractor) applyPrimaryKey(tb *tableBuilder) {
	table := tb.table
	names := tb.inlinePK
	if len(tb.trailingPK) > 0 {
		names = tb.trailingPK
	} else if len(names) > 1 {
		e.Logger.Warnf("Table %s: %d inline primary keys, using %s", table.Name, len(names), names[0])
		names = names[:1]
	}

	var columns []*models.Column
	for _, name := range names {
		col := table.ColumnByName(name)
		if col == nil {
			e.Logger.Warnf("Table %s: primary key column %s not found", table.Name, name)
			continue
		}
		col.Nullable = false
		columns = append(columns, col)
	}

	switch {
	case len(columns) > 1:
		table.CompositeKey = columns
	case len(columns) == 1:
		table.PrimaryKey = columns[0]
	}
}

// classifyForeignKeys marks keys whose column is unique, or is the whole
// primary key, as one-to-one.
func (e *Extractor) classifyForeignKeys(table *models.Table) {
	for _, fk := range table.ForeignKeys {
		col := table.ColumnByName(fk.Column)
		if col == nil {
			continue
		}
		sharedKey := table.PrimaryKey != nil && table.PrimaryKey == col
		if col.Unique || sharedKey {
			fk.Cardinality = models.OneToOne
		}
	}
}

func splitIdentifiers(list string) []string {
	var ids []string
	for _, part := range strings.Split(list, ",") {
		part = strings.Trim(strings.TrimSpace(part), "\"`")
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func abbreviate(s string) string {
	s = strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
