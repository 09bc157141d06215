// Package sqlutil provides SQL utility functions.
package sqlutil

import "strings"

// QuoteIdentifier quotes a SQL identifier (table name, column name, etc.)
// with backticks and escapes any backticks within the identifier.
func QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, "`", "``")
	return "`" + escaped + "`"
}

// QuoteQualified quotes an entity-scoped column as `entity`.`column`.
// An empty entity yields the bare quoted column.
func QuoteQualified(entity, column string) string {
	if entity == "" {
		return QuoteIdentifier(column)
	}
	return QuoteIdentifier(entity) + "." + QuoteIdentifier(column)
}

// QuoteAliased renders a projected column with an optional alias.
func QuoteAliased(entity, column, alias string) string {
	quoted := QuoteQualified(entity, column)
	if alias == "" {
		return quoted
	}
	return quoted + " AS " + QuoteIdentifier(alias)
}
