package mssql

import (
	"fmt"
	"strings"

	"ccerddap/internal/storage"
)

// MapType maps a logical column type to a SQL Server type. Key columns get
// a bounded length because NVARCHAR(MAX) cannot be indexed.
func MapType(t storage.ColumnType) string {
	switch t {
	case storage.TypeKey:
		return "NVARCHAR(255)"
	case storage.TypeBigInt:
		return "BIGINT"
	case storage.TypeBool:
		return "BIT"
	case storage.TypeTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

// BuildCreateTableSQL returns a T-SQL script creating t when absent. T-SQL
// has no CREATE TABLE IF NOT EXISTS, so the statement is guarded by
// OBJECT_ID.
func BuildCreateTableSQL(t storage.TableDef) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("mssql %w", err)
	}
	cols := storage.RenderColumns(t, quoteIdent, MapType)
	fqn := quoteFQN(t.FQN)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		strings.ReplaceAll(fqn, "'", "''"),
		fqn,
		strings.Join(cols, ",\n    "),
	), nil
}

// quoteIdent uses bracket syntax: weird]id -> [weird]]id].
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// quoteFQN: "dbo.results" -> [dbo].[results].
func quoteFQN(fqn string) string {
	parts := storage.SplitFQN(fqn)
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}
