package mysql

import (
	"fmt"
	"strings"

	"ccerddap/internal/storage"
)

// MapType maps a logical column type to a MySQL type. Key columns are
// VARCHAR because TEXT cannot be part of a primary key without a prefix.
func MapType(t storage.ColumnType) string {
	switch t {
	case storage.TypeKey:
		return "VARCHAR(255)"
	case storage.TypeBigInt:
		return "BIGINT"
	case storage.TypeBool:
		return "BOOLEAN"
	case storage.TypeTimestamp:
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t storage.TableDef) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("mysql %w", err)
	}
	cols := storage.RenderColumns(t, quoteIdent, MapType)
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteFQN(t.FQN),
		strings.Join(cols, ",\n  "),
	), nil
}

func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

func quoteFQN(fqn string) string {
	parts := storage.SplitFQN(fqn)
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}
