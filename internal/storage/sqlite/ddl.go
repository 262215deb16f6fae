package sqlite

import (
	"fmt"
	"strings"

	"ccerddap/internal/storage"
)

// MapType maps a logical column type to a SQLite type affinity. Booleans are
// stored as 0/1 and timestamps as ISO-8601 text.
func MapType(t storage.ColumnType) string {
	switch t {
	case storage.TypeBigInt, storage.TypeBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t storage.TableDef) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("sqlite %w", err)
	}
	cols := storage.RenderColumns(t, quoteIdent, MapType)
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteFQN(t.FQN),
		strings.Join(cols, ",\n  "),
	), nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteFQN(fqn string) string {
	parts := storage.SplitFQN(fqn)
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}
