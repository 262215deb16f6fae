package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ColumnType is a logical column type each backend maps to its own SQL type.
type ColumnType int

const (
	// TypeText is unbounded text.
	TypeText ColumnType = iota
	// TypeKey is short text that may take part in a primary key.
	TypeKey
	// TypeBigInt is a 64-bit integer.
	TypeBigInt
	// TypeBool is a boolean.
	TypeBool
	// TypeTimestamp is an instant in UTC.
	TypeTimestamp
)

// ColumnDef describes one column.
type ColumnDef struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	PrimaryKey bool
}

// TableDef describes a table to create.
type TableDef struct {
	// FQN is the table name, optionally schema-qualified.
	FQN     string
	Columns []ColumnDef
}

// ColumnNames returns the column names in definition order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Validate checks the parts every dialect needs.
func (t TableDef) Validate() error {
	if strings.TrimSpace(t.FQN) == "" {
		return fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("ddl: at least one column is required")
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("ddl: column with empty name in table %s", t.FQN)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("ddl: duplicate column %s in table %s", name, t.FQN)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// DDLBuilder renders a dialect-specific idempotent CREATE TABLE script.
type DDLBuilder func(t TableDef) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBuilder{}
)

// RegisterDDL installs (or replaces) the DDL builder for kind.
func RegisterDDL(kind string, fn DDLBuilder) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// BuildCreateTable renders the CREATE TABLE script for kind.
func BuildCreateTable(kind string, t TableDef) (string, error) {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no DDL builder registered for storage.kind=%q", kind)
	}
	if err := t.Validate(); err != nil {
		return "", err
	}
	return fn(t)
}

// EnsureTable creates t through repo unless it already exists.
func EnsureTable(ctx context.Context, kind string, repo Repository, t TableDef) error {
	stmt, err := BuildCreateTable(kind, t)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("ensure table %s: %w", t.FQN, err)
	}
	return nil
}

// SplitFQN splits "schema.table" into its non-empty, trimmed segments.
func SplitFQN(fqn string) []string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RenderColumns returns one "<ident> <TYPE> [NOT NULL]" definition per
// column, followed by a PRIMARY KEY clause when any column is a key. Primary
// key columns are always NOT NULL. Backends supply quoting and type mapping.
func RenderColumns(
	t TableDef,
	quoteIdent func(string) string,
	mapType func(ColumnType) string,
) (cols []string) {
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		def := quoteIdent(name) + " " + mapType(c.Type)
		if !c.Nullable || c.PrimaryKey {
			def += " NOT NULL"
		}
		cols = append(cols, def)
		if c.PrimaryKey {
			pks = append(pks, quoteIdent(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	return cols
}
