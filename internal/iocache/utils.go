package iocache

import (
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/hfconf/hfconf/schema"
)

// Table names for run tracking.
const (
	runsTable   = "hfconf_runs"
	yieldsTable = "hfconf_yields"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName rejects names that cannot be safely interpolated into SQL.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// placeholders returns n bind parameters for the backend, starting at offset+1.
func placeholders(backend schema.DatabaseBackend, offset, n int) string {
	parts := make([]string, n)
	for i := range parts {
		if backend == schema.PostgreSQLBackend {
			parts[i] = fmt.Sprintf("$%d", offset+i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// parseTime reads a time stored by formatTime on SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// migrationDir returns the embedded migration directory of a backend.
func migrationDir(backend schema.DatabaseBackend) (fs.FS, error) {
	switch backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return fs.Sub(migrationsFS, "migrations/"+string(backend))
	default:
		return nil, fmt.Errorf("no migrations for backend: %s", backend)
	}
}

// schemaStatements returns the up migrations of a backend in version order.
func schemaStatements(backend schema.DatabaseBackend) ([]string, error) {
	dir, err := migrationDir(backend)
	if err != nil {
		return nil, err
	}
	names, err := fs.Glob(dir, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	slices.Sort(names)
	stmts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(dir, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		stmts = append(stmts, strings.TrimSuffix(strings.TrimSpace(string(data)), ";"))
	}
	return stmts, nil
}
