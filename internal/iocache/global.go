package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/hfconf/hfconf/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the run store.
// An empty backend leaves run tracking disabled.
func InitStores(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		if backend == "" {
			return
		}
		runStore, err := NewRunStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize run store: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.runs = runStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearRuns clears the run data for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the run tables.
// For NoneBackend, it does nothing.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		// Yields first, they reference runs
		for _, table := range []string{yieldsTable, runsTable} {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}

	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	return dropTable(db, backend, tableName)
}

func dropTable(db *sql.DB, backend schema.DatabaseBackend, tableName string) error {
	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
