package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/hfconf/hfconf/internal/contract"
	"github.com/hfconf/hfconf/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
	connStr    string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if db == nil {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
		connStr:    connStr,
	}, nil
}

// openDB opens the database of a backend. NoneBackend yields a nil handle.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetRunsDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, "sqlite", nil

	case schema.MySQLBackend:
		dsn, err := mysqlDSN(connStr)
		if err != nil {
			return nil, "", err
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, "mysql", nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=... user=... password=...", err)
		}
		return db, "pgx", nil

	case schema.NoneBackend:
		return nil, "", nil

	default:
		return nil, "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// mysqlDSN enables time parsing so DATETIME columns scan into time.Time.
func mysqlDSN(connStr string) (string, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL connection string: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// createRunTables applies the up migrations directly. They are idempotent.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	stmts, err := schemaStatements(backend)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, analysisName string, configParams map[string]any) (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (analysis_name, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, analysisName, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (analysis_name, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, analysisName, formatTime(startTime, rs.backend), string(configJSON))
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordYields stores the flattened yields of a run in one transaction.
func (rs *RunStoreImpl) RecordYields(runID int64, rows []schema.YieldRow) error {
	if rs.disabled() || len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, fit_config, sample, region, channel, bin_index, yield_value, stat_error, is_data) VALUES (%s)`,
		quoteTableName(yieldsTable, rs.backend), placeholders(rs.backend, 0, 9))

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare yield insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		var statErr any
		if r.HasError {
			statErr = r.StatError
		}
		if _, err := stmt.Exec(runID, r.FitConfig, r.Sample, r.Region, r.Channel, r.Bin, r.Yield, statErr, r.IsData); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert yield %s/%s/%s bin %d: %w", r.FitConfig, r.Sample, r.Region, r.Bin, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit yields: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, counts schema.RunCounts) error {
	if rs.disabled() {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholders(rs.backend, 0, 1))
	row := rs.db.QueryRow(query, runID)

	var startTime time.Time
	switch rs.backend {
	case schema.SQLiteBackend:
		var startTimeStr string
		if err := row.Scan(&startTimeStr); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
		var err error
		startTime, err = parseTime(startTimeStr)
		if err != nil {
			return fmt.Errorf("failed to parse start_time: %w", err)
		}
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&startTime); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, fit_config_count = $3, sample_count = $4, finding_count = $5 WHERE run_id = $6`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, fit_config_count = ?, sample_count = ?, finding_count = ? WHERE run_id = ?`, quotedTableName)
	}

	_, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, counts.FitConfigs, counts.Samples, counts.Findings, runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.disabled() {
		return status, nil
	}

	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(runsTable, rs.backend))
	if err := rs.db.QueryRow(runsQuery).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quoteTableName(runsTable, rs.backend))
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quoteTableName(runsTable, rs.backend))

		switch rs.backend {
		case schema.SQLiteBackend:
			var lastRunTimeStr, oldestRunTimeStr string
			if err := rs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &lastRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to get last run info: %w", err)
			}
			if err := rs.db.QueryRow(oldestRunQuery).Scan(&oldestRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to get oldest run time: %w", err)
			}
			var err error
			if status.LastRunTime, err = parseTime(lastRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to parse last run time: %w", err)
			}
			if status.OldestRunTime, err = parseTime(oldestRunTimeStr); err != nil {
				return status, fmt.Errorf("failed to parse oldest run time: %w", err)
			}
		default: // MySQL and PostgreSQL store as native datetime
			if err := rs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &status.LastRunTime); err != nil {
				return status, fmt.Errorf("failed to get last run info: %w", err)
			}
			if err := rs.db.QueryRow(oldestRunQuery).Scan(&status.OldestRunTime); err != nil {
				return status, fmt.Errorf("failed to get oldest run time: %w", err)
			}
		}
	}

	for _, table := range []string{runsTable, yieldsTable} {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		var count int64
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalYields = int(status.TableSizes[yieldsTable])
	status.StorageBytes = rs.storageBytes()

	return status, nil
}

// storageBytes estimates the on-disk size of the run tables. Failures yield 0.
func (rs *RunStoreImpl) storageBytes() int64 {
	var size int64
	switch rs.backend {
	case schema.SQLiteBackend:
		row := rs.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(rs.connStr)
		if err != nil || cfg.DBName == "" {
			return 0
		}
		row := rs.db.QueryRow("SELECT COALESCE(SUM(data_length + index_length), 0) FROM information_schema.tables WHERE table_schema = ? AND table_name IN (?, ?)",
			cfg.DBName, runsTable, yieldsTable)
		if err := row.Scan(&size); err != nil {
			return 0
		}
	case schema.PostgreSQLBackend:
		row := rs.db.QueryRow("SELECT pg_total_relation_size($1) + pg_total_relation_size($2)", runsTable, yieldsTable)
		if err := row.Scan(&size); err != nil {
			return 0
		}
	}
	return size
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, analysis_name, start_time, end_time, run_duration_ms,
    fit_config_count, sample_count, finding_count, config_params FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.AnalysisName, &startTimeStr, &endTimeStr, &record.RunDurationMs,
				&record.FitConfigCount, &record.SampleCount, &record.FindingCount, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startTime, err := parseTime(startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := parseTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.AnalysisName, &record.StartTime, &record.EndTime, &record.RunDurationMs,
				&record.FitConfigCount, &record.SampleCount, &record.FindingCount, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllYields retrieves all yield rows from the store.
func (rs *RunStoreImpl) GetAllYields() ([]schema.YieldRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, fit_config, sample, region, channel, bin_index, yield_value, stat_error, is_data
    FROM %s ORDER BY run_id, fit_config, sample, region, channel, bin_index`, quoteTableName(yieldsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query yields: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.YieldRecord
	for rows.Next() {
		var record schema.YieldRecord
		if err := rows.Scan(&record.RunID, &record.FitConfig, &record.Sample, &record.Region, &record.Channel,
			&record.Bin, &record.Yield, &record.StatError, &record.IsData); err != nil {
			return nil, fmt.Errorf("failed to scan yield: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating yields: %w", err)
	}
	return results, nil
}
