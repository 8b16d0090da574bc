//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestHfconfWithMySQL tests the hfconf CLI with a MySQL run store.
func TestHfconfWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "hfconf",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/hfconf", host, port.Port())
	runRunsLifecycle(t, "mysql", connStr)
}

// TestHfconfWithPostgres tests the hfconf CLI with a PostgreSQL run store.
func TestHfconfWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runRunsLifecycle(t, "postgresql", connStr)
}

// runRunsLifecycle drives migrate, build, status, export and clear against one backend.
// The backend is passed through the environment the way a CI job would.
func runRunsLifecycle(t *testing.T, backend, connStr string) {
	t.Helper()
	t.Setenv("HFCONF_RUNS_BACKEND", backend)
	t.Setenv("HFCONF_RUNS_DB_CONNECT", connStr)

	_, err := runHfconfCommand(t, "runs", "migrate")
	require.NoError(t, err)

	// Migrations must be a no-op the second time
	_, err = runHfconfCommand(t, "runs", "migrate")
	require.NoError(t, err)

	_, err = runHfconfCommand(t, "build", testAnalysis)
	require.NoError(t, err)

	out, err := runHfconfCommand(t, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, out, backend)

	export := t.TempDir() + "/history"
	_, err = runHfconfCommand(t, "runs", "export", "--output-file", export)
	require.NoError(t, err)
	_, err = os.Stat(export + ".yields.parquet")
	require.NoError(t, err)

	_, err = runHfconfCommand(t, "runs", "clear")
	require.NoError(t, err)
}
