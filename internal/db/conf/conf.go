// Package conf
package conf

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"testing"
)

// Config holds a database connection and metadata
type Config struct {
	Name      string
	DB        *sql.DB
	ConnStr   string
	AdminDB   *sql.DB
	SchemaSQL string
}

// ConnString builds a lib/pq keyword connection string.
func ConnString(host string, port int, user, password, dbName string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbName)
}

// SplitSchema splits schema into statements, dropping TimescaleDB
// hypertable calls when the extension is not available.
func SplitSchema(schema string, hasTimescaleDB bool) []string {
	var statements []string
	for stmt := range strings.SplitSeq(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if !hasTimescaleDB && strings.Contains(strings.ToLower(stmt), "create_hypertable") {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}

// NewTestConfig creates a database with a random name and applies schema.
// The test is skipped when PostgreSQL is not reachable. TEST_POSTGRES_PASSWORD
// overrides the default password.
func NewTestConfig(t *testing.T, schema string) (*Config, func()) {
	t.Helper()

	const (
		testHost = "localhost"
		testPort = 5432
		testUser = "postgres"
	)
	testPassword := "postgres"
	if pw := os.Getenv("TEST_POSTGRES_PASSWORD"); pw != "" {
		testPassword = pw
	}

	adminDB, err := sql.Open("postgres", ConnString(testHost, testPort, testUser, testPassword, "postgres"))
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}

	if err = adminDB.Ping(); err != nil {
		adminDB.Close()
		t.Skipf("Skipping test: PostgreSQL is not running or not accessible: %v", err)
		return nil, func() {}
	}

	// Random name to avoid conflicts
	dbName := fmt.Sprintf("test_db_%d", rand.Int31())

	if _, err = adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		adminDB.Close()
		t.Fatalf("Failed to create test database: %v", err)
	}

	dbConnStr := ConnString(testHost, testPort, testUser, testPassword, dbName)
	db, err := sql.Open("postgres", dbConnStr)
	if err != nil {
		adminDB.Close()
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	var hasTimescaleDB bool
	err = db.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_available_extensions WHERE name = 'timescaledb')").Scan(&hasTimescaleDB)
	if err != nil {
		t.Logf("Warning: Failed to check for TimescaleDB extension: %v", err)
	}

	if hasTimescaleDB {
		if _, err = db.Exec("CREATE EXTENSION IF NOT EXISTS timescaledb CASCADE;"); err != nil {
			t.Logf("Warning: Failed to create TimescaleDB extension: %v", err)
			hasTimescaleDB = false
		}
	} else {
		t.Logf("Warning: TimescaleDB extension is not available, continuing without it")
	}

	for _, stmt := range SplitSchema(schema, hasTimescaleDB) {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			adminDB.Close()
			t.Fatalf("Failed to apply schema statement: %s\nError: %v", stmt, err)
		}
	}

	testDB := &Config{
		Name:      dbName,
		DB:        db,
		ConnStr:   dbConnStr,
		AdminDB:   adminDB,
		SchemaSQL: schema,
	}

	cleanup := func() {
		db.Close()

		_, err := adminDB.Exec(fmt.Sprintf("DROP DATABASE %s WITH (FORCE)", dbName))
		if err != nil {
			t.Logf("Warning: Failed to drop test database %s: %v", dbName, err)
		}

		adminDB.Close()
	}

	return testDB, cleanup
}
