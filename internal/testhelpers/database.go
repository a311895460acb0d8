// Package testhelpers provides database fixtures for tests: an in-memory
// SQLite schema for unit tests and a containerized Postgres with pgvector
// for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pantrychef/backend/internal/database"
)

// sqliteSchema mirrors the Postgres schema without the uuid and vector
// defaults SQLite cannot evaluate.
const sqliteSchema = `
CREATE TABLE recipes (
	id TEXT PRIMARY KEY,
	created_at DATETIME,
	updated_at DATETIME,
	deleted_at DATETIME,
	name TEXT NOT NULL,
	description TEXT,
	prep_time TEXT,
	cook_time TEXT,
	servings INTEGER,
	difficulty TEXT,
	cuisine TEXT,
	meal_type TEXT,
	ingredients TEXT NOT NULL DEFAULT '[]',
	instructions TEXT NOT NULL DEFAULT '[]',
	nutritional_info TEXT NOT NULL DEFAULT '{}',
	image_url TEXT,
	embedding TEXT
);

CREATE TABLE users (
	id TEXT PRIMARY KEY,
	created_at DATETIME,
	updated_at DATETIME,
	deleted_at DATETIME,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL
);

CREATE TABLE saved_recipes (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	recipe_id TEXT NOT NULL,
	saved_at DATETIME
);

CREATE TABLE status_checks (
	id TEXT PRIMARY KEY,
	client_name TEXT NOT NULL,
	timestamp DATETIME
);
`

// OpenSQLite returns an in-memory database with the full schema created.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Exec(sqliteSchema).Error; err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

// SetupPostgres starts a pgvector Postgres container, runs migrations and
// returns a connected handle. Skips when docker is unavailable.
func SetupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "pgvector/pgvector:pg16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "pantrychef_test",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%s user=postgres password=postgres dbname=pantrychef_test sslmode=disable",
		host, port.Port(),
	)

	var db *gorm.DB
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}
