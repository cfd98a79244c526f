package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// migrationsTable records the schema version of a commit cache.
const migrationsTable = "gmap_schema_migrations"

// driverNames maps each SQL backend to its database/sql driver.
var driverNames = map[schema.DatabaseBackend]string{
	schema.SQLiteBackend:     "sqlite",
	schema.MySQLBackend:      "mysql",
	schema.PostgreSQLBackend: "pgx",
}

// multiStatementDSN enables multi-statement execution, which the MySQL migration files need.
func multiStatementDSN(connStr string) (string, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL connection string: %w", err)
	}
	cfg.MultiStatements = true
	return cfg.FormatDSN(), nil
}

// openMigrator returns a migrate instance over its own connection to the store.
// Closing the instance closes that connection.
func openMigrator(backend schema.DatabaseBackend, connStr string) (*migrate.Migrate, error) {
	dsn := connStr
	if backend == schema.MySQLBackend {
		var err error
		if dsn, err = multiStatementDSN(connStr); err != nil {
			return nil, err
		}
	}

	driverName, ok := driverNames[backend]
	if !ok {
		return nil, fmt.Errorf("migrations are not supported for backend %q", backend)
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database for migration: %w", backend, err)
	}

	var driver database.Driver
	switch backend {
	case schema.SQLiteBackend:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{MigrationsTable: migrationsTable})
	case schema.MySQLBackend:
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{MigrationsTable: migrationsTable})
	case schema.PostgreSQLBackend:
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{MigrationsTable: migrationsTable})
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(backend), driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// ensureSchema creates the cache tables on a fresh store and otherwise checks
// that the stamped version matches schema.SchemaVersion. A mismatch leaves the store untouched.
func ensureSchema(backend schema.DatabaseBackend, connStr string) error {
	m, err := openMigrator(backend, connStr)
	if err != nil {
		return contract.NewError(contract.KindIO, "initialize cache", err)
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		if err := m.Migrate(uint(schema.SchemaVersion)); err != nil {
			return contract.Errorf(contract.KindIO, "initialize cache", "failed to create cache tables: %w", err)
		}
		return nil
	case err != nil:
		return contract.Errorf(contract.KindIO, "initialize cache", "failed to read schema version: %w", err)
	case dirty:
		return contract.Errorf(contract.KindSchemaMismatch, "initialize cache",
			"version %d is marked dirty; clear the cache to rebuild it", version)
	case version != uint(schema.SchemaVersion):
		return contract.Errorf(contract.KindSchemaMismatch, "initialize cache",
			"expected %d, found %d; clear the cache to rebuild it", schema.SchemaVersion, version)
	}
	return nil
}
