package iocache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gofrs/flock"
	"github.com/jmoiron/sqlx"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores opens the global commit store. Later calls are no-ops that
// return the result of the first one.
func InitStores(ctx context.Context, backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		store, err := NewCommitStore(ctx, backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize commit cache: %w", err)
			return
		}
		Manager.Lock()
		Manager.commits = store
		Manager.Unlock()
	})

	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.commits != nil {
			_ = Manager.commits.Close()
			Manager.commits = nil
		}
	})
}

// ClearCache removes every cached commit for the specified backend.
// For SQLite, it deletes the database file and its lock file unless another store holds the lock.
// For SQL backends (MySQL/PostgreSQL), it drops the cache tables and the version table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		return removeSQLiteCache(dbFilePath)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropTables(driverNames[backend], connStr, "files", "commits", migrationsTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// removeSQLiteCache deletes the database file and its lock file, refusing while
// another store holds the lock.
func removeSQLiteCache(dbFilePath string) error {
	lockPath := dbFilePath + ".lock"
	if _, err := os.Stat(lockPath); err == nil {
		lock := flock.New(lockPath)
		locked, err := lock.TryLock()
		if err != nil || !locked {
			if err == nil {
				err = errors.New("lock held")
			}
			return contract.Errorf(contract.KindIO, "clear cache", "cache %s is in use by another process: %w", dbFilePath, err)
		}
		defer func() { _ = lock.Unlock() }()
	}

	for _, path := range []string{dbFilePath, lockPath} {
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite cache file %s: %w", path, err)
		}
	}
	return nil
}

// dropTables connects to the SQL database and drops each table if it exists, in order.
func dropTables(driverName, connStr string, tables ...string) error {
	db, err := sqlx.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	for _, table := range tables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
