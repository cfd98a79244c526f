// Package iocache persists computed commit stats so unchanged history is never diffed twice.
package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/gofrs/flock"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jmoiron/sqlx"
	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// inChunkSize bounds the number of ids bound into one IN clause.
const inChunkSize = 500

// Lock acquisition bounds for the sqlite cache file.
const (
	lockTimeout    = 10 * time.Second
	lockRetryDelay = 100 * time.Millisecond
)

// CommitStoreImpl is a CommitStore backed by sqlite, MySQL, PostgreSQL or nothing.
type CommitStoreImpl struct {
	db      *sqlx.DB
	backend schema.DatabaseBackend
	connStr string
	lock    *flock.Flock
}

var _ contract.CommitStore = &CommitStoreImpl{} // Compile-time check

// NewCommitStore opens the store, creating the tables on first use and
// verifying the schema version on every later open.
// For sqlite, connStr is the database file path.
func NewCommitStore(ctx context.Context, backend schema.DatabaseBackend, connStr string) (contract.CommitStore, error) {
	var lock *flock.Flock

	switch backend {
	case schema.NoneBackend:
		// No-op store for disabled caching
		return &CommitStoreImpl{backend: backend}, nil

	case schema.SQLiteBackend:
		if connStr == "" {
			return nil, contract.Errorf(contract.KindIO, "open cache", "sqlite cache requires a database file path")
		}
		if err := os.MkdirAll(filepath.Dir(connStr), 0o755); err != nil {
			return nil, contract.Errorf(contract.KindIO, "open cache", "failed to create cache directory: %w", err)
		}
		var err error
		if lock, err = acquireLock(ctx, connStr+".lock"); err != nil {
			return nil, err
		}

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		if connStr == "" {
			return nil, contract.Errorf(contract.KindIO, "open cache", "%s cache requires a connection string", backend)
		}

	default:
		return nil, contract.Errorf(contract.KindOther, "open cache",
			"unsupported cache backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	store, err := openCommitStore(ctx, backend, connStr)
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, err
	}
	store.lock = lock
	return store, nil
}

func openCommitStore(ctx context.Context, backend schema.DatabaseBackend, connStr string) (*CommitStoreImpl, error) {
	if err := ensureSchema(backend, connStr); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverNames[backend], connStr)
	if err != nil {
		return nil, contract.Errorf(contract.KindIO, "open cache", "failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, contract.Errorf(contract.KindIO, "open cache",
			"failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	return &CommitStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// acquireLock takes the advisory lock guarding a sqlite cache file, waiting a bounded time.
func acquireLock(ctx context.Context, path string) (*flock.Flock, error) {
	lock := flock.New(path)
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		if err == nil {
			err = errors.New("lock not acquired")
		}
		return nil, contract.Errorf(contract.KindIO, "open cache",
			"cache %s is in use by another process: %w", strings.TrimSuffix(path, ".lock"), err)
	}
	return lock, nil
}

// fileRow is one row of the commits LEFT JOIN files query.
type fileRow struct {
	CommitID string         `db:"id"`
	Path     sql.NullString `db:"path"`
	Added    sql.NullInt64  `db:"added_lines"`
	Deleted  sql.NullInt64  `db:"deleted_lines"`
	Binary   sql.NullInt64  `db:"is_binary"`
}

// GetCommitStats implements the CommitStore interface.
func (s *CommitStoreImpl) GetCommitStats(ctx context.Context, rng schema.DateRange) ([]schema.CommitStats, error) {
	if s.db == nil {
		return []schema.CommitStats{}, nil
	}

	query := `SELECT c.id, f.path, f.added_lines, f.deleted_lines, f.is_binary
		FROM commits c
		LEFT JOIN files f ON c.id = f.commit_id
		WHERE 1=1`
	var args []any
	if !rng.Since.IsZero() {
		query += " AND c.timestamp >= ?"
		args = append(args, rng.SinceUnix())
	}
	if !rng.Until.IsZero() {
		query += " AND c.timestamp <= ?"
		args = append(args, rng.UntilUnix())
	}
	query += " ORDER BY c.id, f.path"

	var rows []fileRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, contract.Errorf(contract.KindIO, "get commit stats", "%w", err)
	}

	result := []schema.CommitStats{}
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.CommitID]
		if !ok {
			i = len(result)
			index[row.CommitID] = i
			result = append(result, schema.CommitStats{CommitID: row.CommitID, Files: []schema.FileStats{}})
		}
		if !row.Path.Valid || !row.Added.Valid || !row.Deleted.Valid || !row.Binary.Valid {
			continue
		}
		result[i].Files = append(result[i].Files, schema.FileStats{
			Path:         row.Path.String,
			AddedLines:   uint32(row.Added.Int64),
			DeletedLines: uint32(row.Deleted.Int64),
			IsBinary:     row.Binary.Int64 != 0,
		})
	}

	// Collations differ between backends, so order by byte value here.
	slices.SortStableFunc(result, func(a, b schema.CommitStats) int { return strings.Compare(a.CommitID, b.CommitID) })
	for _, cs := range result {
		slices.SortStableFunc(cs.Files, func(a, b schema.FileStats) int { return strings.Compare(a.Path, b.Path) })
	}
	return result, nil
}

// mergeFiles collapses entries sharing a path by summing counts and OR-ing the binary flag.
func mergeFiles(files []schema.FileStats) []schema.FileStats {
	out := make([]schema.FileStats, 0, len(files))
	seen := make(map[string]int, len(files))
	for _, f := range files {
		if i, ok := seen[f.Path]; ok {
			out[i].AddedLines += f.AddedLines
			out[i].DeletedLines += f.DeletedLines
			out[i].IsBinary = out[i].IsBinary || f.IsBinary
			continue
		}
		seen[f.Path] = len(out)
		out = append(out, f)
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// StoreCommitStats implements the CommitStore interface.
func (s *CommitStoreImpl) StoreCommitStats(ctx context.Context, stats []schema.CommitStats, infos map[string]schema.CommitInfo) error {
	if s.db == nil || len(stats) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return contract.Errorf(contract.KindIO, "store commit stats", "failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := s.db.Rebind(s.getUpsertCommitQuery())
	deleteFiles := s.db.Rebind("DELETE FROM files WHERE commit_id = ?")
	insertFile := s.db.Rebind(`INSERT INTO files (commit_id, path, added_lines, deleted_lines, is_binary) VALUES (?, ?, ?, ?, ?)`)

	for _, cs := range stats {
		info, ok := infos[cs.CommitID]
		if !ok {
			continue
		}
		parents := info.ParentIDs
		if parents == nil {
			parents = []string{}
		}
		parentJSON, err := json.Marshal(parents)
		if err != nil {
			return contract.Errorf(contract.KindIO, "store commit stats", "failed to encode parents of %s: %w", cs.CommitID, err)
		}

		if _, err := tx.ExecContext(ctx, upsert,
			cs.CommitID, info.AuthorName, info.AuthorEmail, info.Message, info.Timestamp.Unix(), string(parentJSON),
		); err != nil {
			return contract.Errorf(contract.KindIO, "store commit stats", "failed to write commit %s: %w", cs.CommitID, err)
		}
		if _, err := tx.ExecContext(ctx, deleteFiles, cs.CommitID); err != nil {
			return contract.Errorf(contract.KindIO, "store commit stats", "failed to clear files of %s: %w", cs.CommitID, err)
		}
		for _, f := range mergeFiles(cs.Files) {
			if _, err := tx.ExecContext(ctx, insertFile,
				cs.CommitID, f.Path, int64(f.AddedLines), int64(f.DeletedLines), boolToInt(f.IsBinary),
			); err != nil {
				return contract.Errorf(contract.KindIO, "store commit stats", "failed to write %s in %s: %w", f.Path, cs.CommitID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return contract.Errorf(contract.KindIO, "store commit stats", "failed to commit transaction: %w", err)
	}
	return nil
}

// getUpsertCommitQuery returns the commit UPSERT query for the backend.
func (s *CommitStoreImpl) getUpsertCommitQuery() string {
	switch s.backend {
	case schema.MySQLBackend:
		return `INSERT INTO commits (id, author_name, author_email, message, timestamp, parent_ids) VALUES (?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE author_name = new.author_name, author_email = new.author_email, message = new.message,
			timestamp = new.timestamp, parent_ids = new.parent_ids`

	case schema.PostgreSQLBackend:
		return `INSERT INTO commits (id, author_name, author_email, message, timestamp, parent_ids) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET author_name = EXCLUDED.author_name, author_email = EXCLUDED.author_email,
			message = EXCLUDED.message, timestamp = EXCLUDED.timestamp, parent_ids = EXCLUDED.parent_ids`

	default: // SQLite
		return `INSERT OR REPLACE INTO commits (id, author_name, author_email, message, timestamp, parent_ids) VALUES (?, ?, ?, ?, ?, ?)`
	}
}

// GetMissingCommits implements the CommitStore interface.
func (s *CommitStoreImpl) GetMissingCommits(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	if s.db == nil {
		return slices.Clone(ids), nil
	}

	existing := make(map[string]struct{}, len(ids))
	for chunk := range slices.Chunk(ids, inChunkSize) {
		query, args, err := sqlx.In("SELECT id FROM commits WHERE id IN (?)", chunk)
		if err != nil {
			return nil, contract.Errorf(contract.KindIO, "get missing commits", "%w", err)
		}
		var found []string
		if err := s.db.SelectContext(ctx, &found, s.db.Rebind(query), args...); err != nil {
			return nil, contract.Errorf(contract.KindIO, "get missing commits", "%w", err)
		}
		for _, id := range found {
			existing[id] = struct{}{}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// commitRow is one row of the commits table.
type commitRow struct {
	ID          string `db:"id"`
	AuthorName  string `db:"author_name"`
	AuthorEmail string `db:"author_email"`
	Message     string `db:"message"`
	Timestamp   int64  `db:"timestamp"`
	ParentIDs   string `db:"parent_ids"`
}

// GetCommitInfo implements the CommitStore interface.
func (s *CommitStoreImpl) GetCommitInfo(ctx context.Context, id string) (*schema.CommitInfo, error) {
	if s.db == nil {
		return nil, nil
	}

	var row commitRow
	query := s.db.Rebind(`SELECT id, author_name, author_email, message, timestamp, parent_ids FROM commits WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, contract.Errorf(contract.KindIO, "get commit info", "%s: %w", id, err)
	}

	var parents []string
	if err := json.Unmarshal([]byte(row.ParentIDs), &parents); err != nil {
		return nil, contract.Errorf(contract.KindDecode, "get commit info", "parent ids of %s: %w", id, err)
	}
	if parents == nil {
		parents = []string{}
	}

	return &schema.CommitInfo{
		ID:          row.ID,
		AuthorName:  row.AuthorName,
		AuthorEmail: row.AuthorEmail,
		Message:     row.Message,
		Timestamp:   time.Unix(row.Timestamp, 0).UTC(),
		ParentIDs:   parents,
	}, nil
}

// Close releases the connection and, for sqlite, the cache file lock.
func (s *CommitStoreImpl) Close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		err = errors.Join(err, s.lock.Unlock())
	}
	return err
}

// GetStatus implements the CommitStore interface.
func (s *CommitStoreImpl) GetStatus(ctx context.Context) (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	if err := s.db.GetContext(ctx, &status.SchemaVersion, "SELECT version FROM "+migrationsTable); err != nil {
		return status, fmt.Errorf("failed to read schema version: %w", err)
	}
	if err := s.db.GetContext(ctx, &status.TotalCommits, "SELECT COUNT(*) FROM commits"); err != nil {
		return status, fmt.Errorf("failed to count commits: %w", err)
	}
	if err := s.db.GetContext(ctx, &status.TotalFiles, "SELECT COUNT(*) FROM files"); err != nil {
		return status, fmt.Errorf("failed to count file rows: %w", err)
	}

	if status.TotalCommits > 0 {
		var bounds struct {
			Oldest sql.NullInt64 `db:"oldest"`
			Newest sql.NullInt64 `db:"newest"`
		}
		if err := s.db.GetContext(ctx, &bounds, "SELECT MIN(timestamp) AS oldest, MAX(timestamp) AS newest FROM commits"); err != nil {
			return status, fmt.Errorf("failed to get commit time bounds: %w", err)
		}
		status.OldestCommitTime = time.Unix(bounds.Oldest.Int64, 0).UTC()
		status.NewestCommitTime = time.Unix(bounds.Newest.Int64, 0).UTC()
	}

	status.SizeBytes = s.sizeBytes(ctx, status.TotalFiles)
	return status, nil
}

// sizeBytes returns the storage used by the cache, or a rough estimate when the backend cannot say.
func (s *CommitStoreImpl) sizeBytes(ctx context.Context, fileRows int) int64 {
	estimate := int64(fileRows) * 200
	var size int64

	switch s.backend {
	case schema.SQLiteBackend:
		query := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := s.db.GetContext(ctx, &size, query); err != nil {
			return estimate
		}
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(s.connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		query := `SELECT COALESCE(SUM(data_length + index_length), 0) FROM information_schema.tables
			WHERE table_schema = ? AND table_name IN ('commits', 'files')`
		if err := s.db.GetContext(ctx, &size, query, cfg.DBName); err != nil {
			return estimate
		}
	case schema.PostgreSQLBackend:
		query := "SELECT pg_total_relation_size('commits') + pg_total_relation_size('files')"
		if err := s.db.GetContext(ctx, &size, query); err != nil {
			return estimate
		}
	default:
		return estimate
	}
	return size
}
