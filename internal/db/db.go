package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	stdfs "io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (or creates) the SQLite session database and brings its schema up to date.
// Schema changes live in versioned files under internal/db/migrations:
//
//	0001_name.up.sql / 0001_name.down.sql
//
// A file whose first line is "-- NO_TX" runs outside a transaction.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "app.db"
	}
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	// WAL is unavailable for in-memory databases.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	if _, err := d.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		_ = d.Close()
		return nil, err
	}
	if err := Migrate(context.Background(), d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version int
	name    string
	up      string
	down    string
}

var migrationFileRe = regexp.MustCompile(`^([0-9]{4})_(.+)\.(up|down)\.sql$`)

func loadMigrations() (map[int]migration, error) {
	out := map[int]migration{}
	entries, err := stdfs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		item := out[version]
		item.version = version
		item.name = m[2]
		if m[3] == "up" {
			item.up = "migrations/" + e.Name()
		} else {
			item.down = "migrations/" + e.Name()
		}
		out[version] = item
	}
	return out, nil
}

func ensureVersionTable(ctx context.Context, d *sql.DB) error {
	_, err := d.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
        version INTEGER PRIMARY KEY,
        applied_at TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
    )`)
	return err
}

// Version returns the highest applied migration version, or 0 for a fresh database.
func Version(ctx context.Context, d *sql.DB) (int, error) {
	if err := ensureVersionTable(ctx, d); err != nil {
		return 0, err
	}
	var v sql.NullInt64
	if err := d.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// Migrate applies every migration newer than the current version, in order.
func Migrate(ctx context.Context, d *sql.DB) error {
	migs, err := loadMigrations()
	if err != nil {
		return err
	}
	current, err := Version(ctx, d)
	if err != nil {
		return err
	}
	versions := make([]int, 0, len(migs))
	for v := range migs {
		if v > current {
			versions = append(versions, v)
		}
	}
	sort.Ints(versions)
	for _, v := range versions {
		m := migs[v]
		if m.up == "" {
			return fmt.Errorf("missing up migration for version %04d", v)
		}
		if err := run(ctx, d, m.up, `INSERT INTO schema_migrations(version) VALUES(?)`, v); err != nil {
			return fmt.Errorf("migration %04d_%s: %w", v, m.name, err)
		}
	}
	return nil
}

// RollbackLast reverts the most recently applied migration.
func RollbackLast(ctx context.Context, d *sql.DB) error {
	if d == nil {
		return errors.New("nil db")
	}
	current, err := Version(ctx, d)
	if err != nil {
		return err
	}
	if current == 0 {
		return nil
	}
	migs, err := loadMigrations()
	if err != nil {
		return err
	}
	m, ok := migs[current]
	if !ok || m.down == "" {
		return fmt.Errorf("no down migration found for version %04d", current)
	}
	return run(ctx, d, m.down, `DELETE FROM schema_migrations WHERE version = ?`, current)
}

// run executes one migration file and records the version change with bookkeeping.
func run(ctx context.Context, d *sql.DB, file, bookkeeping string, version int) error {
	raw, err := migrationsFS.ReadFile(file)
	if err != nil {
		return err
	}
	text := string(raw)
	if strings.HasPrefix(strings.TrimSpace(text), "-- NO_TX") {
		if _, err := d.ExecContext(ctx, text); err != nil {
			return err
		}
		_, err := d.ExecContext(ctx, bookkeeping, version)
		return err
	}
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, text); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
