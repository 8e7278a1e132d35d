package repos

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// OpenDB opens the store for driver ("sqlite" or "postgres"), applies
// pending migrations and seeds the settings row.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case "", "sqlite":
		db, err = sqlx.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// One writer; also keeps :memory: databases on a single connection.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			_ = db.Close()
			return nil, err
		}
	case "postgres", "pgx":
		db, err = sqlx.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := seedConfig(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func dialect(db *sqlx.DB) string {
	if db.DriverName() == "pgx" {
		return "postgres"
	}
	return "sqlite"
}

// Migrate applies the embedded migrations for the connection's dialect that
// are not yet recorded in schema_migrations.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	dir := "migrations/" + dialect(db)
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		var n int
		if err := db.Get(&n, db.Rebind(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`), file); err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		content, err := migrationsFS.ReadFile(dir + "/" + file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		log.Printf("[migrate] applying %s", file)

		tx, err := db.Beginx()
		if err != nil {
			return err
		}
		for _, stmt := range splitStatements(string(content)) {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %s: %w", file, err)
			}
		}
		if _, err := tx.Exec(tx.Rebind(`INSERT INTO schema_migrations(version, applied_at) VALUES (?, ?)`), file, time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func splitStatements(sql string) []string {
	var out []string
	for _, part := range strings.Split(sql, ";\n") {
		var b strings.Builder
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		if s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(b.String()), ";")); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// seedConfig guarantees the single settings row exists. Safe on every start.
func seedConfig(db *sqlx.DB) error {
	_, err := db.Exec(db.Rebind(`
		INSERT INTO site_config(id, site_title, wedding_date, pix_key, pix_description, pix_qr_image, mp_public_key, mp_access_token, updated_at)
		VALUES (1, '', '', '', '', '', '', '', ?)
		ON CONFLICT(id) DO NOTHING`), time.Now().UTC())
	return err
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
