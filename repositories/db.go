package repositories

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/LepeyevaEmiliya/projects/logging"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// DB wraps the sqlx handle shared by every SQL repository.
// Queries are written with '?' placeholders and rebound for the driver.
type DB struct {
	conn *sqlx.DB
}

func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	conn, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		logging.Logger.Errorf("Event ID: DB_CONNECTION_FAILED, Description: Failed to connect to %s database: %v", driver, err)
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// a single connection keeps in-memory databases alive and serialises writers
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(30 * time.Minute)
	}

	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Connected to %s database", driver)
	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) DriverName() string {
	return db.conn.DriverName()
}

// Migrate applies the embedded schema for the current driver. Every
// statement is idempotent, so running it on each start is safe.
func (db *DB) Migrate(ctx context.Context) error {
	file := "migrations/postgres.sql"
	if db.DriverName() == DriverSQLite {
		file = "migrations/sqlite.sql"
	}

	schema, err := migrations.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	logging.Logger.Debugf("Event ID: DB_MIGRATION_START, Description: Applying %s", file)
	if _, err := db.conn.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply %s: %w", file, err)
	}
	logging.Logger.Infof("Event ID: DB_MIGRATION_DONE, Description: Schema %s applied", file)
	return nil
}

// withTx runs fn inside a transaction, committing when fn returns nil.
func (db *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logging.Logger.Errorf("Event ID: DB_ROLLBACK_FAILED, Description: Rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func affected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

func now() time.Time {
	return time.Now().UTC()
}
