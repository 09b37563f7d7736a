package biscuit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sqlite3 "modernc.org/sqlite"
)

// SQLite result codes relevant to reading a live browser database.
const (
	sqliteBusy    = 5
	sqliteLocked  = 6
	sqliteCorrupt = 11
	sqliteNotADB  = 26
)

// openCookieDB opens a browser cookie database strictly read-only.
//
// A running browser may hold the database lock. The default is to honor it
// and fail fast with ErrLocked; the browser may never release the lock while
// running, so blocking would hang the caller. With bypassLock the database is
// opened with immutable=1, which ignores locking entirely: reads may race the
// browser's writer and surface ErrCorrupt on an inconsistent snapshot, but
// the source file is never written to or truncated.
func openCookieDB(ctx context.Context, path string, bypassLock bool) (*sql.DB, error) {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	dsn := "file:" + filepath.ToSlash(path) + "?mode=ro"
	if bypassLock {
		dsn += "&immutable=1"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, classifyStoreError(err)
	}
	return db, nil
}

// classifyStoreError maps driver errors onto the store error taxonomy.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqliteBusy, sqliteLocked:
			return fmt.Errorf("%w: %v", ErrLocked, err)
		case sqliteCorrupt, sqliteNotADB:
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}
	// The driver sometimes reports lock contention as plain text.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "database is locked"):
		return fmt.Errorf("%w: %v", ErrLocked, err)
	case strings.Contains(msg, "malformed"), strings.Contains(msg, "not a database"):
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return err
}

// metaVersion reads the schema version from a Chromium cookie database's meta
// table. Zero when the table or row is absent.
func metaVersion(ctx context.Context, db *sql.DB) int64 {
	var value string
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&value); err != nil {
		return 0
	}
	v, err := parseInt64(value)
	if err != nil {
		return 0
	}
	return v
}
