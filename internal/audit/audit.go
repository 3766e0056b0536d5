// Package audit logs every command-mode line a tmux CC client sends, and
// the response class it got back, to a local sqlite database — useful
// for diagnosing "what did this agent actually run" after the fact.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pkg/errors"
)

type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite audit database at path and
// ensures its schema exists. A single connection is kept open, matching
// the single-writer discipline sqlite requires under WAL.
func Open(ctx context.Context, path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "audit: create db dir")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "audit: open sqlite")
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "audit: ping sqlite")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.Wrap(err, "audit: migrate")
	}
	if err := os.Chmod(path, 0o600); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "audit: chmod db path")
	}
	return &Log{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS commands (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	stream_id TEXT NOT NULL,
	workspace TEXT NOT NULL,
	line TEXT NOT NULL,
	ok INTEGER NOT NULL,
	error TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_commands_stream ON commands(stream_id, created_at);
`

func (l *Log) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Record appends one executed command line and its outcome. errMsg is
// empty for a successful command.
func (l *Log) Record(ctx context.Context, streamID, workspace, line string, errMsg string) error {
	if l == nil {
		return nil
	}
	ok := 1
	var errVal any
	if errMsg != "" {
		ok = 0
		errVal = errMsg
	}
	_, err := l.db.ExecContext(ctx, `
INSERT INTO commands(stream_id, workspace, line, ok, error, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`, streamID, workspace, line, ok, errVal, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return errors.Wrap(err, "audit: insert command")
	}
	return nil
}
