package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsApplyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := New(path, Migrations())
	require.NoError(t, err)

	var tables int
	require.NoError(t, db.Conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('users','leave_requests','approval_actions')",
	).Scan(&tables))
	assert.Equal(t, 3, tables)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	applied, err := db.Migrate(Migrations())
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestMigrateSkipsRecoverableErrors(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("CREATE TABLE t (id TEXT);\nALTER TABLE t ADD COLUMN x TEXT;")},
		"002_b.sql": {Data: []byte("-- re-adds x; must be tolerated\nALTER TABLE t ADD COLUMN x TEXT;\nALTER TABLE t ADD COLUMN y TEXT;")},
	}

	applied, err := db.Migrate(fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	_, err = db.Conn.Exec("INSERT INTO t (id, x, y) VALUES ('1', 'a', 'b')")
	assert.NoError(t, err)
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(`
		-- comment; with a semicolon
		INSERT INTO t VALUES ('a;b');
		INSERT INTO t VALUES ('it''s');
		SELECT 1`)

	require.Len(t, stmts, 3)
	assert.Equal(t, "INSERT INTO t VALUES ('a;b')", stmts[0])
	assert.Equal(t, "INSERT INTO t VALUES ('it''s')", stmts[1])
	assert.Equal(t, "SELECT 1", stmts[2])
}

func TestWithTxRollsBack(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	_, err = db.Conn.Exec("CREATE TABLE t (id TEXT PRIMARY KEY)")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO t VALUES ('a')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Panics(t, func() {
		_ = WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
			_, _ = tx.ExecContext(ctx, "INSERT INTO t VALUES ('b')")
			panic("kaboom")
		})
	})

	require.NoError(t, WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO t VALUES ('c')")
		return err
	}))

	var n int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 1, n)
}
