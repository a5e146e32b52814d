package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func countArtists(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM artists"))
	return n
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := openTestDB(t)

	assert.NoError(t, Migrate(context.Background(), db))
	assert.Equal(t, 0, countArtists(t, db))
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := openTestDB(t)

	err := WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`INSERT INTO artists (name, phone, genres) VALUES (?, ?, ?)`, "Guns N Petals", "326-123-5000", "[]")
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 1, countArtists(t, db))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO artists (name, phone, genres) VALUES (?, ?, ?)`, "Matt Quevedo", "300-400-5000", "[]"); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countArtists(t, db))
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := openTestDB(t)

	assert.Panics(t, func() {
		_ = WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
			_, _ = tx.Exec(`INSERT INTO artists (name, phone, genres) VALUES (?, ?, ?)`, "The Wild Sax Band", "432-325-5432", "[]")
			panic("handler bug")
		})
	})
	assert.Equal(t, 0, countArtists(t, db))
}

func TestOpenSQLite_EnforcesForeignKeys(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO shows (start_time, artist_id, venue_id) VALUES (?, ?, ?)`, "2035-04-01 20:00:00", 99, 99)

	assert.Error(t, err)
}
