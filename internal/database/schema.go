package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fyyur/internal/config"
)

// Optional unique columns (website, facebook_link) are stored as NULL when
// empty so several rows may leave them blank.  name_search holds the name
// case-folded by the application; substring searches match against it.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS venues (
		id                  BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name                VARCHAR(255) NOT NULL,
		name_search         VARCHAR(255) NOT NULL DEFAULT '',
		city                VARCHAR(120) NOT NULL DEFAULT '',
		state               VARCHAR(120) NOT NULL DEFAULT '',
		address             VARCHAR(120) NOT NULL,
		phone               VARCHAR(120) NOT NULL,
		website             VARCHAR(255) NULL,
		seeking_talent      TINYINT(1) NOT NULL DEFAULT 0,
		seeking_description VARCHAR(500) NULL,
		image_link          VARCHAR(500) NULL,
		facebook_link       VARCHAR(255) NULL,
		genres              TEXT NOT NULL,
		UNIQUE KEY uq_venues_name (name),
		UNIQUE KEY uq_venues_phone (phone),
		UNIQUE KEY uq_venues_website (website),
		UNIQUE KEY uq_venues_facebook (facebook_link),
		KEY idx_venues_city_state (city, state)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS artists (
		id                  BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name                VARCHAR(255) NOT NULL,
		name_search         VARCHAR(255) NOT NULL DEFAULT '',
		city                VARCHAR(120) NOT NULL DEFAULT '',
		state               VARCHAR(120) NOT NULL DEFAULT '',
		phone               VARCHAR(120) NOT NULL,
		website             VARCHAR(255) NULL,
		seeking_venue       TINYINT(1) NOT NULL DEFAULT 0,
		seeking_description VARCHAR(500) NULL,
		image_link          VARCHAR(500) NULL,
		facebook_link       VARCHAR(255) NULL,
		genres              TEXT NOT NULL,
		UNIQUE KEY uq_artists_name (name),
		UNIQUE KEY uq_artists_phone (phone),
		UNIQUE KEY uq_artists_website (website),
		UNIQUE KEY uq_artists_facebook (facebook_link)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS shows (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		start_time VARCHAR(32) NOT NULL,
		artist_id  BIGINT UNSIGNED NOT NULL,
		venue_id   BIGINT UNSIGNED NOT NULL,
		KEY idx_shows_start_time (start_time),
		CONSTRAINT fk_shows_artist FOREIGN KEY (artist_id) REFERENCES artists (id),
		CONSTRAINT fk_shows_venue FOREIGN KEY (venue_id) REFERENCES venues (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS venues (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		name                TEXT NOT NULL UNIQUE,
		name_search         TEXT NOT NULL DEFAULT '',
		city                TEXT NOT NULL DEFAULT '',
		state               TEXT NOT NULL DEFAULT '',
		address             TEXT NOT NULL,
		phone               TEXT NOT NULL UNIQUE,
		website             TEXT UNIQUE,
		seeking_talent      INTEGER NOT NULL DEFAULT 0,
		seeking_description TEXT,
		image_link          TEXT,
		facebook_link       TEXT UNIQUE,
		genres              TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_venues_city_state ON venues(city, state)`,
	`CREATE TABLE IF NOT EXISTS artists (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		name                TEXT NOT NULL UNIQUE,
		name_search         TEXT NOT NULL DEFAULT '',
		city                TEXT NOT NULL DEFAULT '',
		state               TEXT NOT NULL DEFAULT '',
		phone               TEXT NOT NULL UNIQUE,
		website             TEXT UNIQUE,
		seeking_venue       INTEGER NOT NULL DEFAULT 0,
		seeking_description TEXT,
		image_link          TEXT,
		facebook_link       TEXT UNIQUE,
		genres              TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS shows (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		start_time TEXT NOT NULL,
		artist_id  INTEGER NOT NULL REFERENCES artists(id),
		venue_id   INTEGER NOT NULL REFERENCES venues(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shows_start_time ON shows(start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_shows_artist_id ON shows(artist_id)`,
	`CREATE INDEX IF NOT EXISTS idx_shows_venue_id ON shows(venue_id)`,
}

// Migrate creates the venues, artists and shows tables when missing.
// Statements run one at a time because the MySQL driver rejects
// multi-statement strings by default.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts := mysqlSchema
	if db.DriverName() == config.DriverSQLite {
		stmts = sqliteSchema
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
