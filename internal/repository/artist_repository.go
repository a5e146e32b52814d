// Package repository contains data access logic separated from HTTP handlers.
// This file defines ArtistRepo: lookups, name search, city/state listing and
// the transactional create, update and delete of artists.  Deleting an artist
// also removes the shows they were booked for.
package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/model"
)

// artistColumns selects an artist with NULL optionals read back as "".
const artistColumns = `id, name, city, state, phone,
	COALESCE(website, '') AS website,
	seeking_venue,
	COALESCE(seeking_description, '') AS seeking_description,
	COALESCE(image_link, '') AS image_link,
	COALESCE(facebook_link, '') AS facebook_link,
	genres`

// artistFilterFields are the columns FilterBy accepts as keys.
var artistFilterFields = map[string]bool{
	"name": true, "city": true, "state": true, "phone": true,
	"website": true, "facebook_link": true, "seeking_venue": true,
}

// artistOrderings maps List sort keys to ORDER BY clauses.
var artistOrderings = map[string]string{
	"id":   "id",
	"name": "name",
	"city": "state, city, name",
}

// ArtistRepo encapsulates all database queries related to artists.
type ArtistRepo struct {
	db *sqlx.DB // db is the underlying database connection pool
}

// NewArtistRepo constructs an ArtistRepo with the provided DB handle.
func NewArtistRepo(db *sqlx.DB) *ArtistRepo {
	return &ArtistRepo{db: db}
}

// GetByID fetches an artist together with the shows they are booked for.
func (r *ArtistRepo) GetByID(ctx context.Context, id uint64) (*model.Artist, error) {
	var a model.Artist
	if err := r.db.GetContext(ctx, &a, `SELECT `+artistColumns+` FROM artists WHERE id = ?`, id); err != nil {
		return nil, classify("artist.get", err)
	}
	shows, err := listSummaries(ctx, r.db, "s.artist_id = ?", id) // shows with the other side's name and image
	if err != nil {
		return nil, classify("artist.get", err)
	}
	a.Shows = shows
	return &a, nil
}

// List returns all artists sorted by one of "id", "name" or "city".
func (r *ArtistRepo) List(ctx context.Context, orderBy string) ([]model.Artist, error) {
	q := `SELECT ` + artistColumns + ` FROM artists ORDER BY ` + orderClause(orderBy, artistOrderings)
	var out []model.Artist
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, classify("artist.list", err)
	}
	return out, nil
}

// Recent returns the most recently listed artists, newest first.
func (r *ArtistRepo) Recent(ctx context.Context, limit int) ([]model.Artist, error) {
	var out []model.Artist
	if err := r.db.SelectContext(ctx, &out, `SELECT `+artistColumns+` FROM artists ORDER BY id DESC LIMIT ?`, limit); err != nil {
		return nil, classify("artist.recent", err)
	}
	return out, nil
}

// FilterBy returns artists whose columns equal every given value.
func (r *ArtistRepo) FilterBy(ctx context.Context, fields map[string]any) ([]model.Artist, error) {
	where, args, err := whereEquals(fields, artistFilterFields) // rejects columns outside the whitelist
	if err != nil {
		return nil, err
	}
	var out []model.Artist
	q := `SELECT ` + artistColumns + ` FROM artists WHERE ` + where + ` ORDER BY id`
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, classify("artist.filter", err)
	}
	return out, nil
}

// SearchByName performs a case-insensitive substring match on the name,
// using the folded copy kept in name_search.
func (r *ArtistRepo) SearchByName(ctx context.Context, term string) ([]model.Artist, error) {
	q := `SELECT ` + artistColumns + ` FROM artists WHERE name_search LIKE ? ESCAPE '` + likeEscape + `' ORDER BY id`
	var out []model.Artist
	if err := r.db.SelectContext(ctx, &out, q, containsPattern(term)); err != nil {
		return nil, classify("artist.search", err)
	}
	return out, nil
}

// DistinctCityState lists each (city, state) pair that has at least one artist.
func (r *ArtistRepo) DistinctCityState(ctx context.Context) ([]model.CityState, error) {
	var out []model.CityState
	if err := r.db.SelectContext(ctx, &out, `SELECT DISTINCT city, state FROM artists ORDER BY state, city`); err != nil {
		return nil, classify("artist.areas", err)
	}
	return out, nil
}

// Create inserts a new artist and populates its ID.
func (r *ArtistRepo) Create(ctx context.Context, a *model.Artist) error {
	const q = `INSERT INTO artists
		(name, name_search, city, state, phone, website, seeking_venue, seeking_description, image_link, facebook_link, genres)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error { // rolled back unless the closure returns nil
		res, err := tx.ExecContext(ctx, q,
			a.Name, foldName(a.Name), a.City, a.State, a.Phone, nullIfEmpty(a.Website), a.SeekingVenue,
			nullIfEmpty(a.SeekingDescription), nullIfEmpty(a.ImageLink), nullIfEmpty(a.FacebookLink), a.Genres,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId() // auto-increment id of the new row
		if err != nil {
			return err
		}
		a.ID = uint64(id) // hand the id back to the caller
		return nil
	})
	return classify("artist.create", err) // nil stays nil; driver errors get a Kind
}

// Update overwrites every mutable column of the artist identified by a.ID.
func (r *ArtistRepo) Update(ctx context.Context, a *model.Artist) error {
	const q = `UPDATE artists
		SET name = ?, name_search = ?, city = ?, state = ?, phone = ?, website = ?, seeking_venue = ?,
		    seeking_description = ?, image_link = ?, facebook_link = ?, genres = ?
		WHERE id = ?`
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error { // rolled back unless the closure returns nil
		res, err := tx.ExecContext(ctx, q,
			a.Name, foldName(a.Name), a.City, a.State, a.Phone, nullIfEmpty(a.Website), a.SeekingVenue,
			nullIfEmpty(a.SeekingDescription), nullIfEmpty(a.ImageLink), nullIfEmpty(a.FacebookLink), a.Genres,
			a.ID,
		)
		if err != nil {
			return err
		}
		return requireRow(res) // no row matched: the id does not exist
	})
	return classify("artist.update", err) // nil stays nil; driver errors get a Kind
}

// Delete removes an artist and every show they were booked for.
func (r *ArtistRepo) Delete(ctx context.Context, id uint64) error {
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error { // rolled back unless the closure returns nil
		if _, err := tx.ExecContext(ctx, `DELETE FROM shows WHERE artist_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM artists WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res) // no row matched: the id does not exist
	})
	return classify("artist.delete", err) // nil stays nil; driver errors get a Kind
}
