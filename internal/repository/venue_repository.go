// Package repository contains data access logic separated from HTTP handlers.
// This file defines VenueRepo: lookups, name search, the city/state grouping
// behind the venues page and the transactional create, update and delete of
// venues.  Blank optional links are written as NULL; see nullIfEmpty.
package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/model"
)

// venueColumns selects a venue with NULL optionals read back as "".
const venueColumns = `id, name, city, state, address, phone,
	COALESCE(website, '') AS website,
	seeking_talent,
	COALESCE(seeking_description, '') AS seeking_description,
	COALESCE(image_link, '') AS image_link,
	COALESCE(facebook_link, '') AS facebook_link,
	genres`

// venueFilterFields are the columns FilterBy accepts as keys.
var venueFilterFields = map[string]bool{
	"name": true, "city": true, "state": true, "address": true, "phone": true,
	"website": true, "facebook_link": true, "seeking_talent": true,
}

// venueOrderings maps List sort keys to ORDER BY clauses.
var venueOrderings = map[string]string{
	"id":   "id",
	"name": "name",
	"city": "state, city, name",
}

// VenueRepo encapsulates all database queries related to venues.
type VenueRepo struct {
	db *sqlx.DB // db is the underlying database connection pool
}

// NewVenueRepo constructs a VenueRepo with the provided DB handle.
func NewVenueRepo(db *sqlx.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// GetByID fetches a venue together with the shows it hosts.  A missing
// venue is reported as a KindNotFound error.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	var v model.Venue
	if err := r.db.GetContext(ctx, &v, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id); err != nil {
		return nil, classify("venue.get", err)
	}
	shows, err := listSummaries(ctx, r.db, "s.venue_id = ?", id) // shows with the other side's name and image
	if err != nil {
		return nil, classify("venue.get", err)
	}
	v.Shows = shows
	return &v, nil
}

// List returns all venues sorted by one of "id", "name" or "city".
func (r *VenueRepo) List(ctx context.Context, orderBy string) ([]model.Venue, error) {
	q := `SELECT ` + venueColumns + ` FROM venues ORDER BY ` + orderClause(orderBy, venueOrderings)
	var out []model.Venue
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, classify("venue.list", err)
	}
	return out, nil
}

// Recent returns the most recently listed venues, newest first.
func (r *VenueRepo) Recent(ctx context.Context, limit int) ([]model.Venue, error) {
	var out []model.Venue
	if err := r.db.SelectContext(ctx, &out, `SELECT `+venueColumns+` FROM venues ORDER BY id DESC LIMIT ?`, limit); err != nil {
		return nil, classify("venue.recent", err)
	}
	return out, nil
}

// FilterBy returns venues whose columns equal every given value.  Only
// plain venue columns may be used as keys.
func (r *VenueRepo) FilterBy(ctx context.Context, fields map[string]any) ([]model.Venue, error) {
	where, args, err := whereEquals(fields, venueFilterFields) // rejects columns outside the whitelist
	if err != nil {
		return nil, err
	}
	var out []model.Venue
	q := `SELECT ` + venueColumns + ` FROM venues WHERE ` + where + ` ORDER BY id`
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, classify("venue.filter", err)
	}
	return out, nil
}

// SearchByName performs a case-insensitive substring match on the name,
// using the folded copy kept in name_search.
func (r *VenueRepo) SearchByName(ctx context.Context, term string) ([]model.Venue, error) {
	q := `SELECT ` + venueColumns + ` FROM venues WHERE name_search LIKE ? ESCAPE '` + likeEscape + `' ORDER BY id`
	var out []model.Venue
	if err := r.db.SelectContext(ctx, &out, q, containsPattern(term)); err != nil {
		return nil, classify("venue.search", err)
	}
	return out, nil
}

// DistinctCityState lists each (city, state) pair that has at least one venue.
func (r *VenueRepo) DistinctCityState(ctx context.Context) ([]model.CityState, error) {
	var out []model.CityState
	if err := r.db.SelectContext(ctx, &out, `SELECT DISTINCT city, state FROM venues ORDER BY state, city`); err != nil {
		return nil, classify("venue.areas", err)
	}
	return out, nil
}

// Areas groups every venue under its (city, state) pair.  Each pair is
// fetched with its own query, which is fine for the number of areas a
// booking site deals with.
func (r *VenueRepo) Areas(ctx context.Context) ([]model.Area, error) {
	pairs, err := r.DistinctCityState(ctx) // one group per pair
	if err != nil {
		return nil, err
	}
	areas := make([]model.Area, 0, len(pairs))
	for _, p := range pairs {
		venues, err := r.FilterBy(ctx, map[string]any{"city": p.City, "state": p.State}) // members of this group
		if err != nil {
			return nil, err
		}
		areas = append(areas, model.Area{City: p.City, State: p.State, Venues: venues})
	}
	return areas, nil
}

// Create inserts a new venue and populates its ID.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const q = `INSERT INTO venues
		(name, name_search, city, state, address, phone, website, seeking_talent, seeking_description, image_link, facebook_link, genres)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error { // rolled back unless the closure returns nil
		res, err := tx.ExecContext(ctx, q,
			v.Name, foldName(v.Name), v.City, v.State, v.Address, v.Phone, nullIfEmpty(v.Website), v.SeekingTalent,
			nullIfEmpty(v.SeekingDescription), nullIfEmpty(v.ImageLink), nullIfEmpty(v.FacebookLink), v.Genres,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId() // auto-increment id of the new row
		if err != nil {
			return err
		}
		v.ID = uint64(id) // hand the id back to the caller
		return nil
	})
	return classify("venue.create", err) // nil stays nil; driver errors get a Kind
}

// Update overwrites every mutable column of the venue identified by v.ID.
// The id and the venue's shows are left untouched.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	const q = `UPDATE venues
		SET name = ?, name_search = ?, city = ?, state = ?, address = ?, phone = ?, website = ?, seeking_talent = ?,
		    seeking_description = ?, image_link = ?, facebook_link = ?, genres = ?
		WHERE id = ?`
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error { // rolled back unless the closure returns nil
		res, err := tx.ExecContext(ctx, q,
			v.Name, foldName(v.Name), v.City, v.State, v.Address, v.Phone, nullIfEmpty(v.Website), v.SeekingTalent,
			nullIfEmpty(v.SeekingDescription), nullIfEmpty(v.ImageLink), nullIfEmpty(v.FacebookLink), v.Genres,
			v.ID,
		)
		if err != nil {
			return err
		}
		return requireRow(res) // no row matched: the id does not exist
	})
	return classify("venue.update", err) // nil stays nil; driver errors get a Kind
}

// Delete removes a venue and the shows it hosts in one transaction.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error { // rolled back unless the closure returns nil
		if _, err := tx.ExecContext(ctx, `DELETE FROM shows WHERE venue_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(res) // no row matched: the id does not exist
	})
	return classify("venue.delete", err) // nil stays nil; driver errors get a Kind
}
