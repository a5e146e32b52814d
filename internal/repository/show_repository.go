// Package repository contains data access logic for shows.  A show links an
// artist to a venue at a start time.  Start times are stored as
// "2006-01-02 15:04:05" text in UTC and parsed back into time.Time here, so
// handlers never see the storage format.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/model"
)

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *sqlx.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sqlx.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// showSummaryRow mirrors the joined show listing columns.
type showSummaryRow struct {
	ID              uint64 `db:"id"`
	StartTime       string `db:"start_time"`
	ArtistID        uint64 `db:"artist_id"`
	ArtistName      string `db:"artist_name"`
	ArtistImageLink string `db:"artist_image_link"`
	VenueID         uint64 `db:"venue_id"`
	VenueName       string `db:"venue_name"`
	VenueImageLink  string `db:"venue_image_link"`
}

// Names are resolved from the referenced rows at read time; nothing about
// the artist or venue is copied into the shows table.
const showSummarySelect = `SELECT
		s.id,
		s.start_time,
		s.artist_id,
		a.name AS artist_name,
		COALESCE(a.image_link, '') AS artist_image_link,
		s.venue_id,
		v.name AS venue_name,
		COALESCE(v.image_link, '') AS venue_image_link
	FROM shows s
	JOIN artists a ON a.id = s.artist_id
	JOIN venues v  ON v.id = s.venue_id`

// FormatStartTime renders t in the storage layout (UTC).
func FormatStartTime(t time.Time) string {
	return t.UTC().Format(model.StartTimeLayout)
}

func parseStartTime(s string) (time.Time, error) {
	return time.ParseInLocation(model.StartTimeLayout, s, time.UTC)
}

// listSummaries runs the joined show query with an optional condition.
func listSummaries(ctx context.Context, q sqlx.QueryerContext, where string, args ...any) ([]model.ShowSummary, error) {
	query := showSummarySelect
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY s.start_time ASC, s.id ASC"

	var rows []showSummaryRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]model.ShowSummary, 0, len(rows))
	for _, r := range rows {
		t, err := parseStartTime(r.StartTime)
		if err != nil {
			return nil, fmt.Errorf("show %d: bad start_time %q: %w", r.ID, r.StartTime, err)
		}
		out = append(out, model.ShowSummary{
			ID:              r.ID,
			StartTime:       t,
			ArtistID:        r.ArtistID,
			ArtistName:      r.ArtistName,
			ArtistImageLink: r.ArtistImageLink,
			VenueID:         r.VenueID,
			VenueName:       r.VenueName,
			VenueImageLink:  r.VenueImageLink,
		})
	}
	return out, nil
}

// Create inserts a new show and assigns the generated ID.  Foreign keys on
// artist_id and venue_id are enforced by the store; a missing artist or
// venue comes back as a KindConstraint error.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (start_time, artist_id, venue_id) VALUES (?, ?, ?)`
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error { // rolled back unless the closure returns nil
		res, err := tx.ExecContext(ctx, q, FormatStartTime(s.StartTime), s.ArtistID, s.VenueID)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId() // auto-increment id of the new row
		if err != nil {
			return err
		}
		s.ID = uint64(id)
		return nil
	})
	return classify("show.create", err) // nil stays nil; driver errors get a Kind
}

// List returns every show ordered by start time.
func (r *ShowRepo) List(ctx context.Context) ([]model.ShowSummary, error) {
	shows, err := listSummaries(ctx, r.db, "") // shows with the other side's name and image
	return shows, classify("show.list", err)
}

// ListByVenue returns the shows hosted by one venue.
func (r *ShowRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.ShowSummary, error) {
	shows, err := listSummaries(ctx, r.db, "s.venue_id = ?", venueID) // shows with the other side's name and image
	return shows, classify("show.list_by_venue", err)
}

// ListByArtist returns the shows an artist is booked for.
func (r *ShowRepo) ListByArtist(ctx context.Context, artistID uint64) ([]model.ShowSummary, error) {
	shows, err := listSummaries(ctx, r.db, "s.artist_id = ?", artistID) // shows with the other side's name and image
	return shows, classify("show.list_by_artist", err)
}
