package form

import (
	"strconv"
	"time"

	"github.com/iliyamo/fyyur/internal/model"
)

// startTimeLayouts are tried in order; values without a zone are UTC.
var startTimeLayouts = []string{
	model.StartTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ShowForm is the create show submission.  The ids and start time arrive as
// text and are converted before a show is built.
type ShowForm struct {
	ArtistID  string `form:"artist_id" validate:"required"`
	VenueID   string `form:"venue_id" validate:"required"`
	StartTime string `form:"start_time" validate:"required"`
}

// Show validates the form and converts it into a show without an id.
// Whether the ids reference existing rows is left to the store.
func (f *ShowForm) Show() (*model.Show, error) {
	trimAll(&f.ArtistID, &f.VenueID, &f.StartTime)
	verr := check(f)

	artistID, ok := parseID(f.ArtistID)
	if !ok {
		verr.add("artist_id", "must be a positive number")
	}
	venueID, ok := parseID(f.VenueID)
	if !ok {
		verr.add("venue_id", "must be a positive number")
	}
	start, ok := ParseStartTime(f.StartTime)
	if !ok {
		verr.add("start_time", "must be a date and time like 2006-01-02 15:04:05")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return &model.Show{ArtistID: artistID, VenueID: venueID, StartTime: start}, nil
}

// ParseStartTime accepts the storage layout, HTML datetime-local values and
// RFC 3339.  The result is in UTC.
func ParseStartTime(s string) (time.Time, bool) {
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseID(s string) (uint64, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	return n, err == nil && n > 0
}
