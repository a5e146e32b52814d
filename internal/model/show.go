package model

import "time"

// StartTimeLayout is the layout start times are persisted with (UTC).
const StartTimeLayout = "2006-01-02 15:04:05"

// Show links one artist to one venue at a start time.
type Show struct {
	ID        uint64
	ArtistID  uint64
	VenueID   uint64
	StartTime time.Time
}

// ShowSummary is a show together with the names and images of both sides,
// resolved from the referenced rows when it is read.
type ShowSummary struct {
	ID              uint64
	StartTime       time.Time
	ArtistID        uint64
	ArtistName      string
	ArtistImageLink string
	VenueID         uint64
	VenueName       string
	VenueImageLink  string
}

// Schedule is a list of shows split around a reference instant.
type Schedule struct {
	Past     []ShowSummary
	Upcoming []ShowSummary
}

// PastCount returns the number of past shows.
func (s Schedule) PastCount() int { return len(s.Past) }

// UpcomingCount returns the number of upcoming shows.
func (s Schedule) UpcomingCount() int { return len(s.Upcoming) }

// PartitionShows splits shows into those that started before now and the
// rest.  A show starting exactly at now counts as upcoming, so the two
// parts are disjoint and together hold every input show in input order.
func PartitionShows(shows []ShowSummary, now time.Time) Schedule {
	s := Schedule{
		Past:     make([]ShowSummary, 0, len(shows)),
		Upcoming: make([]ShowSummary, 0, len(shows)),
	}
	for _, sh := range shows {
		if sh.StartTime.Before(now) {
			s.Past = append(s.Past, sh)
			continue
		}
		s.Upcoming = append(s.Upcoming, sh)
	}
	return s
}
