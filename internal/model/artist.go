package model

// Artist is a performer that can be booked for shows.
type Artist struct {
	ID                 uint64 `db:"id"`
	Name               string `db:"name"`
	City               string `db:"city"`
	State              string `db:"state"`
	Phone              string `db:"phone"`
	Website            string `db:"website"`
	SeekingVenue       bool   `db:"seeking_venue"`
	SeekingDescription string `db:"seeking_description"`
	ImageLink          string `db:"image_link"`
	FacebookLink       string `db:"facebook_link"`
	Genres             Genres `db:"genres"`

	// Shows is filled by detail lookups; each entry carries the venue side.
	Shows []ShowSummary `db:"-"`
}
