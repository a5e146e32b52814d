package model

// Venue is a location that can host shows.  Name, phone, website and
// facebook link are unique across venues; the store enforces it.
type Venue struct {
	ID                 uint64 `db:"id"`
	Name               string `db:"name"`
	City               string `db:"city"`
	State              string `db:"state"`
	Address            string `db:"address"`
	Phone              string `db:"phone"`
	Website            string `db:"website"`
	SeekingTalent      bool   `db:"seeking_talent"`
	SeekingDescription string `db:"seeking_description"`
	ImageLink          string `db:"image_link"`
	FacebookLink       string `db:"facebook_link"`
	Genres             Genres `db:"genres"`

	// Shows is filled by detail lookups; each entry carries the artist side.
	Shows []ShowSummary `db:"-"`
}

// CityState is one distinct (city, state) pair among the stored venues.
type CityState struct {
	City  string `db:"city"`
	State string `db:"state"`
}

// Area groups the venues located in one city/state pair.
type Area struct {
	City   string
	State  string
	Venues []Venue
}
