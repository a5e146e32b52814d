package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionShows(t *testing.T) {
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	shows := []ShowSummary{
		{ID: 1, StartTime: now.Add(-48 * time.Hour)},
		{ID: 2, StartTime: now.Add(72 * time.Hour)},
		{ID: 3, StartTime: now},
		{ID: 4, StartTime: now.Add(-time.Second)},
	}

	s := PartitionShows(shows, now)

	assert.Equal(t, []uint64{1, 4}, ids(s.Past))
	assert.Equal(t, []uint64{2, 3}, ids(s.Upcoming))
	assert.Equal(t, 2, s.PastCount())
	assert.Equal(t, 2, s.UpcomingCount())
	assert.Equal(t, len(shows), s.PastCount()+s.UpcomingCount())
}

func TestPartitionShows_Empty(t *testing.T) {
	s := PartitionShows(nil, time.Now())

	assert.Empty(t, s.Past)
	assert.Empty(t, s.Upcoming)
	assert.NotNil(t, s.Past)
}

func TestGenres_ValueAndScan(t *testing.T) {
	v, err := Genres{"Jazz", "Reggae"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["Jazz","Reggae"]`, v)

	v, err = Genres(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var g Genres
	require.NoError(t, g.Scan([]byte(`["Swing","Folk"]`)))
	assert.Equal(t, Genres{"Swing", "Folk"}, g)

	require.NoError(t, g.Scan(nil))
	assert.Equal(t, Genres{}, g)

	require.NoError(t, g.Scan(""))
	assert.Equal(t, Genres{}, g)

	assert.Error(t, g.Scan(42))
	assert.Error(t, g.Scan("{not json"))
	assert.Equal(t, "Swing, Folk", Genres{"Swing", "Folk"}.String())
}

func ids(shows []ShowSummary) []uint64 {
	out := make([]uint64, 0, len(shows))
	for _, s := range shows {
		out = append(out, s.ID)
	}
	return out
}
