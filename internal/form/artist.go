package form

import (
	"github.com/samber/lo"

	"github.com/iliyamo/fyyur/internal/model"
)

// ArtistForm is the create/edit artist submission.
type ArtistForm struct {
	Name               string   `form:"name" validate:"required,notblank,max=120"`
	City               string   `form:"city" validate:"required,notblank,max=120"`
	State              string   `form:"state" validate:"required,us_state"`
	Phone              string   `form:"phone" validate:"required,notblank,max=120"`
	Website            string   `form:"website" validate:"omitempty,url,max=500"`
	SeekingVenue       string   `form:"seeking_venue"`
	SeekingDescription string   `form:"seeking_description" validate:"max=500"`
	ImageLink          string   `form:"image_link" validate:"omitempty,url,max=500"`
	FacebookLink       string   `form:"facebook_link" validate:"omitempty,url,max=120"`
	Genres             []string `form:"genres" validate:"dive,genre"`
}

// Artist validates the form and converts it into an artist without an id.
func (f *ArtistForm) Artist() (*model.Artist, error) {
	if err := check(f).orNil(); err != nil {
		return nil, err
	}
	return &model.Artist{
		Name:               f.Name,
		City:               f.City,
		State:              f.State,
		Phone:              f.Phone,
		Website:            f.Website,
		SeekingVenue:       seeking(f.SeekingVenue),
		SeekingDescription: f.SeekingDescription,
		ImageLink:          f.ImageLink,
		FacebookLink:       f.FacebookLink,
		Genres:             model.Genres(f.Genres),
	}, nil
}

// FromArtist pre-fills an edit form.
func FromArtist(a *model.Artist) ArtistForm {
	return ArtistForm{
		Name:               a.Name,
		City:               a.City,
		State:              a.State,
		Phone:              a.Phone,
		Website:            a.Website,
		SeekingVenue:       checkbox(a.SeekingVenue),
		SeekingDescription: a.SeekingDescription,
		ImageLink:          a.ImageLink,
		FacebookLink:       a.FacebookLink,
		Genres:             append([]string(nil), a.Genres...),
	}
}

// HasGenre is used by the templates to mark selected options.
func (f ArtistForm) HasGenre(g string) bool { return lo.Contains(f.Genres, g) }

// Seeking reports whether the seeking checkbox is ticked.
func (f ArtistForm) Seeking() bool { return seeking(f.SeekingVenue) }
