package form

import (
	"github.com/samber/lo"

	"github.com/iliyamo/fyyur/internal/model"
)

// VenueForm is the create/edit venue submission.
type VenueForm struct {
	Name               string   `form:"name" validate:"required,notblank,max=120"`
	City               string   `form:"city" validate:"required,notblank,max=120"`
	State              string   `form:"state" validate:"required,us_state"`
	Address            string   `form:"address" validate:"required,notblank,max=120"`
	Phone              string   `form:"phone" validate:"required,notblank,max=120"`
	Website            string   `form:"website" validate:"omitempty,url,max=500"`
	SeekingTalent      string   `form:"seeking_talent"`
	SeekingDescription string   `form:"seeking_description" validate:"max=500"`
	ImageLink          string   `form:"image_link" validate:"omitempty,url,max=500"`
	FacebookLink       string   `form:"facebook_link" validate:"omitempty,url,max=120"`
	Genres             []string `form:"genres" validate:"dive,genre"`
}

// Venue validates the form and converts it into a venue without an id.
func (f *VenueForm) Venue() (*model.Venue, error) {
	if err := check(f).orNil(); err != nil {
		return nil, err
	}
	return &model.Venue{
		Name:               f.Name,
		City:               f.City,
		State:              f.State,
		Address:            f.Address,
		Phone:              f.Phone,
		Website:            f.Website,
		SeekingTalent:      seeking(f.SeekingTalent),
		SeekingDescription: f.SeekingDescription,
		ImageLink:          f.ImageLink,
		FacebookLink:       f.FacebookLink,
		Genres:             model.Genres(f.Genres),
	}, nil
}

// FromVenue pre-fills an edit form.
func FromVenue(v *model.Venue) VenueForm {
	return VenueForm{
		Name:               v.Name,
		City:               v.City,
		State:              v.State,
		Address:            v.Address,
		Phone:              v.Phone,
		Website:            v.Website,
		SeekingTalent:      checkbox(v.SeekingTalent),
		SeekingDescription: v.SeekingDescription,
		ImageLink:          v.ImageLink,
		FacebookLink:       v.FacebookLink,
		Genres:             append([]string(nil), v.Genres...),
	}
}

// HasGenre is used by the templates to mark selected options.
func (f VenueForm) HasGenre(g string) bool { return lo.Contains(f.Genres, g) }

// Seeking reports whether the seeking checkbox is ticked.
func (f VenueForm) Seeking() bool { return seeking(f.SeekingTalent) }
