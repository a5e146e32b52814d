// Package handler contains the HTTP handlers for pages and forms.
// This file declares the view models handed to the templates.
package handler

import (
	"github.com/iliyamo/fyyur/internal/form"
	"github.com/iliyamo/fyyur/internal/model"
)

// Page data handed to the templates.

type homeData struct {
	Venues  []model.Venue
	Artists []model.Artist
}

type venueDetail struct {
	Venue    *model.Venue
	Schedule model.Schedule
}

type artistDetail struct {
	Artist   *model.Artist
	Schedule model.Schedule
}

type searchResult struct {
	ID            uint64
	Name          string
	UpcomingShows int
}

type searchData struct {
	BasePath string
	Term     string
	Results  []searchResult
}

type formPage[F any] struct {
	ID     uint64
	Form   F
	Errors map[string]string
}

type showFormPage struct {
	Form    form.ShowForm
	Errors  map[string]string
	Artists []model.Artist
	Venues  []model.Venue
}

type errorPage struct {
	Status  int
	Message string
}
