// Package handler contains the HTTP handlers for pages and forms.
// This file implements the show listing and the form that books an artist
// at a venue.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/events"
	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/form"
	"github.com/iliyamo/fyyur/internal/middleware"
)

// ListShows handles GET /shows.
func (h *Handler) ListShows(c echo.Context) error {
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	shows, err := h.Shows.List(ctx)
	if err != nil {
		logStoreError(c, "show.list", err) // record the driver error
		return asHTTPError(err, "Shows") // let the global handler pick the error page
	}
	return h.render(c, http.StatusOK, "pages/shows", shows)
}

// CreateShowForm handles GET /shows/create.
func (h *Handler) CreateShowForm(c echo.Context) error {
	return h.renderShowForm(c, http.StatusOK, showFormPage{})
}

// CreateShow handles POST /shows/create.  Whether the artist and venue
// exist is checked by the store's foreign keys.
func (h *Handler) CreateShow(c echo.Context) error {
	var f form.ShowForm // form values bound from the request body
	if err := c.Bind(&f); err != nil { // bind the url-encoded body into the form
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission") // malformed body, nothing to re-render
	}
	s, err := f.Show() // validate and convert the submission
	if err != nil {
		h.addFlash(c, flash.Error("Show could not be listed. Please correct the highlighted fields.")) // explain the rejected submission
		return h.renderShowForm(c, http.StatusUnprocessableEntity, showFormPage{Form: f, Errors: fieldErrors(err)})
	}

	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns
	err = h.Shows.Create(ctx, s)
	middleware.TrackListing("show", "create", err) // count the outcome for /metrics
	if err != nil {
		logStoreError(c, "show.create", err) // record the driver error
		h.addFlash(c, flash.Error(storeMessage("Show", "listed", err))) // message depends on the failure kind
		return h.renderShowForm(c, storeStatus(err), showFormPage{Form: f})
	}

	h.publish(c, events.ShowCreated, s.ID, "") // announce the change; failures are only logged
	return h.redirect(c, "/", flash.Success("Show was successfully listed!"))
}

// renderShowForm fills the artist and venue choices.  When they cannot be
// loaded the form is still shown with empty choices.
func (h *Handler) renderShowForm(c echo.Context, status int, page showFormPage) error {
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	artists, err := h.Artists.List(ctx, "name")
	if err != nil {
		logStoreError(c, "artist.list", err) // record the driver error
	}
	venues, err := h.Venues.List(ctx, "name")
	if err != nil {
		logStoreError(c, "venue.list", err) // record the driver error
	}
	page.Artists, page.Venues = artists, venues
	return h.render(c, status, "forms/new_show", page)
}
