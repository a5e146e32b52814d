// Package handler contains the HTTP handlers for pages and forms.
// This file implements the venue pages: the city/state listing, search,
// detail, the create and edit forms and delete.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/events"
	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/form"
	"github.com/iliyamo/fyyur/internal/middleware"
	"github.com/iliyamo/fyyur/internal/model"
)

// ListVenues handles GET /venues and groups venues by city and state.
func (h *Handler) ListVenues(c echo.Context) error {
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	areas, err := h.Venues.Areas(ctx)
	if err != nil {
		logStoreError(c, "venue.areas", err) // record the driver error
		return asHTTPError(err, "Venues") // let the global handler pick the error page
	}
	return h.render(c, http.StatusOK, "pages/venues", areas)
}

// SearchVenues handles POST /venues/search.  The search_term field must be
// present; an empty term matches every venue.
func (h *Handler) SearchVenues(c echo.Context) error {
	term, err := searchTerm(c) // read search_term from the posted form
	if err != nil {
		return err
	}
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	venues, err := h.Venues.SearchByName(ctx, term)
	if err != nil {
		logStoreError(c, "venue.search", err) // record the driver error
		return asHTTPError(err, "Venues") // let the global handler pick the error page
	}
	now := h.Now() // one clock reading for every result
	results := make([]searchResult, 0, len(venues)) // one row per match
	for _, v := range venues { // count upcoming shows per match
		shows, err := h.Shows.ListByVenue(ctx, v.ID) // shows of this match
		if err != nil {
			logStoreError(c, "venue.search", err) // record the driver error
			return asHTTPError(err, "Shows") // let the global handler pick the error page
		}
		results = append(results, searchResult{
			ID:            v.ID,
			Name:          v.Name,
			UpcomingShows: model.PartitionShows(shows, now).UpcomingCount(),
		})
	}
	return h.render(c, http.StatusOK, "pages/search", searchData{BasePath: "/venues", Term: term, Results: results})
}

// ShowVenue handles GET /venues/:id.
func (h *Handler) ShowVenue(c echo.Context) error {
	id, err := parseID(c) // read the numeric :id path parameter
	if err != nil {
		return err
	}
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, errNotFound) { // a missing row is not worth an error log
			logStoreError(c, "venue.get", err) // record the driver error
		}
		return asHTTPError(err, "Venue") // let the global handler pick the error page
	}
	return h.render(c, http.StatusOK, "pages/show_venue", venueDetail{
		Venue:    v,
		Schedule: model.PartitionShows(v.Shows, h.Now()),
	})
}

// CreateVenueForm handles GET /venues/create.
func (h *Handler) CreateVenueForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "forms/new_venue", formPage[form.VenueForm]{})
}

// CreateVenue handles POST /venues/create.  On failure the form is shown
// again with the submitted values.
func (h *Handler) CreateVenue(c echo.Context) error {
	var f form.VenueForm // form values bound from the request body
	if err := c.Bind(&f); err != nil { // bind the url-encoded body into the form
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission") // malformed body, nothing to re-render
	}
	v, err := f.Venue() // validate and convert the submission
	if err != nil {
		h.addFlash(c, flash.Error("Venue could not be listed. Please correct the highlighted fields.")) // explain the rejected submission
		return h.render(c, http.StatusUnprocessableEntity, "forms/new_venue", formPage[form.VenueForm]{Form: f, Errors: fieldErrors(err)})
	}

	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns
	err = h.Venues.Create(ctx, v)
	middleware.TrackListing("venue", "create", err) // count the outcome for /metrics
	if err != nil {
		logStoreError(c, "venue.create", err) // record the driver error
		h.addFlash(c, flash.Error(storeMessage("Venue "+v.Name, "listed", err))) // message depends on the failure kind
		return h.render(c, storeStatus(err), "forms/new_venue", formPage[form.VenueForm]{Form: f})
	}

	h.publish(c, events.VenueCreated, v.ID, v.Name) // announce the change; failures are only logged
	return h.redirect(c, "/", flash.Success("Venue "+v.Name+" was successfully listed!"))
}

// EditVenueForm handles GET /venues/:id/edit with the form pre-filled.
func (h *Handler) EditVenueForm(c echo.Context) error {
	id, err := parseID(c) // read the numeric :id path parameter
	if err != nil {
		return err
	}
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, errNotFound) { // a missing row is not worth an error log
			logStoreError(c, "venue.get", err) // record the driver error
		}
		return asHTTPError(err, "Venue") // let the global handler pick the error page
	}
	return h.render(c, http.StatusOK, "forms/edit_venue", formPage[form.VenueForm]{ID: id, Form: form.FromVenue(v)})
}

// EditVenue handles POST /venues/:id/edit and overwrites every field.
func (h *Handler) EditVenue(c echo.Context) error {
	id, err := parseID(c) // read the numeric :id path parameter
	if err != nil {
		return err
	}
	var f form.VenueForm // form values bound from the request body
	if err := c.Bind(&f); err != nil { // bind the url-encoded body into the form
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission") // malformed body, nothing to re-render
	}
	v, err := f.Venue() // validate and convert the submission
	if err != nil {
		h.addFlash(c, flash.Error("Venue could not be updated. Please correct the highlighted fields.")) // explain the rejected submission
		return h.render(c, http.StatusUnprocessableEntity, "forms/edit_venue", formPage[form.VenueForm]{ID: id, Form: f, Errors: fieldErrors(err)})
	}
	v.ID = id // the path decides which row is edited

	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns
	err = h.Venues.Update(ctx, v)
	middleware.TrackListing("venue", "update", err) // count the outcome for /metrics
	if err != nil {
		logStoreError(c, "venue.update", err) // record the driver error
		if errors.Is(err, errNotFound) {
			return asHTTPError(err, "Venue") // let the global handler pick the error page
		}
		h.addFlash(c, flash.Error(storeMessage("Venue "+v.Name, "updated", err))) // message depends on the failure kind
		return h.render(c, storeStatus(err), "forms/edit_venue", formPage[form.VenueForm]{ID: id, Form: f})
	}

	h.publish(c, events.VenueUpdated, v.ID, v.Name) // announce the change; failures are only logged
	return h.redirect(c, "/venues/"+strconv.FormatUint(id, 10), flash.Success("Venue "+v.Name+" was successfully updated!"))
}

// DeleteVenue handles DELETE /venues/:id.  The venue's shows go with it.
// The browser is sent home whatever the outcome.
func (h *Handler) DeleteVenue(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return h.redirect(c, "/", flash.Error("Venue not found."))
	}
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	err = h.Venues.Delete(ctx, id)
	middleware.TrackListing("venue", "delete", err) // count the outcome for /metrics
	switch {
	case errors.Is(err, errNotFound): // nothing to delete
		return h.redirect(c, "/", flash.Error("Venue not found."))
	case err != nil: // store failure
		logStoreError(c, "venue.delete", err) // record the driver error
		return h.redirect(c, "/", flash.Error(storeMessage("Venue", "deleted", err)))
	}

	h.publish(c, events.VenueDeleted, id, "") // announce the change; failures are only logged
	return h.redirect(c, "/", flash.Success("Venue was successfully deleted."))
}
