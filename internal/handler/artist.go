// Package handler contains the HTTP handlers for pages and forms.
// This file implements the artist pages: listing, search, detail, the
// create and edit forms and delete.
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

// ListArtists handles GET /artists.
func (h *Handler) ListArtists(c echo.Context) error {
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	artists, err := h.Artists.List(ctx, "id")
	if err != nil {
		logStoreError(c, "artist.list", err) // record the driver error
		return asHTTPError(err, "Artists") // let the global handler pick the error page
	}
	return h.render(c, http.StatusOK, "pages/artists", artists)
}

// SearchArtists handles POST /artists/search.
func (h *Handler) SearchArtists(c echo.Context) error {
	term, err := searchTerm(c) // read search_term from the posted form
	if err != nil {
		return err
	}
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	artists, err := h.Artists.SearchByName(ctx, term)
	if err != nil {
		logStoreError(c, "artist.search", err) // record the driver error
		return asHTTPError(err, "Artists") // let the global handler pick the error page
	}
	now := h.Now() // one clock reading for every result
	results := make([]searchResult, 0, len(artists)) // one row per match
	for _, a := range artists { // count upcoming shows per match
		shows, err := h.Shows.ListByArtist(ctx, a.ID) // shows of this match
		if err != nil {
			logStoreError(c, "artist.search", err) // record the driver error
			return asHTTPError(err, "Shows") // let the global handler pick the error page
		}
		results = append(results, searchResult{
			ID:            a.ID,
			Name:          a.Name,
			UpcomingShows: model.PartitionShows(shows, now).UpcomingCount(),
		})
	}
	return h.render(c, http.StatusOK, "pages/search", searchData{BasePath: "/artists", Term: term, Results: results})
}

// ShowArtist handles GET /artists/:id.
func (h *Handler) ShowArtist(c echo.Context) error {
	id, err := parseID(c) // read the numeric :id path parameter
	if err != nil {
		return err
	}
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	a, err := h.Artists.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, errNotFound) { // a missing row is not worth an error log
			logStoreError(c, "artist.get", err) // record the driver error
		}
		return asHTTPError(err, "Artist") // let the global handler pick the error page
	}
	return h.render(c, http.StatusOK, "pages/show_artist", artistDetail{
		Artist:   a,
		Schedule: model.PartitionShows(a.Shows, h.Now()),
	})
}

// CreateArtistForm handles GET /artists/create.
func (h *Handler) CreateArtistForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "forms/new_artist", formPage[form.ArtistForm]{})
}

// CreateArtist handles POST /artists/create.
func (h *Handler) CreateArtist(c echo.Context) error {
	var f form.ArtistForm // form values bound from the request body
	if err := c.Bind(&f); err != nil { // bind the url-encoded body into the form
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission") // malformed body, nothing to re-render
	}
	a, err := f.Artist() // validate and convert the submission
	if err != nil {
		h.addFlash(c, flash.Error("Artist could not be listed. Please correct the highlighted fields.")) // explain the rejected submission
		return h.render(c, http.StatusUnprocessableEntity, "forms/new_artist", formPage[form.ArtistForm]{Form: f, Errors: fieldErrors(err)})
	}

	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns
	err = h.Artists.Create(ctx, a)
	middleware.TrackListing("artist", "create", err) // count the outcome for /metrics
	if err != nil {
		logStoreError(c, "artist.create", err) // record the driver error
		h.addFlash(c, flash.Error(storeMessage("Artist "+a.Name, "listed", err))) // message depends on the failure kind
		return h.render(c, storeStatus(err), "forms/new_artist", formPage[form.ArtistForm]{Form: f})
	}

	h.publish(c, events.ArtistCreated, a.ID, a.Name) // announce the change; failures are only logged
	return h.redirect(c, "/", flash.Success("Artist "+a.Name+" was successfully listed!"))
}

// EditArtistForm handles GET /artists/:id/edit with the form pre-filled.
func (h *Handler) EditArtistForm(c echo.Context) error {
	id, err := parseID(c) // read the numeric :id path parameter
	if err != nil {
		return err
	}
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	a, err := h.Artists.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, errNotFound) { // a missing row is not worth an error log
			logStoreError(c, "artist.get", err) // record the driver error
		}
		return asHTTPError(err, "Artist") // let the global handler pick the error page
	}
	return h.render(c, http.StatusOK, "forms/edit_artist", formPage[form.ArtistForm]{ID: id, Form: form.FromArtist(a)})
}

// EditArtist handles POST /artists/:id/edit.
func (h *Handler) EditArtist(c echo.Context) error {
	id, err := parseID(c) // read the numeric :id path parameter
	if err != nil {
		return err
	}
	var f form.ArtistForm // form values bound from the request body
	if err := c.Bind(&f); err != nil { // bind the url-encoded body into the form
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission") // malformed body, nothing to re-render
	}
	a, err := f.Artist() // validate and convert the submission
	if err != nil {
		h.addFlash(c, flash.Error("Artist could not be updated. Please correct the highlighted fields.")) // explain the rejected submission
		return h.render(c, http.StatusUnprocessableEntity, "forms/edit_artist", formPage[form.ArtistForm]{ID: id, Form: f, Errors: fieldErrors(err)})
	}
	a.ID = id // the path decides which row is edited

	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns
	err = h.Artists.Update(ctx, a)
	middleware.TrackListing("artist", "update", err) // count the outcome for /metrics
	if err != nil {
		logStoreError(c, "artist.update", err) // record the driver error
		if errors.Is(err, errNotFound) {
			return asHTTPError(err, "Artist") // let the global handler pick the error page
		}
		h.addFlash(c, flash.Error(storeMessage("Artist "+a.Name, "updated", err))) // message depends on the failure kind
		return h.render(c, storeStatus(err), "forms/edit_artist", formPage[form.ArtistForm]{ID: id, Form: f})
	}

	h.publish(c, events.ArtistUpdated, a.ID, a.Name) // announce the change; failures are only logged
	return h.redirect(c, "/artists/"+strconv.FormatUint(id, 10), flash.Success("Artist "+a.Name+" was successfully updated!"))
}

// DeleteArtist handles DELETE /artists/:id, removing the artist's shows too.
func (h *Handler) DeleteArtist(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return h.redirect(c, "/", flash.Error("Artist not found."))
	}
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	err = h.Artists.Delete(ctx, id)
	middleware.TrackListing("artist", "delete", err) // count the outcome for /metrics
	switch {
	case errors.Is(err, errNotFound): // nothing to delete
		return h.redirect(c, "/", flash.Error("Artist not found."))
	case err != nil: // store failure
		logStoreError(c, "artist.delete", err) // record the driver error
		return h.redirect(c, "/", flash.Error(storeMessage("Artist", "deleted", err)))
	}

	h.publish(c, events.ArtistDeleted, id, "") // announce the change; failures are only logged
	return h.redirect(c, "/", flash.Success("Artist was successfully deleted."))
}
