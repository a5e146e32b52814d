// Package handler contains the HTTP handlers for pages and forms.
// This file implements the home page with the latest listings.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// recentLimit is how many recent venues and artists the home page lists.
const recentLimit = 10

// Home handles GET /.
func (h *Handler) Home(c echo.Context) error {
	ctx, cancel := dbContext(c) // bound the store calls of this request
	defer cancel() // release the timeout when the handler returns

	venues, err := h.Venues.Recent(ctx, recentLimit)
	if err != nil {
		logStoreError(c, "venue.recent", err) // record the driver error
		return asHTTPError(err, "Venues") // let the global handler pick the error page
	}
	artists, err := h.Artists.Recent(ctx, recentLimit)
	if err != nil {
		logStoreError(c, "artist.recent", err) // record the driver error
		return asHTTPError(err, "Artists") // let the global handler pick the error page
	}
	return h.render(c, http.StatusOK, "pages/home", homeData{Venues: venues, Artists: artists})
}
