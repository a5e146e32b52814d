// Package handler contains the HTTP handlers for pages and forms.
// This file defines Handler and the helpers every page shares: store
// timeouts, flash handling, redirects, event publishing and the mapping of
// store failures to status codes and messages.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/events"
	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/form"
	"github.com/iliyamo/fyyur/internal/logging"
	"github.com/iliyamo/fyyur/internal/repository"
	"github.com/iliyamo/fyyur/internal/view"
)

// dbTimeout bounds every store call made by a handler.
const dbTimeout = 5 * time.Second

// errNotFound is the sentinel lookups report for a missing row.
var errNotFound = repository.ErrNotFound

// Handler bundles the dependencies shared by every page handler.
type Handler struct {
	Venues  *repository.VenueRepo  // Venues stores venue listings
	Artists *repository.ArtistRepo // Artists stores artist listings
	Shows   *repository.ShowRepo   // Shows stores bookings
	Flash   flash.Store            // Flash carries messages across redirects
	Events  events.Publisher       // Events receives a message per change

	// Now is the clock used to split shows into past and upcoming.
	Now func() time.Time
}

// New wires the repositories, flash store and publisher into a Handler.
// A nil publisher drops events.
func New(v *repository.VenueRepo, a *repository.ArtistRepo, s *repository.ShowRepo, fl flash.Store, pub events.Publisher) *Handler {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Handler{Venues: v, Artists: a, Shows: s, Flash: fl, Events: pub, Now: time.Now}
}

// dbContext derives the store deadline from the request context.
func dbContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// render executes a page with the pending flashes.
func (h *Handler) render(c echo.Context, status int, name string, data any) error {
	return c.Render(status, name, view.Page{Flashes: h.Flash.Pop(c), Data: data})
}

// addFlash queues m for the next rendered page.  A failing store only loses
// the message.
func (h *Handler) addFlash(c echo.Context, m flash.Message) {
	if err := h.Flash.Add(c, m); err != nil {
		logging.FromContext(c).WithError(err).Warn("flash: add failed")
	}
}

// redirect flashes m and sends the browser to path with a GET.
func (h *Handler) redirect(c echo.Context, path string, m flash.Message) error {
	h.addFlash(c, m)
	return c.Redirect(http.StatusSeeOther, path)
}

// publish sends a listing event.  Failures are logged and otherwise ignored.
func (h *Handler) publish(c echo.Context, t events.Type, id uint64, name string) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()
	ev := events.NewListingEvent(t, id, name, h.Now())
	if err := h.Events.Publish(ctx, ev); err != nil {
		logging.FromContext(c).WithError(err).WithField("event", string(t)).Warn("publish listing event failed")
	}
}

// parseID reads the :id path parameter.
func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Page not found")
	}
	return id, nil
}

// storeStatus maps a store failure to the response status.
func storeStatus(err error) int {
	switch repository.KindOf(err) {
	case repository.KindNotFound:
		return http.StatusNotFound
	case repository.KindConstraint:
		return http.StatusConflict
	case repository.KindConnection:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// storeMessage explains a failed mutation to the user.  subject reads like
// "Venue The Musical Hop" and action like "listed".
func storeMessage(subject, action string, err error) string {
	base := "An error occurred. " + subject + " could not be " + action
	switch repository.KindOf(err) {
	case repository.KindConstraint:
		switch repository.ConstraintOf(err) {
		case repository.ConstraintUnique:
			return base + ": the name, phone, website or Facebook link is already in use."
		case repository.ConstraintForeignKey:
			return base + ": the referenced artist or venue does not exist."
		case repository.ConstraintNotNull:
			return base + ": a required field is missing."
		}
		return base + ": the data breaks a store rule."
	case repository.KindNotFound:
		return base + ": it no longer exists."
	case repository.KindConnection:
		return base + ". The database is unavailable, please try again later."
	}
	return base + "."
}

// logStoreError records the driver error behind a failed request.
func logStoreError(c echo.Context, op string, err error) {
	entry := logging.FromContext(c).WithError(err).WithField("op", op).WithField("kind", repository.KindOf(err).String())
	if repository.KindOf(err) == repository.KindConstraint || repository.KindOf(err) == repository.KindNotFound {
		entry.Warn("store rejected request")
		return
	}
	entry.Error("store failure")
}

// asHTTPError turns a lookup failure into an error for the global handler.
func asHTTPError(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return echo.NewHTTPError(storeStatus(err), http.StatusText(storeStatus(err))).SetInternal(err)
}

// fieldErrors extracts the per-field messages of a validation failure.
func fieldErrors(err error) map[string]string {
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

// searchTerm reads the required search_term field.  A missing field is a
// bad request; an empty one is a valid term.
func searchTerm(c echo.Context) (string, error) {
	params, err := c.FormParams()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}
	vals, ok := params["search_term"]
	if !ok || len(vals) == 0 {
		return "", echo.NewHTTPError(http.StatusBadRequest, "search_term is required")
	}
	return strings.TrimSpace(vals[0]), nil
}
