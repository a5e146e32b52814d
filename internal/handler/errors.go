// Package handler contains the HTTP handlers for pages and forms.
// This file holds the global error handler that turns every unhandled
// error into the 404 or 500 page.
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fyyur/internal/logging"
	"github.com/iliyamo/fyyur/internal/repository"
)

// HTTPErrorHandler renders the error pages.  4xx statuses use the 404 view
// and 5xx statuses the 500 view.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		msg = fmt.Sprint(he.Message)
		if he.Internal != nil {
			err = he.Internal
		}
	case repository.KindOf(err) != repository.KindUnknown:
		code = storeStatus(err)
		msg = http.StatusText(code)
	}

	if code >= http.StatusInternalServerError {
		logging.FromContext(c).WithError(err).WithField("status", code).Error("request error")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	name := "errors/404"
	if code >= http.StatusInternalServerError {
		name = "errors/500"
	}
	if rerr := h.render(c, code, name, errorPage{Status: code, Message: msg}); rerr != nil {
		logging.FromContext(c).WithError(rerr).Error("render error page")
		_ = c.String(code, msg)
	}
}
