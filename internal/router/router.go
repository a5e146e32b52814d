package router // package router wires middleware and routes onto echo

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/handler"
	"github.com/iliyamo/fyyur/internal/logging"
	"github.com/iliyamo/fyyur/internal/middleware"
)

// Options selects the optional parts of the HTTP stack.
type Options struct {
	// Limit guards form submissions and deletes; nil disables it.
	Limit echo.MiddlewareFunc
	// Metrics enables request metrics and GET /metrics.
	Metrics bool
	// DB is pinged by GET /healthz.
	DB handler.Pinger
}

// New builds the echo instance with the shared middleware stack, the
// error pages and every route.
func New(h *handler.Handler, renderer echo.Renderer, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = h.HTTPErrorHandler

	// HTML forms can only POST; _method=DELETE turns them into deletes
	e.Pre(echomw.MethodOverrideWithConfig(echomw.MethodOverrideConfig{
		Getter: echomw.MethodFromForm("_method"),
	}))
	e.Use(echomw.RequestID())
	if opts.Metrics {
		e.Use(middleware.Metrics())
		e.GET("/metrics", middleware.MetricsHandler())
	}
	e.Use(logging.Middleware(logrus.StandardLogger()))
	e.Use(echomw.Recover())

	if opts.DB != nil {
		e.GET("/healthz", handler.Health(opts.DB))
	}
	RegisterRoutes(e, h, opts.Limit)
	return e
}

// RegisterRoutes maps the pages and forms.  limit, when set, is applied to
// every mutating route.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, limit echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if limit != nil {
		mw = append(mw, limit)
	}

	e.GET("/", h.Home)

	v := e.Group("/venues")
	v.GET("", h.ListVenues)
	v.POST("/search", h.SearchVenues)
	v.GET("/create", h.CreateVenueForm)
	v.POST("/create", h.CreateVenue, mw...)
	v.GET("/:id", h.ShowVenue)
	v.GET("/:id/edit", h.EditVenueForm)
	v.POST("/:id/edit", h.EditVenue, mw...)
	v.DELETE("/:id", h.DeleteVenue, mw...)

	a := e.Group("/artists")
	a.GET("", h.ListArtists)
	a.POST("/search", h.SearchArtists)
	a.GET("/create", h.CreateArtistForm)
	a.POST("/create", h.CreateArtist, mw...)
	a.GET("/:id", h.ShowArtist)
	a.GET("/:id/edit", h.EditArtistForm)
	a.POST("/:id/edit", h.EditArtist, mw...)
	a.DELETE("/:id", h.DeleteArtist, mw...)

	s := e.Group("/shows")
	s.GET("", h.ListShows)
	s.GET("/create", h.CreateShowForm)
	s.POST("/create", h.CreateShow, mw...)
}
