package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/events"
	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/handler"
	"github.com/iliyamo/fyyur/internal/repository"
	"github.com/iliyamo/fyyur/internal/router"
	"github.com/iliyamo/fyyur/internal/view"
)

var testNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ListingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.ListingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type testApp struct {
	t      *testing.T
	e      *echo.Echo
	db     *sqlx.DB
	pub    *recordingPublisher
	venues *repository.VenueRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))

	renderer, err := view.New()
	require.NoError(t, err)

	pub := &recordingPublisher{}
	venues := repository.NewVenueRepo(db)
	h := handler.New(venues, repository.NewArtistRepo(db), repository.NewShowRepo(db),
		flash.NewCookieStore("test-secret", time.Minute), pub)
	h.Now = func() time.Time { return testNow }

	e := router.New(h, renderer, router.Options{DB: db})
	return &testApp{t: t, e: e, db: db, pub: pub, venues: venues}
}

// do sends a request; a non-nil form is posted url-encoded.
func (a *testApp) do(method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// follow performs the GET a redirect points to, carrying its cookies.
func (a *testApp) follow(rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	a.t.Helper()
	require.Equal(a.t, http.StatusSeeOther, rec.Code)
	return a.do(http.MethodGet, rec.Header().Get(echo.HeaderLocation), nil, rec.Result().Cookies()...)
}

func venueForm(name, phone string) url.Values {
	return url.Values{
		"name":           {name},
		"city":           {"San Francisco"},
		"state":          {"CA"},
		"address":        {"1015 Folsom Street"},
		"phone":          {phone},
		"genres":         {"Jazz", "Swing"},
		"seeking_talent": {"y"},
		"facebook_link":  {"https://www.facebook.com/" + strings.ReplaceAll(name, " ", "")},
	}
}

func artistForm(name, phone string) url.Values {
	return url.Values{
		"name":   {name},
		"city":   {"San Francisco"},
		"state":  {"CA"},
		"phone":  {phone},
		"genres": {"Rock n Roll"},
	}
}

func TestCreateVenue(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/venues/create", venueForm("The Musical Hop", "123-123-1234"))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	home := app.follow(rec)
	assert.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), "Venue The Musical Hop was successfully listed!")
	assert.Contains(t, home.Body.String(), `<a href="/venues/1">The Musical Hop</a>`)
	assert.Equal(t, []events.Type{events.VenueCreated}, app.pub.types())

	v, err := app.venues.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, v.SeekingTalent)
	assert.Equal(t, "1015 Folsom Street", v.Address)

	again := app.do(http.MethodGet, "/", nil)
	assert.NotContains(t, again.Body.String(), "successfully listed", "flashes render once")
}

func TestCreateVenue_ValidationFailure(t *testing.T) {
	app := newTestApp(t)
	form := venueForm("The Musical Hop", "")
	form.Set("website", "not-a-url")

	rec := app.do(http.MethodPost, "/venues/create", form)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Venue could not be listed.")
	assert.Contains(t, body, `value="The Musical Hop"`, "submitted values are kept")
	assert.Contains(t, body, "is required")
	assert.Contains(t, body, "must be a valid URL")
	assert.Empty(t, app.pub.types())
}

func TestCreateVenue_Duplicate(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusSeeOther, app.do(http.MethodPost, "/venues/create", venueForm("The Musical Hop", "123-123-1234")).Code)

	dup := venueForm("Another Hop", "123-123-1234")
	rec := app.do(http.MethodPost, "/venues/create", dup)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "is already in use")
	assert.Contains(t, rec.Body.String(), `value="Another Hop"`)

	all, err := app.venues.List(context.Background(), "id")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "The Musical Hop", all[0].Name)
}

func TestVenueDetail(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/venues/create", venueForm("The Musical Hop", "123-123-1234"))
	app.do(http.MethodPost, "/artists/create", artistForm("Guns N Petals", "326-123-5000"))

	for _, start := range []string{"2025-06-01 20:00:00", "2026-06-01 20:00:00", "2026-07-01T21:00"} {
		rec := app.do(http.MethodPost, "/shows/create", url.Values{"artist_id": {"1"}, "venue_id": {"1"}, "start_time": {start}})
		require.Equal(t, http.StatusSeeOther, rec.Code, start)
	}

	rec := app.do(http.MethodGet, "/venues/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "2 Upcoming Shows")
	assert.Contains(t, body, "1 Past Show")
	assert.Contains(t, body, "Guns N Petals")
	assert.Contains(t, body, "Sunday June 1, 2025 at 8:00PM")

	rec = app.do(http.MethodGet, "/artists/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2 Upcoming Shows")
	assert.Contains(t, rec.Body.String(), "The Musical Hop")

	shows := app.do(http.MethodGet, "/shows", nil)
	assert.Equal(t, 3, strings.Count(shows.Body.String(), `<a href="/artists/1">Guns N Petals</a>`))
}

func TestVenueDetail_NotFound(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/venues/42", "/venues/abc", "/artists/42", "/venues/42/edit", "/nowhere"} {
		rec := app.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "<h1>404</h1>", path)
	}
}

func TestSearchVenues(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/venues/create", venueForm("The Musical Hop", "123-123-1234"))
	app.do(http.MethodPost, "/venues/create", venueForm("Park Square Live Music and Coffee", "415-000-1234"))

	rec := app.do(http.MethodPost, "/venues/search", url.Values{"search_term": {"hop"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ": 1</h3>")
	assert.Contains(t, rec.Body.String(), "The Musical Hop")
	assert.NotContains(t, rec.Body.String(), "Park Square")

	rec = app.do(http.MethodPost, "/venues/search", url.Values{"search_term": {"Music"}})
	assert.Contains(t, rec.Body.String(), ": 2</h3>")

	rec = app.do(http.MethodPost, "/venues/search", url.Values{"other": {"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "search_term is required")
}

func TestSearchArtists(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/artists/create", artistForm("Guns N Petals", "326-123-5000"))
	app.do(http.MethodPost, "/artists/create", artistForm("Matt Quevedo", "300-400-5000"))

	rec := app.do(http.MethodPost, "/artists/search", url.Values{"search_term": {"A"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ": 2</h3>")
	assert.Contains(t, rec.Body.String(), "0 upcoming shows")
}

func TestEditVenue(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/venues/create", venueForm("The Musical Hop", "123-123-1234"))

	form := app.do(http.MethodGet, "/venues/1/edit", nil)
	require.Equal(t, http.StatusOK, form.Code)
	assert.Contains(t, form.Body.String(), `value="The Musical Hop"`)
	assert.Contains(t, form.Body.String(), `<option value="Swing" selected>`)

	edited := venueForm("The Musical Hop", "999-999-9999")
	edited.Set("city", "Oakland")
	edited.Del("seeking_talent")
	rec := app.do(http.MethodPost, "/venues/1/edit", edited)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/venues/1", rec.Header().Get(echo.HeaderLocation))
	detail := app.follow(rec)
	assert.Contains(t, detail.Body.String(), "was successfully updated!")
	assert.Contains(t, detail.Body.String(), "Oakland, CA")
	assert.Contains(t, detail.Body.String(), "Not currently seeking talent")

	missing := app.do(http.MethodPost, "/venues/7/edit", venueForm("Ghost", "000-000-0000"))
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestDeleteVenue(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodPost, "/venues/create", venueForm("The Musical Hop", "123-123-1234"))

	rec := app.do(http.MethodPost, "/venues/1", url.Values{"_method": {"DELETE"}})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, app.follow(rec).Body.String(), "Venue was successfully deleted.")
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/venues/1", nil).Code)

	again := app.do(http.MethodDelete, "/venues/1", nil)
	require.Equal(t, http.StatusSeeOther, again.Code)
	assert.Contains(t, app.follow(again).Body.String(), "Venue not found.")
	assert.Equal(t, []events.Type{events.VenueCreated, events.VenueDeleted}, app.pub.types())
}

func TestArtistLifecycle(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/artists/create", artistForm("Guns N Petals", "326-123-5000"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	list := app.do(http.MethodGet, "/artists", nil)
	assert.Contains(t, list.Body.String(), `<a href="/artists/1">Guns N Petals</a>`)

	edited := artistForm("Guns N Petals", "326-123-5000")
	edited.Set("seeking_venue", "y")
	rec = app.do(http.MethodPost, "/artists/1/edit", edited)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, app.follow(rec).Body.String(), "Currently seeking performance venues")

	rec = app.do(http.MethodDelete, "/artists/1", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/artists/1", nil).Code)
	assert.Equal(t, []events.Type{events.ArtistCreated, events.ArtistUpdated, events.ArtistDeleted}, app.pub.types())
}

func TestCreateShow(t *testing.T) {
	app := newTestApp(t)

	form := app.do(http.MethodGet, "/shows/create", nil)
	assert.Equal(t, http.StatusOK, form.Code)

	bad := app.do(http.MethodPost, "/shows/create", url.Values{"artist_id": {"x"}, "venue_id": {"1"}, "start_time": {"soon"}})
	assert.Equal(t, http.StatusUnprocessableEntity, bad.Code)
	assert.Contains(t, bad.Body.String(), "must be a positive number")

	orphan := app.do(http.MethodPost, "/shows/create", url.Values{"artist_id": {"5"}, "venue_id": {"6"}, "start_time": {"2026-06-01 20:00:00"}})
	assert.Equal(t, http.StatusConflict, orphan.Code)
	assert.Contains(t, orphan.Body.String(), "the referenced artist or venue does not exist")
	assert.Empty(t, app.pub.types())
}

func TestStoreUnavailable(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.db.Close())

	rec := app.do(http.MethodGet, "/venues", nil)
	assert.GreaterOrEqual(t, rec.Code, http.StatusInternalServerError)
	assert.Contains(t, rec.Body.String(), "Something went wrong on our side.")

	health := app.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, health.Code)
}

func TestEditForm_StoreFailureIsLogged(t *testing.T) {
	hook := test.NewGlobal()
	t.Cleanup(func() { logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks)) })

	for _, tc := range []struct{ path, op string }{
		{"/venues/1/edit", "venue.get"},
		{"/artists/1/edit", "artist.get"},
	} {
		t.Run(tc.op, func(t *testing.T) {
			app := newTestApp(t)
			require.NoError(t, app.db.Close())
			hook.Reset()

			rec := app.do(http.MethodGet, tc.path, nil)
			assert.GreaterOrEqual(t, rec.Code, http.StatusInternalServerError)

			var logged *logrus.Entry
			for _, e := range hook.AllEntries() {
				if e.Data["op"] == tc.op {
					logged = e
				}
			}
			require.NotNil(t, logged, "store failure is logged with its op")
			assert.Equal(t, logrus.ErrorLevel, logged.Level)
			assert.Equal(t, "store failure", logged.Message)
		})
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, rec.Body.String())
}
