package flash

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(e *echo.Echo, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func lastCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			found = ck
		}
	}
	return found
}

func TestCookieStore_SurvivesOneRedirect(t *testing.T) {
	e := echo.New()
	store := NewCookieStore("secret", time.Minute)

	c, rec := newContext(e)
	require.NoError(t, store.Add(c, Success("Venue The Musical Hop was successfully listed!")))
	ck := lastCookie(rec, cookieName)
	require.NotNil(t, ck)

	c2, rec2 := newContext(e, ck)
	msgs := store.Pop(c2)
	require.Len(t, msgs, 1)
	assert.Equal(t, CategorySuccess, msgs[0].Category)
	assert.Equal(t, "Venue The Musical Hop was successfully listed!", msgs[0].Text)
	cleared := lastCookie(rec2, cookieName)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)

	assert.Empty(t, store.Pop(c2), "messages render once")
}

func TestCookieStore_SameRequest(t *testing.T) {
	store := NewCookieStore("secret", time.Minute)
	c, _ := newContext(echo.New())

	require.NoError(t, store.Add(c, Error("An error occurred.")))
	require.NoError(t, store.Add(c, Info("second")))

	msgs := store.Pop(c)
	assert.Equal(t, []Message{Error("An error occurred."), Info("second")}, msgs)
}

func TestCookieStore_RejectsTamperedAndExpired(t *testing.T) {
	e := echo.New()
	signer := NewCookieStore("other-secret", time.Minute)
	c, rec := newContext(e)
	require.NoError(t, signer.Add(c, Success("forged")))
	forged := lastCookie(rec, cookieName)

	store := NewCookieStore("secret", time.Minute)
	c2, _ := newContext(e, forged)
	assert.Empty(t, store.Pop(c2))

	c3, rec3 := newContext(e)
	require.NoError(t, store.Add(c3, Success("stale")))
	stale := lastCookie(rec3, cookieName)
	store.now = func() time.Time { return time.Now().Add(time.Hour) }
	c4, _ := newContext(e, stale)
	assert.Empty(t, store.Pop(c4))
}

func TestRedisStore_AddAndPop(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewRedisStore(rdb, 5*time.Minute)
	store.newID = func() string { return "sid-1" }
	e := echo.New()

	msg := Success("Show was successfully listed!")
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	key := redisPrefix + "sid-1"

	mock.ExpectRPush(key, body).SetVal(1)
	mock.ExpectExpire(key, 5*time.Minute).SetVal(true)

	c, rec := newContext(e)
	require.NoError(t, store.Add(c, msg))
	ck := lastCookie(rec, sessionCookie)
	require.NotNil(t, ck)
	assert.Equal(t, "sid-1", ck.Value)

	mock.ExpectLRange(key, 0, -1).SetVal([]string{string(body)})
	mock.ExpectDel(key).SetVal(1)

	c2, _ := newContext(e, ck)
	assert.Equal(t, []Message{msg}, store.Pop(c2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_PopWithoutSession(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewRedisStore(rdb, time.Minute)
	c, _ := newContext(echo.New())

	assert.Nil(t, store.Pop(c))
	assert.NoError(t, mock.ExpectationsWereMet(), "no session means no redis round trip")
}

func TestRedisStore_ReadFailure(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	store := NewRedisStore(rdb, time.Minute)
	key := redisPrefix + "sid-2"
	mock.ExpectLRange(key, 0, -1).SetErr(assert.AnError)

	c, _ := newContext(echo.New(), &http.Cookie{Name: sessionCookie, Value: "sid-2"})

	assert.Nil(t, store.Pop(c))
	assert.NoError(t, mock.ExpectationsWereMet())
}
