package flash

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	cookieName     = "fyyur_flash"
	cookieStateKey = "flash.cookie.messages"
)

type flashClaims struct {
	Messages []Message `json:"msgs"`
	jwt.RegisteredClaims
}

// CookieStore keeps messages in an HS256-signed JWT cookie.  Tampered or
// expired cookies are ignored.
type CookieStore struct {
	secret []byte           // secret signs the HS256 token
	ttl    time.Duration    // ttl is the token and cookie lifetime
	now    func() time.Time // now is the clock used for expiry
}

// NewCookieStore signs flash cookies with secret; they expire after ttl.
func NewCookieStore(secret string, ttl time.Duration) *CookieStore {
	return &CookieStore{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *CookieStore) Add(c echo.Context, m Message) error {
	msgs := append(s.current(c), m)
	c.Set(cookieStateKey, msgs)

	now := s.now().UTC()
	claims := flashClaims{
		Messages: msgs,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *CookieStore) Pop(c echo.Context) []Message {
	msgs := s.current(c)
	c.Set(cookieStateKey, []Message{})
	if len(msgs) > 0 {
		c.SetCookie(&http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	}
	return msgs
}

// current returns the messages of this request, reading the cookie once.
func (s *CookieStore) current(c echo.Context) []Message {
	if msgs, ok := c.Get(cookieStateKey).([]Message); ok {
		return msgs
	}
	msgs := s.read(c)
	c.Set(cookieStateKey, msgs)
	return msgs
}

func (s *CookieStore) read(c echo.Context) []Message {
	ck, err := c.Cookie(cookieName)
	if err != nil || ck.Value == "" {
		return nil
	}
	var claims flashClaims
	_, err = jwt.ParseWithClaims(ck.Value, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			logrus.WithError(err).Warn("flash: dropping invalid cookie")
		}
		return nil
	}
	return claims.Messages
}
