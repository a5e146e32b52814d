package flash

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	sessionCookie = "fyyur_session"
	sessionKey    = "flash.session.id"
	redisPrefix   = "fyyur:flash:"
)

// RedisStore keeps messages in a Redis list keyed by a session cookie.
type RedisStore struct {
	rdb   *redis.Client // rdb holds the message lists
	ttl   time.Duration // ttl bounds how long unread messages live
	newID func() string // newID mints session ids
}

// NewRedisStore keeps messages in rdb for at most ttl.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, newID: uuid.NewString}
}

// Add appends m to the session's list, starting a session when needed.
func (s *RedisStore) Add(c echo.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}
	key := redisPrefix + s.session(c, true)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.rdb.RPush(ctx, key, body).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, s.ttl).Err()
}

func (s *RedisStore) Pop(c echo.Context) []Message {
	sid := s.session(c, false)
	if sid == "" {
		return nil
	}
	key := redisPrefix + sid
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	raw, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logrus.WithError(err).Warn("flash: redis read failed")
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		logrus.WithError(err).Warn("flash: redis delete failed")
	}

	msgs := make([]Message, 0, len(raw))
	for _, r := range raw {
		var m Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs
}

// session returns the flash session id, issuing a new cookie when create is
// set and the client has none.
func (s *RedisStore) session(c echo.Context, create bool) string {
	if sid, ok := c.Get(sessionKey).(string); ok && sid != "" {
		return sid
	}
	if ck, err := c.Cookie(sessionCookie); err == nil && ck.Value != "" {
		c.Set(sessionKey, ck.Value)
		return ck.Value
	}
	if !create {
		return ""
	}
	sid := s.newID()
	c.Set(sessionKey, sid)
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}
