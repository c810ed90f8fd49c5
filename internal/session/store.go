// Package session implements the server-side session and flash-notice store.
//
// A session is identified by an opaque UUID carried in a cookie. Session data
// lives in Redis when a client is available and falls back to an in-process
// map otherwise, so the application (and its tests) degrade gracefully without
// a cache tier.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the cookie that carries the session identifier.
const CookieName = "warbler_session"

const keyPrefix = "sess:"

// Data is the per-session state. Flashes are one-shot notices consumed by the
// next response that reads them.
type Data struct {
	UserID  uint     `json:"user_id"`
	Flashes []string `json:"flashes,omitempty"`
}

// Store persists sessions in Redis, or in memory when no client is configured.
type Store struct {
	rdb *redis.Client
	ttl time.Duration

	mu  sync.Mutex
	mem map[string]*Data
}

// NewStore creates a session store. rdb may be nil.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
		mem: make(map[string]*Data),
	}
}

// Create allocates a new empty session and returns its identifier.
func (s *Store) Create(ctx context.Context) (string, error) {
	sid := uuid.New().String()
	if err := s.save(ctx, sid, &Data{}); err != nil {
		return "", err
	}
	return sid, nil
}

// Get returns the session data for sid, or nil when the session does not
// exist or has expired.
func (s *Store) Get(ctx context.Context, sid string) (*Data, error) {
	if sid == "" {
		return nil, nil
	}
	if s.rdb == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		d, ok := s.mem[sid]
		if !ok {
			return nil, nil
		}
		cp := *d
		cp.Flashes = append([]string(nil), d.Flashes...)
		return &cp, nil
	}

	raw, err := s.rdb.Get(ctx, keyPrefix+sid).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d Data
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SetUser binds the session to an authenticated user.
func (s *Store) SetUser(ctx context.Context, sid string, userID uint) error {
	return s.update(ctx, sid, func(d *Data) {
		d.UserID = userID
	})
}

// Destroy removes the session entirely (logout, account deletion).
func (s *Store) Destroy(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if s.rdb == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.mem, sid)
		return nil
	}
	return s.rdb.Del(ctx, keyPrefix+sid).Err()
}

// PushFlash appends a one-shot notice to the session.
func (s *Store) PushFlash(ctx context.Context, sid, msg string) error {
	return s.update(ctx, sid, func(d *Data) {
		d.Flashes = append(d.Flashes, msg)
	})
}

// PopFlashes returns and clears the session's pending notices.
func (s *Store) PopFlashes(ctx context.Context, sid string) ([]string, error) {
	var out []string
	err := s.update(ctx, sid, func(d *Data) {
		out = d.Flashes
		d.Flashes = nil
	})
	return out, err
}

func (s *Store) update(ctx context.Context, sid string, fn func(*Data)) error {
	if sid == "" {
		return errors.New("session: empty session id")
	}
	if s.rdb == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		d, ok := s.mem[sid]
		if !ok {
			d = &Data{}
			s.mem[sid] = d
		}
		fn(d)
		return nil
	}

	d, err := s.Get(ctx, sid)
	if err != nil {
		return err
	}
	if d == nil {
		d = &Data{}
	}
	fn(d)
	return s.save(ctx, sid, d)
}

func (s *Store) save(ctx context.Context, sid string, d *Data) error {
	if s.rdb == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		cp := *d
		s.mem[sid] = &cp
		return nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyPrefix+sid, b, s.ttl).Err()
}

// SID extracts the session identifier from the request cookie, if any.
func SID(c *fiber.Ctx) string {
	return c.Cookies(CookieName)
}

// Ensure returns the request's session id, creating a fresh session and
// setting the cookie when the client does not have one yet.
func (s *Store) Ensure(c *fiber.Ctx) (string, error) {
	if sid := SID(c); sid != "" {
		d, err := s.Get(c.UserContext(), sid)
		if err != nil {
			return "", err
		}
		if d != nil {
			return sid, nil
		}
	}

	sid, err := s.Create(c.UserContext())
	if err != nil {
		return "", err
	}
	SetCookie(c, sid, s.ttl)
	return sid, nil
}

// SetCookie attaches the session cookie to the response.
func SetCookie(c *fiber.Ctx, sid string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    sid,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

// ClearCookie expires the session cookie on the client.
func ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
