// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides Valkey-backed editor workspaces. A workspace holds
// the current website description and the assistant transcript of one
// browser, identified by a cookie and stored as JSON with TTL expiry.
//
// Writes go through Update, an optimistic WATCH/MULTI transaction, so a
// change is always applied to the latest stored workspace. Structural edits
// additionally hold a per-workspace edit lock so that at most one generation
// or edit is in flight, and read the workspace only after taking it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sitesmith/internal/ai"
	"sitesmith/internal/site"
)

const (
	// CookieName is the name of the workspace cookie sent to the browser.
	CookieName = "sitesmith_ws"

	// DefaultTTL is how long an idle workspace lives in Valkey.
	DefaultTTL = 24 * time.Hour

	// DefaultLockTTL bounds how long a crashed request can hold the edit lock.
	DefaultLockTTL = 2 * time.Minute

	// MaxTranscript is the number of transcript messages kept per workspace.
	MaxTranscript = 200

	keyPrefix  = "workspace:"
	lockPrefix = "workspace-lock:"

	// maxUpdateAttempts bounds optimistic retries of Update.
	maxUpdateAttempts = 10
)

var (
	// ErrEditInFlight is returned by AcquireEditLock while another
	// structural edit of the same workspace is pending.
	ErrEditInFlight = errors.New("another edit is already in progress for this workspace")

	// ErrNotFound is returned by Get and Update for an unknown or expired
	// workspace.
	ErrNotFound = errors.New("workspace not found")

	// ErrConflict is returned by Update when the workspace kept changing
	// underneath every attempt.
	ErrConflict = errors.New("workspace is being modified, try again")
)

// Workspace is the editor state of one browser session.
type Workspace struct {
	ID         string        `json:"id"`
	Website    *site.Website `json:"website,omitempty"`
	Transcript []ai.Message  `json:"transcript"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Append adds messages to the transcript, dropping the oldest entries
// beyond MaxTranscript.
func (ws *Workspace) Append(msgs ...ai.Message) {
	ws.Transcript = append(ws.Transcript, msgs...)
	if over := len(ws.Transcript) - MaxTranscript; over > 0 {
		ws.Transcript = append([]ai.Message(nil), ws.Transcript[over:]...)
	}
}

// releaseScript deletes the lock only if it still holds the caller's token,
// so a request whose lock already expired cannot free someone else's.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Store manages workspace lifecycle in Valkey.
type Store struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
	secure  bool
}

// NewStore creates a workspace store backed by the given Valkey client.
// When secure is true the cookie is only sent over HTTPS.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client:  client,
		ttl:     DefaultTTL,
		lockTTL: DefaultLockTTL,
		secure:  secure,
	}
}

// SetTTL overrides the workspace and edit lock lifetimes. Zero keeps the
// current value.
func (s *Store) SetTTL(workspace, lock time.Duration) {
	if workspace > 0 {
		s.ttl = workspace
	}
	if lock > 0 {
		s.lockTTL = lock
	}
}

// Open returns the workspace named by the request cookie. When there is no
// cookie, or the workspace expired, a new empty workspace is created, saved
// and its cookie set on the response.
func (s *Store) Open(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Workspace, error) {
	if id, ok := cookieID(r); ok {
		ws, err := s.Get(ctx, id)
		if err == nil {
			return ws, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	ws := &Workspace{ID: uuid.New().String()}
	if err := s.Save(ctx, ws); err != nil {
		return nil, fmt.Errorf("workspace create: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    ws.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return ws, nil
}

// Get loads a workspace by id.
func (s *Store) Get(ctx context.Context, id string) (*Workspace, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("workspace get: %w", err)
	}

	var ws Workspace
	if err := json.Unmarshal(payload, &ws); err != nil {
		return nil, fmt.Errorf("workspace unmarshal: %w", err)
	}
	return &ws, nil
}

// Save stores the workspace and resets its TTL.
func (s *Store) Save(ctx context.Context, ws *Workspace) error {
	ws.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("workspace marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+ws.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("workspace save: %w", err)
	}
	return nil
}

// Update loads the workspace, applies fn and stores the result, retrying
// when another writer changes the workspace in between. fn may run more
// than once and always receives a freshly loaded copy. An error from fn
// aborts the update and is returned unchanged.
func (s *Store) Update(ctx context.Context, id string, fn func(ws *Workspace) error) (*Workspace, error) {
	key := keyPrefix + id
	var out *Workspace

	txf := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("workspace get: %w", err)
		}

		var ws Workspace
		if err := json.Unmarshal(payload, &ws); err != nil {
			return fmt.Errorf("workspace unmarshal: %w", err)
		}
		if err := fn(&ws); err != nil {
			return err
		}
		ws.UpdatedAt = time.Now().UTC()

		next, err := json.Marshal(&ws)
		if err != nil {
			return fmt.Errorf("workspace marshal: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.ttl)
			return nil
		})
		if err == nil {
			out = &ws
		}
		return err
	}

	for range maxUpdateAttempts {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrConflict
}

// Destroy removes the workspace and expires the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, ok := cookieID(r)
	if !ok {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+id, lockPrefix+id).Err(); err != nil {
		return fmt.Errorf("workspace destroy: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return nil
}

// AcquireEditLock claims the edit lock of a workspace and returns the token
// needed to release it. A second caller gets ErrEditInFlight until the lock
// is released or expires.
func (s *Store) AcquireEditLock(ctx context.Context, id string) (string, error) {
	token := uuid.New().String()
	ok, err := s.client.SetNX(ctx, lockPrefix+id, token, s.lockTTL).Result()
	if err != nil {
		return "", fmt.Errorf("edit lock: %w", err)
	}
	if !ok {
		return "", ErrEditInFlight
	}
	return token, nil
}

// ReleaseEditLock frees the edit lock if token still owns it.
func (s *Store) ReleaseEditLock(ctx context.Context, id, token string) error {
	if err := releaseScript.Run(ctx, s.client, []string{lockPrefix + id}, token).Err(); err != nil {
		return fmt.Errorf("edit unlock: %w", err)
	}
	return nil
}

// cookieID returns the workspace id carried by the request, if it is a
// well-formed id.
func cookieID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}
