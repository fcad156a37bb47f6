// Package session owns the signed-in state of the client: the access token
// and the user record. The Store is the single source of truth; everything
// else (router guard, services, HTTP client) reads through it.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/tripplanner/internal/client/models"
	"github.com/dmitrijs2005/tripplanner/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tripplanner/internal/dbx"
	"github.com/dmitrijs2005/tripplanner/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Durable keys in the metadata table.
const (
	KeyAccessToken = "access_token"
	KeyUserInfo    = "user_info"
)

var (
	// ErrNoSession is returned by Token when nobody is signed in.
	ErrNoSession = errors.New("no active session")
	// ErrCorruptUser marks a stored user record that does not decode.
	ErrCorruptUser = errors.New("stored user record is corrupt")
)

// RemoteLogout is the backend call made by Logout.
type RemoteLogout interface {
	Logout(ctx context.Context) (*models.MessageResponse, error)
}

// Store holds the session in memory and mirrors it to the metadata table.
// Token and user are either both set or both unset.
type Store struct {
	db  *sql.DB
	log logging.Logger

	// wmu serializes writers; it is held across the storage write and
	// the memory update so the two never pair values from different calls.
	wmu sync.Mutex

	mu     sync.RWMutex
	token  string
	user   *models.User
	remote RemoteLogout
}

var _ oauth2.TokenSource = (*Store)(nil)

// New creates the store and restores any persisted session. A failure to
// read storage leaves the store signed out and is returned for logging.
func New(ctx context.Context, db *sql.DB, log logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.Nop()
	}
	s := &Store{db: db, log: log.With("component", "session")}
	if err := s.RestoreAuth(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// SetRemote installs the backend used by Logout. The HTTP client depends on
// the store for its token, so it is attached after construction.
func (s *Store) SetRemote(r RemoteLogout) {
	s.mu.Lock()
	s.remote = r
	s.mu.Unlock()
}

// SetAuth persists both values in one transaction and then publishes them.
// On a storage error the session is left as it was.
func (s *Store) SetAuth(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return errors.New("set auth: empty token")
	}
	u := user.Clone()
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("set auth: encode user: %w", err)
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyAccessToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUserInfo, raw)
	})
	if err != nil {
		return fmt.Errorf("set auth: %w", err)
	}

	s.mu.Lock()
	s.token, s.user = token, &u
	s.mu.Unlock()

	s.log.Info(ctx, "signed in", "user_id", u.UserID, "username", u.Username)
	return nil
}

// ClearAuth forgets the session in memory and in storage. Memory is always
// cleared, even when storage fails. Calling it on an empty store is a no-op.
func (s *Store) ClearAuth(ctx context.Context) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.clearLocked(ctx)
}

// clearLocked is ClearAuth for callers already holding wmu.
func (s *Store) clearLocked(ctx context.Context) error {
	s.mu.Lock()
	s.token, s.user = "", nil
	s.mu.Unlock()

	if err := metadata.NewSQLiteRepository(s.db).Delete(ctx, KeyAccessToken, KeyUserInfo); err != nil {
		s.log.Error(ctx, "failed to clear stored session", "error", err)
		return fmt.Errorf("clear auth: %w", err)
	}
	return nil
}

// Logout tells the backend and then clears the session. Backend failures
// are logged and never returned.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.RLock()
	remote, signedIn := s.remote, s.token != ""
	s.mu.RUnlock()

	if remote != nil && signedIn {
		if _, err := remote.Logout(ctx); err != nil {
			s.log.Warn(ctx, "remote logout failed", "error", err)
		}
	}
	return s.ClearAuth(ctx)
}

// RestoreAuth loads the persisted session. A missing key or an undecodable
// user record results in a fully cleared session.
func (s *Store) RestoreAuth(ctx context.Context) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	repo := metadata.NewSQLiteRepository(s.db)

	token, err := repo.Get(ctx, KeyAccessToken)
	if errors.Is(err, metadata.ErrNotFound) {
		return s.clearLocked(ctx)
	}
	if err != nil {
		s.resetMemory()
		return fmt.Errorf("restore auth: %w", err)
	}

	raw, err := repo.Get(ctx, KeyUserInfo)
	if errors.Is(err, metadata.ErrNotFound) {
		return s.clearLocked(ctx)
	}
	if err != nil {
		s.resetMemory()
		return fmt.Errorf("restore auth: %w", err)
	}

	user, err := decodeUser(raw)
	if err != nil || len(token) == 0 {
		s.log.Warn(ctx, "discarding stored session", "error", err)
		return s.clearLocked(ctx)
	}

	s.mu.Lock()
	s.token, s.user = string(token), &user
	s.mu.Unlock()

	s.log.Debug(ctx, "session restored", "user_id", user.UserID)
	return nil
}

// UpdateUser merges patch into the current user and persists the result.
// Without a user it does nothing. The token is never touched.
func (s *Store) UpdateUser(ctx context.Context, patch models.UserPatch) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.RLock()
	cur := s.user
	s.mu.RUnlock()
	if cur == nil {
		return nil
	}

	merged := cur.Apply(patch)
	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("update user: encode: %w", err)
	}
	if err := metadata.NewSQLiteRepository(s.db).Set(ctx, KeyUserInfo, raw); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.mu.Lock()
	s.user = &merged
	s.mu.Unlock()
	return nil
}

// IsAuthenticated reports whether both token and user are present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// UserID returns the current user's id or "".
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.UserID
}

// Username returns the current user's name or "".
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Username
}

// AccessToken returns the raw bearer token or "".
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return s.user.Clone(), true
}

// ExpiresAt reads the exp claim of the token without verifying the
// signature; the backend remains the authority on validity.
func (s *Store) ExpiresAt() (time.Time, bool) {
	tok := s.AccessToken()
	if tok == "" {
		return time.Time{}, false
	}
	return tokenExpiry(tok)
}

// Token implements oauth2.TokenSource for the HTTP client.
func (s *Store) Token() (*oauth2.Token, error) {
	tok := s.AccessToken()
	if tok == "" {
		return nil, ErrNoSession
	}
	t := &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}
	if exp, ok := tokenExpiry(tok); ok {
		t.Expiry = exp
	}
	return t, nil
}

func (s *Store) resetMemory() {
	s.mu.Lock()
	s.token, s.user = "", nil
	s.mu.Unlock()
}

func decodeUser(raw []byte) (models.User, error) {
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrCorruptUser, err)
	}
	if strings.TrimSpace(u.UserID) == "" && strings.TrimSpace(u.Username) == "" {
		return models.User{}, ErrCorruptUser
	}
	return u, nil
}

func tokenExpiry(tok string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
