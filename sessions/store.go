package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-pos-client/internal/errors"
	"github.com/jrsteele09/go-pos-client/shop"
	"github.com/jrsteele09/go-pos-client/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Store is the device session record. One Store is created at start-up and
// handed to every component that needs it. Mutations are serialised so a
// logout cannot interleave with a login commit.
type Store struct {
	kv   storage.KV
	lock sync.Mutex
}

func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) SetLoggedIn(ctx context.Context, loggedIn bool) error {
	return s.set(ctx, KeyLoggedIn, strconv.FormatBool(loggedIn))
}

// IsLoggedIn is false when the flag is missing, not "true", or unreadable.
func (s *Store) IsLoggedIn(ctx context.Context) bool {
	v, ok, err := s.kv.Get(ctx, KeyLoggedIn)
	if err != nil {
		log.Warn().Err(err).Msg("reading logged in flag, assuming logged out")
		return false
	}
	return ok && v == "true"
}

func (s *Store) SetUserAuthToken(ctx context.Context, token string) error {
	return s.set(ctx, KeyAccessToken, token)
}

// GetBearerToken returns nil when no access token is stored.
func (s *Store) GetBearerToken(ctx context.Context) (*string, error) {
	return s.getString(ctx, KeyAccessToken)
}

func (s *Store) SetUserRefreshToken(ctx context.Context, token string) error {
	return s.set(ctx, KeyRefreshToken, token)
}

func (s *Store) GetRefreshToken(ctx context.Context) (*string, error) {
	return s.getString(ctx, KeyRefreshToken)
}

func (s *Store) SetUserDetails(ctx context.Context, user *shop.User) error {
	return s.setJSON(ctx, KeyUserDetails, user)
}

// GetUserDetails returns nil when nothing is stored or the store cannot be
// read. A stored value that is not valid JSON is reported as ErrParse.
func (s *Store) GetUserDetails(ctx context.Context) (*shop.User, error) {
	return getJSON[shop.User](ctx, s.kv, KeyUserDetails)
}

func (s *Store) SetFullSessionObject(ctx context.Context, full *shop.LoginResponse) error {
	return s.setJSON(ctx, KeyFullSessionObject, full)
}

func (s *Store) GetFullSessionObject(ctx context.Context) (*shop.LoginResponse, error) {
	return getJSON[shop.LoginResponse](ctx, s.kv, KeyFullSessionObject)
}

func (s *Store) SetShopID(ctx context.Context, id string) error {
	return s.set(ctx, KeyShopID, id)
}

// GetShopID parses the stored shop id. A missing id is ErrNotFound and a
// non-numeric one is ErrInvalidShopID; neither is reported as 0.
func (s *Store) GetShopID(ctx context.Context) (int, error) {
	v, ok, err := s.kv.Get(ctx, KeyShopID)
	if err != nil {
		return 0, fmt.Errorf("[sessions GetShopID] %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("[sessions GetShopID] shop id: %w", apperrors.ErrNotFound)
	}
	id, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("[sessions GetShopID] %q: %w", v, apperrors.ErrInvalidShopID)
	}
	return id, nil
}

// ClearAndLogout erases every stored key and then calls next, which should
// move the user to the unauthenticated entry point. next is not called when
// the store cannot be cleared.
func (s *Store) ClearAndLogout(ctx context.Context, next func()) error {
	s.lock.Lock()
	err := s.kv.Clear(ctx)
	s.lock.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("clearing session storage")
		return fmt.Errorf("[sessions ClearAndLogout] %w", err)
	}
	log.Info().Msg("session cleared")
	if next != nil {
		next()
	}
	return nil
}

// CommitSession replaces the stored session with sess. The logged in flag is
// cleared first and written last so a reader never sees a logged in session
// with fields from two different logins. Stores implementing
// storage.BatchWriter receive the fields in a single atomic batch.
func (s *Store) CommitSession(ctx context.Context, sess Session) error {
	if sess.LoggedIn && (sess.AccessToken == nil || *sess.AccessToken == "") {
		return fmt.Errorf("[sessions CommitSession] logged in session without access token: %w", apperrors.ErrNotLoggedIn)
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.kv.Set(ctx, KeyLoggedIn, "false"); err != nil {
		return s.writeFailed(KeyLoggedIn, err)
	}

	var entries []storage.Entry
	add := func(key string, value *string) error {
		if value == nil {
			if err := s.kv.Delete(ctx, key); err != nil {
				return s.writeFailed(key, err)
			}
			return nil
		}
		entries = append(entries, storage.Entry{Key: key, Value: *value})
		return nil
	}
	addJSON := func(key string, v any, present bool) error {
		if !present {
			return add(key, nil)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("[sessions CommitSession] encode %s: %w", key, err)
		}
		value := string(data)
		return add(key, &value)
	}

	if err := add(KeyAccessToken, sess.AccessToken); err != nil {
		return err
	}
	if err := add(KeyRefreshToken, sess.RefreshToken); err != nil {
		return err
	}
	if err := addJSON(KeyUserDetails, sess.UserDetails, sess.UserDetails != nil); err != nil {
		return err
	}
	if err := addJSON(KeyFullSessionObject, sess.FullSessionObject, sess.FullSessionObject != nil); err != nil {
		return err
	}
	if err := add(KeyShopID, sess.ShopID); err != nil {
		return err
	}
	entries = append(entries, storage.Entry{Key: KeyLoggedIn, Value: strconv.FormatBool(sess.LoggedIn)})

	if bw, ok := s.kv.(storage.BatchWriter); ok {
		if err := bw.SetMany(ctx, entries); err != nil {
			return s.writeFailed("session batch", err)
		}
		return nil
	}
	for _, e := range entries {
		if err := s.kv.Set(ctx, e.Key, e.Value); err != nil {
			return s.writeFailed(e.Key, err)
		}
	}
	return nil
}

// Load returns the stored session when it is fully committed: the logged in
// flag is set and an access token is present. Anything else is ErrNotLoggedIn.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	if !s.IsLoggedIn(ctx) {
		return nil, apperrors.ErrNotLoggedIn
	}
	access, err := s.GetBearerToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("[sessions Load] %w", err)
	}
	if access == nil {
		log.Warn().Msg("logged in flag set without an access token")
		return nil, apperrors.ErrNotLoggedIn
	}

	sess := &Session{LoggedIn: true, AccessToken: access}
	if sess.RefreshToken, err = s.GetRefreshToken(ctx); err != nil {
		return nil, fmt.Errorf("[sessions Load] %w", err)
	}
	if sess.UserDetails, err = s.GetUserDetails(ctx); err != nil {
		return nil, fmt.Errorf("[sessions Load] %w", err)
	}
	if sess.FullSessionObject, err = s.GetFullSessionObject(ctx); err != nil {
		return nil, fmt.Errorf("[sessions Load] %w", err)
	}
	if sess.ShopID, err = s.getString(ctx, KeyShopID); err != nil {
		return nil, fmt.Errorf("[sessions Load] %w", err)
	}
	return sess, nil
}

// AccessToken returns the stored access token in oauth2 form, or nil when
// there is none. Expiry comes from the JWT exp claim when the token is a JWT;
// the signature is not checked here, the API does that.
func (s *Store) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	access, err := s.GetBearerToken(ctx)
	if err != nil || access == nil {
		return nil, err
	}
	refresh, err := s.GetRefreshToken(ctx)
	if err != nil {
		return nil, err
	}

	tok := &oauth2.Token{AccessToken: *access, TokenType: "Bearer"}
	if refresh != nil {
		tok.RefreshToken = *refresh
	}
	tok.Expiry = tokenExpiry(*access)
	return tok, nil
}

func tokenExpiry(raw string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func (s *Store) set(ctx context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.kv.Set(ctx, key, value); err != nil {
		return s.writeFailed(key, err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("[sessions set] encode %s: %w", key, err)
	}
	return s.set(ctx, key, string(data))
}

func (s *Store) getString(ctx context.Context, key string) (*string, error) {
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("[sessions get] %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// writeFailed logs a failed write and returns it wrapped.
func (s *Store) writeFailed(key string, err error) error {
	log.Error().Err(err).Str("key", key).Msg("session write failed")
	return fmt.Errorf("[sessions write] %s: %w", key, err)
}

func getJSON[T any](ctx context.Context, kv storage.KV, key string) (*T, error) {
	v, ok, err := kv.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("reading session value, treating as absent")
		return nil, nil
	}
	if !ok || v == "null" {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return nil, fmt.Errorf("[sessions get] %s: %w: %w", key, apperrors.ErrParse, err)
	}
	return &out, nil
}
