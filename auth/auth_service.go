package auth

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/jrsteele09/go-pos-client/internal/errors"
	"github.com/jrsteele09/go-pos-client/internal/utils"
	"github.com/jrsteele09/go-pos-client/sessions"
	"github.com/jrsteele09/go-pos-client/shop"
	"github.com/rs/zerolog/log"
)

// Navigate moves the app to another screen. The auth service only signals
// when to navigate; where to is up to the caller.
type Navigate func()

// Service runs the login and logout flows against the shop API and keeps the
// session store in step with them.
type Service struct {
	api   *shop.API
	store *sessions.Store
}

func NewService(api *shop.API, store *sessions.Store) *Service {
	return &Service{api: api, store: store}
}

// Login authenticates the user, commits the new session and then calls
// onSuccess. Rejected credentials are reported as ErrInvalidCredentials and
// leave the stored session untouched.
func (s *Service) Login(ctx context.Context, username, password string, onSuccess Navigate) (*shop.User, error) {
	creds := Credentials{Username: username, Password: password}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	login, err := s.api.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, fmt.Errorf("[auth Login] %w", err)
	}

	if err := s.store.CommitSession(ctx, SessionFromLogin(login)); err != nil {
		return nil, fmt.Errorf("[auth Login] %w", err)
	}
	log.Info().Int64("userID", login.User.ID).Str("role", login.User.RoleName).Msg("logged in")

	if onSuccess != nil {
		onSuccess()
	}
	return &login.User, nil
}

// Logout clears the stored session and calls onLoggedOut.
func (s *Service) Logout(ctx context.Context, onLoggedOut Navigate) error {
	return s.store.ClearAndLogout(ctx, onLoggedOut)
}

// CurrentUser returns the user of the stored session, or ErrNotLoggedIn.
func (s *Service) CurrentUser(ctx context.Context) (*shop.User, error) {
	sess, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if sess.UserDetails == nil {
		return nil, fmt.Errorf("[auth CurrentUser] no user details stored: %w", apperrors.ErrNotLoggedIn)
	}
	return sess.UserDetails, nil
}

// SessionFromLogin maps a login response onto the stored session.
func SessionFromLogin(login *shop.LoginResponse) sessions.Session {
	sess := sessions.Session{
		LoggedIn:          true,
		AccessToken:       utils.NonEmpty(login.AccessToken),
		RefreshToken:      utils.NonEmpty(login.RefreshToken),
		UserDetails:       &login.User,
		FullSessionObject: login,
	}
	if login.User.AttendantShopID != nil {
		sess.ShopID = utils.Ptr(strconv.FormatInt(*login.User.AttendantShopID, 10))
	}
	return sess
}
