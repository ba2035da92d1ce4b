package sessions_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-pos-client/internal/errors"
	"github.com/jrsteele09/go-pos-client/internal/utils"
	"github.com/jrsteele09/go-pos-client/sessions"
	"github.com/jrsteele09/go-pos-client/shop"
	"github.com/jrsteele09/go-pos-client/storage/kvfake"
	"github.com/jrsteele09/go-pos-client/storage/sqlitekv"
	"github.com/stretchr/testify/require"
)

var errDisk = errors.New("disk unavailable")

func newStore(t *testing.T) (*sessions.Store, *kvfake.FakeKV) {
	t.Helper()
	kv := kvfake.NewFakeKV()
	return sessions.NewStore(kv), kv
}

func testUser() *shop.User {
	return &shop.User{
		ID:              12,
		Username:        "jane",
		FirstName:       "Jane",
		LastName:        "Doe",
		FullName:        "Jane Doe",
		RoleName:        "Shop Attendant",
		IsShopAttendant: true,
		AttendantShopID: utils.Ptr(int64(7)),
	}
}

func TestStore_IsLoggedInDefaultsFalse(t *testing.T) {
	s, _ := newStore(t)
	require.False(t, s.IsLoggedIn(context.Background()))
}

func TestStore_IsLoggedIn(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)

	require.NoError(t, s.SetLoggedIn(ctx, true))
	require.True(t, s.IsLoggedIn(ctx))

	require.NoError(t, s.SetLoggedIn(ctx, false))
	require.False(t, s.IsLoggedIn(ctx))

	t.Run("read failure degrades to false", func(t *testing.T) {
		require.NoError(t, s.SetLoggedIn(ctx, true))
		kv.ReadErr = errDisk
		defer func() { kv.ReadErr = nil }()
		require.False(t, s.IsLoggedIn(ctx))
	})

	t.Run("unexpected value is false", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, sessions.KeyLoggedIn, "yes"))
		require.False(t, s.IsLoggedIn(ctx))
	})
}

func TestStore_Tokens(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	tok, err := s.GetBearerToken(ctx)
	require.NoError(t, err)
	require.Nil(t, tok)

	require.NoError(t, s.SetUserAuthToken(ctx, "access-1"))
	require.NoError(t, s.SetUserRefreshToken(ctx, "refresh-1"))

	tok, err = s.GetBearerToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-1", utils.Value(tok))

	refresh, err := s.GetRefreshToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "refresh-1", utils.Value(refresh))
}

func TestStore_UserDetailsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)

	got, err := s.GetUserDetails(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	user := testUser()
	require.NoError(t, s.SetUserDetails(ctx, user))

	got, err = s.GetUserDetails(ctx)
	require.NoError(t, err)
	require.Equal(t, user, got)

	t.Run("malformed value is a parse error", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, sessions.KeyUserDetails, "{not json"))
		got, err := s.GetUserDetails(ctx)
		require.Nil(t, got)
		require.ErrorIs(t, err, apperrors.ErrParse)
	})

	t.Run("read failure degrades to nil", func(t *testing.T) {
		kv.ReadErr = errDisk
		defer func() { kv.ReadErr = nil }()
		got, err := s.GetUserDetails(ctx)
		require.NoError(t, err)
		require.Nil(t, got)
	})
}

func TestStore_FullSessionObjectRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	full := &shop.LoginResponse{User: *testUser(), AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", ExpiresIn: 3600}
	require.NoError(t, s.SetFullSessionObject(ctx, full))

	got, err := s.GetFullSessionObject(ctx)
	require.NoError(t, err)
	require.Equal(t, full, got)
}

func TestStore_ShopID(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	_, err := s.GetShopID(ctx)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, s.SetShopID(ctx, "7"))
	id, err := s.GetShopID(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, id)

	for _, bad := range []string{"undefined", "null", "", "7a"} {
		require.NoError(t, s.SetShopID(ctx, bad))
		id, err := s.GetShopID(ctx)
		require.ErrorIs(t, err, apperrors.ErrInvalidShopID, "value %q", bad)
		require.Zero(t, id)
	}
}

func TestStore_WriteFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	kv.WriteErr = errDisk

	require.ErrorIs(t, s.SetUserAuthToken(ctx, "x"), errDisk)
	require.ErrorIs(t, s.SetUserDetails(ctx, testUser()), errDisk)
	require.ErrorIs(t, s.SetLoggedIn(ctx, true), errDisk)
}

func TestStore_ClearAndLogout(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)

	require.NoError(t, s.SetLoggedIn(ctx, true))
	require.NoError(t, s.SetUserAuthToken(ctx, "access"))
	require.NoError(t, s.SetShopID(ctx, "3"))

	navigated := false
	require.NoError(t, s.ClearAndLogout(ctx, func() { navigated = true }))
	require.True(t, navigated)
	require.Zero(t, kv.Len())

	require.False(t, s.IsLoggedIn(ctx))
	tok, err := s.GetBearerToken(ctx)
	require.NoError(t, err)
	require.Nil(t, tok)

	t.Run("failed clear does not navigate", func(t *testing.T) {
		kv.WriteErr = errDisk
		defer func() { kv.WriteErr = nil }()
		called := false
		require.ErrorIs(t, s.ClearAndLogout(ctx, func() { called = true }), errDisk)
		require.False(t, called)
	})
}

func TestStore_CommitSessionAndLoad(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)

	user := testUser()
	sess := sessions.Session{
		LoggedIn:          true,
		AccessToken:       utils.Ptr("access"),
		RefreshToken:      utils.Ptr("refresh"),
		UserDetails:       user,
		FullSessionObject: &shop.LoginResponse{User: *user, AccessToken: "access", RefreshToken: "refresh"},
		ShopID:            utils.Ptr("7"),
	}
	require.NoError(t, s.CommitSession(ctx, sess))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, &sess, loaded)

	t.Run("absent fields from an earlier session are removed", func(t *testing.T) {
		require.NoError(t, s.CommitSession(ctx, sessions.Session{LoggedIn: true, AccessToken: utils.Ptr("second")}))
		_, ok := kv.Raw(sessions.KeyRefreshToken)
		require.False(t, ok)
		_, ok = kv.Raw(sessions.KeyShopID)
		require.False(t, ok)
	})

	t.Run("logged in without token is rejected", func(t *testing.T) {
		err := s.CommitSession(ctx, sessions.Session{LoggedIn: true})
		require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
	})

	t.Run("flag without token does not load", func(t *testing.T) {
		require.NoError(t, kv.Clear(ctx))
		require.NoError(t, s.SetLoggedIn(ctx, true))
		_, err := s.Load(ctx)
		require.ErrorIs(t, err, apperrors.ErrNotLoggedIn)
	})

	t.Run("failed commit leaves the previous session untouched", func(t *testing.T) {
		require.NoError(t, s.CommitSession(ctx, sess))
		require.True(t, s.IsLoggedIn(ctx))

		kv.WriteErr = errDisk
		err := s.CommitSession(ctx, sess)
		kv.WriteErr = nil
		require.ErrorIs(t, err, errDisk)
		require.True(t, s.IsLoggedIn(ctx), "first write failed so the previous commit is untouched")
	})
}

func TestStore_AccessToken(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	tok, err := s.AccessToken(ctx)
	require.NoError(t, err)
	require.Nil(t, tok)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "12", "exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, s.SetUserAuthToken(ctx, raw))
	require.NoError(t, s.SetUserRefreshToken(ctx, "r"))

	tok, err = s.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, raw, tok.AccessToken)
	require.Equal(t, "r", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.Type())
	require.True(t, exp.Equal(tok.Expiry))

	t.Run("opaque token has no expiry", func(t *testing.T) {
		require.NoError(t, s.SetUserAuthToken(ctx, "opaque"))
		tok, err := s.AccessToken(ctx)
		require.NoError(t, err)
		require.True(t, tok.Expiry.IsZero())
	})
}

func TestStore_DurableAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	kv, err := sqlitekv.Open(path)
	require.NoError(t, err)
	s := sessions.NewStore(kv)
	require.NoError(t, s.CommitSession(ctx, sessions.Session{
		LoggedIn:    true,
		AccessToken: utils.Ptr("access"),
		UserDetails: testUser(),
		ShopID:      utils.Ptr("7"),
	}))
	require.NoError(t, kv.Close())

	kv, err = sqlitekv.Open(path)
	require.NoError(t, err)
	defer kv.Close()
	s = sessions.NewStore(kv)

	require.True(t, s.IsLoggedIn(ctx))
	user, err := s.GetUserDetails(ctx)
	require.NoError(t, err)
	require.Equal(t, testUser(), user)
	id, err := s.GetShopID(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, id)
}
