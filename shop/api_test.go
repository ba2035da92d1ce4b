package shop_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-pos-client/apiclient"
	apperrors "github.com/jrsteele09/go-pos-client/internal/errors"
	"github.com/jrsteele09/go-pos-client/internal/utils"
	"github.com/jrsteele09/go-pos-client/mockapi"
	"github.com/jrsteele09/go-pos-client/sessions"
	"github.com/jrsteele09/go-pos-client/shop"
	"github.com/jrsteele09/go-pos-client/storage/kvfake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	api   *shop.API
	store *sessions.Store
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()
	srv, err := mockapi.New(mockapi.DefaultFixtures(time.Now()), mockapi.Options{})
	require.NoError(t, err)
	baseURL, err := srv.ListenLocal()
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown() })

	store := sessions.NewStore(kvfake.NewFakeKV())
	return &apiFixture{
		api:   shop.NewAPI(apiclient.New(baseURL, nil, store)),
		store: store,
	}
}

func (f *apiFixture) loginAs(t *testing.T, username, password string) *shop.LoginResponse {
	t.Helper()
	login, err := f.api.Login(context.Background(), username, password)
	require.NoError(t, err)
	require.NoError(t, f.store.SetUserAuthToken(context.Background(), login.AccessToken))
	return login
}

func TestAPI_Login(t *testing.T) {
	f := setupAPI(t)
	ctx := context.Background()

	login, err := f.api.Login(ctx, "attendant", "attendant-pass")
	require.NoError(t, err)
	require.Equal(t, "attendant", login.User.Username)
	require.NotEmpty(t, login.RefreshToken)

	_, err = f.api.Login(ctx, "attendant", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAPI_ListsNeedToken(t *testing.T) {
	f := setupAPI(t)

	_, err := f.api.Sales(context.Background(), shop.SearchParameters{Limit: 10})
	require.ErrorIs(t, err, apperrors.ErrClient)
	require.Equal(t, 401, apperrors.StatusCode(err))
}

func TestAPI_StockEntriesScopedToAttendantShop(t *testing.T) {
	f := setupAPI(t)
	login := f.loginAs(t, "attendant", "attendant-pass")

	params := shop.Scope(&login.User, 8)
	page, err := f.api.StockEntries(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, 20, page.TotalItems)
	require.Len(t, page.Records, 8)

	params.Offset = 16
	page, err = f.api.StockEntries(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, page.Records, 4)
	require.Equal(t, 16, page.Offset)
}

func TestAPI_SalesForOwner(t *testing.T) {
	f := setupAPI(t)
	login := f.loginAs(t, "owner", "owner-pass")

	page, err := f.api.Sales(context.Background(), shop.Scope(&login.User, 50))
	require.NoError(t, err)
	require.Equal(t, 12, page.TotalItems)
	require.Len(t, page.Records, 12)
	require.NotEmpty(t, page.Records[0].LineItems)
}

func TestAPI_Shop(t *testing.T) {
	f := setupAPI(t)
	login := f.loginAs(t, "owner", "owner-pass")

	id, err := shop.SummaryShopID(&login.User, utils.Ptr(int64(8)))
	require.NoError(t, err)

	s, err := f.api.Shop(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Ntinda", s.Name)
	require.True(t, decimal.NewFromInt(500_000).Equal(s.InitialCapital))
	require.Equal(t, 3, s.PerformanceSummary.SalesCount)

	_, err = f.api.Shop(context.Background(), 404)
	require.ErrorIs(t, err, apperrors.ErrClient)
}
