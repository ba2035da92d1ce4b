package mockapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-pos-client/mockapi"
	"github.com/jrsteele09/go-pos-client/shop"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)

func newServer(t *testing.T) *mockapi.Server {
	t.Helper()
	s, err := mockapi.New(mockapi.DefaultFixtures(fixedNow), mockapi.Options{})
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *mockapi.Server, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func login(t *testing.T, s *mockapi.Server, username, password string) (int, shop.LoginResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"`+username+`","password":"`+password+`"}`))
	req.Header.Set("Content-Type", "application/json")
	status, body := do(t, s, req)

	var out shop.LoginResponse
	if status == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return status, out
}

func authed(method, target, token string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLogin(t *testing.T) {
	s := newServer(t)

	t.Run("valid credentials", func(t *testing.T) {
		status, out := login(t, s, "attendant", "attendant-pass")
		require.Equal(t, http.StatusOK, status)
		require.NotEmpty(t, out.AccessToken)
		require.Len(t, out.RefreshToken, 64)
		require.Equal(t, int64(7), *out.User.AttendantShopID)
	})

	t.Run("wrong password is 400", func(t *testing.T) {
		status, _ := login(t, s, "attendant", "nope")
		require.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("unknown user is 400", func(t *testing.T) {
		status, _ := login(t, s, "ghost", "attendant-pass")
		require.Equal(t, http.StatusBadRequest, status)
	})
}

func TestRequireAuth(t *testing.T) {
	s := newServer(t)

	status, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/shop-sales", nil))
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, s, authed(http.MethodGet, "/shop-sales", "not-a-jwt"))
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestStockEntries_PagingAndScope(t *testing.T) {
	s := newServer(t)
	_, attendant := login(t, s, "attendant", "attendant-pass")

	var first shop.ListPage[shop.StockEntry]
	status, body := do(t, s, authed(http.MethodGet, "/stock-entries?shopId=7&offset=0&limit=15", attendant.AccessToken))
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &first))
	require.Equal(t, 20, first.TotalItems)
	require.Len(t, first.Records, 15)

	var second shop.ListPage[shop.StockEntry]
	_, body = do(t, s, authed(http.MethodGet, "/stock-entries?shopId=7&offset=15&limit=15", attendant.AccessToken))
	require.NoError(t, json.Unmarshal(body, &second))
	require.Len(t, second.Records, 5)
	require.Equal(t, 15, second.Offset)

	for _, e := range append(first.Records, second.Records...) {
		require.Equal(t, int64(7), e.ShopID)
	}
}

func TestSales_Filters(t *testing.T) {
	s := newServer(t)
	_, owner := login(t, s, "owner", "owner-pass")

	var all shop.ListPage[shop.Sale]
	_, body := do(t, s, authed(http.MethodGet, "/shop-sales?shopOwnerId=1&limit=50", owner.AccessToken))
	require.NoError(t, json.Unmarshal(body, &all))
	require.Equal(t, 12, all.TotalItems)

	var bySearch shop.ListPage[shop.Sale]
	_, body = do(t, s, authed(http.MethodGet, "/shop-sales?shopOwnerId=1&searchTerm=rice", owner.AccessToken))
	require.NoError(t, json.Unmarshal(body, &bySearch))
	require.NotZero(t, bySearch.TotalItems)
	for _, sale := range bySearch.Records {
		require.Contains(t, sale.LineItems[0].ShopProductName, "Rice")
	}

	var byDay shop.ListPage[shop.Sale]
	_, body = do(t, s, authed(http.MethodGet, "/shop-sales?shopOwnerId=1&startDate=2024-03-10&endDate=2024-03-10", owner.AccessToken))
	require.NoError(t, json.Unmarshal(body, &byDay))
	for _, sale := range byDay.Records {
		require.Equal(t, 10, sale.DateCreated.In(time.Local).Day())
	}
	require.NotZero(t, byDay.TotalItems)

	status, _ := do(t, s, authed(http.MethodGet, "/shop-sales?startDate=yesterday", owner.AccessToken))
	require.Equal(t, http.StatusBadRequest, status)
}

func TestShop(t *testing.T) {
	s := newServer(t)
	_, attendant := login(t, s, "attendant", "attendant-pass")

	status, body := do(t, s, authed(http.MethodGet, "/shops/7", attendant.AccessToken))
	require.Equal(t, http.StatusOK, status)

	var envelope struct {
		Data shop.Shop `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Equal(t, "Kampala Road", envelope.Data.Name)
	require.NotNil(t, envelope.Data.PerformanceSummary)
	require.Equal(t, 9, envelope.Data.PerformanceSummary.SalesCount)

	status, _ = do(t, s, authed(http.MethodGet, "/shops/8", attendant.AccessToken))
	require.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, s, authed(http.MethodGet, "/shops/99", attendant.AccessToken))
	require.Equal(t, http.StatusNotFound, status)
}
