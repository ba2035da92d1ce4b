package shop

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-pos-client/apiclient"
	apperrors "github.com/jrsteele09/go-pos-client/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	RouteLogin        = "/auth/login"
	RouteStockEntries = "/stock-entries"
	RouteShopSales    = "/shop-sales"
	RouteShop         = "/shops/%d"
)

// API is the typed surface of the shop backend.
type API struct {
	client *apiclient.Client
}

func NewAPI(client *apiclient.Client) *API {
	return &API{client: client}
}

// Login exchanges credentials for tokens. A 400 from the server means the
// credentials were rejected and is reported as ErrInvalidCredentials.
func (a *API) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	resp, err := a.client.Post(ctx, RouteLogin, LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("[shop Login] %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var login LoginResponse
		if err := resp.Decode(&login); err != nil {
			return nil, fmt.Errorf("[shop Login] %w", err)
		}
		if login.AccessToken == "" {
			return nil, fmt.Errorf("[shop Login] response without access token: %w", apperrors.ErrParse)
		}
		return &login, nil
	case http.StatusBadRequest:
		log.Info().Str("username", username).Msg("login rejected")
		return nil, apperrors.ErrInvalidCredentials
	default:
		if err := resp.Err(); err != nil {
			return nil, fmt.Errorf("[shop Login] %w", err)
		}
		return nil, fmt.Errorf("[shop Login] unexpected status %d: %w", resp.StatusCode, apperrors.ErrServer)
	}
}

func (a *API) StockEntries(ctx context.Context, params SearchParameters) (*ListPage[StockEntry], error) {
	return list[StockEntry](ctx, a.client, RouteStockEntries, params)
}

func (a *API) Sales(ctx context.Context, params SearchParameters) (*ListPage[Sale], error) {
	return list[Sale](ctx, a.client, RouteShopSales, params)
}

// Shop returns a shop with its capital and performance summary.
func (a *API) Shop(ctx context.Context, id int64) (*Shop, error) {
	var envelope struct {
		Data *Shop `json:"data"`
	}
	if err := a.client.Get(ctx, fmt.Sprintf(RouteShop, id), nil, &envelope); err != nil {
		return nil, fmt.Errorf("[shop Shop] %d: %w", id, err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("[shop Shop] %d: empty response: %w", id, apperrors.ErrParse)
	}
	return envelope.Data, nil
}

func list[T any](ctx context.Context, client *apiclient.Client, route string, params SearchParameters) (*ListPage[T], error) {
	var page ListPage[T]
	if err := client.Get(ctx, route, params.Params(), &page); err != nil {
		return nil, fmt.Errorf("[shop list] %s: %w", route, err)
	}
	if page.Records == nil {
		page.Records = []T{}
	}
	page.Offset = params.Offset
	return &page, nil
}
