package shop

import (
	"fmt"

	"github.com/jrsteele09/go-pos-client/apiclient"
	apperrors "github.com/jrsteele09/go-pos-client/internal/errors"
)

// SearchParameters filter a list endpoint. Unset fields are not sent.
type SearchParameters struct {
	ShopID      *int64
	ShopOwnerID *int64
	SearchTerm  string
	StartDate   string // yyyy-mm-dd
	EndDate     string // yyyy-mm-dd
	Offset      int
	Limit       int
}

func (p SearchParameters) Params() apiclient.Params {
	params := apiclient.Params{
		"offset":      p.Offset,
		"shopId":      p.ShopID,
		"shopOwnerId": p.ShopOwnerID,
		"searchTerm":  p.SearchTerm,
		"startDate":   p.StartDate,
		"endDate":     p.EndDate,
	}
	if p.Limit > 0 {
		params["limit"] = p.Limit
	}
	return params
}

// Scope returns the parameters every list request made by user carries:
// attendants see their own shop, owners see all of their shops.
func Scope(user *User, limit int) SearchParameters {
	p := SearchParameters{Limit: limit}
	if user == nil {
		return p
	}
	if user.IsShopAttendant {
		p.ShopID = user.AttendantShopID
	}
	if user.IsShopOwner {
		ownerID := user.ID
		if user.ShopOwnerID != nil {
			ownerID = *user.ShopOwnerID
		}
		p.ShopOwnerID = &ownerID
	}
	return p
}

// SummaryShopID picks the shop whose summary is shown: the attendant's shop,
// or the shop an owner has selected.
func SummaryShopID(user *User, selectedShopID *int64) (int64, error) {
	switch {
	case user == nil:
		return 0, apperrors.ErrNotLoggedIn
	case user.IsShopAttendant && user.AttendantShopID != nil:
		return *user.AttendantShopID, nil
	case user.IsShopOwner && selectedShopID != nil:
		return *selectedShopID, nil
	}
	return 0, fmt.Errorf("[shop SummaryShopID] no shop for user %d: %w", user.ID, apperrors.ErrNotFound)
}
