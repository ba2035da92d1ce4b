package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the authenticated account as returned by /auth/login. A user is
// either a shop owner (sees every shop they own) or an attendant bound to a
// single shop.
type User struct {
	ID              int64  `json:"id"`
	Username        string `json:"username,omitempty"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	FullName        string `json:"fullName,omitempty"`
	RoleName        string `json:"roleName,omitempty"`
	IsShopOwner     bool   `json:"isShopOwner,omitempty"`
	IsShopAttendant bool   `json:"isShopAttendant,omitempty"`
	AttendantShopID *int64 `json:"attendantShopId,omitempty"`
	ShopOwnerID     *int64 `json:"shopOwnerId,omitempty"`
}

// LoginResponse is the full body of a successful login. It is persisted as
// the full session object.
type LoginResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType,omitempty"`
	ExpiresIn    int    `json:"expiresIn,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ListPage is one window of an offset paginated collection.
type ListPage[T any] struct {
	Records    []T `json:"records"`
	TotalItems int `json:"totalItems"`
	Offset     int `json:"offset"`
}

type LineItem struct {
	ShopProductName string          `json:"shopProductName"`
	SaleUnitName    string          `json:"saleUnitName,omitempty"`
	UnitCost        decimal.Decimal `json:"unitCost"`
	Quantity        decimal.Decimal `json:"quantity"`
	TotalCost       decimal.Decimal `json:"totalCost"`
}

// DisplayName is the product name with the sale unit appended when known.
func (li LineItem) DisplayName() string {
	if li.SaleUnitName == "" {
		return li.ShopProductName
	}
	return li.ShopProductName + " - " + li.SaleUnitName
}

type Sale struct {
	ID                int64           `json:"id"`
	DateCreated       time.Time       `json:"dateCreated"`
	LineItems         []LineItem      `json:"lineItems"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	AmountPaid        decimal.Decimal `json:"amountPaid"`
	BalanceGivenOut   decimal.Decimal `json:"balanceGivenOut"`
	CreatedByFullName string          `json:"createdByFullName"`
	ShopID            int64           `json:"shopId,omitempty"`
	ShopName          string          `json:"shopName,omitempty"`
}

type StockEntry struct {
	ID                 int64           `json:"id"`
	ProductName        string          `json:"productName"`
	ShopProductName    string          `json:"shopProductName,omitempty"`
	SupplierName       string          `json:"supplierName,omitempty"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPurchasePrice  decimal.Decimal `json:"unitPurchasePrice"`
	TotalPurchasePrice decimal.Decimal `json:"totalPurchasePrice"`
	DateCreated        time.Time       `json:"dateCreated"`
	CreatedByFullName  string          `json:"createdByFullName,omitempty"`
	ShopID             int64           `json:"shopId,omitempty"`
	ShopName           string          `json:"shopName,omitempty"`
}

type PerformanceSummary struct {
	TotalSalesValue decimal.Decimal `json:"totalSalesValue"`
	SalesCount      int             `json:"salesCount"`
}

type Shop struct {
	ID                 int64               `json:"id"`
	Name               string              `json:"name"`
	OwnerID            int64               `json:"ownerId,omitempty"`
	InitialCapital     decimal.Decimal     `json:"initialCapital"`
	PerformanceSummary *PerformanceSummary `json:"performanceSummary,omitempty"`
}

// Profit is total sales less the initial capital, floored at zero. It is zero
// when either figure is missing.
func (s *Shop) Profit() decimal.Decimal {
	if s == nil || s.PerformanceSummary == nil || s.InitialCapital.IsZero() {
		return decimal.Zero
	}
	profit := s.PerformanceSummary.TotalSalesValue.Sub(s.InitialCapital)
	if profit.IsPositive() {
		return profit
	}
	return decimal.Zero
}
