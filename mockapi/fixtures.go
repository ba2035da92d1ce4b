package mockapi

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-pos-client/internal/utils"
	"github.com/jrsteele09/go-pos-client/shop"
	"github.com/shopspring/decimal"
)

// Account is a fixture user together with the plain password it logs in with.
type Account struct {
	User     shop.User
	Password string
}

// Fixtures is the data the fake API serves.
type Fixtures struct {
	Accounts     []Account
	Shops        []shop.Shop
	Sales        []shop.Sale
	StockEntries []shop.StockEntry
}

// DefaultFixtures builds a small deterministic data set: one owner with two
// shops and one attendant working in shop 7. Records are dated backwards from
// now, newest first.
func DefaultFixtures(now time.Time) Fixtures {
	owner := shop.User{
		ID:          1,
		Username:    "owner",
		FirstName:   "Grace",
		LastName:    "Namutebi",
		FullName:    "Grace Namutebi",
		RoleName:    "Shop Owner",
		IsShopOwner: true,
		ShopOwnerID: utils.Ptr(int64(1)),
	}
	attendant := shop.User{
		ID:              2,
		Username:        "attendant",
		FirstName:       "Peter",
		LastName:        "Okello",
		FullName:        "Peter Okello",
		RoleName:        "Shop Attendant",
		IsShopAttendant: true,
		AttendantShopID: utils.Ptr(int64(7)),
	}

	f := Fixtures{
		Accounts: []Account{
			{User: owner, Password: "owner-pass"},
			{User: attendant, Password: "attendant-pass"},
		},
		Shops: []shop.Shop{
			{ID: 7, Name: "Kampala Road", OwnerID: 1, InitialCapital: decimal.NewFromInt(1_000_000)},
			{ID: 8, Name: "Ntinda", OwnerID: 1, InitialCapital: decimal.NewFromInt(500_000)},
		},
	}

	products := []struct {
		name string
		unit string
		cost int64
	}{
		{"Sugar 1kg", "Packet", 4_500},
		{"Rice 5kg", "Bag", 27_000},
		{"Cooking Oil 1L", "Bottle", 9_000},
		{"Bar Soap", "Piece", 3_500},
		{"Salt 500g", "Packet", 1_000},
	}

	var saleID int64 = 1000
	for i := 0; i < 12; i++ {
		shopID := int64(7)
		seller := attendant.FullName
		if i%4 == 3 {
			shopID = 8
			seller = owner.FullName
		}
		p := products[i%len(products)]
		qty := decimal.NewFromInt(int64(i%3 + 1))
		unit := decimal.NewFromInt(p.cost)
		total := unit.Mul(qty)
		paid := total.Add(decimal.NewFromInt(int64(i%2) * 500))
		saleID++
		f.Sales = append(f.Sales, shop.Sale{
			ID:          saleID,
			DateCreated: now.Add(-time.Duration(i*9) * time.Hour).Truncate(time.Minute),
			LineItems: []shop.LineItem{{
				ShopProductName: p.name,
				SaleUnitName:    p.unit,
				UnitCost:        unit,
				Quantity:        qty,
				TotalCost:       total,
			}},
			TotalCost:         total,
			AmountPaid:        paid,
			BalanceGivenOut:   paid.Sub(total),
			CreatedByFullName: seller,
			ShopID:            shopID,
			ShopName:          f.shopName(shopID),
		})
	}

	var entryID int64 = 500
	for i := 0; i < 25; i++ {
		shopID := int64(7)
		if i%5 == 4 {
			shopID = 8
		}
		p := products[i%len(products)]
		qty := decimal.NewFromInt(int64(10 * (i%4 + 1)))
		unit := decimal.NewFromInt(p.cost * 8 / 10)
		entryID++
		f.StockEntries = append(f.StockEntries, shop.StockEntry{
			ID:                 entryID,
			ProductName:        p.name,
			ShopProductName:    fmt.Sprintf("%s (%s)", p.name, p.unit),
			SupplierName:       []string{"Mukwano", "Kakira", "Bidco"}[i%3],
			Quantity:           qty,
			UnitPurchasePrice:  unit,
			TotalPurchasePrice: unit.Mul(qty),
			DateCreated:        now.Add(-time.Duration(i*20) * time.Hour).Truncate(time.Minute),
			CreatedByFullName:  owner.FullName,
			ShopID:             shopID,
			ShopName:           f.shopName(shopID),
		})
	}
	return f
}

func (f *Fixtures) shopName(id int64) string {
	for _, s := range f.Shops {
		if s.ID == id {
			return s.Name
		}
	}
	return ""
}
