package sessions

import "github.com/jrsteele09/go-pos-client/shop"

// Storage keys. Every value is a string at the storage layer; structured
// values are JSON encoded.
const (
	KeyAccessToken       = "accessToken"
	KeyRefreshToken      = "refreshToken"
	KeyFullSessionObject = "fullLoginDetailsJson"
	KeyUserDetails       = "userDetailsJson"
	KeyLoggedIn          = "isLoggedIn"
	KeyShopID            = "shopId"
)

// Session is the persisted identity of the user logged in on this device.
// There is exactly one per installation.
type Session struct {
	LoggedIn          bool                // Written last by CommitSession; readers trust the rest only when set
	AccessToken       *string             // Bearer token attached to API requests
	RefreshToken      *string             // Opaque refresh token
	UserDetails       *shop.User          // User from the login response
	FullSessionObject *shop.LoginResponse // Entire login response
	ShopID            *string             // Attendant shop id, kept as text
}
