package mockapi

import (
	"fmt"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jrsteele09/go-pos-client/shop"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	localsUser       = "user"
	defaultPageLimit = 20
)

// Options tune the fake API.
type Options struct {
	Secret         []byte
	AccessTokenTTL time.Duration
	// Latency is added to every list response so clients can observe
	// in-flight requests.
	Latency time.Duration
}

// Server is an in-memory stand-in for the shop backend.
type Server struct {
	app      *fiber.App
	accounts *accountRepo
	tokens   *tokenIssuer
	fixtures Fixtures
	latency  time.Duration
}

func New(fixtures Fixtures, opts Options) (*Server, error) {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("mock-api-secret")
	}
	if opts.AccessTokenTTL == 0 {
		opts.AccessTokenTTL = time.Hour
	}

	accounts, err := newAccountRepo(fixtures.Accounts)
	if err != nil {
		return nil, fmt.Errorf("[mockapi New] %w", err)
	}

	s := &Server{
		app:      fiber.New(fiber.Config{DisableStartupMessage: true, AppName: "shop-pos-mock"}),
		accounts: accounts,
		tokens:   &tokenIssuer{secret: opts.Secret, expiry: opts.AccessTokenTTL},
		fixtures: fixtures,
		latency:  opts.Latency,
	}
	s.initRoutes()
	return s, nil
}

func (s *Server) initRoutes() {
	s.app.Post(shop.RouteLogin, s.Login)
	s.app.Get(shop.RouteStockEntries, s.RequireAuth, s.StockEntries)
	s.app.Get(shop.RouteShopSales, s.RequireAuth, s.Sales)
	s.app.Get("/shops/:id", s.RequireAuth, s.Shop)
}

// App exposes the fiber app, mainly for app.Test in handler tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// ListenLocal serves on a random loopback port and returns the base URL.
func (s *Server) ListenLocal() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("[mockapi ListenLocal] %w", err)
	}
	go func() {
		if err := s.app.Listener(ln); err != nil {
			log.Err(err).Msg("mock api stopped")
		}
	}()
	return "http://" + ln.Addr().String(), nil
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) ShutdownWithTimeout(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) Login(c *fiber.Ctx) error {
	var req shop.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, err := s.accounts.Authenticate(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid username or password"})
	}

	access, err := s.tokens.CreateAccessToken(user)
	if err != nil {
		log.Err(err).Msg("creating access token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Login failed"})
	}
	refresh, err := s.tokens.CreateRefreshToken()
	if err != nil {
		log.Err(err).Msg("creating refresh token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Login failed"})
	}

	return c.JSON(shop.LoginResponse{
		User:         *user,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokens.expiry.Seconds()),
	})
}

// RequireAuth rejects requests without a valid bearer access token and stores
// the caller in c.Locals.
func (s *Server) RequireAuth(c *fiber.Ctx) error {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing bearer token"})
	}

	userID, err := s.tokens.Verify(parts[1])
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}
	user, err := s.accounts.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unknown user"})
	}
	c.Locals(localsUser, user)
	return c.Next()
}

func (s *Server) StockEntries(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	matched := filterRecords(s.fixtures.StockEntries, q, s.ownedShops(q), func(e shop.StockEntry) record {
		return record{shopID: e.ShopID, date: e.DateCreated, text: []string{e.ProductName, e.ShopProductName, e.SupplierName}}
	})
	return s.respond(c, paginate(matched, q))
}

func (s *Server) Sales(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	matched := filterRecords(s.fixtures.Sales, q, s.ownedShops(q), func(sale shop.Sale) record {
		text := []string{sale.CreatedByFullName}
		for _, li := range sale.LineItems {
			text = append(text, li.ShopProductName)
		}
		return record{shopID: sale.ShopID, date: sale.DateCreated, text: text}
	})
	return s.respond(c, paginate(matched, q))
}

func (s *Server) Shop(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid shop id"})
	}
	user := c.Locals(localsUser).(*shop.User)

	idx := slices.IndexFunc(s.fixtures.Shops, func(sh shop.Shop) bool { return sh.ID == int64(id) })
	if idx < 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Shop not found"})
	}
	found := s.fixtures.Shops[idx]
	if !canSeeShop(user, &found) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Not your shop"})
	}

	summary := shop.PerformanceSummary{TotalSalesValue: decimal.Zero}
	for _, sale := range s.fixtures.Sales {
		if sale.ShopID == found.ID {
			summary.TotalSalesValue = summary.TotalSalesValue.Add(sale.TotalCost)
			summary.SalesCount++
		}
	}
	found.PerformanceSummary = &summary
	return c.JSON(fiber.Map{"data": found})
}

func (s *Server) respond(c *fiber.Ctx, page any) error {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
	return c.JSON(page)
}

func (s *Server) ownedShops(q listQuery) map[int64]bool {
	if q.shopOwnerID == nil {
		return nil
	}
	owned := make(map[int64]bool)
	for _, sh := range s.fixtures.Shops {
		if sh.OwnerID == *q.shopOwnerID {
			owned[sh.ID] = true
		}
	}
	return owned
}

func canSeeShop(user *shop.User, sh *shop.Shop) bool {
	if user.IsShopAttendant && user.AttendantShopID != nil && *user.AttendantShopID == sh.ID {
		return true
	}
	if user.IsShopOwner {
		ownerID := user.ID
		if user.ShopOwnerID != nil {
			ownerID = *user.ShopOwnerID
		}
		return sh.OwnerID == ownerID
	}
	return false
}
