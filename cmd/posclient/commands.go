package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-pos-client/format"
	"github.com/jrsteele09/go-pos-client/internal/utils"
	"github.com/jrsteele09/go-pos-client/paging"
	"github.com/jrsteele09/go-pos-client/salesfilter"
	"github.com/jrsteele09/go-pos-client/shop"
	"github.com/shopspring/decimal"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":   login,
	"logout":  logout,
	"whoami":  whoami,
	"stock":   stock,
	"sales":   sales,
	"summary": summary,
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w: %w", fs.Name(), errUsage, err)
	}
	return nil
}

func login(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", os.Getenv("POS_PASSWORD"), "password (or POS_PASSWORD)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, *username, *password, func() {
		displayAppname(a.out, a.cfg.GetAppName())
	})
	if err != nil {
		return err
	}
	a.printf("Welcome, %s (%s)\n", user.FullName, user.RoleName)
	return nil
}

func logout(ctx context.Context, a *app, _ []string) error {
	return a.auth.Logout(ctx, func() {
		a.printf("Logged out\n")
	})
}

func whoami(ctx context.Context, a *app, _ []string) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	a.printf("%s (%s)\n", user.FullName, user.Username)
	a.printf("role: %s\n", user.RoleName)
	if shopID, err := a.store.GetShopID(ctx); err == nil {
		a.printf("shop: %d\n", shopID)
	}
	return nil
}

func stock(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("stock")
	term := fs.String("q", "", "search term")
	pages := fs.Int("pages", 1, "number of pages to load")
	all := fs.Bool("all", false, "load every page")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}

	fetcher := paging.NewFetcher(a.api.StockEntries, paging.Options[shop.StockEntry]{
		PageSize:     a.cfg.GetPageSize(),
		Scope:        shop.Scope(user, 0),
		EmptyMessage: "No stock entries found",
		NoMoreData:   func(msg string) { a.printf("%s\n", msg) },
		NotifyOnce:   true,
		Key:          func(e shop.StockEntry) string { return fmt.Sprint(e.ID) },
	})
	defer fetcher.Close()

	if err := loadPages(ctx, fetcher, *term, *pages, *all); err != nil {
		return err
	}
	if msg := fetcher.Message(); msg != "" {
		a.printf("%s\n", msg)
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tPRODUCT\tSUPPLIER\tQTY\tUNIT PRICE\tTOTAL\tBY")
	for _, e := range fetcher.Records() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.DateCreated.Local().Format(time.DateOnly),
			e.ShopProductName,
			e.SupplierName,
			format.NumberWithCommas(e.Quantity),
			format.NumberWithCommas(e.UnitPurchasePrice),
			format.NumberWithCommas(e.TotalPurchasePrice),
			e.CreatedByFullName,
		)
	}
	w.Flush()
	a.printf("%d of %d entries\n", len(fetcher.Records()), fetcher.TotalItems())
	return nil
}

func sales(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("sales")
	from := fs.String("from", "", "first day, yyyy-mm-dd")
	to := fs.String("to", "", "last day, yyyy-mm-dd")
	endOfDay := fs.Bool("end-of-day", false, "include the whole of the last day")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var r salesfilter.Range
	var err error
	if r.Start, err = salesfilter.ParseDay(*from, time.Local); err != nil {
		return err
	}
	if r.End, err = salesfilter.ParseDay(*to, time.Local); err != nil {
		return err
	}
	if *endOfDay {
		r.Boundary = salesfilter.EndOfDay
	}

	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}

	fetcher := paging.NewFetcher(a.api.Sales, paging.Options[shop.Sale]{
		PageSize:     a.cfg.GetSalesPageSize(),
		Scope:        shop.Scope(user, 0),
		EmptyMessage: "No sales found",
	})
	defer fetcher.Close()

	if err := loadPages(ctx, fetcher, "", 0, true); err != nil {
		return err
	}
	if msg := fetcher.Message(); msg != "" {
		a.printf("%s\n", msg)
		return nil
	}

	filtered := salesfilter.Sales(fetcher.Records(), r)
	total := decimal.Zero
	for _, s := range filtered {
		total = total.Add(s.TotalCost)
		a.printf("%s  #%d  %s  paid %s  change %s  by %s\n",
			s.DateCreated.Local().Format("2006-01-02 15:04"),
			s.ID,
			format.NumberWithCommas(s.TotalCost),
			format.NumberWithCommas(s.AmountPaid),
			format.NumberWithCommas(s.BalanceGivenOut),
			s.CreatedByFullName,
		)
		for _, li := range s.LineItems {
			a.printf("    %s x%s @ %s = %s\n",
				li.DisplayName(),
				format.NumberWithCommas(li.Quantity),
				format.NumberWithCommas(li.UnitCost),
				format.NumberWithCommas(li.TotalCost),
			)
		}
	}
	a.printf("%s sales, total %s\n", format.Int(int64(len(filtered))), format.NumberWithCommas(total))
	return nil
}

func summary(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("summary")
	shopID := fs.Int64("shop", 0, "shop id (owners)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	var selected *int64
	if *shopID > 0 {
		selected = utils.Ptr(*shopID)
	}
	id, err := shop.SummaryShopID(user, selected)
	if err != nil {
		return err
	}

	s, err := a.api.Shop(ctx, id)
	if err != nil {
		return err
	}
	a.printf("%s\n%s\n", s.Name, strings.Repeat("-", len(s.Name)))
	a.printf("capital:     %s\n", format.NumberWithCommas(s.InitialCapital))
	if s.PerformanceSummary != nil {
		a.printf("sales:       %s (%s)\n",
			format.NumberWithCommas(s.PerformanceSummary.TotalSalesValue),
			format.Int(int64(s.PerformanceSummary.SalesCount)))
	}
	a.printf("profit:      %s\n", format.NumberWithCommas(s.Profit()))
	return nil
}

// loadPages fetches the first page for term and then up to pages-1 more, or
// every page when all is set.
func loadPages[T any](ctx context.Context, f *paging.Fetcher[T], term string, pages int, all bool) error {
	if err := f.Search(ctx, term); err != nil {
		return err
	}
	for i := 1; all || i < pages; i++ {
		if f.Stalled() {
			return nil
		}
		if f.Exhausted() {
			if all {
				return f.EndReached(ctx)
			}
			return nil
		}
		if err := f.EndReached(ctx); err != nil {
			return err
		}
	}
	return nil
}
