package mockapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jrsteele09/go-pos-client/shop"
)

type listQuery struct {
	offset      int
	limit       int
	shopID      *int64
	shopOwnerID *int64
	searchTerm  string
	startDate   *time.Time
	endDate     *time.Time
}

// record is the part of a listed row the filters look at.
type record struct {
	shopID int64
	date   time.Time
	text   []string
}

func parseListQuery(c *fiber.Ctx) (listQuery, error) {
	q := listQuery{
		offset:     c.QueryInt("offset", 0),
		limit:      c.QueryInt("limit", defaultPageLimit),
		searchTerm: strings.ToLower(strings.TrimSpace(c.Query("searchTerm"))),
	}
	if q.offset < 0 || q.limit <= 0 {
		return q, errors.New("offset and limit must be positive")
	}

	var err error
	if q.shopID, err = optionalInt(c.Query("shopId")); err != nil {
		return q, errors.New("invalid shopId")
	}
	if q.shopOwnerID, err = optionalInt(c.Query("shopOwnerId")); err != nil {
		return q, errors.New("invalid shopOwnerId")
	}
	if q.startDate, err = optionalDate(c.Query("startDate")); err != nil {
		return q, errors.New("invalid startDate")
	}
	if q.endDate, err = optionalDate(c.Query("endDate")); err != nil {
		return q, errors.New("invalid endDate")
	}
	return q, nil
}

func optionalInt(v string) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func optionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, v, time.Local)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// filterRecords keeps rows in fixture order that match every filter in q.
// The end date is inclusive of the whole day.
func filterRecords[T any](rows []T, q listQuery, ownedShops map[int64]bool, view func(T) record) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		r := view(row)
		if q.shopID != nil && r.shopID != *q.shopID {
			continue
		}
		if ownedShops != nil && !ownedShops[r.shopID] {
			continue
		}
		if q.startDate != nil && r.date.Before(*q.startDate) {
			continue
		}
		if q.endDate != nil && !r.date.Before(q.endDate.AddDate(0, 0, 1)) {
			continue
		}
		if q.searchTerm != "" && !containsTerm(r.text, q.searchTerm) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func containsTerm(fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func paginate[T any](rows []T, q listQuery) shop.ListPage[T] {
	page := shop.ListPage[T]{Records: []T{}, TotalItems: len(rows), Offset: q.offset}
	if q.offset >= len(rows) {
		return page
	}
	end := min(q.offset+q.limit, len(rows))
	page.Records = rows[q.offset:end]
	return page
}
