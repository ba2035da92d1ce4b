package config

import (
	"strings"
	"time"
)

type API struct{}

var _ APIConfig = API{}

// GetBaseURL returns the shop API root every request path is joined to
// (e.g. "https://api.example.com/api/v1").
func (API) GetBaseURL() string {
	return strings.TrimRight(GetEnv("API_BASE_URL", "http://localhost:8090"), "/")
}

func (API) GetRequestTimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 30*time.Second)
}

// GetPageSize is the number of records requested per fetch on scrolling lists.
func (API) GetPageSize() int {
	return GetEnvInt("PAGE_SIZE", 20)
}

func (API) GetSalesPageSize() int {
	return GetEnvInt("SALES_PAGE_SIZE", 50)
}
