package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-pos-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	for _, v := range []string{"API_BASE_URL", "API_TIMEOUT", "PAGE_SIZE", "SALES_PAGE_SIZE", "MOCK_API_PORT", "SESSION_KEY", "MOCK_API_LATENCY"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, "http://localhost:8090", c.GetBaseURL())
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.Equal(t, 20, c.GetPageSize())
	require.Equal(t, 50, c.GetSalesPageSize())
	require.Equal(t, ":8090", c.GetMockAPIPort())
	require.Zero(t, c.GetMockAPILatency())
	require.Empty(t, c.GetSessionKey())
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://pos.example.com/api/v1/")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("PAGE_SIZE", "10")
	t.Setenv("SALES_PAGE_SIZE", "not-a-number")
	t.Setenv("MOCK_API_PORT", ":9000")
	t.Setenv("MOCK_API_LATENCY", "250ms")
	c := config.New()

	require.Equal(t, "https://pos.example.com/api/v1", c.GetBaseURL())
	require.Equal(t, 5*time.Second, c.GetRequestTimeout())
	require.Equal(t, 10, c.GetPageSize())
	require.Equal(t, 50, c.GetSalesPageSize())
	require.Equal(t, ":9000", c.GetMockAPIPort())
	require.Equal(t, 250*time.Millisecond, c.GetMockAPILatency())
}
