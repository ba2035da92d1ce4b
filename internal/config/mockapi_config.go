package config

import (
	"fmt"
	"strings"
	"time"
)

type MockAPI struct{}

var _ MockAPIConfig = MockAPI{}

func (MockAPI) GetMockAPIPort() string {
	port := GetEnv("MOCK_API_PORT", "8090")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

// GetMockAPISecret signs the fake API's access tokens.
func (MockAPI) GetMockAPISecret() string {
	return GetEnv("MOCK_API_SECRET", "mock-api-secret")
}

// GetMockAPILatency delays every list response, for watching paging in a terminal.
func (MockAPI) GetMockAPILatency() time.Duration {
	d, err := time.ParseDuration(GetEnv("MOCK_API_LATENCY", "0s"))
	if err != nil || d < 0 {
		return 0
	}
	return d
}
