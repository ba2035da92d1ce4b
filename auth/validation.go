package auth

import (
	"fmt"
	"strings"
)

// Credentials are what the login form submits.
type Credentials struct {
	Username string
	Password string
}

// Validate trims the username and rejects blank fields before anything is
// sent to the API. The password is passed through untouched.
func (c *Credentials) Validate() error {
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" {
		return fmt.Errorf("[auth Validate] %w", ErrMissingUsername)
	}
	if strings.TrimSpace(c.Password) == "" {
		return fmt.Errorf("[auth Validate] %w", ErrMissingPassword)
	}
	return nil
}
