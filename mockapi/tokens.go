package mockapi

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-pos-client/shop"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const (
	issuer             = "shop-pos-mock"
	refreshTokenLength = 32
)

// tokenIssuer signs HS256 access tokens and mints opaque refresh tokens.
type tokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func (t *tokenIssuer) CreateAccessToken(user *shop.User) (string, error) {
	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"iss":      issuer,
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"role":     user.RoleName,
		"iat":      now.Unix(),
		"exp":      now.Add(t.expiry).Unix(),
		"jti":      uuid.New().String(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

func (t *tokenIssuer) CreateRefreshToken() (string, error) {
	tokenBytes := make([]byte, refreshTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(tokenBytes), nil
}

// Verify checks the signature and expiry of raw and returns the user id it
// was issued to.
func (t *tokenIssuer) Verify(raw string) (int64, error) {
	token, err := jwtlib.Parse(raw, func(*jwtlib.Token) (any, error) {
		return t.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return 0, err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, errors.New("subject is not a user id")
	}
	return id, nil
}
