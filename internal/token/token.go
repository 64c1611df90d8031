// Package token issues and verifies the JWT pair handed out after a
// successful two-step login.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongTokenUse = errors.New("token used for the wrong purpose")
)

// Claims carries the standard claims plus the user identity and a
// discriminator distinguishing access from refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uint64 `json:"user_id"`
	TokenType string `json:"token_type"`
}

// Pair is an access/refresh token pair.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Issuer mints and parses HS256-signed token pairs.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer creates an Issuer.
func NewIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair mints an access and a refresh token bound to the user.
func (i *Issuer) IssuePair(userID uint64) (*Pair, error) {
	access, err := i.sign(userID, TypeAccess, i.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := i.sign(userID, TypeRefresh, i.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) sign(userID uint64, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: tokenType,
	})

	return token.SignedString(i.secret)
}

// Parse verifies the signature and expiry of a token and checks that it was
// issued for the expected use (access or refresh).
func (i *Issuer) Parse(tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != expectedType {
		return nil, ErrWrongTokenUse
	}

	return claims, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (i *Issuer) Refresh(refreshToken string) (*Pair, error) {
	claims, err := i.Parse(refreshToken, TypeRefresh)
	if err != nil {
		return nil, err
	}

	return i.IssuePair(claims.UserID)
}
