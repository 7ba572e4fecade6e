package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ayush/devconnector/internal/apperr"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 1000 * time.Hour

// Claims is the signed token payload: {"user":{"id":...}} plus exp/iat.
type Claims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

type TokenUser struct {
	ID string `json:"id"`
}

// TokenService issues and verifies stateless HS256 bearer tokens. There is
// no revocation list: a validly signed, unexpired token is proof of identity.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for userID.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		User: TokenUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the user id embedded in token.
func (s *TokenService) Verify(token string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", apperr.Wrap(apperr.KindTokenExpired, "Token has expired", err)
	case err != nil:
		return "", apperr.Wrap(apperr.KindInvalidToken, "Token is not valid", err)
	case claims.User.ID == "":
		return "", apperr.New(apperr.KindInvalidToken, "Token is not valid")
	}
	return claims.User.ID, nil
}
