package mockapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/prohmpiriya/ecom-storefront/internal/claims"
	"github.com/prohmpiriya/ecom-storefront/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// principal is the caller resolved from a verified bearer token
type principal struct {
	UserID   int64
	Identity domain.Identity
}

type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// issue signs an HS256 token carrying the identity namespace claims
func (t *tokenIssuer) issue(u domain.User) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	id := strconv.FormatInt(u.ID, 10)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		claims.ClaimNameIdentifier: id,
		claims.ClaimEmail:          u.Email,
		claims.ClaimGivenName:      u.FirstName,
		claims.ClaimSurname:        u.LastName,
		claims.ClaimRole:           u.Role.String(),
		"sub":                      id,
		"jti":                      uuid.New().String(),
		"iat":                      now.Unix(),
		"exp":                      expiresAt.Unix(),
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// verify checks signature and expiry and returns the caller
func (t *tokenIssuer) verify(tokenString string) (principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return principal{}, ErrTokenExpired
		}
		return principal{}, ErrInvalidToken
	}
	if !token.Valid {
		return principal{}, ErrInvalidToken
	}

	identity, ok := claims.Decode(tokenString)
	if !ok {
		return principal{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(identity.ID, 10, 64)
	if err != nil {
		return principal{}, ErrInvalidToken
	}
	return principal{UserID: userID, Identity: identity}, nil
}
