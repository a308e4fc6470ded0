package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a session token: the standard claims plus the
// username, and the version and fingerprint of the Credential Record the
// session was issued against.
type Claims struct {
	jwt.RegisteredClaims
	Username    string `json:"usr"`
	Version     int64  `json:"ver"`
	Fingerprint string `json:"rec"`
}

// GenerateToken signs a token for username. A zero maxAge issues a token
// without an expiry.
func GenerateToken(username string, version int64, fingerprint string, issuedAt time.Time, maxAge time.Duration, secretKey []byte) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
		Username:    username,
		Version:     version,
		Fingerprint: fingerprint,
	}
	if maxAge > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(maxAge))
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return tokenString, nil
}

// ParseToken validates tokenString against secretKey as of now and returns
// its claims. Expired tokens yield common.ErrTokenExpired, anything else
// that fails validation yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte, now func() time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Username == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
