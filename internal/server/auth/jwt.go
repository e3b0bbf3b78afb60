// Package auth issues and verifies the HS256 session tokens carried in the
// session cookie.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/defcomm/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the standard registered claims plus the
// numeric id of the account.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"userId"`
}

func GenerateToken(userID int64, secretKey []byte, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies the signature and expiry and returns the
// embedded user id. Expired tokens yield common.ErrTokenExpired, anything
// else common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID <= 0 {
		return 0, common.ErrInvalidToken
	}

	return claims.UserID, nil
}

// Issuer binds a signing secret and session lifetime.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("session lifetime must be positive")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for userID and the moment it expires.
func (i *Issuer) Issue(userID int64) (string, time.Time, error) {
	expiresAt := i.now().Add(i.ttl)
	token, err := GenerateToken(userID, i.secret, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (i *Issuer) Parse(token string) (int64, error) {
	return GetUserIDFromToken(token, i.secret)
}

func (i *Issuer) TTL() time.Duration { return i.ttl }
