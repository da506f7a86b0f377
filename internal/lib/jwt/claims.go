package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySessionToken возвращается, если в конверте нет токена сессии.
var ErrEmptySessionToken = errors.New("session token is empty")

// SessionClaims — claims сессионной cookie. Токен сессии хранится в ID (jti).
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionToken возвращает токен сессии из конверта.
func (c *SessionClaims) SessionToken() string {
	return c.ID
}

// GenerateToken подписывает токен сессии секретным ключом.
func (j *MakerImpl) GenerateToken(sessionToken string, expiresAt time.Time) (string, error) {
	const op = "jwt.GenerateToken"
	if sessionToken == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptySessionToken)
	}
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionToken,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись, алгоритм, издателя и срок действия конверта.
func (j *MakerImpl) ParseToken(tokenStr string) (*SessionClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySessionToken)
	}
	return claims, nil
}
