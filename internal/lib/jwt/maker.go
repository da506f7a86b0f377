// Package jwt подписывает значение сессионной cookie.
//
// Сама сессия живёт в Redis, а в cookie лежит HS256-конверт с токеном сессии
// в поле jti. Подделанная или просроченная cookie отбрасывается ещё до похода
// в хранилище.
package jwt

import (
	"time"
)

// Maker описывает интерфейс упаковки токена сессии в подписанный JWT и обратно.
type Maker interface {
	// GenerateToken подписывает токен сессии, срок действия конверта равен expiresAt.
	GenerateToken(sessionToken string, expiresAt time.Time) (string, error)
	// ParseToken проверяет подпись и срок действия и возвращает claims.
	ParseToken(tokenStr string) (*SessionClaims, error)
}

// MakerImpl реализует Maker на общем секретном ключе.
type MakerImpl struct {
	secretKey []byte // Секретный ключ для подписи cookie.
	issuer    string
}

// NewJWTMaker создаёт MakerImpl с секретным ключом и именем издателя.
func NewJWTMaker(secretKey, issuer string) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		issuer:    issuer,
	}
}
