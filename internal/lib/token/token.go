// Package token генерирует непрозрачные токены сессий и их отпечатки для хранения.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Size — длина токена в байтах до кодирования.
const Size = 32

// New возвращает случайный токен из Size байт в base64url без паддинга.
func New() (string, error) {
	const op = "token.New"
	b := make([]byte, Size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Fingerprint возвращает SHA-256 токена в hex. Под этим ключом сессия
// хранится в Redis, поэтому дамп хранилища не раскрывает живые токены.
func Fingerprint(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}
