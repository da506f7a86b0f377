package models

import "time"

// Session связывает непрозрачный токен с учётной записью на ограниченное время.
//
// Token никогда не сохраняется в хранилище в открытом виде.
type Session struct {
	Token     string    `json:"-"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
