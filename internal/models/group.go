package models

import (
	"time"

	"github.com/google/uuid"
)

// Group — корень ветки комментариев для одной страницы тенанта.
// Пара (AppID, Identifier) уникальна. Счётчики денормализованы и
// меняются только вместе с мутацией, которая их затрагивает.
type Group struct {
	ID            string
	AppID         string
	Identifier    string
	OwnerID       uuid.UUID
	LikesCount    int64
	CommentsCount int64
	CreatedAt     time.Time
}
