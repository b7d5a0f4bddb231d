// Package models содержит доменные сущности сервиса комментариев.
package models

import (
	"time"

	"github.com/google/uuid"
)

// App — зарегистрированный сторонний сайт (тенант).
//   - Code — непрозрачный публичный идентификатор клиента (виджета), уникален;
//   - OwnerID — аккаунт владельца (из внешнего identity provider);
//   - AuthorizedOrigins — список разрешённых origin в виде scheme://host.
type App struct {
	ID                string
	Code              string
	Name              string
	OwnerID           uuid.UUID
	AuthorizedOrigins []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Author — проекция пользователя, которую разрешено отдавать наружу вместе с комментарием.
type Author struct {
	ID   uuid.UUID
	Name string
}
