// Package cache — read-through кэш тенантов в Redis поверх storage.Storage.
// Тенант читается на каждом публичном запросе (проверка origin), а меняется редко.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/pkg/log"
	"github.com/pribylovaa/commentsy/internal/pkg/redact"
	"github.com/pribylovaa/commentsy/internal/storage"
)

const defaultPrefix = "commentsy:app:"

// setIfFresh кладёт хэш тенанта, только если его ua не старше версии, записанной последним обновлением.
// Иначе читатель, промахнувшийся до UpdateAppOrigins, вернул бы в кэш отозванные origins.
// Версии сравниваются как десятичные строки: unix nano не помещается в double Lua без потерь.
//
// KEYS[1] — хэш тенанта, KEYS[2] — версия; ARGV[1] — ua, ARGV[2] — TTL в мс, далее пары поле/значение.
var setIfFresh = redis.NewScript(`
local v = redis.call('GET', KEYS[2])
local ua = ARGV[1]
if v and (#v > #ua or (#v == #ua and v > ua)) then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// Apps оборачивает хранилище: AppByCode читается из Redis, мутации тенанта инвалидируют ключ.
// Остальные методы проксируются во вложенное хранилище без изменений.
// Ошибки Redis не ломают запрос: логируются, и чтение уходит в хранилище.
type Apps struct {
	storage.Storage
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

var _ storage.Storage = (*Apps)(nil)

// NewRedisClient создаёт клиент Redis из URL (например, redis://:pass@host:6379/0) и проверяет его.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

// NewApps оборачивает next кэшем. Если prefix пустой — используется "commentsy:app:".
func NewApps(next storage.Storage, rdb *redis.Client, prefix string, ttl time.Duration) *Apps {
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &Apps{Storage: next, rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *Apps) key(code string) string { return c.prefix + code }

func (c *Apps) versionKey(code string) string { return c.prefix + code + ":ver" }

// AppByCode — read-through: hit отдаётся из Redis, miss читается из хранилища и кладётся с TTL.
func (c *Apps) AppByCode(ctx context.Context, code string) (*models.App, error) {
	const op = "cache/AppByCode"

	lg := log.From(ctx).With("op", op, "app_code", redact.Code(code))

	app, ok, err := c.get(ctx, code)
	if err != nil {
		lg.Warn("cache_get_failed", "err", err)
	}
	if ok {
		return app, nil
	}

	app, err = c.Storage.AppByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := c.set(ctx, app); err != nil {
		lg.Warn("cache_set_failed", "err", err)
	}

	return app, nil
}

// CreateApp сбрасывает ключ на случай устаревшей записи с тем же кодом.
func (c *Apps) CreateApp(ctx context.Context, app models.App) (*models.App, error) {
	out, err := c.Storage.CreateApp(ctx, app)
	if err != nil {
		return nil, err
	}

	c.invalidate(ctx, app.Code)
	return out, nil
}

// UpdateAppOrigins обновляет хранилище, фиксирует версию (updated_at) и инвалидирует ключ,
// чтобы новая политика origin применилась к следующему запросу.
func (c *Apps) UpdateAppOrigins(ctx context.Context, code string, origins []string) (*models.App, error) {
	out, err := c.Storage.UpdateAppOrigins(ctx, code, origins)
	if err != nil {
		return nil, err
	}

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, c.versionKey(code), strconv.FormatInt(out.UpdatedAt.UnixNano(), 10), c.ttl)
	pipe.Del(ctx, c.key(code))

	if _, err := pipe.Exec(ctx); err != nil {
		log.From(ctx).Warn("cache_invalidate_failed", "op", "cache/UpdateAppOrigins", "app_code", redact.Code(code), "err", err)
	}

	return out, nil
}

// Close закрывает клиент Redis и вложенное хранилище.
func (c *Apps) Close(ctx context.Context) error {
	return errors.Join(c.rdb.Close(), c.Storage.Close(ctx))
}

func (c *Apps) invalidate(ctx context.Context, code string) {
	if err := c.rdb.Del(ctx, c.key(code)).Err(); err != nil {
		log.From(ctx).Warn("cache_invalidate_failed", "op", "cache/invalidate", "app_code", redact.Code(code), "err", err)
	}
}

// Храним как Redis Hash с полями: id, code, name, owner, origins (через перевод строки), ca, ua (unix nano).
func (c *Apps) get(ctx context.Context, code string) (*models.App, bool, error) {
	m, err := c.rdb.HGetAll(ctx, c.key(code)).Result()
	if err != nil {
		return nil, false, err
	}

	if len(m) == 0 {
		return nil, false, nil
	}

	owner, err := uuid.Parse(m["owner"])
	if err != nil {
		return nil, false, fmt.Errorf("owner: %w", err)
	}

	ca, err := strconv.ParseInt(m["ca"], 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("ca: %w", err)
	}

	ua, err := strconv.ParseInt(m["ua"], 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("ua: %w", err)
	}

	origins := []string{}
	if raw := m["origins"]; raw != "" {
		origins = strings.Split(raw, "\n")
	}

	return &models.App{
		ID:                m["id"],
		Code:              m["code"],
		Name:              m["name"],
		OwnerID:           owner,
		AuthorizedOrigins: origins,
		CreatedAt:         time.Unix(0, ca).UTC(),
		UpdatedAt:         time.Unix(0, ua).UTC(),
	}, true, nil
}

func (c *Apps) set(ctx context.Context, app *models.App) error {
	ua := strconv.FormatInt(app.UpdatedAt.UnixNano(), 10)

	args := []any{
		ua,
		strconv.FormatInt(c.ttl.Milliseconds(), 10),
		"id", app.ID,
		"code", app.Code,
		"name", app.Name,
		"owner", app.OwnerID.String(),
		"origins", strings.Join(app.AuthorizedOrigins, "\n"),
		"ca", strconv.FormatInt(app.CreatedAt.UnixNano(), 10),
		"ua", ua,
	}

	return setIfFresh.Run(ctx, c.rdb, []string{c.key(app.Code), c.versionKey(app.Code)}, args...).Err()
}
