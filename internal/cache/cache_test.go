package cache

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/pkg/log"
	"github.com/pribylovaa/commentsy/internal/storage"
	"github.com/pribylovaa/commentsy/internal/storage/memory"
)

const testTTL = time.Minute

func setup(t *testing.T) (*Apps, *memory.Storage, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), "redis://"+s.Addr())
	require.NoError(t, err)

	mem := memory.New()
	c := NewApps(mem, rdb, "", testTTL)
	t.Cleanup(func() { _ = rdb.Close() })

	return c, mem, s
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "://nope")
	require.Error(t, err)
}

func TestAppByCode_ReadThrough(t *testing.T) {
	c, mem, s := setup(t)
	ctx := context.Background()

	_, err := c.CreateApp(ctx, models.App{Code: "blog", Name: "Blog", OwnerID: uuid.New(), AuthorizedOrigins: []string{"https://a.example", "https://b.example"}})
	require.NoError(t, err)
	require.False(t, s.Exists(defaultPrefix+"blog"))

	got, err := c.AppByCode(ctx, "blog")
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, got.AuthorizedOrigins)
	require.True(t, s.Exists(defaultPrefix+"blog"))
	require.Equal(t, testTTL, s.TTL(defaultPrefix+"blog"))

	// Изменение в обход кэша не видно до истечения TTL: значит, ответ из Redis.
	_, err = mem.UpdateAppOrigins(ctx, "blog", []string{"https://c.example"})
	require.NoError(t, err)

	cached, err := c.AppByCode(ctx, "blog")
	require.NoError(t, err)
	require.Equal(t, got.ID, cached.ID)
	require.Equal(t, got.OwnerID, cached.OwnerID)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cached.AuthorizedOrigins)
	require.True(t, got.CreatedAt.Equal(cached.CreatedAt))

	s.FastForward(testTTL + time.Second)

	fresh, err := c.AppByCode(ctx, "blog")
	require.NoError(t, err)
	require.Equal(t, []string{"https://c.example"}, fresh.AuthorizedOrigins)
}

func TestUpdateAppOrigins_Invalidates(t *testing.T) {
	c, _, s := setup(t)
	ctx := context.Background()

	_, err := c.CreateApp(ctx, models.App{Code: "blog", OwnerID: uuid.New(), AuthorizedOrigins: []string{"https://a.example"}})
	require.NoError(t, err)
	_, err = c.AppByCode(ctx, "blog")
	require.NoError(t, err)

	_, err = c.UpdateAppOrigins(ctx, "blog", nil)
	require.NoError(t, err)
	require.False(t, s.Exists(defaultPrefix+"blog"))

	got, err := c.AppByCode(ctx, "blog")
	require.NoError(t, err)
	require.Empty(t, got.AuthorizedOrigins)
}

// Читатель, промахнувшийся до обновления, не может вернуть в кэш старые origins.
func TestUpdateAppOrigins_LateStaleWriteIgnored(t *testing.T) {
	c, mem, s := setup(t)
	ctx := context.Background()

	_, err := c.CreateApp(ctx, models.App{Code: "blog", OwnerID: uuid.New(), AuthorizedOrigins: []string{"https://a.example"}})
	require.NoError(t, err)

	// Снимок, прочитанный из хранилища до обновления.
	stale, err := mem.AppByCode(ctx, "blog")
	require.NoError(t, err)

	updated, err := c.UpdateAppOrigins(ctx, "blog", []string{"https://b.example"})
	require.NoError(t, err)
	require.True(t, s.Exists(defaultPrefix+"blog:ver"))

	stale.UpdatedAt = updated.UpdatedAt.Add(-time.Second)
	require.NoError(t, c.set(ctx, stale))
	require.False(t, s.Exists(defaultPrefix+"blog"))

	got, err := c.AppByCode(ctx, "blog")
	require.NoError(t, err)
	require.Equal(t, []string{"https://b.example"}, got.AuthorizedOrigins)

	// Свежее чтение после обновления кэшируется как обычно.
	require.True(t, s.Exists(defaultPrefix+"blog"))

	cached, err := c.AppByCode(ctx, "blog")
	require.NoError(t, err)
	require.Equal(t, []string{"https://b.example"}, cached.AuthorizedOrigins)
}

func TestAppByCode_NotFoundIsNotCached(t *testing.T) {
	c, _, s := setup(t)

	_, err := c.AppByCode(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.False(t, s.Exists(defaultPrefix+"missing"))
}

// TestAppByCode_RedisDown — недоступный Redis не ломает чтение.
func TestAppByCode_RedisDown(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	mem := memory.New()
	c := NewApps(mem, rdb, "p:", testTTL)

	var buf bytes.Buffer
	ctx := log.Into(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	_, err := mem.CreateApp(ctx, models.App{Code: "blog-main", OwnerID: uuid.New()})
	require.NoError(t, err)

	s.Close()

	got, err := c.AppByCode(ctx, "blog-main")
	require.NoError(t, err)
	require.Equal(t, "blog-main", got.Code)

	// Код тенанта в логах маскируется.
	require.Contains(t, buf.String(), "cache_get_failed")
	require.Contains(t, buf.String(), `"app_code":"blog***"`)
	require.NotContains(t, buf.String(), "blog-main")
}

func TestPassThroughMethods(t *testing.T) {
	c, _, _ := setup(t)
	ctx := context.Background()

	app, err := c.CreateApp(ctx, models.App{Code: "blog", OwnerID: uuid.New()})
	require.NoError(t, err)

	g, err := c.InsertGroup(ctx, models.Group{AppID: app.ID, Identifier: "p1", OwnerID: app.OwnerID})
	require.NoError(t, err)

	got, err := c.GroupByID(ctx, g.ID)
	require.NoError(t, err)
	require.Equal(t, "p1", got.Identifier)
}
