// Package mongo — основная реализация storage.Storage поверх MongoDB.
// Мутации счётчиков выполняются в транзакциях, поэтому требуется replica set.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pribylovaa/commentsy/internal/config"
	"github.com/pribylovaa/commentsy/internal/storage"
)

const (
	appsCollection     = "apps"
	groupsCollection   = "groups"
	commentsCollection = "comments"
	authorsCollection  = "authors"
	defaultDBName      = "commentsy"
)

// Mongo — адаптер подключения и коллекций MongoDB.
type Mongo struct {
	client   *mongodriver.Client
	db       *mongodriver.Database
	apps     *mongodriver.Collection
	groups   *mongodriver.Collection
	comments *mongodriver.Collection
	authors  *mongodriver.Collection
}

var _ storage.Storage = (*Mongo)(nil)

// New подключается к MongoDB, проверяет соединение, готовит коллекции и индексы.
func New(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongo: nil config")
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("mongo: empty cfg.DB.URL")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.DB.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(cfg.DB.URL))

	m := &Mongo{
		client:   cli,
		db:       db,
		apps:     db.Collection(appsCollection),
		groups:   db.Collection(groupsCollection),
		comments: db.Collection(commentsCollection),
		authors:  db.Collection(authorsCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ensureIndexes создаёт индексы:
//   - apps.code — уникальный код тенанта;
//   - groups (app_id, identifier) — уникальная пара, на ней держится «ровно одна группа»;
//   - groups (identifier, created_at) — поиск без тенанта;
//   - comments: корни группы по created_at(desc) и ответы по created_at(asc).
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	plan := []struct {
		coll   *mongodriver.Collection
		models []mongodriver.IndexModel
	}{
		{m.apps, []mongodriver.IndexModel{
			{
				Keys:    bson.D{{Key: "code", Value: 1}},
				Options: options.Index().SetName("code_unique").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("owner_created"),
			},
		}},
		{m.groups, []mongodriver.IndexModel{
			{
				Keys:    bson.D{{Key: "app_id", Value: 1}, {Key: "identifier", Value: 1}},
				Options: options.Index().SetName("app_identifier_unique").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "identifier", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("identifier_created"),
			},
		}},
		{m.comments, []mongodriver.IndexModel{
			{
				Keys: bson.D{
					{Key: "group_id", Value: 1}, {Key: "parent_id", Value: 1},
					{Key: "is_removed", Value: 1}, {Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("group_parent_removed_created_desc"),
			},
			{
				Keys:    bson.D{{Key: "parent_id", Value: 1}, {Key: "is_removed", Value: 1}, {Key: "created_at", Value: 1}},
				Options: options.Index().SetName("parent_removed_created_asc"),
			},
		}},
	}

	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateMany(ctx, p.models); err != nil {
			return fmt.Errorf("mongo ensure indexes %s: %w", p.coll.Name(), err)
		}
	}

	return nil
}

// withTx выполняет fn в транзакции. WithTransaction сам повторяет fn
// при TransientTransactionError (например, конфликт записи счётчика).
func (m *Mongo) withTx(ctx context.Context, fn func(sc mongodriver.SessionContext) (any, error)) (any, error) {
	sess, err := m.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("mongo start session: %w", err)
	}
	defer sess.EndSession(ctx)

	return sess.WithTransaction(ctx, fn)
}

// databaseFromURI извлекает имя базы данных из пути mongodb URI.
// Если оно отсутствует или не разбирается, возвращает значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
