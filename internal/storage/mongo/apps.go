package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/query"
	"github.com/pribylovaa/commentsy/internal/storage"
)

// CreateApp сохраняет тенанта; дубликат кода — storage.ErrAlreadyExists.
func (m *Mongo) CreateApp(ctx context.Context, app models.App) (*models.App, error) {
	const op = "storage/mongo/CreateApp"

	ts := now()
	doc := appDoc{
		Code:              app.Code,
		Name:              app.Name,
		OwnerID:           app.OwnerID.String(),
		AuthorizedOrigins: app.AuthorizedOrigins,
		CreatedAt:         ts,
		UpdatedAt:         ts,
	}
	if doc.AuthorizedOrigins == nil {
		doc.AuthorizedOrigins = []string{}
	}

	res, err := m.apps.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		app.ID = oid.Hex()
	}
	app.AuthorizedOrigins = doc.AuthorizedOrigins
	app.CreatedAt = ts
	app.UpdatedAt = ts

	return &app, nil
}

// AppByCode возвращает тенанта по коду.
func (m *Mongo) AppByCode(ctx context.Context, code string) (*models.App, error) {
	const op = "storage/mongo/AppByCode"

	var doc appDoc
	err := m.apps.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.model(), nil
}

// UpdateAppOrigins заменяет список разрешённых origin.
func (m *Mongo) UpdateAppOrigins(ctx context.Context, code string, origins []string) (*models.App, error) {
	const op = "storage/mongo/UpdateAppOrigins"

	if origins == nil {
		origins = []string{}
	}

	var doc appDoc
	err := m.apps.FindOneAndUpdate(ctx,
		bson.M{"code": code},
		bson.M{"$set": bson.M{"authorized_origins": origins, "updated_at": now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.model(), nil
}

// FindApps — выборка тенантов через query factory.
func (m *Mongo) FindApps(ctx context.Context, filter query.Filter, p query.Params) (*query.Result[models.App], error) {
	const op = "storage/mongo/FindApps"

	docs, total, err := find[appDoc](ctx, m.apps, filter, p, appFields, nil)
	if err != nil {
		if errors.Is(err, errBadID) {
			return &query.Result[models.App]{Items: []models.App{}, Size: p.Limit}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]models.App, 0, len(docs))
	for _, d := range docs {
		items = append(items, *d.model())
	}

	return &query.Result[models.App]{Items: items, Total: total, Size: p.Limit}, nil
}

// find — общий исполнитель query factory: фильтр, подсчёт total, сортировка, окно, проекция.
func find[D any](
	ctx context.Context,
	coll *mongodriver.Collection,
	filter query.Filter,
	p query.Params,
	fields map[string]string,
	projection bson.D,
) ([]D, int64, error) {
	f, err := buildFilter(filter, fields)
	if err != nil {
		return nil, 0, err
	}

	sort, err := buildSort(p.Sort, fields)
	if err != nil {
		return nil, 0, err
	}

	total, err := coll.CountDocuments(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(p.Offset()).
		SetLimit(p.Limit)
	if projection != nil {
		opts.SetProjection(projection)
	}

	cur, err := coll.Find(ctx, f, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]D, 0, p.Limit)
	for cur.Next(ctx) {
		var d D
		if err := cur.Decode(&d); err != nil {
			return nil, 0, fmt.Errorf("decode: %w", err)
		}
		out = append(out, d)
	}

	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor: %w", err)
	}

	return out, total, nil
}
