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
	"github.com/pribylovaa/commentsy/internal/storage"
)

// InsertGroup вставляет группу; уникальный индекс (app_id, identifier) отсекает гонку.
func (m *Mongo) InsertGroup(ctx context.Context, group models.Group) (*models.Group, error) {
	const op = "storage/mongo/InsertGroup"

	appID, err := primitive.ObjectIDFromHex(group.AppID)
	if err != nil {
		return nil, fmt.Errorf("%s: app: %w", op, storage.ErrNotFound)
	}

	doc := groupDoc{
		AppID:      appID,
		Identifier: group.Identifier,
		OwnerID:    group.OwnerID.String(),
		CreatedAt:  now(),
	}

	res, err := m.groups.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.model(), nil
}

// GroupByApp ищет группу по паре (app, identifier).
func (m *Mongo) GroupByApp(ctx context.Context, appID, identifier string) (*models.Group, error) {
	const op = "storage/mongo/GroupByApp"

	oid, err := primitive.ObjectIDFromHex(appID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return m.findGroup(ctx, op, bson.M{"app_id": oid, "identifier": identifier}, nil)
}

// GroupByIdentifier ищет самую раннюю группу с данным identifier.
func (m *Mongo) GroupByIdentifier(ctx context.Context, identifier string) (*models.Group, error) {
	const op = "storage/mongo/GroupByIdentifier"

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return m.findGroup(ctx, op, bson.M{"identifier": identifier}, opts)
}

// GroupByID возвращает группу по идентификатору.
func (m *Mongo) GroupByID(ctx context.Context, id string) (*models.Group, error) {
	const op = "storage/mongo/GroupByID"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return m.findGroup(ctx, op, bson.M{"_id": oid}, nil)
}

func (m *Mongo) findGroup(ctx context.Context, op string, filter bson.M, opts *options.FindOneOptions) (*models.Group, error) {
	var doc groupDoc

	var res *mongodriver.SingleResult
	if opts != nil {
		res = m.groups.FindOne(ctx, filter, opts)
	} else {
		res = m.groups.FindOne(ctx, filter)
	}

	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.model(), nil
}

// UpsertAuthor сохраняет/обновляет отображаемое имя автора.
func (m *Mongo) UpsertAuthor(ctx context.Context, author models.Author) error {
	const op = "storage/mongo/UpsertAuthor"

	_, err := m.authors.UpdateOne(ctx,
		bson.M{"_id": author.ID.String()},
		bson.M{"$set": bson.M{"name": author.Name}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
