package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/query"
	"github.com/pribylovaa/commentsy/internal/storage"
)

// now — текущее время с точностью до миллисекунд (точность BSON DateTime).
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// CreateComment создаёт корень или ответ в одной транзакции со счётчиком.
//   - корень: comments_count группы +1;
//   - ответ: родитель должен быть неудалённым корнем той же группы, replies_count родителя +1.
func (m *Mongo) CreateComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/mongo/CreateComment"

	groupOID, err := primitive.ObjectIDFromHex(comm.GroupID)
	if err != nil {
		return nil, fmt.Errorf("%s: group: %w", op, storage.ErrNotFound)
	}

	var parentOID *primitive.ObjectID
	if comm.ParentID != "" {
		oid, err := primitive.ObjectIDFromHex(comm.ParentID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}
		parentOID = &oid
	}

	ts := now()
	doc := commentDoc{
		GroupID:   groupOID,
		ParentID:  parentOID,
		AuthorID:  comm.AuthorID.String(),
		Text:      comm.Text,
		Status:    string(models.StatusPending),
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	res, err := m.withTx(ctx, func(sc mongodriver.SessionContext) (any, error) {
		if parentOID != nil {
			var parent commentDoc
			err := m.comments.FindOne(sc, bson.M{"_id": *parentOID}).Decode(&parent)
			if err != nil {
				if errors.Is(err, mongodriver.ErrNoDocuments) {
					return nil, storage.ErrParentNotFound
				}
				return nil, fmt.Errorf("find parent: %w", err)
			}

			if parent.IsRemoved {
				return nil, storage.ErrParentNotFound
			}

			if parent.ParentID != nil || parent.GroupID != groupOID {
				return nil, storage.ErrNotTopLevel
			}

			// Условие is_removed=false: параллельное удаление родителя приведёт к конфликту записи.
			upd, err := m.comments.UpdateOne(sc,
				bson.M{"_id": *parentOID, "is_removed": false},
				bson.M{"$inc": bson.M{"replies_count": 1}, "$set": bson.M{"updated_at": ts}},
			)
			if err != nil {
				return nil, fmt.Errorf("inc replies: %w", err)
			}
			if upd.MatchedCount == 0 {
				return nil, storage.ErrParentNotFound
			}
		} else {
			upd, err := m.groups.UpdateOne(sc,
				bson.M{"_id": groupOID},
				bson.M{"$inc": bson.M{"comments_count": 1}},
			)
			if err != nil {
				return nil, fmt.Errorf("inc comments: %w", err)
			}
			if upd.MatchedCount == 0 {
				return nil, fmt.Errorf("group: %w", storage.ErrNotFound)
			}
		}

		ins, err := m.comments.InsertOne(sc, doc)
		if err != nil {
			return nil, fmt.Errorf("insert: %w", err)
		}

		return ins.InsertedID, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc.ID, _ = res.(primitive.ObjectID)
	return doc.model(), nil
}

// CommentByID возвращает комментарий (в том числе мягко удалённый).
func (m *Mongo) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "storage/mongo/CommentByID"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc commentDoc
	if err := m.comments.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc.model(), nil
}

// RemoveComment мягко удаляет комментарий и уменьшает счётчик в одной транзакции.
func (m *Mongo) RemoveComment(ctx context.Context, id string) (*models.Comment, error) {
	const op = "storage/mongo/RemoveComment"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := m.withTx(ctx, func(sc mongodriver.SessionContext) (any, error) {
		return m.removeInTx(sc, oid)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return res.(*commentDoc).model(), nil
}

// UpdateCommentStatus — условное обновление статуса; переход в deleted также мягко удаляет.
func (m *Mongo) UpdateCommentStatus(ctx context.Context, id string, from, to models.Status) (*models.Comment, error) {
	const op = "storage/mongo/UpdateCommentStatus"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := m.withTx(ctx, func(sc mongodriver.SessionContext) (any, error) {
		var doc commentDoc
		err := m.comments.FindOneAndUpdate(sc,
			bson.M{"_id": oid, "status": string(from)},
			bson.M{"$set": bson.M{"status": string(to), "updated_at": now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
		if err != nil {
			if !errors.Is(err, mongodriver.ErrNoDocuments) {
				return nil, fmt.Errorf("update status: %w", err)
			}

			n, cerr := m.comments.CountDocuments(sc, bson.M{"_id": oid})
			if cerr != nil {
				return nil, fmt.Errorf("count: %w", cerr)
			}
			if n == 0 {
				return nil, storage.ErrNotFound
			}
			return nil, storage.ErrStatusConflict
		}

		if to != models.StatusDeleted || doc.IsRemoved {
			return &doc, nil
		}

		return m.removeInTx(sc, oid)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return res.(*commentDoc).model(), nil
}

// removeInTx выставляет is_removed=true только у неудалённого документа
// и уменьшает счётчик группы (для корня) или родителя (для ответа).
func (m *Mongo) removeInTx(sc mongodriver.SessionContext, oid primitive.ObjectID) (*commentDoc, error) {
	var doc commentDoc
	err := m.comments.FindOneAndUpdate(sc,
		bson.M{"_id": oid, "is_removed": false},
		bson.M{"$set": bson.M{"is_removed": true, "updated_at": now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("mark removed: %w", err)
		}

		n, cerr := m.comments.CountDocuments(sc, bson.M{"_id": oid})
		if cerr != nil {
			return nil, fmt.Errorf("count: %w", cerr)
		}
		if n == 0 {
			return nil, storage.ErrNotFound
		}
		return nil, storage.ErrAlreadyRemoved
	}

	if doc.ParentID == nil {
		_, err = m.groups.UpdateOne(sc,
			bson.M{"_id": doc.GroupID},
			bson.M{"$inc": bson.M{"comments_count": -1}},
		)
	} else {
		_, err = m.comments.UpdateOne(sc,
			bson.M{"_id": *doc.ParentID},
			bson.M{"$inc": bson.M{"replies_count": -1}},
		)
	}
	if err != nil {
		return nil, fmt.Errorf("dec counter: %w", err)
	}

	return &doc, nil
}

// commentProjection — поля, нужные для списков; остальное не читаем.
var commentProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "author_id", Value: 1},
	{Key: "text", Value: 1},
	{Key: "replies_count", Value: 1},
	{Key: "created_at", Value: 1},
}

// FindComments — выборка через query factory с подстановкой имён авторов.
func (m *Mongo) FindComments(ctx context.Context, filter query.Filter, p query.Params) (*query.Result[models.CommentView], error) {
	const op = "storage/mongo/FindComments"

	docs, total, err := find[commentDoc](ctx, m.comments, filter, p, commentFields, commentProjection)
	if err != nil {
		if errors.Is(err, errBadID) {
			return &query.Result[models.CommentView]{Items: []models.CommentView{}, Size: p.Limit}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	names, err := m.authorNames(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]models.CommentView, 0, len(docs))
	for _, d := range docs {
		items = append(items, models.CommentView{
			ID:           d.ID.Hex(),
			RepliesCount: d.RepliesCount,
			Text:         d.Text,
			CreatedAt:    d.CreatedAt,
			Author:       models.AuthorView{Name: names[d.AuthorID]},
		})
	}

	return &query.Result[models.CommentView]{Items: items, Total: total, Size: p.Limit}, nil
}

// authorNames одним запросом подтягивает имена авторов страницы.
func (m *Mongo) authorNames(ctx context.Context, docs []commentDoc) (map[string]string, error) {
	ids := make([]string, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if _, ok := seen[d.AuthorID]; ok {
			continue
		}
		seen[d.AuthorID] = struct{}{}
		ids = append(ids, d.AuthorID)
	}

	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	cur, err := m.authors.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find authors: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var a authorDoc
		if err := cur.Decode(&a); err != nil {
			return nil, fmt.Errorf("decode author: %w", err)
		}
		names[a.ID] = a.Name
	}

	return names, cur.Err()
}
