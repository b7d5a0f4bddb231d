package mongo

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pribylovaa/commentsy/internal/models"
	"github.com/pribylovaa/commentsy/internal/query"
	"github.com/pribylovaa/commentsy/internal/storage"
)

// Документы хранятся в snake_case; uuid пользователей — строками.

type appDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Code              string             `bson:"code"`
	Name              string             `bson:"name"`
	OwnerID           string             `bson:"owner_id"`
	AuthorizedOrigins []string           `bson:"authorized_origins"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

type groupDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	AppID         primitive.ObjectID `bson:"app_id"`
	Identifier    string             `bson:"identifier"`
	OwnerID       string             `bson:"owner_id"`
	LikesCount    int64              `bson:"likes_count"`
	CommentsCount int64              `bson:"comments_count"`
	CreatedAt     time.Time          `bson:"created_at"`
}

type commentDoc struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	GroupID      primitive.ObjectID  `bson:"group_id"`
	ParentID     *primitive.ObjectID `bson:"parent_id"`
	AuthorID     string              `bson:"author_id"`
	Text         string              `bson:"text"`
	Status       string              `bson:"status"`
	RepliesCount int64               `bson:"replies_count"`
	IsRemoved    bool                `bson:"is_removed"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

type authorDoc struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

func (d appDoc) model() *models.App {
	owner, _ := uuid.Parse(d.OwnerID)
	return &models.App{
		ID:                d.ID.Hex(),
		Code:              d.Code,
		Name:              d.Name,
		OwnerID:           owner,
		AuthorizedOrigins: d.AuthorizedOrigins,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (d groupDoc) model() *models.Group {
	owner, _ := uuid.Parse(d.OwnerID)
	return &models.Group{
		ID:            d.ID.Hex(),
		AppID:         d.AppID.Hex(),
		Identifier:    d.Identifier,
		OwnerID:       owner,
		LikesCount:    d.LikesCount,
		CommentsCount: d.CommentsCount,
		CreatedAt:     d.CreatedAt,
	}
}

func (d commentDoc) model() *models.Comment {
	author, _ := uuid.Parse(d.AuthorID)
	c := &models.Comment{
		ID:           d.ID.Hex(),
		GroupID:      d.GroupID.Hex(),
		AuthorID:     author,
		Text:         d.Text,
		Status:       models.Status(d.Status),
		RepliesCount: d.RepliesCount,
		IsRemoved:    d.IsRemoved,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}

	if d.ParentID != nil {
		c.ParentID = d.ParentID.Hex()
	}

	return c
}

// Маппинг логических полей query на поля документов.
var (
	commentFields = map[string]string{
		storage.FieldGroup:        "group_id",
		storage.FieldParent:       "parent_id",
		storage.FieldIsRemoved:    "is_removed",
		storage.FieldCreatedAt:    "created_at",
		storage.FieldRepliesCount: "replies_count",
	}
	appFields = map[string]string{
		storage.FieldOwner:     "owner_id",
		storage.FieldName:      "name",
		storage.FieldCreatedAt: "created_at",
	}
	// objectIDFields — поля, строковые значения которых надо привести к ObjectID.
	objectIDFields = map[string]struct{}{"_id": {}, "group_id": {}, "parent_id": {}, "app_id": {}}
)

// errBadID — значение фильтра не является корректным ObjectID: под такой фильтр ничего не попадает.
var errBadID = errors.New("bad object id")

// buildFilter переводит query.Filter в bson.D.
func buildFilter(f query.Filter, fields map[string]string) (bson.D, error) {
	out := bson.D{}
	var convErr error

	err := query.Resolve(f, fields, func(col string, v any) {
		if convErr != nil {
			return
		}

		switch val := v.(type) {
		case nil:
			out = append(out, bson.E{Key: col, Value: nil})
		case uuid.UUID:
			out = append(out, bson.E{Key: col, Value: val.String()})
		case string:
			if _, ok := objectIDFields[col]; ok {
				oid, err := primitive.ObjectIDFromHex(val)
				if err != nil {
					convErr = errBadID
					return
				}
				out = append(out, bson.E{Key: col, Value: oid})
				return
			}
			out = append(out, bson.E{Key: col, Value: val})
		default:
			out = append(out, bson.E{Key: col, Value: val})
		}
	})
	if err != nil {
		return nil, err
	}

	if convErr != nil {
		return nil, convErr
	}

	return out, nil
}

// buildSort переводит сортировку в bson.D, добавляя _id для стабильного порядка.
func buildSort(s []query.SortField, fields map[string]string) (bson.D, error) {
	resolved, err := query.ResolveSort(s, fields)
	if err != nil {
		return nil, err
	}

	out := bson.D{}
	dir := 1
	for _, sf := range resolved {
		dir = 1
		if sf.Desc {
			dir = -1
		}
		out = append(out, bson.E{Key: sf.Field, Value: dir})
	}

	return append(out, bson.E{Key: "_id", Value: dir}), nil
}
