package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pribylovaa/commentsy/internal/query"
	"github.com/pribylovaa/commentsy/internal/storage"
)

// errBadID — значение фильтра не является uuid: под такой фильтр ничего не попадает.
var errBadID = errors.New("bad uuid")

var (
	commentFields = map[string]string{
		storage.FieldGroup:        "c.group_id",
		storage.FieldParent:       "c.parent_id",
		storage.FieldIsRemoved:    "c.is_removed",
		storage.FieldCreatedAt:    "c.created_at",
		storage.FieldRepliesCount: "c.replies_count",
	}
	appFields = map[string]string{
		storage.FieldOwner:     "owner_id",
		storage.FieldName:      "name",
		storage.FieldCreatedAt: "created_at",
	}
	// uuidColumns — колонки, строковые значения которых должны быть uuid.
	uuidColumns = map[string]struct{}{"c.group_id": {}, "c.parent_id": {}}
)

// where собирает WHERE из query.Filter. Имена колонок берутся только из маппинга,
// значения передаются плейсхолдерами.
func where(f query.Filter, fields map[string]string) (string, []any, error) {
	var (
		conds   []string
		args    []any
		convErr error
	)

	err := query.Resolve(f, fields, func(col string, v any) {
		if v == nil {
			conds = append(conds, col+" IS NULL")
			return
		}

		if s, ok := v.(string); ok {
			if _, isUUID := uuidColumns[col]; isUUID {
				id, err := uuid.Parse(s)
				if err != nil {
					convErr = errBadID
					return
				}
				v = id
			}
		}

		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	})
	if err != nil {
		return "", nil, err
	}

	if convErr != nil {
		return "", nil, convErr
	}

	if len(conds) == 0 {
		return "", args, nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// orderBy собирает ORDER BY с детерминирующим ключом idCol.
func orderBy(s []query.SortField, fields map[string]string, idCol string) (string, error) {
	resolved, err := query.ResolveSort(s, fields)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(resolved)+1)
	dir := "ASC"
	for _, sf := range resolved {
		dir = "ASC"
		if sf.Desc {
			dir = "DESC"
		}
		parts = append(parts, sf.Field+" "+dir)
	}
	parts = append(parts, idCol+" "+dir)

	return " ORDER BY " + strings.Join(parts, ", "), nil
}
