package postgres

import (
	"context"
	"fmt"

	"github.com/pribylovaa/commentsy/internal/models"
)

// UpsertAuthor сохраняет/обновляет отображаемое имя автора.
func (s *Storage) UpsertAuthor(ctx context.Context, author models.Author) error {
	const op = "storage/postgres/authors/UpsertAuthor"

	q := `
	INSERT INTO authors (id, name) VALUES ($1, $2)
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	if _, err := s.db.Exec(ctx, q, author.ID, author.Name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
