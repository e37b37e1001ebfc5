package favorites

import (
	"context"
	"strings"
	"time"

	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Add marks a book as a favorite. Favoriting twice is a no-op thanks to the
// unique pair index.
func (svc *Service) Add(ctx context.Context, userID, bookID int) (*models.Favorite, error) {
	exists, err := svc.db.NewSelect().
		Model((*models.Book)(nil)).
		Where("id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !exists {
		return nil, errcodes.NotFound("Book")
	}

	favorite := &models.Favorite{
		UserID:    userID,
		BookID:    bookID,
		CreatedAt: time.Now(),
	}
	_, err = svc.db.NewInsert().Model(favorite).Returning("*").Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			err = svc.db.NewSelect().
				Model(favorite).
				Where("f.user_id = ?", userID).
				Where("f.book_id = ?", bookID).
				Scan(ctx)
			if err != nil {
				return nil, errors.WithStack(err)
			}
			return favorite, nil
		}
		return nil, errors.WithStack(err)
	}

	return favorite, nil
}

// Remove unmarks a favorite.
func (svc *Service) Remove(ctx context.Context, userID, bookID int) error {
	res, err := svc.db.NewDelete().
		Model((*models.Favorite)(nil)).
		Where("user_id = ?", userID).
		Where("book_id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return errcodes.NotFound("Favorite")
	}
	return nil
}

// ListByUser returns a user's favorites newest first with books loaded.
func (svc *Service) ListByUser(ctx context.Context, userID int) ([]*models.Favorite, error) {
	favorites := []*models.Favorite{}
	err := svc.db.NewSelect().
		Model(&favorites).
		Relation("Book").
		Where("f.user_id = ?", userID).
		Order("f.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return favorites, nil
}
