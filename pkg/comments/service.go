package comments

import (
	"context"
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

// Create adds a comment to a book. Comments are immutable once posted.
func (svc *Service) Create(ctx context.Context, userID, bookID int, body string) (*models.Comment, error) {
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

	comment := &models.Comment{
		BookID:    bookID,
		UserID:    userID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	_, err = svc.db.NewInsert().Model(comment).Returning("*").Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.NewSelect().
		Model(comment).
		Relation("User").
		WherePK().
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return comment, nil
}

// ListByBook returns a book's comments oldest first with authors loaded.
func (svc *Service) ListByBook(ctx context.Context, bookID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := svc.db.NewSelect().
		Model(&comments).
		Relation("User").
		Where("c.book_id = ?", bookID).
		Order("c.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return comments, nil
}

// Delete removes a comment. Authors can delete their own; staff can delete
// anyone's.
func (svc *Service) Delete(ctx context.Context, id int, actor *models.User) error {
	comment := &models.Comment{}
	err := svc.db.NewSelect().
		Model(comment).
		Where("c.id = ?", id).
		Scan(ctx)
	if err != nil {
		return errcodes.NotFound("Comment")
	}

	if comment.UserID != actor.ID && !actor.IsStaff() {
		return errcodes.Forbidden("You can only delete your own comments")
	}

	_, err = svc.db.NewDelete().
		Model((*models.Comment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}
