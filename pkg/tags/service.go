package tags

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/chiyopla/bookspace/pkg/pagination"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// FindOrCreate resolves a tag name to a tag row, creating it when no tag with
// that name exists. Matching is case-insensitive, so "Go" and "go" resolve to
// the same tag. Works inside a caller-provided transaction.
func FindOrCreate(ctx context.Context, idb bun.IDB, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errcodes.ValidationError("tag name is required")
	}

	tag := &models.Tag{}
	err := idb.NewSelect().
		Model(tag).
		Where("LOWER(t.name) = LOWER(?)", name).
		Scan(ctx)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	tag = &models.Tag{Name: name, CreatedAt: now, UpdatedAt: now}
	_, err = idb.NewInsert().Model(tag).Returning("*").Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return tag, nil
}

// Create makes a brand-new tag. Unlike FindOrCreate, an existing tag with the
// same name in any casing is a conflict, since the caller asked for a new one.
func (svc *Service) Create(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errcodes.ValidationError("tag name is required")
	}

	exists, err := svc.db.NewSelect().
		Model((*models.Tag)(nil)).
		Where("LOWER(name) = LOWER(?)", name).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.Conflict("A tag with this name already exists")
	}

	now := time.Now()
	tag := &models.Tag{Name: name, CreatedAt: now, UpdatedAt: now}
	if _, err := svc.db.NewInsert().Model(tag).Returning("*").Exec(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	return tag, nil
}

// List returns tags with the number of books carrying each, ordered by name.
func (svc *Service) List(ctx context.Context, page pagination.Page) ([]*models.Tag, int, error) {
	tags := []*models.Tag{}
	total, err := svc.db.NewSelect().
		Model(&tags).
		ColumnExpr("t.*").
		ColumnExpr("(SELECT COUNT(*) FROM book_tags bt WHERE bt.tag_id = t.id) AS book_count").
		Order("t.name ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}
	return tags, total, nil
}

// Retrieve returns one tag by ID.
func (svc *Service) Retrieve(ctx context.Context, id int) (*models.Tag, error) {
	tag := &models.Tag{}
	err := svc.db.NewSelect().
		Model(tag).
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Tag")
		}
		return nil, errors.WithStack(err)
	}
	return tag, nil
}

// Rename changes a tag's name. Renaming to a name another tag already holds,
// in any casing, is a conflict.
func (svc *Service) Rename(ctx context.Context, id int, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)

	tag, err := svc.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}

	existing := &models.Tag{}
	err = svc.db.NewSelect().
		Model(existing).
		Where("LOWER(t.name) = LOWER(?)", name).
		Where("t.id != ?", id).
		Scan(ctx)
	if err == nil {
		return nil, errcodes.Conflict("A tag with this name already exists")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	tag.Name = name
	tag.UpdatedAt = time.Now()
	_, err = svc.db.NewUpdate().
		Model(tag).
		Column("name", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return tag, nil
}

// Delete removes a tag along with its book associations. The associations are
// deleted explicitly because SQLite only honors ON DELETE CASCADE when the
// foreign_keys pragma is on.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.BookTag)(nil)).
			Where("tag_id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		res, err := tx.NewDelete().
			Model((*models.Tag)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if affected == 0 {
			return errcodes.NotFound("Tag")
		}
		return nil
	})
}
