// Package users manages the member directory and the self-service account
// flows: email-verified registration, password reset, and profile updates.
package users

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/mailer"
	"github.com/chiyopla/bookspace/pkg/membercard"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/chiyopla/bookspace/pkg/pagination"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type ListUsersOptions struct {
	// Keyword matches name, display name, or email.
	Keyword string
	Page    pagination.Page
}

type CreateUserOptions struct {
	Email       string
	Name        string
	DisplayName *string
	Password    string
	Role        string
}

// UpdateUserOptions carries the fields an administrator may change. Nil
// pointers leave the column untouched.
type UpdateUserOptions struct {
	Email       *string
	Name        *string
	DisplayName *string
	Role        *string
	Disabled    *bool
}

type Service struct {
	db     *bun.DB
	mailer *mailer.Service
}

func NewService(db *bun.DB, mailerService *mailer.Service) *Service {
	return &Service{db: db, mailer: mailerService}
}

// ListUsers lists members ordered by name.
func (svc *Service) ListUsers(ctx context.Context, opts ListUsersOptions) ([]*models.User, int, error) {
	users := []*models.User{}

	q := svc.db.NewSelect().
		Model(&users).
		Order("u.name ASC").
		Limit(opts.Page.Limit()).
		Offset(opts.Page.Offset())

	if keyword := strings.TrimSpace(opts.Keyword); keyword != "" {
		pattern := "%" + keyword + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("u.name LIKE ?", pattern).
				WhereOr("u.display_name LIKE ?", pattern).
				WhereOr("u.email LIKE ?", pattern)
		})
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return users, total, nil
}

// RetrieveUser returns one member by id.
func (svc *Service) RetrieveUser(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := svc.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// CreateUser creates a member directly, bypassing email verification. This is
// the front-desk path for members without a working inbox.
func (svc *Service) CreateUser(ctx context.Context, opts CreateUserOptions) (*models.User, error) {
	if !models.ValidRole(opts.Role) {
		return nil, errcodes.ValidationError("Unknown role")
	}

	passwordHash, err := auth.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:        strings.TrimSpace(opts.Email),
		Name:         opts.Name,
		DisplayName:  opts.DisplayName,
		PasswordHash: passwordHash,
		Role:         opts.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := emailAvailable(ctx, tx, user.Email, 0); err != nil {
			return err
		}

		if _, err := tx.NewInsert().Model(user).Returning("*").Exec(ctx); err != nil {
			return errors.WithStack(err)
		}

		return refreshQRCode(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUser applies administrator edits to a member.
func (svc *Service) UpdateUser(ctx context.Context, id int, opts UpdateUserOptions) (*models.User, error) {
	if opts.Role != nil && !models.ValidRole(*opts.Role) {
		return nil, errcodes.ValidationError("Unknown role")
	}

	user := &models.User{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(user).
			Where("u.id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("User")
			}
			return errors.WithStack(err)
		}

		if opts.Email != nil {
			email := strings.TrimSpace(*opts.Email)
			if err := emailAvailable(ctx, tx, email, user.ID); err != nil {
				return err
			}
			user.Email = email
		}
		if opts.Name != nil {
			user.Name = *opts.Name
		}
		if opts.DisplayName != nil {
			user.DisplayName = opts.DisplayName
		}
		if opts.Role != nil {
			user.Role = *opts.Role
		}
		if opts.Disabled != nil {
			user.Disabled = *opts.Disabled
		}
		user.UpdatedAt = time.Now()

		if _, err := tx.NewUpdate().Model(user).WherePK().Exec(ctx); err != nil {
			return errors.WithStack(err)
		}

		return refreshQRCode(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateDisplayName is the one profile field members may change themselves.
func (svc *Service) UpdateDisplayName(ctx context.Context, userID int, displayName *string) (*models.User, error) {
	user := &models.User{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(user).
			Where("u.id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("User")
			}
			return errors.WithStack(err)
		}

		user.DisplayName = displayName
		user.UpdatedAt = time.Now()

		_, err = tx.NewUpdate().
			Model(user).
			Column("display_name", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return refreshQRCode(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// emailAvailable fails with a conflict when another user already holds the
// address, matched case-insensitively. selfID excludes the user being edited.
func emailAvailable(ctx context.Context, idb bun.IDB, email string, selfID int) error {
	exists, err := idb.NewSelect().
		Model((*models.User)(nil)).
		Where("LOWER(email) = LOWER(?)", email).
		Where("id != ?", selfID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.Conflict("This email address is already in use")
	}
	return nil
}

// refreshQRCode regenerates the stored membership card payload. The payload
// embeds the member's name, so any rename has to rewrite it.
func refreshQRCode(ctx context.Context, idb bun.IDB, user *models.User) error {
	data, err := membercard.Build(user)
	if err != nil {
		return err
	}

	user.QRCodeData = data
	_, err = idb.NewUpdate().
		Model(user).
		Column("qr_code_data").
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}
