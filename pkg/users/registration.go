package users

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

const registrationTokenTTL = 24 * time.Hour

type RegisterOptions struct {
	Email       string
	Name        string
	DisplayName *string
	Password    string
}

// generateToken returns the raw token for the email link and its SHA-256 hex
// digest for storage. Only the hash ever touches the database.
func generateToken() (raw, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", errors.WithStack(err)
	}
	raw = hex.EncodeToString(buf)
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Register starts an email-verified signup. The user row is not created yet;
// a pending registration holds the details until the emailed token comes back.
func (svc *Service) Register(ctx context.Context, opts RegisterOptions) error {
	email := strings.TrimSpace(opts.Email)

	passwordHash, err := auth.HashPassword(opts.Password)
	if err != nil {
		return err
	}

	raw, hash, err := generateToken()
	if err != nil {
		return err
	}

	pending := &models.PendingRegistration{
		Email:        email,
		Name:         opts.Name,
		DisplayName:  opts.DisplayName,
		PasswordHash: passwordHash,
		TokenHash:    hash,
		ExpiresAt:    time.Now().Add(registrationTokenTTL),
		CreatedAt:    time.Now(),
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := emailAvailable(ctx, tx, email, 0); err != nil {
			return err
		}

		// A new signup attempt for the same address supersedes earlier ones.
		_, err := tx.NewDelete().
			Model((*models.PendingRegistration)(nil)).
			Where("LOWER(email) = LOWER(?)", email).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewInsert().Model(pending).Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return err
	}

	if err := svc.mailer.SendEmailVerification(ctx, email, opts.Name, raw); err != nil {
		// Without the email the signup can never complete. Drop the pending
		// row so a retry starts clean, and tell the caller.
		_, _ = svc.db.NewDelete().Model(pending).WherePK().Exec(ctx)
		return errcodes.UpstreamFailure("Could not send the verification email")
	}

	return nil
}

// VerifyEmail completes a signup. Invalid, consumed, and expired tokens all
// fail the same way; expired rows are deleted on sight.
func (svc *Service) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	invalidToken := errcodes.ValidationError("This verification link is invalid or has expired")

	user := &models.User{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		pending := &models.PendingRegistration{}
		err := tx.NewSelect().
			Model(pending).
			Where("pr.token_hash = ?", hashToken(token)).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return invalidToken
			}
			return errors.WithStack(err)
		}

		if time.Now().After(pending.ExpiresAt) {
			if _, err := tx.NewDelete().Model(pending).WherePK().Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
			return invalidToken
		}

		// The address could have been claimed while the link sat in an inbox.
		if err := emailAvailable(ctx, tx, pending.Email, 0); err != nil {
			return err
		}

		now := time.Now()
		user.Email = pending.Email
		user.Name = pending.Name
		user.DisplayName = pending.DisplayName
		user.PasswordHash = pending.PasswordHash
		user.Role = models.RoleUser
		user.CreatedAt = now
		user.UpdatedAt = now

		if _, err := tx.NewInsert().Model(user).Returning("*").Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		if err := refreshQRCode(ctx, tx, user); err != nil {
			return err
		}

		_, err = tx.NewDelete().Model(pending).WherePK().Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
