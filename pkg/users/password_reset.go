package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

const passwordResetTokenTTL = time.Hour

// RequestPasswordReset issues a reset token for the account holding the
// address. It succeeds no matter what so responses don't reveal which
// addresses have accounts.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user := &models.User{}
	err := svc.db.NewSelect().
		Model(user).
		Where("LOWER(u.email) = LOWER(?)", email).
		Where("u.disabled = ?", false).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return errors.WithStack(err)
	}

	raw, hash, err := generateToken()
	if err != nil {
		return err
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(passwordResetTokenTTL),
		CreatedAt: time.Now(),
	}
	if _, err := svc.db.NewInsert().Model(token).Exec(ctx); err != nil {
		return errors.WithStack(err)
	}

	if err := svc.mailer.SendPasswordReset(ctx, user, raw); err != nil {
		log := logger.FromContext(ctx)
		log.Err(err).Warn("failed to send password reset email")
	}

	return nil
}

// ConfirmPasswordReset sets a new password in exchange for a valid token.
// Every token for the user is burned afterwards.
func (svc *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	invalidToken := errcodes.ValidationError("This reset link is invalid or has expired")

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row := &models.PasswordResetToken{}
		err := tx.NewSelect().
			Model(row).
			Where("prt.token_hash = ?", hashToken(token)).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return invalidToken
			}
			return errors.WithStack(err)
		}

		if time.Now().After(row.ExpiresAt) {
			if _, err := tx.NewDelete().Model(row).WherePK().Exec(ctx); err != nil {
				return errors.WithStack(err)
			}
			return invalidToken
		}

		_, err = tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("password_hash = ?", passwordHash).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", row.UserID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.PasswordResetToken)(nil)).
			Where("user_id = ?", row.UserID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}
