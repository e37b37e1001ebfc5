package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// Service sends notification emails and records every delivery attempt in
// email_logs. Sends are synchronous and best-effort: callers that must not
// fail on mail trouble use SendBestEffort.
type Service struct {
	db      *bun.DB
	sink    Sink
	baseURL string
}

// NewService creates a mailer service. Pass NoopSink when no provider is
// configured.
func NewService(db *bun.DB, sink Sink, baseURL string) *Service {
	return &Service{db: db, sink: sink, baseURL: baseURL}
}

// Send delivers the message and logs it. The log row is written even when
// delivery fails so there's a trace of the attempt.
func (svc *Service) Send(ctx context.Context, kind string, user *models.User, recipientEmail string, msg Message) error {
	sendErr := svc.sink.Send(ctx, msg)

	entry := &models.EmailLog{
		Kind:           kind,
		RecipientEmail: recipientEmail,
		Subject:        msg.Subject,
		CreatedAt:      time.Now(),
	}
	if user != nil {
		entry.RecipientUserID = &user.ID
	}
	if _, err := svc.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(sendErr)
}

// SendBestEffort is Send for callers whose operation must succeed regardless
// of mail delivery, like loan registration. Failures are logged and dropped.
func (svc *Service) SendBestEffort(ctx context.Context, kind string, user *models.User, recipientEmail string, msg Message) {
	if err := svc.Send(ctx, kind, user, recipientEmail, msg); err != nil {
		log := logger.FromContext(ctx)
		log.Err(err).Warn("failed to send email", logger.Data{"kind": kind})
	}
}

// SendLoanNotification emails the borrower that their loan was registered.
func (svc *Service) SendLoanNotification(ctx context.Context, user *models.User, book *models.Book) {
	msg := Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Loan registered: %s", book.Title),
		Text: fmt.Sprintf("Hi %s,\n\nYour loan of %q by %s has been registered.\n\nHappy reading!",
			user.DisplayNameOrName(), book.Title, book.Author),
	}
	svc.SendBestEffort(ctx, models.EmailKindLoan, user, user.Email, msg)
}

// SendReturnNotification emails the borrower that their return was recorded.
func (svc *Service) SendReturnNotification(ctx context.Context, user *models.User, book *models.Book) {
	msg := Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Return recorded: %s", book.Title),
		Text: fmt.Sprintf("Hi %s,\n\nYour return of %q has been recorded. Thanks!",
			user.DisplayNameOrName(), book.Title),
	}
	svc.SendBestEffort(ctx, models.EmailKindReturn, user, user.Email, msg)
}

// SendReturnRequest emails a borrower asking them to bring a book back.
func (svc *Service) SendReturnRequest(ctx context.Context, user *models.User, book *models.Book) {
	msg := Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Please return: %s", book.Title),
		Text: fmt.Sprintf("Hi %s,\n\nAnother reader is waiting for %q. Please return it when you can.",
			user.DisplayNameOrName(), book.Title),
	}
	svc.SendBestEffort(ctx, models.EmailKindReturnRequest, user, user.Email, msg)
}

// SendPasswordReset emails a password reset link. Delivery failures are
// returned because the caller has nothing to show the user otherwise.
func (svc *Service) SendPasswordReset(ctx context.Context, user *models.User, token string) error {
	msg := Message{
		To:      user.Email,
		Subject: "Reset your password",
		Text: fmt.Sprintf("Hi %s,\n\nUse the link below to reset your password. It expires in an hour.\n\n%s/reset-password?token=%s\n\nIf you didn't request this, you can ignore this email.",
			user.DisplayNameOrName(), svc.baseURL, token),
	}
	return svc.Send(ctx, models.EmailKindPasswordReset, user, user.Email, msg)
}

// SendEmailVerification emails a registration confirmation link.
func (svc *Service) SendEmailVerification(ctx context.Context, email, name, token string) error {
	msg := Message{
		To:      email,
		Subject: "Confirm your email address",
		Text: fmt.Sprintf("Hi %s,\n\nUse the link below to confirm your email address and finish signing up. It expires in 24 hours.\n\n%s/verify-email?token=%s",
			name, svc.baseURL, token),
	}
	return svc.Send(ctx, models.EmailKindEmailVerification, nil, email, msg)
}
