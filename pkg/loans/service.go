package loans

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/mailer"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/chiyopla/bookspace/pkg/pagination"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Loan status filters.
const (
	StatusAll      = "all"
	StatusActive   = "active"
	StatusReturned = "returned"
)

type ListLoansOptions struct {
	// UserID restricts the list to one borrower.
	UserID *int
	// Status is one of all, active, or returned.
	Status string
	// Keyword matches the book title or the borrower's name.
	Keyword string
	Page    pagination.Page
}

type Service struct {
	db     *bun.DB
	mailer *mailer.Service
}

func NewService(db *bun.DB, mailerService *mailer.Service) *Service {
	return &Service{db: db, mailer: mailerService}
}

// The partial unique indexes on loans are the backstop for these invariants.
// The in-transaction checks exist to produce friendly errors; a concurrent
// insert that slips past them still fails on the index and gets mapped to the
// same conflict.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// RegisterLoan checks out a book to a user. Fails with a conflict when the
// book is already out or the user already has a book.
func (svc *Service) RegisterLoan(ctx context.Context, userID, bookID int) (*models.Loan, error) {
	loan := &models.Loan{
		UserID: userID,
		BookID: bookID,
		LentAt: time.Now(),
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Book)(nil)).
			Where("id = ?", bookID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Book")
		}

		exists, err = tx.NewSelect().
			Model((*models.User)(nil)).
			Where("id = ?", userID).
			Where("disabled = ?", false).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("User")
		}

		bookOut, err := tx.NewSelect().
			Model((*models.Loan)(nil)).
			Where("book_id = ?", bookID).
			Where("returned_at IS NULL").
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if bookOut {
			return errcodes.Conflict("This book is already on loan")
		}

		userHasLoan, err := tx.NewSelect().
			Model((*models.Loan)(nil)).
			Where("user_id = ?", userID).
			Where("returned_at IS NULL").
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if userHasLoan {
			return errcodes.Conflict("This user already has a book on loan")
		}

		_, err = tx.NewInsert().Model(loan).Returning("*").Exec(ctx)
		if isUniqueViolation(err) {
			return errcodes.Conflict("This book is already on loan")
		}
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	if err := svc.loadRelations(ctx, loan); err != nil {
		return nil, err
	}

	svc.mailer.SendLoanNotification(ctx, loan.User, loan.Book)

	return loan, nil
}

// RegisterReturn marks the active loan on a book as returned. When userID is
// non-nil, only that borrower's loan qualifies; staff pass nil to return on
// anyone's behalf. Returns not found, and changes nothing, when no matching
// active loan exists.
func (svc *Service) RegisterReturn(ctx context.Context, bookID int, userID *int) (*models.Loan, error) {
	loan := &models.Loan{}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().
			Model(loan).
			Where("l.book_id = ?", bookID).
			Where("l.returned_at IS NULL")
		if userID != nil {
			q = q.Where("l.user_id = ?", *userID)
		}
		err := q.Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Active loan")
			}
			return errors.WithStack(err)
		}

		now := time.Now()
		loan.ReturnedAt = &now
		_, err = tx.NewUpdate().
			Model(loan).
			Column("returned_at").
			WherePK().
			Where("returned_at IS NULL").
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	if err := svc.loadRelations(ctx, loan); err != nil {
		return nil, err
	}

	svc.mailer.SendReturnNotification(ctx, loan.User, loan.Book)

	return loan, nil
}

// RequestReturn asks the current borrower of a book to bring it back.
func (svc *Service) RequestReturn(ctx context.Context, bookID int) (*models.Loan, error) {
	loan, err := svc.RetrieveActiveLoanByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	svc.mailer.SendReturnRequest(ctx, loan.User, loan.Book)

	return loan, nil
}

// RequestReturnByUser asks a member to bring back whatever they have out.
func (svc *Service) RequestReturnByUser(ctx context.Context, userID int) (*models.Loan, error) {
	loan := &models.Loan{}
	err := svc.db.NewSelect().
		Model(loan).
		Relation("User").
		Relation("Book").
		Where("l.user_id = ?", userID).
		Where("l.returned_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Active loan")
		}
		return nil, errors.WithStack(err)
	}

	svc.mailer.SendReturnRequest(ctx, loan.User, loan.Book)

	return loan, nil
}

// RetrieveActiveLoanByBook returns the active loan on a book with borrower
// and book loaded.
func (svc *Service) RetrieveActiveLoanByBook(ctx context.Context, bookID int) (*models.Loan, error) {
	loan := &models.Loan{}
	err := svc.db.NewSelect().
		Model(loan).
		Relation("User").
		Relation("Book").
		Where("l.book_id = ?", bookID).
		Where("l.returned_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Active loan")
		}
		return nil, errors.WithStack(err)
	}
	return loan, nil
}

// ListLoans lists loans newest first with borrower and book loaded.
func (svc *Service) ListLoans(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, int, error) {
	loans := []*models.Loan{}

	q := svc.db.NewSelect().
		Model(&loans).
		Relation("User").
		Relation("Book").
		Order("l.lent_at DESC").
		Limit(opts.Page.Limit()).
		Offset(opts.Page.Offset())

	if opts.UserID != nil {
		q = q.Where("l.user_id = ?", *opts.UserID)
	}

	switch opts.Status {
	case StatusActive:
		q = q.Where("l.returned_at IS NULL")
	case StatusReturned:
		q = q.Where("l.returned_at IS NOT NULL")
	}

	if keyword := strings.TrimSpace(opts.Keyword); keyword != "" {
		pattern := "%" + keyword + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("l.book_id IN (SELECT id FROM books WHERE title LIKE ?)", pattern).
				WhereOr("l.user_id IN (SELECT id FROM users WHERE name LIKE ? OR display_name LIKE ?)", pattern, pattern)
		})
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return loans, total, nil
}

func (svc *Service) loadRelations(ctx context.Context, loan *models.Loan) error {
	err := svc.db.NewSelect().
		Model(loan).
		Relation("User").
		Relation("Book").
		WherePK().
		Scan(ctx)
	return errors.WithStack(err)
}
