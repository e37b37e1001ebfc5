package inventory

import (
	"context"
	"database/sql"
	"time"

	"github.com/chiyopla/bookspace/pkg/books"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/chiyopla/bookspace/pkg/pagination"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// BookStatus pairs a book with its check state and current loan for the
// audit screens.
type BookStatus struct {
	Book      *models.Book `json:"book"`
	CheckedAt *time.Time   `json:"checked_at"`
	OnLoan    bool         `json:"on_loan"`
	Borrower  *models.User `json:"borrower,omitempty"`
}

type Service struct {
	db          *bun.DB
	bookService *books.Service
}

func NewService(db *bun.DB, bookService *books.Service) *Service {
	return &Service{db: db, bookService: bookService}
}

// CheckBookByISBN marks the book with the given ISBN as sighted during the
// current audit. Scanning the same book twice just refreshes the timestamp.
func (svc *Service) CheckBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	book, err := svc.bookService.RetrieveBookByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}

	check := &models.InventoryCheck{
		BookID:    book.ID,
		CheckedAt: time.Now(),
	}
	_, err = svc.db.NewInsert().
		Model(check).
		On("CONFLICT (book_id) DO UPDATE").
		Set("checked_at = EXCLUDED.checked_at").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// ClearChecks wipes every check and records the clear event, starting a
// fresh audit.
func (svc *Service) ClearChecks(ctx context.Context) (*models.InventoryClearEvent, error) {
	event := &models.InventoryClearEvent{ClearedAt: time.Now()}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.InventoryCheck)(nil)).
			Where("1 = 1").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewInsert().Model(event).Returning("*").Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// LastClearedAt returns when the current audit started, or nil when checks
// have never been cleared.
func (svc *Service) LastClearedAt(ctx context.Context) (*time.Time, error) {
	event := &models.InventoryClearEvent{}
	err := svc.db.NewSelect().
		Model(event).
		Order("ice.cleared_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	return &event.ClearedAt, nil
}

// ListUncheckedBooks returns books not yet sighted in the current audit.
func (svc *Service) ListUncheckedBooks(ctx context.Context, page pagination.Page) ([]*models.Book, int, error) {
	bookList := []*models.Book{}

	total, err := svc.db.NewSelect().
		Model(&bookList).
		Where("NOT EXISTS (SELECT 1 FROM inventory_checks ic WHERE ic.book_id = b.id)").
		Order("b.title ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return bookList, total, nil
}

// ListBookStatuses returns every book with its check timestamp and loan
// state, so an auditor can tell a missing book from one that's simply
// checked out.
func (svc *Service) ListBookStatuses(ctx context.Context, page pagination.Page) ([]*BookStatus, int, error) {
	bookList := []*models.Book{}

	total, err := svc.db.NewSelect().
		Model(&bookList).
		Order("b.title ASC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	statuses := make([]*BookStatus, 0, len(bookList))
	for _, book := range bookList {
		status := &BookStatus{Book: book}

		check := &models.InventoryCheck{}
		err := svc.db.NewSelect().
			Model(check).
			Where("ic.book_id = ?", book.ID).
			Scan(ctx)
		if err == nil {
			status.CheckedAt = &check.CheckedAt
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, 0, errors.WithStack(err)
		}

		loan := &models.Loan{}
		err = svc.db.NewSelect().
			Model(loan).
			Relation("User").
			Where("l.book_id = ?", book.ID).
			Where("l.returned_at IS NULL").
			Scan(ctx)
		if err == nil {
			status.OnLoan = true
			status.Borrower = loan.User
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, 0, errors.WithStack(err)
		}

		statuses = append(statuses, status)
	}

	return statuses, total, nil
}
