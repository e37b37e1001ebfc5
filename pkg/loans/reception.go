package loans

import (
	"context"

	"github.com/chiyopla/bookspace/pkg/books"
	"github.com/chiyopla/bookspace/pkg/membercard"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/uptrace/bun"
)

// Reception is the front-desk flow: a staff member scans a book's ISBN and a
// member's card, and the pair resolves to a loan or a return.
type Reception struct {
	db          *bun.DB
	loanService *Service
	bookService *books.Service
}

func NewReception(db *bun.DB, loanService *Service, bookService *books.Service) *Reception {
	return &Reception{db: db, loanService: loanService, bookService: bookService}
}

func (r *Reception) resolve(ctx context.Context, isbn, qrData string) (*models.Book, *models.User, error) {
	book, err := r.bookService.RetrieveBookByISBN(ctx, isbn)
	if err != nil {
		return nil, nil, err
	}

	user, err := membercard.Resolve(ctx, r.db, qrData)
	if err != nil {
		return nil, nil, err
	}

	return book, user, nil
}

// RegisterLoanByScan checks a scanned book out to a scanned member.
func (r *Reception) RegisterLoanByScan(ctx context.Context, isbn, qrData string) (*models.Loan, error) {
	book, user, err := r.resolve(ctx, isbn, qrData)
	if err != nil {
		return nil, err
	}
	return r.loanService.RegisterLoan(ctx, user.ID, book.ID)
}

// RegisterReturnByScan records the return of a scanned book by a scanned
// member. The loan must belong to that exact member.
func (r *Reception) RegisterReturnByScan(ctx context.Context, isbn, qrData string) (*models.Loan, error) {
	book, user, err := r.resolve(ctx, isbn, qrData)
	if err != nil {
		return nil, err
	}
	return r.loanService.RegisterReturn(ctx, book.ID, &user.ID)
}
