package loans

import (
	"context"
	"testing"

	"github.com/chiyopla/bookspace/pkg/books"
	"github.com/chiyopla/bookspace/pkg/covers"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/membercard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReception(t *testing.T) {
	t.Parallel()

	loanService, db, _ := setupLoanService(t)

	store, err := covers.NewStore(t.TempDir())
	require.NoError(t, err)
	bookService := books.NewService(db, store, covers.NewSigner("test-secret"))
	reception := NewReception(db, loanService, bookService)

	ctx := context.Background()
	member := createLoanUser(ctx, t, db, "scan@example.com")
	book := createLoanBook(ctx, t, db, "Scanned Book", "9781492057611")

	card, err := membercard.Build(member)
	require.NoError(t, err)

	t.Run("lends by scanned isbn and card", func(t *testing.T) {
		loan, err := reception.RegisterLoanByScan(ctx, "978-1-4920-5761-1", card)
		require.NoError(t, err)

		assert.Equal(t, member.ID, loan.UserID)
		assert.Equal(t, book.ID, loan.BookID)
		assert.Nil(t, loan.ReturnedAt)
	})

	t.Run("another member cannot return it", func(t *testing.T) {
		other := createLoanUser(ctx, t, db, "other@example.com")
		otherCard, err := membercard.Build(other)
		require.NoError(t, err)

		_, err = reception.RegisterReturnByScan(ctx, book.ISBN, otherCard)
		require.Error(t, err)

		codeErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codeErr)
		assert.Equal(t, "not_found", codeErr.Code)
	})

	t.Run("the borrower returns it", func(t *testing.T) {
		loan, err := reception.RegisterReturnByScan(ctx, book.ISBN, card)
		require.NoError(t, err)
		assert.NotNil(t, loan.ReturnedAt)
	})

	t.Run("an unknown isbn is not found", func(t *testing.T) {
		_, err := reception.RegisterLoanByScan(ctx, "9780000000000", card)
		require.Error(t, err)

		codeErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codeErr)
		assert.Equal(t, "not_found", codeErr.Code)
	})

	t.Run("a garbage card is a validation error", func(t *testing.T) {
		_, err := reception.RegisterLoanByScan(ctx, book.ISBN, "not a card")
		require.Error(t, err)

		codeErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codeErr)
		assert.Equal(t, "validation_error", codeErr.Code)
	})
}
