package inventory

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/chiyopla/bookspace/pkg/books"
	"github.com/chiyopla/bookspace/pkg/covers"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/migrations"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/chiyopla/bookspace/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupInventoryService(t *testing.T) (*Service, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	store, err := covers.NewStore(t.TempDir())
	require.NoError(t, err)
	bookService := books.NewService(db, store, covers.NewSigner("test-secret"))

	return NewService(db, bookService), db
}

func createInventoryBook(ctx context.Context, t *testing.T, db *bun.DB, title, isbn string) *models.Book {
	t.Helper()

	book := &models.Book{Title: title, Author: "Author", Publisher: "Publisher", ISBN: isbn}
	_, err := db.NewInsert().Model(book).Exec(ctx)
	require.NoError(t, err)
	return book
}

func TestServiceCheckBookByISBN(t *testing.T) {
	t.Parallel()

	svc, db := setupInventoryService(t)
	ctx := context.Background()

	book := createInventoryBook(ctx, t, db, "Counted", "9780134190440")

	t.Run("records a check via the isbn fallback chain", func(t *testing.T) {
		checked, err := svc.CheckBookByISBN(ctx, "978-0-13-419044-0")
		require.NoError(t, err)
		assert.Equal(t, book.ID, checked.ID)

		count, err := db.NewSelect().Model((*models.InventoryCheck)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("scanning twice refreshes rather than duplicates", func(t *testing.T) {
		first := &models.InventoryCheck{}
		err := db.NewSelect().Model(first).Where("book_id = ?", book.ID).Scan(ctx)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)
		_, err = svc.CheckBookByISBN(ctx, "9780134190440")
		require.NoError(t, err)

		count, err := db.NewSelect().Model((*models.InventoryCheck)(nil)).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		second := &models.InventoryCheck{}
		err = db.NewSelect().Model(second).Where("book_id = ?", book.ID).Scan(ctx)
		require.NoError(t, err)
		assert.True(t, second.CheckedAt.After(first.CheckedAt))
	})

	t.Run("unknown isbn is not found", func(t *testing.T) {
		_, err := svc.CheckBookByISBN(ctx, "9999999999999")
		require.Error(t, err)

		codeErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codeErr)
		assert.Equal(t, "not_found", codeErr.Code)
	})
}

func TestServiceClearChecks(t *testing.T) {
	t.Parallel()

	svc, db := setupInventoryService(t)
	ctx := context.Background()

	createInventoryBook(ctx, t, db, "First", "9780000000101")
	createInventoryBook(ctx, t, db, "Second", "9780000000118")

	_, err := svc.CheckBookByISBN(ctx, "9780000000101")
	require.NoError(t, err)
	_, err = svc.CheckBookByISBN(ctx, "9780000000118")
	require.NoError(t, err)

	lastCleared, err := svc.LastClearedAt(ctx)
	require.NoError(t, err)
	assert.Nil(t, lastCleared)

	event, err := svc.ClearChecks(ctx)
	require.NoError(t, err)
	assert.False(t, event.ClearedAt.IsZero())

	count, err := db.NewSelect().Model((*models.InventoryCheck)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	lastCleared, err = svc.LastClearedAt(ctx)
	require.NoError(t, err)
	require.NotNil(t, lastCleared)

	// After clearing, every book is unchecked again.
	unchecked, total, err := svc.ListUncheckedBooks(ctx, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, unchecked, 2)
}

func TestServiceListUncheckedBooks(t *testing.T) {
	t.Parallel()

	svc, db := setupInventoryService(t)
	ctx := context.Background()

	createInventoryBook(ctx, t, db, "Seen", "9780000000125")
	missing := createInventoryBook(ctx, t, db, "Missing", "9780000000132")

	_, err := svc.CheckBookByISBN(ctx, "9780000000125")
	require.NoError(t, err)

	unchecked, total, err := svc.ListUncheckedBooks(ctx, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, unchecked, 1)
	assert.Equal(t, missing.ID, unchecked[0].ID)
}

func TestServiceListBookStatuses(t *testing.T) {
	t.Parallel()

	svc, db := setupInventoryService(t)
	ctx := context.Background()

	checked := createInventoryBook(ctx, t, db, "A Checked", "9780000000149")
	onLoan := createInventoryBook(ctx, t, db, "B On Loan", "9780000000156")
	createInventoryBook(ctx, t, db, "C Untouched", "9780000000163")

	user := &models.User{Email: "reader@example.com", Name: "Reader", PasswordHash: "hash", Role: models.RoleUser}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&models.Loan{UserID: user.ID, BookID: onLoan.ID, LentAt: time.Now()}).Exec(ctx)
	require.NoError(t, err)

	_, err = svc.CheckBookByISBN(ctx, "9780000000149")
	require.NoError(t, err)

	statuses, total, err := svc.ListBookStatuses(ctx, pagination.New(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, statuses, 3)

	// Ordered by title.
	assert.Equal(t, checked.ID, statuses[0].Book.ID)
	assert.NotNil(t, statuses[0].CheckedAt)
	assert.False(t, statuses[0].OnLoan)

	assert.Equal(t, onLoan.ID, statuses[1].Book.ID)
	assert.Nil(t, statuses[1].CheckedAt)
	assert.True(t, statuses[1].OnLoan)
	require.NotNil(t, statuses[1].Borrower)
	assert.Equal(t, "reader@example.com", statuses[1].Borrower.Email)

	assert.Nil(t, statuses[2].CheckedAt)
	assert.False(t, statuses[2].OnLoan)
	assert.Nil(t, statuses[2].Borrower)
}
