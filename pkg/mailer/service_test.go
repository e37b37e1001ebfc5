package mailer

import (
	"context"
	"database/sql"
	"testing"

	"github.com/chiyopla/bookspace/pkg/migrations"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupMailerDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createMailerUser(ctx context.Context, t *testing.T, db *bun.DB) *models.User {
	t.Helper()

	user := &models.User{
		Email:        "reader@example.com",
		Name:         "Reader",
		PasswordHash: "hash",
		Role:         models.RoleUser,
	}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)
	return user
}

func TestServiceSendLogsDelivery(t *testing.T) {
	t.Parallel()

	db := setupMailerDB(t)
	recorder := &Recorder{}
	svc := NewService(db, recorder, "https://books.example.com")
	ctx := context.Background()

	user := createMailerUser(ctx, t, db)
	book := &models.Book{ID: 1, Title: "The Go Programming Language", Author: "Donovan"}

	svc.SendLoanNotification(ctx, user, book)

	messages := recorder.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "reader@example.com", messages[0].To)
	assert.Contains(t, messages[0].Subject, "The Go Programming Language")
	assert.Contains(t, messages[0].Text, "Reader")

	logs := []*models.EmailLog{}
	err := db.NewSelect().Model(&logs).Scan(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.EmailKindLoan, logs[0].Kind)
	assert.Equal(t, "reader@example.com", logs[0].RecipientEmail)
	require.NotNil(t, logs[0].RecipientUserID)
	assert.Equal(t, user.ID, *logs[0].RecipientUserID)
}

func TestServiceSendUsesDisplayName(t *testing.T) {
	t.Parallel()

	db := setupMailerDB(t)
	recorder := &Recorder{}
	svc := NewService(db, recorder, "https://books.example.com")
	ctx := context.Background()

	displayName := "Bookworm"
	user := &models.User{
		Email:        "worm@example.com",
		Name:         "Formal Name",
		DisplayName:  &displayName,
		PasswordHash: "hash",
		Role:         models.RoleUser,
	}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	svc.SendReturnRequest(ctx, user, &models.Book{Title: "Clean Code"})

	messages := recorder.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Text, "Bookworm")
	assert.NotContains(t, messages[0].Text, "Formal Name")
}

func TestServicePasswordResetIncludesTokenLink(t *testing.T) {
	t.Parallel()

	db := setupMailerDB(t)
	recorder := &Recorder{}
	svc := NewService(db, recorder, "https://books.example.com")
	ctx := context.Background()

	user := createMailerUser(ctx, t, db)

	err := svc.SendPasswordReset(ctx, user, "raw-token")
	require.NoError(t, err)

	messages := recorder.Messages()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Text, "https://books.example.com/reset-password?token=raw-token")

	logs := []*models.EmailLog{}
	err = db.NewSelect().Model(&logs).Scan(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.EmailKindPasswordReset, logs[0].Kind)
}

func TestServiceEmailVerificationHasNoUserID(t *testing.T) {
	t.Parallel()

	db := setupMailerDB(t)
	recorder := &Recorder{}
	svc := NewService(db, recorder, "https://books.example.com")
	ctx := context.Background()

	err := svc.SendEmailVerification(ctx, "new@example.com", "Newcomer", "raw-token")
	require.NoError(t, err)

	logs := []*models.EmailLog{}
	err = db.NewSelect().Model(&logs).Scan(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.EmailKindEmailVerification, logs[0].Kind)
	assert.Nil(t, logs[0].RecipientUserID)
	assert.Equal(t, "new@example.com", logs[0].RecipientEmail)
}

func TestNoopSinkStillLogs(t *testing.T) {
	t.Parallel()

	db := setupMailerDB(t)
	svc := NewService(db, NoopSink{}, "https://books.example.com")
	ctx := context.Background()

	user := createMailerUser(ctx, t, db)
	svc.SendReturnNotification(ctx, user, &models.Book{Title: "Clean Code"})

	count, err := db.NewSelect().Model((*models.EmailLog)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
