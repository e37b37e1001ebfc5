package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/migrations"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupAuthDB(t *testing.T) *bun.DB {
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

func createAuthUser(ctx context.Context, t *testing.T, db *bun.DB, email, password string, disabled bool) *models.User {
	t.Helper()

	hash, err := HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Role:         models.RoleUser,
		Disabled:     disabled,
	}
	_, err = db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	return user
}

func TestServiceAuthenticate(t *testing.T) {
	t.Parallel()

	db := setupAuthDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	createAuthUser(ctx, t, db, "alice@example.com", "correct horse", false)
	createAuthUser(ctx, t, db, "mallory@example.com", "anything", true)

	t.Run("returns the user on valid credentials", func(t *testing.T) {
		t.Parallel()

		user, err := svc.Authenticate(ctx, "alice@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("matches email case-insensitively", func(t *testing.T) {
		t.Parallel()

		user, err := svc.Authenticate(ctx, "ALICE@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	// Wrong password, unknown email, and a disabled account must be
	// indistinguishable so that accounts can't be enumerated.
	for name, creds := range map[string][2]string{
		"wrong password": {"alice@example.com", "wrong"},
		"unknown email":  {"nobody@example.com", "correct horse"},
		"disabled user":  {"mallory@example.com", "anything"},
	} {
		creds := creds
		t.Run("rejects "+name+" with the generic message", func(t *testing.T) {
			t.Parallel()

			_, err := svc.Authenticate(ctx, creds[0], creds[1])
			require.Error(t, err)
			codeErr := &errcodes.Error{}
			require.ErrorAs(t, err, &codeErr)
			assert.Equal(t, "unauthorized", codeErr.Code)
			assert.Equal(t, "Invalid email or password", codeErr.Message)
		})
	}
}

func TestServiceTokenRoundTrip(t *testing.T) {
	t.Parallel()

	db := setupAuthDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	user := createAuthUser(ctx, t, db, "bob@example.com", "password123", false)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestServiceValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	db := setupAuthDB(t)
	ctx := context.Background()

	user := createAuthUser(ctx, t, db, "carol@example.com", "password123", false)

	token, err := NewService(db, "secret-one").GenerateToken(user)
	require.NoError(t, err)

	_, err = NewService(db, "secret-two").ValidateToken(token)
	assert.Error(t, err)
}

func TestServiceCreateFirstAdmin(t *testing.T) {
	t.Parallel()

	db := setupAuthDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	admin, err := svc.CreateFirstAdmin(ctx, "admin@example.com", "Admin", "password123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, CheckPassword("password123", admin.PasswordHash))

	_, err = svc.CreateFirstAdmin(ctx, "second@example.com", "Second", "password123")
	require.Error(t, err)
	codeErr := &errcodes.Error{}
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "forbidden", codeErr.Code)
}
