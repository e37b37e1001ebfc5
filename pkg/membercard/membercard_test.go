package membercard

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

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("encodes the id as a string with the real name", func(t *testing.T) {
		t.Parallel()

		data, err := Build(&models.User{ID: 42, Name: "Taro Yamada"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"userId":"42","name":"Taro Yamada"}`, data)
	})

	t.Run("prefers the display name", func(t *testing.T) {
		t.Parallel()

		displayName := "Bookworm"
		data, err := Build(&models.User{ID: 7, Name: "Formal", DisplayName: &displayName})
		require.NoError(t, err)
		assert.JSONEq(t, `{"userId":"7","name":"Bookworm"}`, data)
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{"full payload", `{"userId":"42","name":"Taro"}`, 42, false},
		{"payload with surrounding whitespace", "  {\"userId\":\"42\",\"name\":\"Taro\"}\n", 42, false},
		{"bare numeric id from a dumb scanner", "42", 42, false},
		{"empty payload", "", 0, true},
		{"non-numeric id", `{"userId":"forty-two","name":"Taro"}`, 0, true},
		{"zero id", `{"userId":"0","name":"Taro"}`, 0, true},
		{"negative bare id", "-3", 0, true},
		{"malformed json", `{"userId":`, 0, true},
		{"unrelated text", "hello world", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := Parse(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	_, err = migrations.BringUpToDate(ctx, db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	member := &models.User{Email: "member@example.com", Name: "Member", PasswordHash: "hash", Role: models.RoleUser}
	_, err = db.NewInsert().Model(member).Exec(ctx)
	require.NoError(t, err)

	revoked := &models.User{Email: "revoked@example.com", Name: "Revoked", PasswordHash: "hash", Role: models.RoleUser, Disabled: true}
	_, err = db.NewInsert().Model(revoked).Exec(ctx)
	require.NoError(t, err)

	t.Run("resolves a valid card", func(t *testing.T) {
		data, err := Build(member)
		require.NoError(t, err)

		resolved, err := Resolve(ctx, db, data)
		require.NoError(t, err)
		assert.Equal(t, member.ID, resolved.ID)
	})

	t.Run("a revoked member's card stops working", func(t *testing.T) {
		data, err := Build(revoked)
		require.NoError(t, err)

		_, err = Resolve(ctx, db, data)
		require.Error(t, err)

		codeErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codeErr)
		assert.Equal(t, "not_found", codeErr.Code)
	})

	t.Run("an unknown member is not found", func(t *testing.T) {
		_, err := Resolve(ctx, db, `{"userId":"9999","name":"Ghost"}`)
		require.Error(t, err)

		codeErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codeErr)
		assert.Equal(t, "not_found", codeErr.Code)
	})
}
