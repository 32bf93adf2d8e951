package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"snapgram/internal/cache"
	"snapgram/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	tests := []struct {
		name         string
		userID       uint
		mockBehavior func(mock sqlmock.Sqlmock)
		wantCode     string
		wantUsername string
	}{
		{
			name:   "Found",
			userID: 1,
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "is_active"}).
						AddRow(1, "ada", "ada@example.com", true))
			},
			wantUsername: "ada",
		},
		{
			name:   "Not Found",
			userID: 7,
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(7, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewUserRepository(db, nil)
			tt.mockBehavior(mock)

			user, err := repo.GetByID(context.Background(), tt.userID)
			if tt.wantCode != "" {
				assert.True(t, models.HasCode(err, tt.wantCode), "got %v", err)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantUsername, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Username: "ada", Email: "ada@example.com", Password: "x"})
	assert.True(t, models.HasCode(err, models.CodeConflict), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_SetsDefaults(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	user := createUser(t, repo, "ada")
	assert.NotZero(t, user.ID)

	got, err := repo.GetByUsername(ctx, user.Username)
	require.NoError(t, err)
	require.NotNil(t, got.IsActive)
	assert.True(t, *got.IsActive)
	assert.Nil(t, got.FullName)
	assert.True(t, got.CreatedAt.After(before))

	byEmail, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	serialized := got.Serialize()
	assert.Len(t, serialized, 6)
	for _, key := range []string{"id", "username", "email", "full_name", "is_active", "created_at"} {
		assert.Contains(t, serialized, key)
	}
}

func TestUserRepository_Create_KeepsExplicitInactive(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	user := &models.User{Username: "dormant", Email: "dormant@example.com", Password: "x", IsActive: models.Bool(false)}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.IsActive)
	assert.False(t, *got.IsActive)
	assert.Equal(t, false, got.Serialize()["is_active"])
	assert.Equal(t, int64(1), countRows(t, db, &models.User{}, "is_active = ?", false))
}

func TestUserRepository_GetByUsernameNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, nil)

	_, err := repo.GetByUsername(context.Background(), "nobody")
	require.True(t, models.HasCode(err, models.CodeNotFound), "got %v", err)
	assert.Equal(t, "User with username nobody not found", err.Error())

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	require.True(t, models.HasCode(err, models.CodeNotFound), "got %v", err)
	assert.Equal(t, "User with email nobody@example.com not found", err.Error())
}

func TestUserRepository_Uniqueness(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	existing := createUser(t, repo, "grace")

	t.Run("duplicate username", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{Username: existing.Username, Email: "other@example.com", Password: "x"})
		assert.True(t, models.HasCode(err, models.CodeConflict), "got %v", err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{Username: "someone_else", Email: existing.Email, Password: "x"})
		assert.True(t, models.HasCode(err, models.CodeConflict), "got %v", err)
	})

	assert.Equal(t, int64(1), countRows(t, db, &models.User{}, ""))
}

func TestUserRepository_SetActiveAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	user := createUser(t, repo, "linus")
	require.NoError(t, repo.SetActive(ctx, user.ID, false))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.Active())

	assert.True(t, models.HasCode(repo.SetActive(ctx, 9999, true), models.CodeNotFound))

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.True(t, models.HasCode(repo.Delete(ctx, user.ID), models.CodeNotFound))

	_, err = repo.GetByUsername(ctx, user.Username)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		createUser(t, repo, "lister")
	}

	page, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Greater(t, rest[0].ID, page[1].ID)
}

func TestUserRepository_GetByIDUsesCache(t *testing.T) {
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	client, err := cache.Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repo := NewUserRepository(db, cache.NewUserCache(client, time.Minute))
	ctx := context.Background()
	user := createUser(t, repo, "cached")

	first, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Password)
	assert.True(t, mr.Exists(cache.UserKey(user.ID)))

	second, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, second.Password, "cached copy carries no password hash")
	assert.Equal(t, first.Serialize(), second.Serialize())

	require.NoError(t, repo.SetActive(ctx, user.ID, false))
	assert.False(t, mr.Exists(cache.UserKey(user.ID)))

	require.NoError(t, repo.Delete(ctx, user.ID))
	_, err = repo.GetByID(ctx, user.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
