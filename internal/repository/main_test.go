package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"snapgram/internal/config"
	"snapgram/internal/database"
	"snapgram/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB returns a postgres-dialect GORM handle backed by sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newTestDB returns a fresh in-memory SQLite database with the schema applied
// and foreign keys enforced.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(&config.Config{
		Env:          "test",
		DBDriver:     config.DriverSQLite,
		DBSQLitePath: ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

var userSeq atomic.Int64

func createUser(t *testing.T, repo UserRepository, name string) *models.User {
	t.Helper()
	n := userSeq.Add(1)
	user := &models.User{
		Username: fmt.Sprintf("%s_%d", name, n),
		Email:    fmt.Sprintf("%s_%d@example.com", name, n),
		Password: "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z6K8xG9zKyfT8yXQX0u8p0yG",
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func createPost(t *testing.T, repo PostRepository, author *models.User) *models.Post {
	t.Helper()
	post := &models.Post{UserID: author.ID, ImageURL: fmt.Sprintf("https://img.example.com/%d.jpg", userSeq.Add(1))}
	require.NoError(t, repo.Create(context.Background(), post))
	return post
}

func createComment(t *testing.T, repo CommentRepository, post *models.Post, author *models.User) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: post.ID, UserID: author.ID, Content: "nice shot"}
	require.NoError(t, repo.Create(context.Background(), comment))
	return comment
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
