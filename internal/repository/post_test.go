package repository

import (
	"context"
	"regexp"
	"testing"

	"snapgram/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{UserID: 1, ImageURL: "https://img.example.com/1.jpg"}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), post)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_CreateRequiresAuthor(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)

	err := repo.Create(context.Background(), &models.Post{UserID: 999, ImageURL: "https://img.example.com/x.jpg"})
	assert.True(t, models.HasCode(err, models.CodeValidation), "got %v", err)
	assert.Equal(t, int64(0), countRows(t, db, &models.Post{}, ""))
}

func TestPostRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, nil)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	author := createUser(t, users, "author")
	reader := createUser(t, users, "reader")
	post := createPost(t, posts, author)

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, author.Username, got.Author.Username)
	assert.Nil(t, got.Caption)

	caption := "golden hour"
	require.NoError(t, posts.UpdateCaption(ctx, post.ID, &caption))
	assert.True(t, models.HasCode(posts.UpdateCaption(ctx, 9999, &caption), models.CodeNotFound))

	createComment(t, comments, post, reader)
	createComment(t, comments, post, author)
	_, err = likes.Like(ctx, reader.ID, post.ID)
	require.NoError(t, err)

	full, err := posts.GetWithRelations(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, full.Caption)
	assert.Equal(t, caption, *full.Caption)
	require.Len(t, full.Comments, 2)
	assert.Equal(t, reader.ID, full.Comments[0].UserID)
	require.NotNil(t, full.Comments[0].Author)
	assert.Equal(t, reader.Username, full.Comments[0].Author.Username)
	require.Len(t, full.Likes, 1)
	assert.Equal(t, reader.ID, full.Likes[0].UserID)

	_, err = posts.GetByID(ctx, 9999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostRepository_ListByUser(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db, nil)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, users, "prolific")
	other := createUser(t, users, "quiet")
	first := createPost(t, posts, author)
	second := createPost(t, posts, author)
	createPost(t, posts, other)

	list, err := posts.ListByUser(ctx, author.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, []uint{list[0].ID, list[1].ID})

	empty, err := posts.ListByUser(ctx, author.ID, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
