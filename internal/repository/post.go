package repository

import (
	"context"
	"errors"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetWithRelations(ctx context.Context, id uint) (*models.Post, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	UpdateCaption(ctx context.Context, id uint, caption *string) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db    *gorm.DB
	log   *observability.RepoLogger
	trace *observability.TraceLayer
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts"), trace: observability.GetTraceLayer()}
}

// Create inserts post. A missing author surfaces as a validation error.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Create", "posts")
	defer span.End()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return translateError(err, "post")
	}
	r.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "user_id": post.UserID})
	return nil
}

// GetByID returns the post with its author.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "GetByID", "posts")
	defer span.End()
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

// GetWithRelations returns the post with author, comments (oldest first) and likes.
func (r *postRepository) GetWithRelations(ctx context.Context, id uint) (*models.Post, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "GetWithRelations", "posts")
	defer span.End()
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Comments.Author").
		Preload("Likes").
		First(&post, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "ListByUser", "posts")
	defer span.End()
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(normalizeLimit(limit)).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) UpdateCaption(ctx context.Context, id uint, caption *string) error {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "UpdateCaption", "posts")
	defer span.End()
	result := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("caption", caption)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// Delete removes the post; the database cascades to its comments and likes.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Delete", "posts")
	defer span.End()
	result := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	r.log.LogDelete(ctx, map[string]any{"post_id": id})
	return nil
}

func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}
