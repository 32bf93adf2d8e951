package repository

import (
	"context"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db    *gorm.DB
	log   *observability.RepoLogger
	trace *observability.TraceLayer
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments"), trace: observability.GetTraceLayer()}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Create", "comments")
	defer span.End()
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return translateError(err, "comment")
	}
	r.log.LogCreate(ctx, map[string]any{"comment_id": comment.ID, "post_id": comment.PostID})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "GetByID", "comments")
	defer span.End()
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

// ListByPost returns the comments of a post, oldest first, with their authors.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "ListByPost", "comments")
	defer span.End()
	var comments []*models.Comment
	err := r.db.WithContext(ctx).Preload("Author").Where("post_id = ?", postID).Order("created_at asc").Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "CountByPost", "comments")
	defer span.End()
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Delete", "comments")
	defer span.End()
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	r.log.LogDelete(ctx, map[string]any{"comment_id": id})
	return nil
}
