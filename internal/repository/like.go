package repository

import (
	"context"
	"fmt"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	Like(ctx context.Context, userID, postID uint) (*models.Like, error)
	Unlike(ctx context.Context, userID, postID uint) error
	HasLiked(ctx context.Context, userID, postID uint) (bool, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Like, error)
}

type likeRepository struct {
	db    *gorm.DB
	log   *observability.RepoLogger
	trace *observability.TraceLayer
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db, log: observability.NewRepoLogger("likes"), trace: observability.GetTraceLayer()}
}

// Like records that userID likes postID. Liking the same post twice is a conflict.
func (r *likeRepository) Like(ctx context.Context, userID, postID uint) (*models.Like, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Like", "likes")
	defer span.End()
	like := &models.Like{UserID: userID, PostID: postID}
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return nil, translateError(err, "like")
	}
	r.log.LogCreate(ctx, map[string]any{"user_id": userID, "post_id": postID})
	return like, nil
}

func (r *likeRepository) Unlike(ctx context.Context, userID, postID uint) error {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Unlike", "likes")
	defer span.End()
	result := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Like", fmt.Sprintf("%d/%d", userID, postID))
	}
	return nil
}

func (r *likeRepository) HasLiked(ctx context.Context, userID, postID uint) (bool, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "HasLiked", "likes")
	defer span.End()
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *likeRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "CountByPost", "likes")
	defer span.End()
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *likeRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Like, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "ListByUser", "likes")
	defer span.End()
	var likes []*models.Like
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&likes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}
