package repository

import (
	"context"
	"fmt"

	"snapgram/internal/models"
	"snapgram/internal/observability"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for the follow graph.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followedID uint) (*models.Follow, error)
	Unfollow(ctx context.Context, followerID, followedID uint) error
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	Counts(ctx context.Context, userID uint) (followers int64, following int64, err error)
}

type followRepository struct {
	db    *gorm.DB
	log   *observability.RepoLogger
	trace *observability.TraceLayer
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, log: observability.NewRepoLogger("follows"), trace: observability.GetTraceLayer()}
}

// Follow creates the edge followerID -> followedID.
// Following yourself returns models.ErrSelfFollow; following twice is a conflict.
func (r *followRepository) Follow(ctx context.Context, followerID, followedID uint) (*models.Follow, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Follow", "follows")
	defer span.End()
	follow := &models.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return nil, translateError(err, "follow")
	}
	r.log.LogCreate(ctx, map[string]any{"follower_id": followerID, "followed_id": followedID})
	return follow, nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followedID uint) error {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Unfollow", "follows")
	defer span.End()
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Follow", fmt.Sprintf("%d->%d", followerID, followedID))
	}
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "IsFollowing", "follows")
	defer span.End()
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Followers returns the users following userID, most recent first.
func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Followers", "follows")
	defer span.End()
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("follows.created_at DESC, users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Following returns the users userID follows, most recent first.
func (r *followRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Following", "follows")
	defer span.End()
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC, users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Counts", "follows")
	defer span.End()
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return followers, following, nil
}
