package repository

import (
	"context"
	"errors"

	"snapgram/internal/cache"
	"snapgram/internal/models"
	"snapgram/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetWithRelations(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.UserCache
	log   *observability.RepoLogger
	trace *observability.TraceLayer
}

// NewUserRepository returns a UserRepository. userCache may be nil.
func NewUserRepository(db *gorm.DB, userCache *cache.UserCache) UserRepository {
	return &userRepository{db: db, cache: userCache, log: observability.NewRepoLogger("users"), trace: observability.GetTraceLayer()}
}

// Create inserts user. A nil IsActive takes the column default (true).
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Create", "users")
	defer span.End()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return translateError(err, "user")
	}
	r.log.LogCreate(ctx, map[string]any{"user_id": user.ID})
	return nil
}

// GetByID returns the user without relations. Results may come from the cache,
// in which case Password is empty.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "GetByID", "users")
	defer span.End()
	var user models.User
	err := r.cache.Aside(ctx, id, &user, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "GetByUsername", "users")
	defer span.End()
	return r.getBy(ctx, "username", username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "GetByEmail", "users")
	defer span.End()
	return r.getBy(ctx, "email", email)
}

func (r *userRepository) getBy(ctx context.Context, column string, value string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundByError("User", column, value)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetWithRelations loads the user with posts, followers and following edges.
func (r *userRepository) GetWithRelations(ctx context.Context, id uint) (*models.User, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "GetWithRelations", "users")
	defer span.End()
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Followers").
		Preload("Following").
		First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "List", "users")
	defer span.End()
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Limit(normalizeLimit(limit)).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) SetActive(ctx context.Context, id uint, active bool) error {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "SetActive", "users")
	defer span.End()
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.cache.Invalidate(ctx, id)
	return nil
}

// Delete removes the user; the database cascades to posts, comments, likes and follows.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Delete", "users")
	defer span.End()
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "delete")
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.cache.Invalidate(ctx, id)
	r.log.LogDelete(ctx, map[string]any{"user_id": id})
	return nil
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
