package repository

import (
	"errors"
	"fmt"
	"testing"

	"snapgram/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"pg unique", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"}, models.CodeConflict},
		{"wrapped pg unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), models.CodeConflict},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, models.CodeValidation},
		{"pg check", &pgconn.PgError{Code: "23514"}, models.CodeValidation},
		{"sqlite unique", errors.New("UNIQUE constraint failed: likes.user_id, likes.post_id"), models.CodeConflict},
		{"sqlite foreign key", errors.New("FOREIGN KEY constraint failed"), models.CodeValidation},
		{"sqlite check", errors.New("CHECK constraint failed: ck_follow_not_self"), models.CodeValidation},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, models.CodeConflict},
		{"gorm foreign key", gorm.ErrForeignKeyViolated, models.CodeValidation},
		{"other", errors.New("connection reset"), models.CodeInternal},
		{"app error passthrough", models.ErrSelfFollow, models.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err, "thing")
			assert.True(t, models.HasCode(got, tt.code), "got %v", got)
		})
	}

	assert.Nil(t, translateError(nil, "thing"))
	assert.Same(t, models.ErrSelfFollow, translateError(models.ErrSelfFollow, "follow"))
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, defaultLimit, normalizeLimit(0))
	assert.Equal(t, defaultLimit, normalizeLimit(-3))
	assert.Equal(t, 7, normalizeLimit(7))
	assert.Equal(t, maxLimit, normalizeLimit(5000))
}
