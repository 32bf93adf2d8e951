// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"snapgram/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes for integrity violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// translateError maps driver errors to AppErrors. AppErrors pass through unchanged.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case isUniqueConstraintError(err):
		return models.NewConflictError(resource+" already exists", err)
	case isForeignKeyError(err):
		return &models.AppError{Code: models.CodeValidation, Message: resource + " references a missing row", Err: err}
	case isCheckConstraintError(err):
		return &models.AppError{Code: models.CodeValidation, Message: resource + " violates a check constraint", Err: err}
	default:
		return models.NewInternalError(err)
	}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueConstraintError checks if a DB error is a unique or primary key violation.
func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == pgUniqueViolation {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, pgUniqueViolation)
}

func isForeignKeyError(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) || pgCode(err) == pgForeignKeyViolation {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint") || strings.Contains(msg, pgForeignKeyViolation)
}

func isCheckConstraintError(err error) bool {
	if pgCode(err) == pgCheckViolation {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "check constraint")
}
