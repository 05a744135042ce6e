package repository

import (
	"insta_saver_bot/internal/pkg/users/domain"
)

type Storage interface {
	RecordUser(rec domain.UserRecord) error
	ListUsers() ([]domain.UserRecord, error)

	// GetAdmin returns 0 when no admin has been designated yet.
	GetAdmin() (int64, error)
	// SetAdmin keeps the first designated admin; later calls are no-ops.
	SetAdmin(userID int64) error
}
