package storage

import (
	"context"
	"errors"

	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
)

// ErrNotFound is returned when no record matches the lookup, including
// lookups with ids the backend cannot parse.
var ErrNotFound = errors.New("record not found")

// Repository defines the contract for all metadata storage implementations.
// Every file lookup except FindFileByID is scoped by owner.
type Repository interface {
	InsertFile(ctx context.Context, record *models.FileRecord) error
	FindFile(ctx context.Context, id, userID string) (models.FileRecord, error)
	FindFileByID(ctx context.Context, id string) (models.FileRecord, error)
	ListFiles(ctx context.Context, userID string, parentID models.ParentID, skip, limit int) ([]models.FileRecord, error)
	UpdateFilePublic(ctx context.Context, id, userID string, isPublic bool) error

	FindUser(ctx context.Context, id string) (models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
