package query

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/File-Sharing-BondBridg/files-manager/internal/storage"
	"github.com/gabriel-vasile/mimetype"
)

// PageSize is the fixed number of records per listing page.
const PageSize = 20

type FileQueries struct {
	repo   storage.Repository
	blobs  services.BlobStore
	logger *slog.Logger
}

func NewFileQueries(repo storage.Repository, blobs services.BlobStore, logger *slog.Logger) *FileQueries {
	return &FileQueries{repo: repo, blobs: blobs, logger: logger}
}

func mapRepoError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return services.ErrNotFound
	}
	return &services.StorageError{Op: op, Err: err}
}

// GetByID returns a record owned by userID.
func (q *FileQueries) GetByID(ctx context.Context, userID, id string) (models.FileRecord, error) {
	rec, err := q.repo.FindFile(ctx, id, userID)
	if err != nil {
		return models.FileRecord{}, mapRepoError("find file", err)
	}
	return rec, nil
}

// List returns one page of the caller's records under parentID. Negative
// pages are treated as the first page; pages whose offset does not fit in an
// int are past the end.
func (q *FileQueries) List(ctx context.Context, userID string, parentID models.ParentID, page int) ([]models.FileRecord, error) {
	if page < 0 {
		page = 0
	}
	if page > math.MaxInt/PageSize {
		return []models.FileRecord{}, nil
	}
	files, err := q.repo.ListFiles(ctx, userID, parentID.Normalize(), page*PageSize, PageSize)
	if err != nil {
		return nil, &services.StorageError{Op: "list files", Err: err}
	}
	return files, nil
}

// FileContent is the raw body of a file plus its detected MIME type.
type FileContent struct {
	Data        []byte
	ContentType string
	Name        string
}

// Content reads the blob behind a record. Private records are only visible to
// their owner; userID is empty for anonymous callers. size selects a
// thumbnail and must be 0 or one of models.ThumbnailWidths.
func (q *FileQueries) Content(ctx context.Context, userID, id string, size int) (FileContent, error) {
	rec, err := q.repo.FindFileByID(ctx, id)
	if err != nil {
		return FileContent{}, mapRepoError("find file", err)
	}
	if !rec.IsPublic && (userID == "" || rec.UserID != userID) {
		return FileContent{}, services.ErrNotFound
	}
	if rec.IsFolder() {
		return FileContent{}, services.NewValidationError("A folder doesn't have content")
	}

	path := rec.LocalPath
	if size != 0 {
		if !validWidth(size) {
			return FileContent{}, services.NewValidationError("Invalid size")
		}
		path = models.ThumbnailPath(path, size)
	}

	data, err := q.blobs.Read(ctx, path)
	if errors.Is(err, services.ErrBlobNotFound) {
		return FileContent{}, services.ErrNotFound
	}
	if err != nil {
		return FileContent{}, &services.StorageError{Op: "read blob", Err: err}
	}

	return FileContent{
		Data:        data,
		ContentType: mimetype.Detect(data).String(),
		Name:        rec.Name,
	}, nil
}

func validWidth(size int) bool {
	for _, w := range models.ThumbnailWidths {
		if w == size {
			return true
		}
	}
	return false
}

// Stats counts every user and every file record.
func (q *FileQueries) Stats(ctx context.Context) (models.Stats, error) {
	users, err := q.repo.CountUsers(ctx)
	if err != nil {
		return models.Stats{}, &services.StorageError{Op: "count users", Err: err}
	}
	files, err := q.repo.CountFiles(ctx)
	if err != nil {
		return models.Stats{}, &services.StorageError{Op: "count files", Err: err}
	}
	return models.Stats{Users: users, Files: files}, nil
}

// Me returns the account of the authenticated caller.
func (q *FileQueries) Me(ctx context.Context, userID string) (models.User, error) {
	user, err := q.repo.FindUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, services.ErrUnauthorized
	}
	if err != nil {
		return models.User{}, &services.StorageError{Op: "find user", Err: err}
	}
	return user, nil
}

// MetadataAlive reports whether the metadata store answers.
func (q *FileQueries) MetadataAlive(ctx context.Context) bool {
	if err := q.repo.Ping(ctx); err != nil {
		q.logger.Warn("[DB] ping failed", "error", err)
		return false
	}
	return true
}
