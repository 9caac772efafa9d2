package command

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"

	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/File-Sharing-BondBridg/files-manager/internal/storage"
)

// JobQueue accepts thumbnail jobs for asynchronous processing.
type JobQueue interface {
	Enqueue(ctx context.Context, job models.ThumbnailJob) error
}

// FileCommands holds every write operation on file records.
type FileCommands struct {
	repo    storage.Repository
	blobs   services.BlobStore
	queue   JobQueue
	scanner services.Scanner
	logger  *slog.Logger
}

// NewFileCommands wires the write side. scanner may be nil.
func NewFileCommands(repo storage.Repository, blobs services.BlobStore, queue JobQueue, scanner services.Scanner, logger *slog.Logger) *FileCommands {
	return &FileCommands{
		repo:    repo,
		blobs:   blobs,
		queue:   queue,
		scanner: scanner,
		logger:  logger,
	}
}

type UploadInput struct {
	Name     string
	Type     string
	ParentID models.ParentID
	IsPublic bool
	// Data is the base64 payload. Required unless Type is folder.
	Data string
}

// Upload validates the input, stores the blob, then stores the metadata.
// Image uploads also queue a thumbnail job.
func (c *FileCommands) Upload(ctx context.Context, userID string, in UploadInput) (models.FileRecord, error) {
	if in.Name == "" {
		return models.FileRecord{}, services.NewValidationError("Missing name")
	}
	fileType := models.FileType(in.Type)
	if !fileType.Valid() {
		return models.FileRecord{}, services.NewValidationError("Missing type")
	}
	if fileType != models.TypeFolder && in.Data == "" {
		return models.FileRecord{}, services.NewValidationError("Missing data")
	}

	parentID := in.ParentID.Normalize()
	if !parentID.IsRoot() {
		parent, err := c.repo.FindFile(ctx, string(parentID), userID)
		if errors.Is(err, storage.ErrNotFound) {
			return models.FileRecord{}, services.NewValidationError("Parent not found")
		}
		if err != nil {
			return models.FileRecord{}, &services.StorageError{Op: "find parent", Err: err}
		}
		if !parent.IsFolder() {
			return models.FileRecord{}, services.NewValidationError("Parent is not a folder")
		}
	}

	record := models.FileRecord{
		UserID:   userID,
		Name:     in.Name,
		Type:     fileType,
		IsPublic: in.IsPublic,
		ParentID: parentID,
	}

	if fileType != models.TypeFolder {
		data, err := decodeData(in.Data)
		if err != nil {
			return models.FileRecord{}, services.NewValidationError("Invalid data")
		}
		if c.scanner != nil {
			if err := c.scanner.Scan(ctx, data); err != nil {
				var verr *services.ValidationError
				if errors.As(err, &verr) {
					c.logger.Warn("[UPLOAD] rejected infected data", "user_id", userID, "name", in.Name)
					return models.FileRecord{}, err
				}
				return models.FileRecord{}, &services.StorageError{Op: "scan data", Err: err}
			}
		}

		// The blob goes first so no record ever points at a missing blob.
		path, err := c.blobs.Save(ctx, data)
		if err != nil {
			return models.FileRecord{}, &services.StorageError{Op: "save blob", Err: err}
		}
		record.LocalPath = path
	}

	if err := c.repo.InsertFile(ctx, &record); err != nil {
		if record.LocalPath != "" {
			c.logger.Error("[UPLOAD] metadata insert failed, blob orphaned", "path", record.LocalPath, "error", err)
		}
		return models.FileRecord{}, &services.StorageError{Op: "insert file", Err: err}
	}
	services.RecordUpload(string(fileType))
	c.logger.Info("[UPLOAD] file stored", "file_id", record.ID, "user_id", userID, "type", fileType)

	if fileType == models.TypeImage {
		job := models.ThumbnailJob{FileID: record.ID, UserID: userID}
		if err := c.queue.Enqueue(ctx, job); err != nil {
			c.logger.Warn("[UPLOAD] failed to enqueue thumbnail job", "file_id", record.ID, "error", err)
		}
	}

	return record, nil
}

// decodeData accepts standard and URL-safe base64, padded or not.
func decodeData(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		decoded, err := enc.DecodeString(data)
		if err == nil {
			return decoded, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// SetPublic updates the visibility of a record owned by userID.
func (c *FileCommands) SetPublic(ctx context.Context, userID, id string, isPublic bool) (models.FileRecord, error) {
	record, err := c.repo.FindFile(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.FileRecord{}, services.ErrNotFound
	}
	if err != nil {
		return models.FileRecord{}, &services.StorageError{Op: "find file", Err: err}
	}

	if err := c.repo.UpdateFilePublic(ctx, id, userID, isPublic); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.FileRecord{}, services.ErrNotFound
		}
		return models.FileRecord{}, &services.StorageError{Op: "update file", Err: err}
	}

	record.IsPublic = isPublic
	return record, nil
}
