package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/File-Sharing-BondBridg/files-manager/internal/storage"
)

// FileFinder is the owner-scoped lookup the worker needs.
type FileFinder interface {
	FindFile(ctx context.Context, id, userID string) (models.FileRecord, error)
}

// ResizeFunc turns an encoded image into an encoded thumbnail of width.
type ResizeFunc func(data []byte, width int) ([]byte, error)

// Result describes what a processed job did.
type Result struct {
	Skipped bool
	Written []int
	Failed  []int
}

type Processor struct {
	files  FileFinder
	blobs  services.BlobStore
	resize ResizeFunc
	widths []int
	logger *slog.Logger
}

func NewProcessor(files FileFinder, blobs services.BlobStore, resize ResizeFunc, logger *slog.Logger) *Processor {
	return &Processor{
		files:  files,
		blobs:  blobs,
		resize: resize,
		widths: models.ThumbnailWidths,
		logger: logger,
	}
}

// Process validates the job and writes one thumbnail per width. A failing
// width is logged and skipped; only an invalid job is reported as an error.
func (p *Processor) Process(ctx context.Context, job models.ThumbnailJob) (Result, error) {
	if job.FileID == "" {
		return Result{}, &services.JobError{Reason: "Missing fileId", Fatal: true}
	}
	if job.UserID == "" {
		return Result{}, &services.JobError{Reason: "Missing userId", Fatal: true}
	}

	rec, err := p.files.FindFile(ctx, job.FileID, job.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return Result{}, &services.JobError{Reason: "File not found", Err: err}
	}
	if err != nil {
		return Result{}, &services.JobError{Reason: "file lookup failed", Err: err}
	}

	if rec.Type != models.TypeImage {
		p.logger.Info("[WORKER] skipping non-image file", "file_id", rec.ID, "type", rec.Type)
		return Result{Skipped: true}, nil
	}

	var res Result
	for _, width := range p.widths {
		if err := p.generate(ctx, rec.LocalPath, width); err != nil {
			p.logger.Warn("[WORKER] thumbnail failed", "file_id", rec.ID, "width", width, "error", err)
			services.RecordThumbnail(width, false)
			res.Failed = append(res.Failed, width)
			continue
		}
		services.RecordThumbnail(width, true)
		res.Written = append(res.Written, width)
	}

	p.logger.Info("[WORKER] thumbnails processed", "file_id", rec.ID, "written", res.Written, "failed", res.Failed)
	return res, nil
}

// generate reads the original every time so one width cannot affect another.
func (p *Processor) generate(ctx context.Context, localPath string, width int) error {
	data, err := p.blobs.Read(ctx, localPath)
	if err != nil {
		return err
	}
	thumb, err := p.resize(data, width)
	if err != nil {
		return err
	}
	return p.blobs.Write(ctx, models.ThumbnailPath(localPath, width), thumb)
}

// Handle adapts Process to the queue's handler signature.
func (p *Processor) Handle(ctx context.Context, job models.ThumbnailJob) error {
	_, err := p.Process(ctx, job)
	return err
}
