package worker

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/File-Sharing-BondBridg/files-manager/internal/logger"
	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/File-Sharing-BondBridg/files-manager/internal/storage"
	"github.com/File-Sharing-BondBridg/files-manager/uploads/previews"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo  *storage.LocalStorage
	blobs *services.LocalBlobStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo, err := storage.NewLocalStorage("")
	require.NoError(t, err)
	blobs, err := services.NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)
	return fixture{repo: repo, blobs: blobs}
}

func (f fixture) insert(t *testing.T, rec models.FileRecord, data []byte) models.FileRecord {
	t.Helper()
	ctx := context.Background()
	if data != nil {
		path, err := f.blobs.Save(ctx, data)
		require.NoError(t, err)
		rec.LocalPath = path
	}
	require.NoError(t, f.repo.InsertFile(ctx, &rec))
	return rec
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(800, 400, color.White), imaging.PNG))
	return buf.Bytes()
}

func TestProcess_MissingFieldsAreFatal(t *testing.T) {
	f := newFixture(t)
	p := NewProcessor(f.repo, f.blobs, previews.Thumbnail, logger.Discard())

	for _, job := range []models.ThumbnailJob{{UserID: "u1"}, {FileID: "f1"}} {
		_, err := p.Process(context.Background(), job)
		require.Error(t, err)
		assert.True(t, services.IsFatalJobError(err))
	}
}

func TestProcess_UnknownOrForeignFileFails(t *testing.T) {
	f := newFixture(t)
	p := NewProcessor(f.repo, f.blobs, previews.Thumbnail, logger.Discard())
	rec := f.insert(t, models.FileRecord{UserID: "owner", Name: "a.png", Type: models.TypeImage}, pngBytes(t))

	_, err := p.Process(context.Background(), models.ThumbnailJob{FileID: rec.ID, UserID: "someone-else"})
	var jobErr *services.JobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "File not found", jobErr.Reason)
	assert.False(t, jobErr.Fatal)

	_, err = p.Process(context.Background(), models.ThumbnailJob{FileID: "missing", UserID: "owner"})
	assert.Error(t, err)
}

func TestProcess_NonImageIsSkipped(t *testing.T) {
	f := newFixture(t)
	called := false
	resize := func([]byte, int) ([]byte, error) {
		called = true
		return nil, nil
	}
	p := NewProcessor(f.repo, f.blobs, resize, logger.Discard())

	for _, rec := range []models.FileRecord{
		f.insert(t, models.FileRecord{UserID: "u1", Name: "doc.txt", Type: models.TypeFile}, []byte("text")),
		f.insert(t, models.FileRecord{UserID: "u1", Name: "dir", Type: models.TypeFolder}, nil),
	} {
		res, err := p.Process(context.Background(), models.ThumbnailJob{FileID: rec.ID, UserID: "u1"})
		require.NoError(t, err)
		assert.True(t, res.Skipped)
	}
	assert.False(t, called)
}

func TestProcess_WritesAllWidths(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := NewProcessor(f.repo, f.blobs, previews.Thumbnail, logger.Discard())
	rec := f.insert(t, models.FileRecord{UserID: "u1", Name: "a.png", Type: models.TypeImage}, pngBytes(t))

	res, err := p.Process(ctx, models.ThumbnailJob{FileID: rec.ID, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []int{500, 250, 100}, res.Written)
	assert.Empty(t, res.Failed)

	for _, width := range models.ThumbnailWidths {
		data, err := f.blobs.Read(ctx, models.ThumbnailPath(rec.LocalPath, width))
		require.NoError(t, err)
		img, err := imaging.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, width, img.Bounds().Dx())
		assert.Equal(t, width/2, img.Bounds().Dy())
	}

	// Reprocessing overwrites the same paths.
	_, err = p.Process(ctx, models.ThumbnailJob{FileID: rec.ID, UserID: "u1"})
	assert.NoError(t, err)
}

func TestProcess_OneWidthFailingDoesNotFailJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resize := func(data []byte, width int) ([]byte, error) {
		if width == 250 {
			return nil, errors.New("boom")
		}
		return previews.Thumbnail(data, width)
	}
	p := NewProcessor(f.repo, f.blobs, resize, logger.Discard())
	rec := f.insert(t, models.FileRecord{UserID: "u1", Name: "a.png", Type: models.TypeImage}, pngBytes(t))

	res, err := p.Process(ctx, models.ThumbnailJob{FileID: rec.ID, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []int{500, 100}, res.Written)
	assert.Equal(t, []int{250}, res.Failed)

	_, err = f.blobs.Read(ctx, models.ThumbnailPath(rec.LocalPath, 500))
	assert.NoError(t, err)
	_, err = f.blobs.Read(ctx, models.ThumbnailPath(rec.LocalPath, 100))
	assert.NoError(t, err)
	_, err = f.blobs.Read(ctx, models.ThumbnailPath(rec.LocalPath, 250))
	assert.ErrorIs(t, err, services.ErrBlobNotFound)
}

func TestProcess_CorruptImageCompletesWithNoThumbnails(t *testing.T) {
	f := newFixture(t)
	p := NewProcessor(f.repo, f.blobs, previews.Thumbnail, logger.Discard())
	rec := f.insert(t, models.FileRecord{UserID: "u1", Name: "bad.png", Type: models.TypeImage}, []byte("not an image"))

	res, err := p.Process(context.Background(), models.ThumbnailJob{FileID: rec.ID, UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, res.Written)
	assert.Len(t, res.Failed, 3)
	assert.NoError(t, p.Handle(context.Background(), models.ThumbnailJob{FileID: rec.ID, UserID: "u1"}))
}
