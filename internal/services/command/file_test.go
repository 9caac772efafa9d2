package command

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"testing"

	"github.com/File-Sharing-BondBridg/files-manager/internal/logger"
	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/File-Sharing-BondBridg/files-manager/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	jobs []models.ThumbnailJob
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, job models.ThumbnailJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fakeScanner struct{ err error }

func (s fakeScanner) Scan(context.Context, []byte) error { return s.err }

type failingBlobs struct{ services.BlobStore }

func (failingBlobs) Save(context.Context, []byte) (string, error) {
	return "", errors.New("disk full")
}

type fixture struct {
	cmds  *FileCommands
	repo  *storage.LocalStorage
	blobs *services.LocalBlobStore
	root  string
	queue *fakeQueue
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo, err := storage.NewLocalStorage("")
	require.NoError(t, err)
	root := t.TempDir()
	blobs, err := services.NewLocalBlobStore(root)
	require.NoError(t, err)
	queue := &fakeQueue{}
	return fixture{
		cmds:  NewFileCommands(repo, blobs, queue, nil, logger.Discard()),
		repo:  repo,
		blobs: blobs,
		root:  root,
		queue: queue,
	}
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Message
}

func TestUpload_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	file, err := f.cmds.Upload(ctx, "u1", UploadInput{Name: "plain.txt", Type: "file", Data: b64("x")})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   UploadInput
		want string
	}{
		{"missing name beats everything", UploadInput{Type: "bogus"}, "Missing name"},
		{"unknown type", UploadInput{Name: "a", Type: "video"}, "Missing type"},
		{"empty type", UploadInput{Name: "a"}, "Missing type"},
		{"missing data for file", UploadInput{Name: "a", Type: "file", ParentID: "nope"}, "Missing data"},
		{"missing data for image", UploadInput{Name: "a", Type: "image"}, "Missing data"},
		{"parent not found", UploadInput{Name: "a", Type: "folder", ParentID: "nope"}, "Parent not found"},
		{"parent is a file", UploadInput{Name: "a", Type: "image", Data: b64("x"), ParentID: models.ParentID(file.ID)}, "Parent is not a folder"},
		{"undecodable data", UploadInput{Name: "a", Type: "file", Data: "***"}, "Invalid data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.cmds.Upload(ctx, "u1", tc.in)
			assert.Equal(t, tc.want, validationMessage(t, err))
		})
	}
}

func TestUpload_ParentOfAnotherUserIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	folder, err := f.cmds.Upload(ctx, "owner", UploadInput{Name: "dir", Type: "folder"})
	require.NoError(t, err)

	_, err = f.cmds.Upload(ctx, "intruder", UploadInput{Name: "a", Type: "folder", ParentID: models.ParentID(folder.ID)})
	assert.Equal(t, "Parent not found", validationMessage(t, err))
}

func TestUpload_FolderHasNoBlob(t *testing.T) {
	f := newFixture(t)

	rec, err := f.cmds.Upload(context.Background(), "u1", UploadInput{Name: "docs", Type: "folder", ParentID: "0", Data: b64("ignored")})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, models.RootID, rec.ParentID)
	assert.Empty(t, rec.LocalPath)
	assert.Empty(t, f.queue.jobs)

	entries, err := os.ReadDir(f.root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_FileRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	folder, err := f.cmds.Upload(ctx, "u1", UploadInput{Name: "docs", Type: "folder"})
	require.NoError(t, err)

	payload := "hello \x00 world"
	rec, err := f.cmds.Upload(ctx, "u1", UploadInput{
		Name:     "hello.txt",
		Type:     "file",
		ParentID: models.ParentID(folder.ID),
		IsPublic: true,
		Data:     b64(payload),
	})
	require.NoError(t, err)

	assert.Equal(t, "hello.txt", rec.Name)
	assert.Equal(t, models.TypeFile, rec.Type)
	assert.True(t, rec.IsPublic)
	assert.Equal(t, models.ParentID(folder.ID), rec.ParentID)
	require.NotEmpty(t, rec.LocalPath)

	stored, err := f.repo.FindFile(ctx, rec.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, rec, stored)

	data, err := f.blobs.Read(ctx, stored.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
	assert.Empty(t, f.queue.jobs)
}

func TestUpload_URLSafeBase64(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw := []byte{0xfb, 0xff, 0xfe}
	rec, err := f.cmds.Upload(ctx, "u1", UploadInput{Name: "bin", Type: "file", Data: base64.RawURLEncoding.EncodeToString(raw)})
	require.NoError(t, err)

	data, err := f.blobs.Read(ctx, rec.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestUpload_ImageEnqueuesJob(t *testing.T) {
	f := newFixture(t)

	rec, err := f.cmds.Upload(context.Background(), "u1", UploadInput{Name: "cat.png", Type: "image", Data: b64("not really a png")})
	require.NoError(t, err)

	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, models.ThumbnailJob{FileID: rec.ID, UserID: "u1"}, f.queue.jobs[0])
}

func TestUpload_EnqueueFailureKeepsUpload(t *testing.T) {
	f := newFixture(t)
	f.queue.err = errors.New("queue down")
	ctx := context.Background()

	rec, err := f.cmds.Upload(ctx, "u1", UploadInput{Name: "cat.png", Type: "image", Data: b64("img")})
	require.NoError(t, err)

	_, err = f.repo.FindFile(ctx, rec.ID, "u1")
	assert.NoError(t, err)
}

func TestUpload_BlobFailureWritesNoMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cmds := NewFileCommands(f.repo, failingBlobs{f.blobs}, f.queue, nil, logger.Discard())

	_, err := cmds.Upload(ctx, "u1", UploadInput{Name: "a", Type: "file", Data: b64("x")})
	var storageErr *services.StorageError
	require.ErrorAs(t, err, &storageErr)

	count, err := f.repo.CountFiles(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpload_InfectedDataRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cmds := NewFileCommands(f.repo, f.blobs, f.queue, fakeScanner{err: services.NewValidationError("Infected data")}, logger.Discard())

	_, err := cmds.Upload(ctx, "u1", UploadInput{Name: "a", Type: "file", Data: b64("x")})
	assert.Equal(t, "Infected data", validationMessage(t, err))

	count, err := f.repo.CountFiles(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSetPublic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.cmds.Upload(ctx, "u1", UploadInput{Name: "a", Type: "file", Data: b64("x")})
	require.NoError(t, err)
	require.False(t, rec.IsPublic)

	updated, err := f.cmds.SetPublic(ctx, "u1", rec.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsPublic)

	stored, err := f.repo.FindFile(ctx, rec.ID, "u1")
	require.NoError(t, err)
	assert.True(t, stored.IsPublic)

	updated, err = f.cmds.SetPublic(ctx, "u1", rec.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsPublic)

	_, err = f.cmds.SetPublic(ctx, "u2", rec.ID, true)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = f.cmds.SetPublic(ctx, "u1", "missing", true)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
