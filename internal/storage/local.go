package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/google/uuid"
)

// LocalStorage keeps metadata in memory, optionally persisted to a JSON snapshot.
type LocalStorage struct {
	mu           sync.RWMutex
	files        map[string]models.FileRecord
	order        []string
	users        map[string]models.User
	snapshotPath string
}

type localSnapshot struct {
	Files []models.FileRecord `json:"files"`
	Users []models.User       `json:"users"`
}

// NewLocalStorage loads the snapshot at path if it exists. An empty path keeps
// everything in memory.
func NewLocalStorage(snapshotPath string) (*LocalStorage, error) {
	l := &LocalStorage{
		files:        make(map[string]models.FileRecord),
		users:        make(map[string]models.User),
		snapshotPath: snapshotPath,
	}
	if snapshotPath == "" {
		return l, nil
	}

	data, err := os.ReadFile(snapshotPath)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var snap localSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file: %w", err)
	}
	for _, f := range snap.Files {
		l.files[f.ID] = f
		l.order = append(l.order, f.ID)
	}
	for _, u := range snap.Users {
		l.users[u.ID] = u
	}
	return l, nil
}

// saveToFile writes the current state to the snapshot. Caller holds the lock.
func (l *LocalStorage) saveToFile() error {
	if l.snapshotPath == "" {
		return nil
	}

	snap := localSnapshot{Files: make([]models.FileRecord, 0, len(l.order))}
	for _, id := range l.order {
		snap.Files = append(snap.Files, l.files[id])
	}
	for _, u := range l.users {
		snap.Users = append(snap.Users, u)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	// Write to temporary file first for atomicity
	tempFile := l.snapshotPath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	if err := os.Rename(tempFile, l.snapshotPath); err != nil {
		return fmt.Errorf("failed to rename metadata file: %w", err)
	}
	return nil
}

func (l *LocalStorage) InsertFile(_ context.Context, record *models.FileRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := *record
	rec.ID = uuid.NewString()
	rec.ParentID = rec.ParentID.Normalize()

	l.files[rec.ID] = rec
	l.order = append(l.order, rec.ID)

	if err := l.saveToFile(); err != nil {
		delete(l.files, rec.ID)
		l.order = l.order[:len(l.order)-1]
		return fmt.Errorf("failed to persist metadata: %w", err)
	}

	record.ID = rec.ID
	record.ParentID = rec.ParentID
	return nil
}

func (l *LocalStorage) FindFile(_ context.Context, id, userID string) (models.FileRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.files[id]
	if !ok || rec.UserID != userID {
		return models.FileRecord{}, ErrNotFound
	}
	return rec, nil
}

func (l *LocalStorage) FindFileByID(_ context.Context, id string) (models.FileRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.files[id]
	if !ok {
		return models.FileRecord{}, ErrNotFound
	}
	return rec, nil
}

func (l *LocalStorage) ListFiles(_ context.Context, userID string, parentID models.ParentID, skip, limit int) ([]models.FileRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	parentID = parentID.Normalize()
	files := make([]models.FileRecord, 0, limit)
	matched := 0
	for _, id := range l.order {
		rec := l.files[id]
		if rec.UserID != userID || rec.ParentID != parentID {
			continue
		}
		matched++
		if matched <= skip {
			continue
		}
		if len(files) == limit {
			break
		}
		files = append(files, rec)
	}
	return files, nil
}

func (l *LocalStorage) UpdateFilePublic(_ context.Context, id, userID string, isPublic bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.files[id]
	if !ok || rec.UserID != userID {
		return ErrNotFound
	}
	previous := rec.IsPublic
	rec.IsPublic = isPublic
	l.files[id] = rec

	if err := l.saveToFile(); err != nil {
		rec.IsPublic = previous
		l.files[id] = rec
		return fmt.Errorf("failed to persist metadata: %w", err)
	}
	return nil
}

// AddUser registers a user. Accounts are created outside this service, so
// this only exists to seed the local backend.
func (l *LocalStorage) AddUser(user models.User) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.users[user.ID] = user
	return l.saveToFile()
}

func (l *LocalStorage) FindUser(_ context.Context, id string) (models.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	u, ok := l.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (l *LocalStorage) CountUsers(_ context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.users)), nil
}

func (l *LocalStorage) CountFiles(_ context.Context) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.files)), nil
}

func (l *LocalStorage) Ping(context.Context) error {
	return nil
}

func (l *LocalStorage) Close(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saveToFile()
}
