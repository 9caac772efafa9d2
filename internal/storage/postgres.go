package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresStorage stores metadata in one or more PostgreSQL shards. File
// records live on the shard resolved from their owner; users live on shard 0.
type PostgresStorage struct {
	shards []*sql.DB
	logger *slog.Logger
}

// NewPostgresStorage connects every shard and creates the schema.
func NewPostgresStorage(ctx context.Context, connections []string, logger *slog.Logger) (*PostgresStorage, error) {
	if len(connections) == 0 {
		return nil, errors.New("no postgres shards configured")
	}

	p := &PostgresStorage{logger: logger}
	for i, conn := range connections {
		db, err := connect(ctx, conn)
		if err != nil {
			_ = p.Close(ctx)
			return nil, fmt.Errorf("failed to connect shard %d: %w", i, err)
		}
		p.shards = append(p.shards, db)
	}

	logger.Info("[DB] connected to PostgreSQL", "shards", len(p.shards))
	return p, nil
}

func connect(ctx context.Context, connectionString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	query := `
    CREATE TABLE IF NOT EXISTS files (
        seq BIGSERIAL,
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        user_id VARCHAR(64) NOT NULL,
        name VARCHAR(255) NOT NULL,
        type VARCHAR(16) NOT NULL,
        parent_id VARCHAR(64) NOT NULL DEFAULT '0',
        is_public BOOLEAN NOT NULL DEFAULT false,
        local_path VARCHAR(1024),
        created_at TIMESTAMPTZ DEFAULT NOW()
    );

    CREATE TABLE IF NOT EXISTS users (
        id VARCHAR(64) PRIMARY KEY,
        email VARCHAR(255) NOT NULL,
        created_at TIMESTAMPTZ DEFAULT NOW()
    );

    CREATE INDEX IF NOT EXISTS idx_files_owner_parent ON files(user_id, parent_id, seq);
    `
	_, err := db.ExecContext(ctx, query)
	return err
}

// resolveShard maps a user to a shard index.
func resolveShard(userID string, shardCount int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(shardCount))
}

func (p *PostgresStorage) shardFor(userID string) *sql.DB {
	shard := resolveShard(userID, len(p.shards))
	p.logger.Debug("[DB] shard resolved", "user_id", userID, "shard", shard)
	return p.shards[shard]
}

const fileColumns = `id, user_id, name, type, parent_id, is_public, local_path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (models.FileRecord, error) {
	var (
		rec       models.FileRecord
		fileType  string
		parentID  string
		localPath sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Name, &fileType, &parentID, &rec.IsPublic, &localPath); err != nil {
		return models.FileRecord{}, err
	}
	rec.Type = models.FileType(fileType)
	rec.ParentID = models.ParentID(parentID).Normalize()
	rec.LocalPath = localPath.String
	return rec, nil
}

func (p *PostgresStorage) InsertFile(ctx context.Context, record *models.FileRecord) error {
	query := `
    INSERT INTO files (user_id, name, type, parent_id, is_public, local_path)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
    `
	localPath := sql.NullString{String: record.LocalPath, Valid: record.LocalPath != ""}
	parentID := record.ParentID.Normalize()

	var id string
	err := p.shardFor(record.UserID).QueryRowContext(ctx, query,
		record.UserID,
		record.Name,
		string(record.Type),
		string(parentID),
		record.IsPublic,
		localPath,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}

	record.ID = id
	record.ParentID = parentID
	return nil
}

func (p *PostgresStorage) FindFile(ctx context.Context, id, userID string) (models.FileRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.FileRecord{}, ErrNotFound
	}

	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND user_id = $2`
	rec, err := scanFile(p.shardFor(userID).QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.FileRecord{}, ErrNotFound
	}
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("find file: %w", err)
	}
	return rec, nil
}

// FindFileByID has no owner to route by, so it asks every shard.
func (p *PostgresStorage) FindFileByID(ctx context.Context, id string) (models.FileRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.FileRecord{}, ErrNotFound
	}

	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	for _, db := range p.shards {
		rec, err := scanFile(db.QueryRowContext(ctx, query, id))
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return models.FileRecord{}, fmt.Errorf("find file: %w", err)
		}
		return rec, nil
	}
	return models.FileRecord{}, ErrNotFound
}

func (p *PostgresStorage) ListFiles(ctx context.Context, userID string, parentID models.ParentID, skip, limit int) ([]models.FileRecord, error) {
	query := `
    SELECT ` + fileColumns + `
    FROM files WHERE user_id = $1 AND parent_id = $2
    ORDER BY seq LIMIT $3 OFFSET $4
    `
	rows, err := p.shardFor(userID).QueryContext(ctx, query, userID, string(parentID.Normalize()), limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer func(rows *sql.Rows) {
		if cerr := rows.Close(); cerr != nil {
			p.logger.Warn("[DB] error closing rows", "error", cerr)
		}
	}(rows)

	files := make([]models.FileRecord, 0, limit)
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, rec)
	}
	return files, rows.Err()
}

func (p *PostgresStorage) UpdateFilePublic(ctx context.Context, id, userID string, isPublic bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	result, err := p.shardFor(userID).ExecContext(ctx,
		`UPDATE files SET is_public = $1 WHERE id = $2 AND user_id = $3`,
		isPublic, id, userID,
	)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) FindUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := p.shards[0].QueryRowContext(ctx, `SELECT id, email FROM users WHERE id = $1`, id).Scan(&u.ID, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (p *PostgresStorage) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	if err := p.shards[0].QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

func (p *PostgresStorage) CountFiles(ctx context.Context) (int64, error) {
	var total int64
	for i, db := range p.shards {
		var n int64
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
			return 0, fmt.Errorf("count files on shard %d: %w", i, err)
		}
		total += n
	}
	return total, nil
}

func (p *PostgresStorage) Ping(ctx context.Context) error {
	for i, db := range p.shards {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("shard %d: %w", i, err)
		}
	}
	return nil
}

func (p *PostgresStorage) Close(context.Context) error {
	var errs []error
	for _, db := range p.shards {
		errs = append(errs, db.Close())
	}
	return errors.Join(errs...)
}
