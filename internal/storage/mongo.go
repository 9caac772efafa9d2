package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	filesCollection = "files"
	usersCollection = "users"
)

// MongoStorage keeps metadata in the "files" and "users" collections.
type MongoStorage struct {
	client *mongo.Client
	files  *mongo.Collection
	users  *mongo.Collection
	logger *slog.Logger
}

// fileDocument is the stored shape of a FileRecord. Owner and parent
// references are ObjectIDs; a root parent is stored as the number 0.
type fileDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    interface{}        `bson:"userId"`
	Name      string             `bson:"name"`
	Type      string             `bson:"type"`
	IsPublic  bool               `bson:"isPublic"`
	ParentID  interface{}        `bson:"parentId"`
	LocalPath string             `bson:"localPath,omitempty"`
}

type userDocument struct {
	ID    interface{} `bson:"_id"`
	Email string      `bson:"email"`
}

func NewMongoStorage(ctx context.Context, uri, database string, logger *slog.Logger) (*MongoStorage, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	logger.Info("[DB] connected to MongoDB", "database", database)
	return &MongoStorage{
		client: client,
		files:  db.Collection(filesCollection),
		users:  db.Collection(usersCollection),
		logger: logger,
	}, nil
}

// ref converts an id string to the value stored in reference fields.
// Ids issued by the store are ObjectIDs; anything else is kept verbatim so
// externally issued user ids still match.
func ref(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func parentRef(p models.ParentID) interface{} {
	if p.IsRoot() {
		return int32(0)
	}
	return ref(string(p))
}

func refString(v interface{}) string {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func toDocument(rec models.FileRecord) fileDocument {
	return fileDocument{
		UserID:    ref(rec.UserID),
		Name:      rec.Name,
		Type:      string(rec.Type),
		IsPublic:  rec.IsPublic,
		ParentID:  parentRef(rec.ParentID),
		LocalPath: rec.LocalPath,
	}
}

func (d fileDocument) record() models.FileRecord {
	return models.FileRecord{
		ID:        d.ID.Hex(),
		UserID:    refString(d.UserID),
		Name:      d.Name,
		Type:      models.FileType(d.Type),
		IsPublic:  d.IsPublic,
		ParentID:  models.ParentID(refString(d.ParentID)).Normalize(),
		LocalPath: d.LocalPath,
	}
}

func (m *MongoStorage) InsertFile(ctx context.Context, record *models.FileRecord) error {
	res, err := m.files.InsertOne(ctx, toDocument(*record))
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert file: unexpected id type %T", res.InsertedID)
	}
	record.ID = oid.Hex()
	record.ParentID = record.ParentID.Normalize()
	return nil
}

func (m *MongoStorage) findOne(ctx context.Context, filter bson.M) (models.FileRecord, error) {
	var doc fileDocument
	err := m.files.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.FileRecord{}, ErrNotFound
	}
	if err != nil {
		return models.FileRecord{}, fmt.Errorf("find file: %w", err)
	}
	return doc.record(), nil
}

func (m *MongoStorage) FindFile(ctx context.Context, id, userID string) (models.FileRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.FileRecord{}, ErrNotFound
	}
	return m.findOne(ctx, bson.M{"_id": oid, "userId": ref(userID)})
}

func (m *MongoStorage) FindFileByID(ctx context.Context, id string) (models.FileRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.FileRecord{}, ErrNotFound
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *MongoStorage) ListFiles(ctx context.Context, userID string, parentID models.ParentID, skip, limit int) ([]models.FileRecord, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": ref(userID), "parentId": parentRef(parentID)}}},
		{{Key: "$skip", Value: int64(skip)}},
		{{Key: "$limit", Value: int64(limit)}},
	}

	cursor, err := m.files.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer func() {
		if cerr := cursor.Close(ctx); cerr != nil {
			m.logger.Warn("[DB] error closing cursor", "error", cerr)
		}
	}()

	files := make([]models.FileRecord, 0, limit)
	for cursor.Next(ctx) {
		var doc fileDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode file: %w", err)
		}
		files = append(files, doc.record())
	}
	return files, cursor.Err()
}

func (m *MongoStorage) UpdateFilePublic(ctx context.Context, id, userID string, isPublic bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := m.files.UpdateOne(ctx,
		bson.M{"_id": oid, "userId": ref(userID)},
		bson.M{"$set": bson.M{"isPublic": isPublic}},
	)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoStorage) FindUser(ctx context.Context, id string) (models.User, error) {
	var doc userDocument
	err := m.users.FindOne(ctx, bson.M{"_id": ref(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return models.User{ID: refString(doc.ID), Email: doc.Email}, nil
}

func (m *MongoStorage) CountUsers(ctx context.Context) (int64, error) {
	n, err := m.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (m *MongoStorage) CountFiles(ctx context.Context) (int64, error) {
	n, err := m.files.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}

func (m *MongoStorage) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoStorage) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
