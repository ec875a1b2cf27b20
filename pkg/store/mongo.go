package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/modelgraph/pkg/errors"
)

// Default MongoDB locations.
const (
	DefaultDatabase   = "modelgraph"
	DefaultCollection = "projects"
)

// MongoStore keeps each project as one document keyed by its name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// projectDocument is the stored BSON shape.
type projectDocument struct {
	Name      string    `bson:"_id"`
	Data      string    `bson:"data"`
	Size      int64     `bson:"size"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func newProjectDocument(name string, data []byte, now time.Time) projectDocument {
	return projectDocument{Name: name, Data: string(data), Size: int64(len(data)), UpdatedAt: now.UTC()}
}

func (d projectDocument) info() Info {
	return Info{Name: d.Name, Size: d.Size, UpdatedAt: d.UpdatedAt}
}

// NewMongoStore connects to uri and uses the projects collection of
// database. The connection is verified with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}
	s := NewMongoStoreFromCollection(client.Database(database).Collection(DefaultCollection))
	s.client, s.owned = client, true
	return s, nil
}

// NewMongoStoreFromCollection uses an existing collection. Closing the store
// leaves the client connected.
func NewMongoStoreFromCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// Load implements [Store].
func (s *MongoStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateProjectName(name); err != nil {
		return nil, err
	}
	var doc projectDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storageErr(err, "load project %q", name)
	}
	return []byte(doc.Data), nil
}

// Save implements [Store].
func (s *MongoStore) Save(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateProjectName(name); err != nil {
		return err
	}
	doc := newProjectDocument(name, data, time.Now())
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storageErr(err, "save project %q", name)
	}
	return nil
}

// List implements [Store].
func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storageErr(err, "list projects")
	}
	var docs []projectDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageErr(err, "list projects")
	}
	out := make([]Info, len(docs))
	for i, d := range docs {
		out[i] = d.info()
	}
	return out, nil
}

// Delete implements [Store].
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateProjectName(name); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return storageErr(err, "delete project %q", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Close implements [Store].
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func storageErr(err error, format string, args ...any) error {
	code := errors.ErrCodeStorage
	if mongo.IsTimeout(err) || stderrors.Is(err, context.DeadlineExceeded) {
		code = errors.ErrCodeTimeout
	}
	return errors.Wrap(code, err, format, args...)
}

var _ Store = (*MongoStore)(nil)
