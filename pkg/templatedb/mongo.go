package templatedb

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/cellforge/pkg/errors"
)

// Defaults used when a MongoDB location names no database or collection.
const (
	DefaultMongoDatabase   = "cellforge"
	DefaultMongoCollection = "templates"
)

// MongoStore keeps one document per cell, keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *log.Logger
}

// OpenMongo connects to the MongoDB deployment at location. The URL path
// names the database and the optional collection query parameter names the
// collection:
//
//	mongodb://localhost:27017/cellforge?collection=templates
func OpenMongo(ctx context.Context, location string, opts ...Option) (*MongoStore, error) {
	u, err := parseLocation(location)
	if err != nil {
		return nil, err
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		db = DefaultMongoDatabase
	}
	q := u.Query()
	coll := q.Get("collection")
	if coll == "" {
		coll = DefaultMongoCollection
	}
	q.Del("collection")
	u.RawQuery = q.Encode()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(u.String()))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "connect to mongodb")
	}
	if err := ping(ctx, func(ctx context.Context) error { return client.Ping(ctx, nil) }); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "connect to mongodb")
	}
	return NewMongoStore(client, client.Database(db).Collection(coll), opts...), nil
}

// NewMongoStore wraps an existing client and collection.
func NewMongoStore(client *mongo.Client, coll *mongo.Collection, opts ...Option) *MongoStore {
	return &MongoStore{client: client, coll: coll, logger: buildOptions(opts).logger}
}

// Put stores rec. ModeWrite clears the collection before inserting; the two
// steps are not transactional, so a concurrent reader may briefly see an
// empty collection.
func (s *MongoStore) Put(ctx context.Context, rec Record, mode Mode) error {
	rec = rec.Seal()
	if err := rec.Verify(); err != nil {
		return err
	}

	var err error
	switch mode {
	case ModeWrite:
		if _, err = s.coll.DeleteMany(ctx, bson.D{}); err == nil {
			_, err = s.coll.InsertOne(ctx, rec)
		}
	case ModeAppend:
		_, err = s.coll.InsertOne(ctx, rec)
		if mongo.IsDuplicateKeyError(err) {
			return errors.New(errors.ErrCodeSerialization, "template %s already exists (use overwrite mode to replace it)", rec.Cell)
		}
	case ModeOverwrite:
		_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": rec.Cell}, rec, options.Replace().SetUpsert(true))
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown export mode %v", mode)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "store %s in mongodb", rec.Cell)
	}
	s.logger.Debug("stored template", "cell", rec.Cell, "collection", s.coll.Name(), "mode", mode)
	return nil
}

func (s *MongoStore) Get(ctx context.Context, cell string) (Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": cell}).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, errors.New(errors.ErrCodeNotFound, "%s has no template %q", s.coll.Name(), cell)
	}
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeSerialization, err, "load %s from mongodb", cell)
	}
	if err := rec.Verify(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "list %s", s.coll.Name())
	}
	var recs []Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "list %s", s.coll.Name())
	}
	for _, r := range recs {
		if err := r.Verify(); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
