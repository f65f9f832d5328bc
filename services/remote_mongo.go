package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoRemote implements Remote against MongoDB. Document ids are
// uuid strings assigned at create time and stored as _id, so the rest
// of the system never deals with ObjectIDs. Live queries combine an
// initial find with a change stream: every relevant collection event
// re-runs the query and pushes the fresh result set.
type MongoRemote struct {
	db *mongo.Database
}

func NewMongoRemote(db *mongo.Database) *MongoRemote {
	return &MongoRemote{db: db}
}

func (r *MongoRemote) CreateDocument(ctx context.Context, collection string, data Doc) (string, error) {
	id := uuid.New().String()
	doc := bson.M{"_id": id}
	for k, v := range data {
		doc[k] = v
	}
	if _, err := r.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("inserting into %s: %w", collection, err)
	}
	return id, nil
}

func (r *MongoRemote) GetDocument(ctx context.Context, collection, id string) (Doc, error) {
	var raw bson.M
	err := r.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w", collection, id, err)
	}
	return normalizeDoc(raw), nil
}

func (r *MongoRemote) QueryDocuments(ctx context.Context, collection string, q Query) ([]Doc, error) {
	opts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Descending {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := r.db.Collection(collection).Find(ctx, buildFilter(q.Filters), opts)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("reading %s cursor: %w", collection, err)
	}

	docs := make([]Doc, 0, len(raw))
	for _, m := range raw {
		docs = append(docs, normalizeDoc(m))
	}
	return docs, nil
}

func (r *MongoRemote) SubscribeQuery(ctx context.Context, collection string, q Query, onSnapshot func([]Doc), onError func(error)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := r.db.Collection(collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watching %s: %w", collection, err)
	}

	deliver := func() {
		docs, err := r.QueryDocuments(ctx, collection, q)
		if err != nil {
			if ctx.Err() == nil {
				onError(err)
			}
			return
		}
		onSnapshot(docs)
	}

	go func() {
		defer func() { _ = stream.Close(context.Background()) }()

		deliver()
		for stream.Next(ctx) {
			deliver()
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			onError(err)
		}
	}()

	return cancel, nil
}

func (r *MongoRemote) UpdateDocument(ctx context.Context, collection, id string, patch Doc) error {
	_, err := r.db.Collection(collection).UpdateByID(ctx, id,
		bson.M{"$set": bson.M(patch)},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	return nil
}

func (r *MongoRemote) DeleteDocument(ctx context.Context, collection, id string) error {
	_, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

func (r *MongoRemote) AtomicIncrement(ctx context.Context, collection, id, field string, delta float64) error {
	_, err := r.db.Collection(collection).UpdateByID(ctx, id,
		bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return fmt.Errorf("incrementing %s on %s/%s: %w", field, collection, id, err)
	}
	return nil
}

func buildFilter(filters []Filter) bson.M {
	out := bson.M{}
	for _, f := range filters {
		switch f.Op {
		case OpGreaterOrEqual, OpLessOrEqual:
			op := "$gte"
			if f.Op == OpLessOrEqual {
				op = "$lte"
			}
			cond, _ := out[f.Field].(bson.M)
			if cond == nil {
				cond = bson.M{}
			}
			cond[op] = f.Value
			out[f.Field] = cond
		default:
			out[f.Field] = f.Value
		}
	}
	return out
}

// normalizeDoc strips BSON wire types before a document crosses into
// the services: _id becomes "id", datetimes become time.Time.
func normalizeDoc(raw bson.M) Doc {
	doc := make(Doc, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case bson.DateTime:
			v = val.Time()
		case bson.ObjectID:
			v = val.Hex()
		}
		if k == "_id" {
			if s, ok := v.(string); ok {
				doc["id"] = s
			} else {
				doc["id"] = fmt.Sprint(v)
			}
			continue
		}
		doc[k] = v
	}
	return doc
}
