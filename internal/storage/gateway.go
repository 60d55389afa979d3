// Package storage is the persistence gateway: typed access to the six record
// collections in MongoDB.
//
// Write operations return their failure to the caller. Read operations log
// the failure and return an empty result.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/spigell/airecruiter/internal/apperr"
)

const (
	DefaultDatabase = "airecruiter"

	JobListingsCollection        = "job_listings"
	CandidateProfilesCollection  = "candidate_profiles"
	BenchCandidatesCollection    = "bench_candidates"
	OpenJobsCollection           = "open_jobs"
	MatchResultsCollection       = "match_results"
	EmailNotificationsCollection = "email_notifications"

	defaultConnectTimeout = 10 * time.Second
)

// Config describes how to reach the document store.
type Config struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
}

// Gateway wraps a connected Mongo client. It is safe for concurrent use.
type Gateway struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
	now    func() time.Time
}

// Connect dials the store and verifies the primary answers a ping.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Gateway, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, apperr.Configuration("mongodb", errors.New("MONGODB_URI environment variable not set"))
	}

	dbName := strings.TrimSpace(cfg.Database)
	if dbName == "" {
		dbName = DefaultDatabase
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, apperr.Storage("connect to mongodb", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperr.Storage("ping mongodb", err)
	}

	logger.Info("connected to mongodb", zap.String("database", dbName))

	return &Gateway{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close releases the connection pool. It is safe to call on a nil gateway.
func (g *Gateway) Close(ctx context.Context) error {
	if g == nil || g.client == nil {
		return nil
	}

	if err := g.client.Disconnect(ctx); err != nil {
		return apperr.Storage("disconnect from mongodb", err)
	}

	g.logger.Info("mongodb connection closed")
	return nil
}

// Connected reports whether the gateway holds a client. It does not ping.
func (g *Gateway) Connected() bool {
	return g != nil && g.client != nil
}

func (g *Gateway) collection(name string) *mongo.Collection {
	return g.db.Collection(name)
}

// insert stores doc and returns the generated identifier as hex.
func (g *Gateway) insert(ctx context.Context, coll string, doc any) (string, error) {
	res, err := g.collection(coll).InsertOne(ctx, doc)
	if err != nil {
		return "", apperr.Storage("insert into "+coll, err)
	}

	return idString(res.InsertedID), nil
}

func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// objectID parses a hex identifier; ok is false for malformed input.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// findAll decodes every document matching filter. The returned slice is never nil.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return []T{}, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return []T{}, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}

	if out == nil {
		out = []T{}
	}
	return out, nil
}

// setByID applies $set to one document and reports whether it changed.
// A malformed id reports false without touching the store.
func (g *Gateway) setByID(ctx context.Context, coll, id string, extra bson.M, set bson.M) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		g.logger.Debug("ignoring malformed identifier", zap.String("collection", coll), zap.String("id", id))
		return false, nil
	}

	filter := bson.M{"_id": oid}
	for k, v := range extra {
		filter[k] = v
	}

	res, err := g.collection(coll).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, apperr.Storage("update "+coll, err)
	}

	return res.ModifiedCount > 0, nil
}
