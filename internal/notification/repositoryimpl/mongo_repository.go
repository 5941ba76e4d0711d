package repositoryimpl

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kazz187/taskboard/internal/notification"
	"github.com/kazz187/taskboard/pkg/mongodb"
)

const notificationsCollection = "notifications"

var _ notification.Repository = (*MongoRepository)(nil)

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(notificationsCollection)}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "forUser", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notifications index: %w", err)
	}
	return nil
}

func (r *MongoRepository) CreateMany(ctx context.Context, ns []*notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	docs := make([]any, 0, len(ns))
	for _, n := range ns {
		docs = append(docs, n)
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return mongodb.WrapWriteError("notification", err)
	}
	return nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"forUser": userID}, opts)
	if err != nil {
		return nil, mongodb.WrapReadError("notifications", err)
	}
	ns := []*notification.Notification{}
	if err := cur.All(ctx, &ns); err != nil {
		return nil, mongodb.WrapReadError("notifications", err)
	}
	return ns, nil
}

func (r *MongoRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"forUser": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, mongodb.WrapWriteError("notification", err)
	}
	return int(res.ModifiedCount), nil
}
