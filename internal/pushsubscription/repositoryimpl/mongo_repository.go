package repositoryimpl

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kazz187/taskboard/internal/pushsubscription"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/mongodb"
)

const pushSubscriptionsCollection = "push_subscriptions"

var _ pushsubscription.Repository = (*MongoRepository)(nil)

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(pushSubscriptionsCollection)}
}

// EnsureIndexes makes endpoints unique.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "endpoint", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create push_subscriptions indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, s *pushsubscription.Subscription) error {
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return mongodb.WrapWriteError("push subscription", err)
	}
	return nil
}

func (r *MongoRepository) Save(ctx context.Context, s *pushsubscription.Subscription) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return mongodb.WrapWriteError("push subscription", err)
	}
	if res.MatchedCount == 0 {
		return cerr.NewError(cerr.NotFound, "push subscription not found", nil)
	}
	return nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userID string) ([]*pushsubscription.Subscription, error) {
	cur, err := r.coll.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, mongodb.WrapReadError("push subscriptions", err)
	}
	var subs []*pushsubscription.Subscription
	if err := cur.All(ctx, &subs); err != nil {
		return nil, mongodb.WrapReadError("push subscriptions", err)
	}
	return subs, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongodb.WrapWriteError("push subscription", err)
	}
	if res.DeletedCount == 0 {
		return cerr.NewError(cerr.NotFound, "push subscription not found", nil)
	}
	return nil
}

func (r *MongoRepository) FindByEndpoint(ctx context.Context, endpoint string) (*pushsubscription.Subscription, error) {
	var s pushsubscription.Subscription
	if err := r.coll.FindOne(ctx, bson.M{"endpoint": endpoint}).Decode(&s); err != nil {
		return nil, mongodb.WrapReadError("push subscription", err)
	}
	return &s, nil
}
