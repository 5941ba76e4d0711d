package repositoryimpl

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/mongodb"
)

const usersCollection = "users"

var _ user.Repository = (*MongoRepository)(nil)

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique email index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users.email index: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, u *user.User) error {
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return mongodb.WrapWriteError("user", err)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) FindByName(ctx context.Context, pattern string) (*user.User, error) {
	filter := bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(pattern), Options: "i"}}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.findOne(ctx, filter, opts)
}

func (r *MongoRepository) List(ctx context.Context, f user.ListFilter) ([]*user.User, error) {
	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = f.Name
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, mongodb.WrapReadError("users", err)
	}
	var users []*user.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, mongodb.WrapReadError("users", err)
	}
	return users, nil
}

func (r *MongoRepository) Save(ctx context.Context, u *user.User) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return mongodb.WrapWriteError("user", err)
	}
	if res.MatchedCount == 0 {
		return cerr.NewError(cerr.NotFound, "user not found", nil)
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*user.User, error) {
	var u user.User
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&u); err != nil {
		return nil, mongodb.WrapReadError("user", err)
	}
	return &u, nil
}
