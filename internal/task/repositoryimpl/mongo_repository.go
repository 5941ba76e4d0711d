package repositoryimpl

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/mongodb"
)

const tasksCollection = "tasks"

var _ task.Repository = (*MongoRepository)(nil)

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(tasksCollection)}
}

// EnsureIndexes creates the indexes behind the list queries.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isDeleted", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "inProject", Value: 1}}},
		{Keys: bson.D{{Key: "assignedTo", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create tasks indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, t *task.Task) error {
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		return mongodb.WrapWriteError("task", err)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	var t task.Task
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, mongodb.WrapReadError("task", err)
	}
	return &t, nil
}

func (r *MongoRepository) Save(ctx context.Context, t *task.Task) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return mongodb.WrapWriteError("task", err)
	}
	if res.MatchedCount == 0 {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return nil
}

func (r *MongoRepository) Find(ctx context.Context, f task.Filter, p task.Page) ([]*task.Task, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(p.Skip))
	if p.Limit > 0 {
		opts.SetLimit(int64(p.Limit))
	}
	cur, err := r.coll.Find(ctx, toBSON(f), opts)
	if err != nil {
		return nil, mongodb.WrapReadError("tasks", err)
	}
	tasks := []*task.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, mongodb.WrapReadError("tasks", err)
	}
	return tasks, nil
}

func (r *MongoRepository) Count(ctx context.Context, f task.Filter) (int, error) {
	n, err := r.coll.CountDocuments(ctx, toBSON(f))
	if err != nil {
		return 0, mongodb.WrapReadError("tasks", err)
	}
	return int(n), nil
}

// toBSON renders f as an $and of its set conditions.
func toBSON(f task.Filter) bson.M {
	conds := bson.A{}
	if !f.IncludeDeleted {
		conds = append(conds, bson.M{"isDeleted": false})
	}
	if f.AssignedTo != "" {
		conds = append(conds, bson.M{"assignedTo": f.AssignedTo})
	}
	if f.Unassigned {
		// a missing field matches null
		conds = append(conds, bson.M{"assignedTo": bson.M{"$in": bson.A{nil, ""}}})
	}
	if f.Status != "" {
		conds = append(conds, bson.M{"status": f.Status})
	}
	if f.Priority != "" {
		conds = append(conds, bson.M{"priority": f.Priority})
	}
	if f.ProjectID != "" {
		conds = append(conds, bson.M{"inProject": f.ProjectID})
	}
	if len(conds) == 0 {
		return bson.M{}
	}
	return bson.M{"$and": conds}
}
