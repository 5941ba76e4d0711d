package repositoryimpl

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kazz187/taskboard/internal/project"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/mongodb"
)

const projectsCollection = "projects"

var _ project.Repository = (*MongoRepository)(nil)

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(projectsCollection)}
}

func (r *MongoRepository) Create(ctx context.Context, p *project.Project) error {
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return mongodb.WrapWriteError("project", err)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	var p project.Project
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mongodb.WrapReadError("project", err)
	}
	return &p, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*project.Project, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, mongodb.WrapReadError("projects", err)
	}
	var projects []*project.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, mongodb.WrapReadError("projects", err)
	}
	return projects, nil
}

func (r *MongoRepository) Save(ctx context.Context, p *project.Project) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return mongodb.WrapWriteError("project", err)
	}
	if res.MatchedCount == 0 {
		return cerr.NewError(cerr.NotFound, "project not found", nil)
	}
	return nil
}
