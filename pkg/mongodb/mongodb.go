// Package mongodb holds the connection setup and error mapping shared by the
// MongoDB repositories.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kazz187/taskboard/pkg/cerr"
)

const connectTimeout = 10 * time.Second

// Connect dials uri and verifies the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

func WrapReadError(target string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return cerr.NewError(cerr.NotFound, fmt.Sprintf("%s not found", target), err)
	}
	return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to read %s: %w", target, err))
}

func WrapWriteError(target string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return cerr.NewError(cerr.AlreadyExists, fmt.Sprintf("%s already exists", target), err)
	}
	return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to write %s: %w", target, err))
}
