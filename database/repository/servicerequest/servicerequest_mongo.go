package serviceRequestRepo

import (
	"context"
	"fmt"
	"time"

	"repairdesk/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoServiceRequestRepo implements ServiceRequestRepository using MongoDB.
type MongoServiceRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoServiceRequestRepo creates the repository over the "service_requests" collection.
func NewMongoServiceRequestRepo() ServiceRequestRepository {
	coll := database.DB().Collection("service_requests")
	repo := &MongoServiceRequestRepo{coll: coll}
	if err := repo.EnsureIndexes(); err != nil {
		fmt.Printf("warning: %v\n", err)
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// EnsureIndexes creates the indexes the lifecycle and analytics queries rely on.
func (r *MongoServiceRequestRepo) EnsureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "shopId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("shop_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create service request indexes: %w", err)
	}
	return nil
}
