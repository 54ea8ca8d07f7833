package serviceRequestRepo

import (
	"context"
	"fmt"
	"time"

	"repairdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoServiceRequestRepo) find(ctx context.Context, filter bson.M) ([]models.ServiceRequest, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding service requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.ServiceRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("error decoding service requests: %w", err)
	}
	return requests, nil
}

// ListByShop returns all requests addressed to a shop.
func (r *MongoServiceRequestRepo) ListByShop(ctx context.Context, shopID string) ([]models.ServiceRequest, error) {
	return r.find(ctx, bson.M{"shopId": shopID})
}

// ListByUser returns all requests created by a customer.
func (r *MongoServiceRequestRepo) ListByUser(ctx context.Context, userID string) ([]models.ServiceRequest, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

// ListPaid returns the platform-wide paid transactions.
func (r *MongoServiceRequestRepo) ListPaid(ctx context.Context) ([]models.ServiceRequest, error) {
	return r.find(ctx, bson.M{"status": models.StatusPaid})
}

// FindForAnalytics returns a shop's requests inside the reporting window.
func (r *MongoServiceRequestRepo) FindForAnalytics(ctx context.Context, shopID string, since *time.Time) ([]models.ServiceRequest, error) {
	filter := bson.M{"shopId": shopID}
	if since != nil {
		filter["createdAt"] = bson.M{"$gte": *since}
	}
	return r.find(ctx, filter)
}
