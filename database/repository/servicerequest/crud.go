package serviceRequestRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"repairdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new service request document.
func (r *MongoServiceRequestRepo) Create(ctx context.Context, req *models.ServiceRequest) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to create service request: %w", err)
	}
	return nil
}

// GetByID retrieves a service request by its id.
func (r *MongoServiceRequestRepo) GetByID(ctx context.Context, id string) (*models.ServiceRequest, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var req models.ServiceRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("service request %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch service request %s: %w", id, err)
	}
	return &req, nil
}

// ReplaceIfUnchanged swaps the stored document for next, guarded on status and version.
func (r *MongoServiceRequestRepo) ReplaceIfUnchanged(
	ctx context.Context,
	next *models.ServiceRequest,
	expectedStatus models.RequestStatus,
	expectedVersion int64,
) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":      next.ID,
		"status":  expectedStatus,
		"version": expectedVersion,
	}
	result, err := r.coll.ReplaceOne(ctx, filter, next)
	if err != nil {
		return fmt.Errorf("failed to update service request %s: %w", next.ID, err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: either the id is gone or another writer got there first.
	count, err := r.coll.CountDocuments(ctx, bson.M{"id": next.ID})
	if err != nil {
		return fmt.Errorf("failed to check service request %s: %w", next.ID, err)
	}
	if count == 0 {
		return fmt.Errorf("service request %s: %w", next.ID, models.ErrNotFound)
	}
	return fmt.Errorf("service request %s changed while updating: %w", next.ID, models.ErrConflict)
}
