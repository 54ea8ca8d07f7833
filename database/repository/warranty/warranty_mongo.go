package warrantyRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"repairdesk/database"
	"repairdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoWarrantyRepo struct {
	coll *mongo.Collection
}

// NewMongoWarrantyRepo creates the repository over the "warranties" collection.
func NewMongoWarrantyRepo() WarrantyRepository {
	repo := &MongoWarrantyRepo{coll: database.DB().Collection("warranties")}
	if err := repo.EnsureIndexes(); err != nil {
		fmt.Printf("warning: %v\n", err)
	}
	return repo
}

// EnsureIndexes creates the lookups used by the warranty routes.
func (r *MongoWarrantyRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "modelNumber", Value: 1}},
			Options: options.Index().SetName("model_number_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create warranty indexes: %w", err)
	}
	return nil
}

func (r *MongoWarrantyRepo) Create(ctx context.Context, w *models.Warranty) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, w); err != nil {
		return fmt.Errorf("failed to create warranty: %w", err)
	}
	return nil
}

func (r *MongoWarrantyRepo) GetByID(ctx context.Context, id string) (*models.Warranty, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var w models.Warranty
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("warranty %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch warranty %s: %w", id, err)
	}
	return &w, nil
}

func (r *MongoWarrantyRepo) ListByUser(ctx context.Context, userID string) ([]models.Warranty, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching warranties for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	warranties := []models.Warranty{}
	if err := cursor.All(ctx, &warranties); err != nil {
		return nil, fmt.Errorf("error decoding warranties: %w", err)
	}
	return warranties, nil
}

func (r *MongoWarrantyRepo) FindByModelNumber(ctx context.Context, userID, modelNumber string) (*models.Warranty, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"modelNumber": modelNumber}
	if userID != "" {
		filter["userId"] = userID
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var w models.Warranty
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&w); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("no warranty for model %s: %w", modelNumber, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch warranty for model %s: %w", modelNumber, err)
	}
	return &w, nil
}

func (r *MongoWarrantyRepo) ListAll(ctx context.Context) ([]models.Warranty, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching warranties: %w", err)
	}
	defer cursor.Close(ctx)

	warranties := []models.Warranty{}
	if err := cursor.All(ctx, &warranties); err != nil {
		return nil, fmt.Errorf("error decoding warranties: %w", err)
	}
	return warranties, nil
}

func (r *MongoWarrantyRepo) ClaimInterval(ctx context.Context, warrantyID string, interval int, sentAt time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":                         warrantyID,
		"notificationsSent.interval": bson.M{"$ne": interval},
	}
	update := bson.M{"$push": bson.M{"notificationsSent": models.WarrantySent{
		Interval: interval,
		SentDate: sentAt,
	}}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to claim interval %d for warranty %s: %w", interval, warrantyID, err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *MongoWarrantyRepo) ReleaseInterval(ctx context.Context, warrantyID string, interval int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"id": warrantyID},
		bson.M{"$pull": bson.M{"notificationsSent": bson.M{"interval": interval}}},
	)
	if err != nil {
		return fmt.Errorf("failed to release interval %d for warranty %s: %w", interval, warrantyID, err)
	}
	return nil
}
