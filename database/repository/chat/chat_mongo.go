package chatRepo

import (
	"context"
	"fmt"
	"time"

	"repairdesk/database"
	"repairdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoChatRepo struct {
	coll *mongo.Collection
}

// NewMongoChatRepo creates the repository over the "chats" collection.
func NewMongoChatRepo() ChatRepository {
	return &mongoChatRepo{coll: database.DB().Collection("chats")}
}

func (r *mongoChatRepo) Insert(ctx context.Context, msg *models.ChatMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

func (r *mongoChatRepo) Conversation(ctx context.Context, shopID, userID string) ([]models.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"shopId": shopID, "userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching chat between %s and %s: %w", shopID, userID, err)
	}
	defer cursor.Close(ctx)

	messages := []models.ChatMessage{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("error decoding chat messages: %w", err)
	}
	return messages, nil
}

// Conversations groups the shop's messages by customer and joins the customer name.
func (r *mongoChatRepo) Conversations(ctx context.Context, shopID string) ([]models.ConversationSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"shopId": shopID}}},
		{{Key: "$sort", Value: bson.M{"timestamp": -1}}},
		{{Key: "$group", Value: bson.M{
			"_id":             "$userId",
			"userId":          bson.M{"$first": "$userId"},
			"shopId":          bson.M{"$first": "$shopId"},
			"lastMessage":     bson.M{"$first": "$message"},
			"lastMessageTime": bson.M{"$first": "$timestamp"},
			"unreadCount": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$ne": bson.A{"$senderId", shopID}},
					bson.M{"$eq": bson.A{"$read", false}},
				}},
				1,
				0,
			}}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "userId",
			"foreignField": "id",
			"as":           "userDetails",
		}}},
		{{Key: "$project", Value: bson.M{
			"userId":          1,
			"shopId":          1,
			"lastMessage":     1,
			"lastMessageTime": 1,
			"unreadCount":     1,
			"customerName":    bson.M{"$arrayElemAt": bson.A{"$userDetails.name", 0}},
		}}},
		{{Key: "$sort", Value: bson.M{"lastMessageTime": -1}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating conversations for %s: %w", shopID, err)
	}
	defer cursor.Close(ctx)

	summaries := []models.ConversationSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("error decoding conversations: %w", err)
	}
	return summaries, nil
}

func (r *mongoChatRepo) MarkReadFrom(ctx context.Context, shopID, userID, readerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateMany(ctx,
		bson.M{
			"shopId":   shopID,
			"userId":   userID,
			"senderId": bson.M{"$ne": readerID},
			"read":     false,
		},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark chat read for %s/%s: %w", shopID, userID, err)
	}
	return result.ModifiedCount, nil
}

func (r *mongoChatRepo) CountUnreadForShop(ctx context.Context, shopID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.coll.CountDocuments(ctx, bson.M{
		"shopId":   shopID,
		"senderId": bson.M{"$ne": shopID},
		"read":     false,
	})
}

func (r *mongoChatRepo) CountUnreadForUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.coll.CountDocuments(ctx, bson.M{
		"userId":   userID,
		"senderId": bson.M{"$ne": userID},
		"read":     false,
	})
}
