package repository

import (
	"context"
	"time"

	"team_portal_service/internal/chat/domain"
	errprocess "team_portal_service/pkg/err"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository is the durable, append-only room log. Messages are never
// mutated or deleted; history is retained indefinitely and Recent caps what
// goes back to clients.
type MessageRepository interface {
	// Append stores msg, assigning its id and creation timestamp.
	Append(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error)
	// Recent returns at most limit of the chronologically latest messages,
	// oldest first.
	Recent(ctx context.Context, limit int) ([]domain.ChatMessage, error)
}

type chatMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository backed by the
// chat_messages collection.
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &chatMessageRepository{
		coll: db.Collection("chat_messages"),
	}
}

func (r *chatMessageRepository) Append(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	stored := *msg
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, stored); err != nil {
		return nil, errprocess.Storage("insert chat message", err)
	}
	return &stored, nil
}

func (r *chatMessageRepository) Recent(ctx context.Context, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		return []domain.ChatMessage{}, nil
	}

	// Newest first, capped, then flipped to ascending for the client.
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errprocess.Storage("find recent chat messages", err)
	}

	var messages []domain.ChatMessage
	if err := cur.All(ctx, &messages); err != nil {
		return nil, errprocess.Storage("decode recent chat messages", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
