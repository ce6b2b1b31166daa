package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

type conversationDocument struct {
	ID          bson.ObjectID             `bson:"_id,omitempty"`
	UserID      string                    `bson:"user_id"`
	UserInput   string                    `bson:"user_input"`
	ServerReply string                    `bson:"server_reply"`
	Interaction *domain.InteractionParams `bson:"interaction_params,omitempty"`
	Timestamp   time.Time                 `bson:"timestamp"`
}

func (d *conversationDocument) toDomain() domain.Conversation {
	return domain.Conversation{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		UserInput:   d.UserInput,
		ServerReply: d.ServerReply,
		Interaction: d.Interaction,
		Timestamp:   d.Timestamp,
	}
}

type ConversationRepository struct {
	coll *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{coll: db.Collection("conversations")}
}

func (r *ConversationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	return err
}

func (r *ConversationRepository) Insert(ctx context.Context, conv *domain.Conversation) error {
	now := time.Now().UTC()
	doc := conversationDocument{
		UserID:      conv.UserID,
		UserInput:   conv.UserInput,
		ServerReply: conv.ServerReply,
		Interaction: conv.Interaction,
		Timestamp:   now,
	}

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}

	conv.ID = result.InsertedID.(bson.ObjectID).Hex()
	conv.Timestamp = now
	return nil
}

func (r *ConversationRepository) ListByUser(ctx context.Context, userID string, limit, skip int64) ([]domain.Conversation, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID},
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetSkip(skip).
			SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []conversationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	conversations := make([]domain.Conversation, len(docs))
	for i := range docs {
		conversations[i] = docs[i].toDomain()
	}
	return conversations, nil
}

func (r *ConversationRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"user_id": userID})
}

var _ ports.ConversationRepository = (*ConversationRepository)(nil)
