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

type contextDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    string        `bson:"user_id"`
	Info      string        `bson:"relevant_info"`
	Priority  int           `bson:"context_priority"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

func (d *contextDocument) toDomain() domain.ContextFact {
	return domain.ContextFact{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Info:      d.Info,
		Priority:  d.Priority,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type ContextRepository struct {
	coll *mongo.Collection
}

func NewContextRepository(db *mongo.Database) *ContextRepository {
	return &ContextRepository{coll: db.Collection("key_contexts")}
}

func (r *ContextRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "context_priority", Value: -1}}},
	})
	return err
}

func (r *ContextRepository) ListByUser(ctx context.Context, userID string) ([]domain.ContextFact, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{
			{Key: "context_priority", Value: -1},
			{Key: "updated_at", Value: -1},
		}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []contextDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	facts := make([]domain.ContextFact, len(docs))
	for i := range docs {
		facts[i] = docs[i].toDomain()
	}
	return facts, nil
}

func (r *ContextRepository) Insert(ctx context.Context, fact *domain.ContextFact) error {
	now := time.Now().UTC()
	doc := contextDocument{
		UserID:    fact.UserID,
		Info:      fact.Info,
		Priority:  fact.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}

	fact.ID = result.InsertedID.(bson.ObjectID).Hex()
	fact.CreatedAt = now
	fact.UpdatedAt = now
	return nil
}

func (r *ContextRepository) UpdatePriority(ctx context.Context, userID, factID string, priority int) error {
	oid, err := bson.ObjectIDFromHex(factID)
	if err != nil {
		return err
	}

	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID},
		bson.M{"$set": bson.M{
			"context_priority": priority,
			"updated_at":       time.Now().UTC(),
		}})
	return err
}

func (r *ContextRepository) Delete(ctx context.Context, userID, factID string) error {
	oid, err := bson.ObjectIDFromHex(factID)
	if err != nil {
		return err
	}

	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	return err
}

func (r *ContextRepository) DeleteZeroPriority(ctx context.Context, userID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"user_id": userID, "context_priority": 0})
	return err
}

var _ ports.ContextRepository = (*ContextRepository)(nil)
