package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

type userDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	Username     string        `bson:"username,omitempty"`
	Name         string        `bson:"name,omitempty"`
	Picture      string        `bson:"picture,omitempty"`
	GoogleID     string        `bson:"google_id,omitempty"`
	PasswordHash string        `bson:"password_hash,omitempty"`
	Verified     bool          `bson:"verified"`

	VerificationCode          string    `bson:"verification_code,omitempty"`
	VerificationCodeExpiresAt time.Time `bson:"verification_code_expires_at,omitempty"`
	ResetCode                 string    `bson:"reset_code,omitempty"`
	ResetCodeExpiresAt        time.Time `bson:"reset_code_expires_at,omitempty"`

	Active    bool      `bson:"active"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:                        d.ID.Hex(),
		Email:                     d.Email,
		Username:                  d.Username,
		Name:                      d.Name,
		Picture:                   d.Picture,
		GoogleID:                  d.GoogleID,
		PasswordHash:              d.PasswordHash,
		Verified:                  d.Verified,
		VerificationCode:          d.VerificationCode,
		VerificationCodeExpiresAt: d.VerificationCodeExpiresAt,
		ResetCode:                 d.ResetCode,
		ResetCodeExpiresAt:        d.ResetCodeExpiresAt,
		Active:                    d.Active,
		CreatedAt:                 d.CreatedAt,
		UpdatedAt:                 d.UpdatedAt,
	}
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection("users")}
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "username", Value: 1}}},
		{Keys: bson.D{{Key: "google_id", Value: 1}}},
	})
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	if googleID == "" {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	doc := userDocument{
		Email:                     user.Email,
		Username:                  user.Username,
		Name:                      user.Name,
		Picture:                   user.Picture,
		GoogleID:                  user.GoogleID,
		PasswordHash:              user.PasswordHash,
		Verified:                  user.Verified,
		VerificationCode:          user.VerificationCode,
		VerificationCodeExpiresAt: user.VerificationCodeExpiresAt,
		ResetCode:                 user.ResetCode,
		ResetCodeExpiresAt:        user.ResetCodeExpiresAt,
		Active:                    user.Active,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}

	user.ID = result.InsertedID.(bson.ObjectID).Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	oid, err := bson.ObjectIDFromHex(user.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"email":                        user.Email,
			"username":                     user.Username,
			"name":                         user.Name,
			"picture":                      user.Picture,
			"google_id":                    user.GoogleID,
			"password_hash":                user.PasswordHash,
			"verified":                     user.Verified,
			"verification_code":            user.VerificationCode,
			"verification_code_expires_at": user.VerificationCodeExpiresAt,
			"reset_code":                   user.ResetCode,
			"reset_code_expires_at":        user.ResetCodeExpiresAt,
			"active":                       user.Active,
			"updated_at":                   now,
		},
	})
	if err != nil {
		return err
	}

	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
