package repository

import (
	"context"
	"errors"
	"time"

	"interiors-admin-be/internal/database"
	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AllowedEmailRepository struct {
	collection *mongo.Collection
}

func NewAllowedEmailRepository(db *mongo.Database) *AllowedEmailRepository {
	return &AllowedEmailRepository{
		collection: db.Collection(database.CollectionAllowedEmails),
	}
}

// IsAllowed reports whether email is on the allow-list. Matching ignores case.
func (r *AllowedEmailRepository) IsAllowed(ctx context.Context, email string) (bool, error) {
	var entry models.AllowedEmail
	err := r.collection.FindOne(ctx, bson.M{"email": utils.NormalizeEmail(email)}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add inserts email if it is not listed yet.
func (r *AllowedEmailRepository) Add(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$setOnInsert": bson.M{"email": email, "createdAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *AllowedEmailRepository) Remove(ctx context.Context, email string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"email": utils.NormalizeEmail(email)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AllowedEmailRepository) List(ctx context.Context) ([]models.AllowedEmail, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.AllowedEmail{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
