package repository

import (
	"context"
	"time"

	"interiors-admin-be/internal/database"
	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AdminRepository struct {
	collection *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{
		collection: db.Collection(database.CollectionAdmins),
	}
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	now := time.Now().UTC()
	admin.Email = utils.NormalizeEmail(admin.Email)
	admin.CreatedAt = now
	admin.UpdatedAt = now

	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, admin)
	return err
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.collection.FindOne(ctx, bson.M{"email": utils.NormalizeEmail(email)}).Decode(&admin); err != nil {
		return nil, mapNotFound(err)
	}
	return &admin, nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var admin models.Admin
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&admin); err != nil {
		return nil, mapNotFound(err)
	}
	return &admin, nil
}

// RecordLogin stores profile fields from the identity provider and the rotated refresh token.
func (r *AdminRepository) RecordLogin(ctx context.Context, admin *models.Admin) error {
	now := time.Now().UTC()
	admin.LastLoginAt = now
	admin.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"name":         admin.Name,
			"picture":      admin.Picture,
			"provider":     admin.Provider,
			"googleId":     admin.GoogleID,
			"refreshToken": admin.RefreshToken,
			"lastLoginAt":  now,
			"updatedAt":    now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": admin.ID}, update)
	return err
}

func (r *AdminRepository) UpdateRefreshToken(ctx context.Context, adminID, refreshToken string) error {
	oid, err := primitive.ObjectIDFromHex(adminID)
	if err != nil {
		return ErrNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"refreshToken": refreshToken,
			"updatedAt":    time.Now().UTC(),
		},
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

// SetPassword creates the admin if needed and stores the bcrypt hash.
func (r *AdminRepository) SetPassword(ctx context.Context, email, passwordHash string) error {
	now := time.Now().UTC()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"email": utils.NormalizeEmail(email)},
		bson.M{
			"$set": bson.M{"password": passwordHash, "updatedAt": now},
			"$setOnInsert": bson.M{
				"_id":       primitive.NewObjectID(),
				"provider":  "email",
				"createdAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
