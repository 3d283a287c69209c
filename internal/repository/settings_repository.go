package repository

import (
	"context"
	"errors"
	"time"

	"interiors-admin-be/internal/database"
	"interiors-admin-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// settingsDocID is the _id of the single settings document.
const settingsDocID = "app"

type SettingsRepository struct {
	collection *mongo.Collection
	defaults   models.AppSettings
}

func NewSettingsRepository(db *mongo.Database, defaults models.AppSettings) *SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection(database.CollectionSettings),
		defaults:   defaults,
	}
}

// Get returns the stored settings, creating the default document on first use.
func (r *SettingsRepository) Get(ctx context.Context) (models.AppSettings, error) {
	var s models.AppSettings
	err := r.collection.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&s)
	if err == nil {
		return r.withDefaults(s), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.AppSettings{}, err
	}

	s = r.defaults
	s.UpdatedAt = time.Now().UTC()
	if err := r.Save(ctx, s); err != nil {
		return models.AppSettings{}, err
	}
	return s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s models.AppSettings) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": settingsDocID}, s, options.Replace().SetUpsert(true))
	return err
}

// MarkDigestSent records when the last daily digest went out.
func (r *SettingsRepository) MarkDigestSent(ctx context.Context, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": settingsDocID},
		bson.M{"$set": bson.M{"lastDigestAt": at}},
		options.Update().SetUpsert(true),
	)
	return err
}

// withDefaults fills labels and the notification address left blank in storage.
func (r *SettingsRepository) withDefaults(s models.AppSettings) models.AppSettings {
	if s.NotificationEmail == "" {
		s.NotificationEmail = r.defaults.NotificationEmail
	}
	if s.StatusLabels.New == "" {
		s.StatusLabels.New = r.defaults.StatusLabels.New
	}
	if s.StatusLabels.Replied == "" {
		s.StatusLabels.Replied = r.defaults.StatusLabels.Replied
	}
	if s.StatusLabels.Archived == "" {
		s.StatusLabels.Archived = r.defaults.StatusLabels.Archived
	}
	return s
}
