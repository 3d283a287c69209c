package repository

import (
	"context"

	"interiors-admin-be/internal/database"
	"interiors-admin-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StatisticsRepository struct {
	submissionCollection *mongo.Collection
}

func NewStatisticsRepository(db *mongo.Database) *StatisticsRepository {
	return &StatisticsRepository{
		submissionCollection: db.Collection(database.CollectionSubmissions),
	}
}

// Snapshot loads every submission with only the fields the aggregator reads.
func (r *StatisticsRepository) Snapshot(ctx context.Context) ([]models.Submission, error) {
	projection := bson.M{
		"_id":         1,
		"status":      1,
		"projectType": 1,
		"budgetRange": 1,
		"submittedAt": 1,
	}
	cursor, err := r.submissionCollection.Find(ctx, bson.M{}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	subs := []models.Submission{}
	for cursor.Next(ctx) {
		s, err := decodeSubmission(cursor.Current)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, cursor.Err()
}

// ProjectTypes lists the distinct project types seen in submissions, most frequent first.
func (r *StatisticsRepository) ProjectTypes(ctx context.Context) ([]models.CategoryCount, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"projectType": bson.M{"$nin": []interface{}{"", nil}}}},
		{"$group": bson.M{
			"_id":   "$projectType",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		{"$project": bson.M{
			"name":  "$_id",
			"count": 1,
			"_id":   0,
		}},
	}

	cursor, err := r.submissionCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []models.CategoryCount{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
