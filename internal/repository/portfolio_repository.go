package repository

import (
	"context"
	"strings"
	"time"

	"interiors-admin-be/internal/database"
	"interiors-admin-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PortfolioRepository struct {
	collection *mongo.Collection
}

func NewPortfolioRepository(db *mongo.Database) *PortfolioRepository {
	return &PortfolioRepository{
		collection: db.Collection(database.CollectionPortfolio),
	}
}

// List returns items newest first. An empty or "All" room type disables the filter.
func (r *PortfolioRepository) List(ctx context.Context, roomType string) ([]*models.PortfolioItem, error) {
	filter := bson.M{}
	if roomType != "" && !strings.EqualFold(roomType, "all") {
		filter["roomType"] = roomType
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []*models.PortfolioItem{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PortfolioRepository) Get(ctx context.Context, id string) (*models.PortfolioItem, error) {
	var item models.PortfolioItem
	if err := r.collection.FindOne(ctx, idFilter(id)).Decode(&item); err != nil {
		return nil, mapNotFound(err)
	}
	return &item, nil
}

func (r *PortfolioRepository) Create(ctx context.Context, item *models.PortfolioItem) error {
	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, item)
	return err
}

// Update applies the non-empty fields of req and returns the stored item.
func (r *PortfolioRepository) Update(ctx context.Context, id string, req models.UpdatePortfolioRequest) (*models.PortfolioItem, error) {
	set := bson.M{}
	if req.Title != "" {
		set["title"] = req.Title
	}
	if req.RoomType != "" {
		set["roomType"] = req.RoomType
	}
	if req.ProjectType != "" {
		set["projectType"] = req.ProjectType
	}
	if req.BudgetRange != "" {
		set["budgetRange"] = models.ParseBudgetRange(req.BudgetRange)
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	after := options.After
	opts := options.FindOneAndUpdateOptions{ReturnDocument: &after}

	var updated models.PortfolioItem
	if err := r.collection.FindOneAndUpdate(ctx, idFilter(id), bson.M{"$set": set}, &opts).Decode(&updated); err != nil {
		return nil, mapNotFound(err)
	}
	return &updated, nil
}

func (r *PortfolioRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
