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

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type SubmissionRepository struct {
	collection *mongo.Collection
}

func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{
		collection: db.Collection(database.CollectionSubmissions),
	}
}

// Create stores a new submission. Missing id, status and timestamp are filled in.
func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	if s.ID == "" {
		s.ID = primitive.NewObjectID().Hex()
	}
	if s.Status == "" {
		s.Status = models.StatusNew
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, s)
	return err
}

// List returns one page of submissions, newest first, plus the total match count.
// The free-text query is matched in process so it can ignore accents.
func (r *SubmissionRepository) List(ctx context.Context, f models.SubmissionFilter) ([]*models.Submission, int, error) {
	page, perPage := normalizePage(f.Page, f.PerPage)
	filter := listFilter(f)
	sort := bson.D{{Key: "submittedAt", Value: -1}}

	if f.Query == "" {
		total, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			return nil, 0, err
		}
		opts := options.Find().
			SetSort(sort).
			SetSkip(int64((page - 1) * perPage)).
			SetLimit(int64(perPage))
		items, err := r.find(ctx, filter, opts)
		if err != nil {
			return nil, 0, err
		}
		return items, int(total), nil
	}

	all, err := r.find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, 0, err
	}
	matched := all[:0]
	for _, s := range all {
		if utils.ContainsFold(s.Name, f.Query) || utils.ContainsFold(s.Email, f.Query) {
			matched = append(matched, s)
		}
	}
	return paginate(matched, page, perPage), len(matched), nil
}

// All returns every submission matching the filter, ignoring pagination.
func (r *SubmissionRepository) All(ctx context.Context, f models.SubmissionFilter) ([]*models.Submission, error) {
	all, err := r.find(ctx, listFilter(f), options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}}))
	if err != nil || f.Query == "" {
		return all, err
	}
	matched := all[:0]
	for _, s := range all {
		if utils.ContainsFold(s.Name, f.Query) || utils.ContainsFold(s.Email, f.Query) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func (r *SubmissionRepository) Get(ctx context.Context, id string) (*models.Submission, error) {
	return decodeSingle(r.collection.FindOne(ctx, idFilter(id)))
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus) (*models.Submission, error) {
	after := options.After
	opts := options.FindOneAndUpdateOptions{ReturnDocument: &after}

	return decodeSingle(r.collection.FindOneAndUpdate(ctx, idFilter(id), bson.M{"$set": bson.M{"status": status}}, &opts))
}

func (r *SubmissionRepository) AddNote(ctx context.Context, id string, note models.Note) (*models.Submission, error) {
	after := options.After
	opts := options.FindOneAndUpdateOptions{ReturnDocument: &after}

	return decodeSingle(r.collection.FindOneAndUpdate(ctx, idFilter(id), bson.M{"$push": bson.M{"notes": note}}, &opts))
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubmissionRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Submission, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeSubmissions(ctx, cursor)
}

func listFilter(f models.SubmissionFilter) bson.M {
	filter := bson.M{}
	if status := f.StatusValue(); status != "" {
		filter["status"] = status
	}
	if pt := f.ProjectTypeValue(); pt != "" {
		filter["projectType"] = pt
	}
	return filter
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func paginate[T any](items []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
