package repository

import (
	"context"
	"fmt"

	"interiors-admin-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// decodeSubmission reads one stored document. A submittedAt that cannot be
// decoded as a time leaves SubmittedAt zero and is kept in SubmittedAtRaw,
// so one bad record does not fail a whole listing.
func decodeSubmission(raw bson.Raw) (models.Submission, error) {
	var s models.Submission
	err := bson.Unmarshal(raw, &s)
	if err == nil {
		return s, nil
	}

	at, lookupErr := raw.LookupErr("submittedAt")
	if lookupErr != nil {
		return s, err
	}
	var doc bson.D
	if derr := bson.Unmarshal(raw, &doc); derr != nil {
		return s, err
	}
	rest := make(bson.D, 0, len(doc))
	for _, e := range doc {
		if e.Key != "submittedAt" {
			rest = append(rest, e)
		}
	}
	data, merr := bson.Marshal(rest)
	if merr != nil {
		return s, err
	}
	s = models.Submission{}
	if uerr := bson.Unmarshal(data, &s); uerr != nil {
		return s, uerr
	}
	s.SubmittedAtRaw = rawValueText(at)
	return s, nil
}

func rawValueText(v bson.RawValue) string {
	if str, ok := v.StringValueOK(); ok {
		return str
	}
	return fmt.Sprintf("%s %s", v.Type, v.String())
}

func decodeSubmissions(ctx context.Context, cursor *mongo.Cursor) ([]*models.Submission, error) {
	items := []*models.Submission{}
	for cursor.Next(ctx) {
		s, err := decodeSubmission(cursor.Current)
		if err != nil {
			return nil, err
		}
		items = append(items, &s)
	}
	return items, cursor.Err()
}

func decodeSingle(res *mongo.SingleResult) (*models.Submission, error) {
	raw, err := res.Raw()
	if err != nil {
		return nil, mapNotFound(err)
	}
	s, err := decodeSubmission(raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
