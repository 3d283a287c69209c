package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when a lookup or mutation matches no document.
var ErrNotFound = errors.New("not found")

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// idFilter matches documents stored with either a hex string or an ObjectID _id.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$or": []bson.M{
			{"_id": oid},
			{"_id": id},
		}}
	}
	return bson.M{"_id": id}
}
