package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"photogram/models"
)

type MongoRecentRepository struct {
	coll *mongo.Collection
}

func NewMongoRecentRepository(coll *mongo.Collection) *MongoRecentRepository {
	return &MongoRecentRepository{coll: coll}
}

// Add de-duplicates on insert: an existing (user, search) pair is removed
// first so the new entry takes the most-recent slot.
func (r *MongoRecentRepository) Add(ctx context.Context, rec *models.RecentSearch) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	filter := bson.M{"user": rec.UserID, "search": rec.SearchID}
	if _, err := r.coll.DeleteOne(ctx, filter); err != nil {
		return err
	}
	_, err := r.coll.InsertOne(ctx, rec)
	return err
}

func (r *MongoRecentRepository) Find(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.RecentSearch, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	recents := []models.RecentSearch{}
	if err := cursor.All(ctx, &recents); err != nil {
		return nil, err
	}
	return recents, nil
}

func (r *MongoRecentRepository) Remove(ctx context.Context, userID, searchID primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"user": userID, "search": searchID})
	return err
}

func (r *MongoRecentRepository) RemoveAll(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"user": userID})
	return err
}

func (r *MongoRecentRepository) RemoveTarget(ctx context.Context, searchID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"search": searchID})
	return err
}

var _ RecentRepository = (*MongoRecentRepository)(nil)
var _ FollowRepository = (*MongoFollowRepository)(nil)
var _ CommentRepository = (*MongoCommentRepository)(nil)
var _ PostRepository = (*MongoPostRepository)(nil)
var _ UserRepository = (*MongoUserRepository)(nil)
