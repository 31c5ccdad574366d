package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"photogram/models"
)

type MongoPostRepository struct {
	coll *mongo.Collection
}

func NewMongoPostRepository(coll *mongo.Collection) *MongoPostRepository {
	return &MongoPostRepository{coll: coll}
}

func (r *MongoPostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = []models.LikeEntry{}
	}
	if post.Saves == nil {
		post.Saves = []models.LikeEntry{}
	}
	_, err := r.coll.InsertOne(ctx, post)
	return err
}

func (r *MongoPostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) FindByUser(ctx context.Context, userID primitive.ObjectID, lastID *primitive.ObjectID, limit int64, reelsOnly bool) ([]models.Post, error) {
	filter := bson.M{"user": userID}
	if lastID != nil {
		// ObjectIDs grow monotonically, so _id < lastId is "older than".
		filter["_id"] = bson.M{"$lt": *lastID}
	}
	if reelsOnly {
		filter["media.0.type"] = "video"
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *MongoPostRepository) FindSaved(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, int64, error) {
	filter := bson.M{"saves.user": userID}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *MongoPostRepository) Update(ctx context.Context, id primitive.ObjectID, update PostUpdate) error {
	set := bson.M{}
	if update.Text != nil {
		set["text"] = *update.Text
	}
	if update.HideComments != nil {
		set["hideComments"] = *update.HideComments
	}
	if update.HideLikes != nil {
		set["hideLikes"] = *update.HideLikes
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}

	if _, err := r.coll.DeleteMany(ctx, bson.M{"user": userID}); err != nil {
		return nil, err
	}
	return posts, nil
}

// AddLike pushes a like entry only when the user is not already present,
// which makes a repeated like a no-op instead of a duplicate.
func (r *MongoPostRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.addMark(ctx, id, userID, "likes")
}

func (r *MongoPostRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.removeMark(ctx, id, userID, "likes")
}

func (r *MongoPostRepository) AddSave(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.addMark(ctx, id, userID, "saves")
}

func (r *MongoPostRepository) RemoveSave(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.removeMark(ctx, id, userID, "saves")
}

func (r *MongoPostRepository) addMark(ctx context.Context, id, userID primitive.ObjectID, field string) error {
	entry := models.LikeEntry{User: userID, Date: time.Now().Unix()}
	filter := bson.M{"_id": id, field + ".user": bson.M{"$ne": userID}}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$push": bson.M{field: entry}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the post is gone or the entry already exists; only the
		// former is an error.
		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (r *MongoPostRepository) removeMark(ctx context.Context, id, userID primitive.ObjectID, field string) error {
	update := bson.M{"$pull": bson.M{field: bson.M{"user": userID}}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoPostRepository) RemoveUserMarks(ctx context.Context, userID primitive.ObjectID) error {
	pull := bson.M{"$pull": bson.M{
		"likes": bson.M{"user": userID},
		"saves": bson.M{"user": userID},
	}}
	_, err := r.coll.UpdateMany(ctx, bson.M{}, pull)
	return err
}
