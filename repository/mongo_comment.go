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

type MongoCommentRepository struct {
	coll *mongo.Collection
}

func NewMongoCommentRepository(coll *mongo.Collection) *MongoCommentRepository {
	return &MongoCommentRepository{coll: coll}
}

func (r *MongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.Likes == nil {
		comment.Likes = []models.LikeEntry{}
	}
	_, err := r.coll.InsertOne(ctx, comment)
	return err
}

func (r *MongoCommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *MongoCommentRepository) FindTopLevel(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	filter := bson.M{"postId": postID, "parentId": bson.M{"$exists": false}}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *MongoCommentRepository) CountTopLevel(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"postId": postID, "parentId": bson.M{"$exists": false}})
}

func (r *MongoCommentRepository) FindReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"parentId": parentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	replies := []models.Comment{}
	if err := cursor.All(ctx, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *MongoCommentRepository) CountReplies(ctx context.Context, parentID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"parentId": parentID})
}

// ReplyCounts resolves reply totals for a whole page of parents with a
// single grouped query instead of one count per comment.
func (r *MongoCommentRepository) ReplyCounts(ctx context.Context, parentIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "parentId", Value: bson.D{{Key: "$in", Value: parentIDs}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$parentId"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func (r *MongoCommentRepository) CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"postId": postID})
}

func (r *MongoCommentRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	entry := models.LikeEntry{User: userID, Date: time.Now().Unix()}
	filter := bson.M{"_id": id, "likes.user": bson.M{"$ne": userID}}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"likes": entry}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
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

func (r *MongoCommentRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCommentRepository) DeleteWithReplies(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"$or": bson.A{bson.M{"_id": id}, bson.M{"parentId": id}}}
	_, err := r.coll.DeleteMany(ctx, filter)
	return err
}

func (r *MongoCommentRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"postId": postID})
	return err
}

func (r *MongoCommentRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	// Direct replies to the user's own comments go with them.
	cursor, err := r.coll.Find(ctx, bson.M{"user": userID, "parentId": bson.M{"$exists": false}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var owned []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &owned); err != nil {
		return err
	}

	ids := make([]primitive.ObjectID, len(owned))
	for i, c := range owned {
		ids[i] = c.ID
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"user": userID},
		bson.M{"parentId": bson.M{"$in": ids}},
	}}
	_, err = r.coll.DeleteMany(ctx, filter)
	return err
}

func (r *MongoCommentRepository) RemoveUserLikes(ctx context.Context, userID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}}
	_, err := r.coll.UpdateMany(ctx, bson.M{}, update)
	return err
}
