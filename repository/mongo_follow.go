package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"photogram/models"
)

type MongoFollowRepository struct {
	coll *mongo.Collection
}

func NewMongoFollowRepository(coll *mongo.Collection) *MongoFollowRepository {
	return &MongoFollowRepository{coll: coll}
}

func (r *MongoFollowRepository) Create(ctx context.Context, edge *models.Follower) error {
	if edge.ID.IsZero() {
		edge.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, edge)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *MongoFollowRepository) Delete(ctx context.Context, userID, followTo primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"user": userID, "followTo": followTo})
	return err
}

func (r *MongoFollowRepository) Data(ctx context.Context, myID, userID primitive.ObjectID) (models.FollowData, error) {
	var data models.FollowData

	if !myID.IsZero() {
		count, err := r.coll.CountDocuments(ctx, bson.M{"user": myID, "followTo": userID})
		if err != nil {
			return data, err
		}
		data.Followed = count > 0

		count, err = r.coll.CountDocuments(ctx, bson.M{"user": userID, "followTo": myID})
		if err != nil {
			return data, err
		}
		data.Following = count > 0
	}

	var err error
	data.FollowersCount, err = r.coll.CountDocuments(ctx, bson.M{"followTo": userID})
	if err != nil {
		return data, err
	}
	data.FollowingCount, err = r.coll.CountDocuments(ctx, bson.M{"user": userID})
	return data, err
}

func (r *MongoFollowRepository) FindFollowers(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follower, error) {
	return r.find(ctx, bson.M{"followTo": userID}, skip, limit)
}

func (r *MongoFollowRepository) FindFollowing(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follower, error) {
	return r.find(ctx, bson.M{"user": userID}, skip, limit)
}

func (r *MongoFollowRepository) find(ctx context.Context, filter bson.M, skip, limit int64) ([]models.Follower, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	edges := []models.Follower{}
	if err := cursor.All(ctx, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}

func (r *MongoFollowRepository) CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"followTo": userID})
}

func (r *MongoFollowRepository) CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"user": userID})
}

// Relationship answers both directions for a page of candidate ids with
// two $in queries joined in memory.
func (r *MongoFollowRepository) Relationship(ctx context.Context, myID primitive.ObjectID, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, map[primitive.ObjectID]bool, error) {
	followed := make(map[primitive.ObjectID]bool, len(ids))
	following := make(map[primitive.ObjectID]bool, len(ids))
	if myID.IsZero() || len(ids) == 0 {
		return followed, following, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"user": myID, "followTo": bson.M{"$in": ids}})
	if err != nil {
		return nil, nil, err
	}
	var outgoing []models.Follower
	if err := cursor.All(ctx, &outgoing); err != nil {
		return nil, nil, err
	}
	for _, e := range outgoing {
		followed[e.FollowTo] = true
	}

	cursor, err = r.coll.Find(ctx, bson.M{"followTo": myID, "user": bson.M{"$in": ids}})
	if err != nil {
		return nil, nil, err
	}
	var incoming []models.Follower
	if err := cursor.All(ctx, &incoming); err != nil {
		return nil, nil, err
	}
	for _, e := range incoming {
		following[e.UserID] = true
	}

	return followed, following, nil
}

func (r *MongoFollowRepository) DeleteAllFor(ctx context.Context, userID primitive.ObjectID) error {
	filter := bson.M{"$or": bson.A{bson.M{"user": userID}, bson.M{"followTo": userID}}}
	_, err := r.coll.DeleteMany(ctx, filter)
	return err
}
