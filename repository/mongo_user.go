package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"photogram/models"
)

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{coll: coll}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	filter := bson.M{"$or": bson.A{bson.M{"email": login}, bson.M{"username": login}}}
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) FindPreviews(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserPreview, error) {
	previews := make(map[primitive.ObjectID]models.UserPreview, len(ids))
	if len(ids) == 0 {
		return previews, nil
	}

	opts := options.Find().SetProjection(bson.M{"username": 1, "fullname": 1, "avatarDest": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.UserPreview
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		previews[u.ID] = u
	}
	return previews, nil
}

func (r *MongoUserRepository) Search(ctx context.Context, text string, limit int64) ([]models.UserPreview, error) {
	filter := bson.M{"username": bson.M{"$regex": text, "$options": "i"}}
	opts := options.Find().
		SetProjection(bson.M{"username": 1, "fullname": 1, "avatarDest": 1}).
		SetSort(bson.D{{Key: "username", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.UserPreview{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoUserRepository) IsFree(ctx context.Context, email, username string) (bool, error) {
	clauses := bson.A{}
	if email != "" {
		clauses = append(clauses, bson.M{"email": email})
	}
	if username != "" {
		clauses = append(clauses, bson.M{"username": username})
	}
	if len(clauses) == 0 {
		return true, nil
	}
	count, err := r.coll.CountDocuments(ctx, bson.M{"$or": clauses})
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *MongoUserRepository) SetAvatar(ctx context.Context, id primitive.ObjectID, dest string) error {
	update := bson.M{"$set": bson.M{"avatarDest": dest}}
	if dest == "" {
		update = bson.M{"$unset": bson.M{"avatarDest": ""}}
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
