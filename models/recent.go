package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// RecentSearch logs that UserID looked up SearchID's profile.
type RecentSearch struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	SearchID  primitive.ObjectID `bson:"search" json:"search"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}
