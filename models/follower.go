package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Follower is a directed edge: UserID follows FollowTo.
type Follower struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	FollowTo  primitive.ObjectID `bson:"followTo" json:"followTo"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}

// FollowData summarizes the relationship between the caller and another user.
type FollowData struct {
	Followed       bool  `json:"followed"`  // caller follows them
	Following      bool  `json:"following"` // they follow the caller
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}
