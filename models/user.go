package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email        string             `bson:"email" json:"email"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Fullname     string             `bson:"fullname,omitempty" json:"fullname,omitempty"`
	AvatarDest   string             `bson:"avatarDest,omitempty" json:"avatarDest,omitempty"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Private      bool               `bson:"privateAccount" json:"privateAccount"`
	CreatedAt    int64              `bson:"createdAt" json:"createdAt"`
}

// UserPreview is the projection embedded in post/comment/search responses.
type UserPreview struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Username   string             `bson:"username" json:"username"`
	Fullname   string             `bson:"fullname,omitempty" json:"fullname,omitempty"`
	AvatarDest string             `bson:"avatarDest,omitempty" json:"avatarDest,omitempty"`
}

func (u *User) Preview() UserPreview {
	return UserPreview{
		ID:         u.ID,
		Username:   u.Username,
		Fullname:   u.Fullname,
		AvatarDest: u.AvatarDest,
	}
}
