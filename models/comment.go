package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Comment struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID  `bson:"user" json:"user"`
	PostID    primitive.ObjectID  `bson:"postId" json:"postId"`
	ParentID  *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	Text      string              `bson:"text" json:"text"`
	Likes     []LikeEntry         `bson:"likes" json:"likes"`
	CreatedAt int64               `bson:"createdAt" json:"createdAt"`
}

func (c *Comment) LikedBy(userID primitive.ObjectID) bool {
	for _, l := range c.Likes {
		if l.User == userID {
			return true
		}
	}
	return false
}

// IsTopLevel reports whether the comment sits directly on its post.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
