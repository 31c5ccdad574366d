package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type MediaStyles struct {
	Transform string `bson:"transform,omitempty" json:"transform,omitempty"`
}

type Media struct {
	Dest   string      `bson:"dest" json:"dest"`
	Type   string      `bson:"type" json:"type"` // "image" or "video"
	Styles MediaStyles `bson:"styles" json:"styles"`
}

// LikeEntry marks one user's like (or save) with the moment it happened.
type LikeEntry struct {
	User primitive.ObjectID `bson:"user" json:"user"`
	Date int64              `bson:"date" json:"date"`
}

type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID       primitive.ObjectID `bson:"user" json:"user"`
	Text         string             `bson:"text,omitempty" json:"text"`
	Aspect       float64            `bson:"aspect" json:"aspect"`
	Media        []Media            `bson:"media" json:"media"`
	Likes        []LikeEntry        `bson:"likes" json:"likes"`
	Saves        []LikeEntry        `bson:"saves" json:"saves"`
	HideComments bool               `bson:"hideComments" json:"hideComments"`
	HideLikes    bool               `bson:"hideLikes" json:"hideLikes"`
	CreatedAt    int64              `bson:"createdAt" json:"createdAt"`
}

func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l.User == userID {
			return true
		}
	}
	return false
}

func (p *Post) SavedBy(userID primitive.ObjectID) bool {
	for _, s := range p.Saves {
		if s.User == userID {
			return true
		}
	}
	return false
}

// IsReel reports whether the post leads with a video.
func (p *Post) IsReel() bool {
	return len(p.Media) > 0 && p.Media[0].Type == "video"
}
