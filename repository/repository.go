// Package repository puts a narrow interface in front of every entity's
// persistence so handlers never touch collections directly and tests can
// swap in the in-memory implementations.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"photogram/models"
)

var (
	ErrNotFound  = errors.New("repository: not found")
	ErrDuplicate = errors.New("repository: duplicate")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindByLogin matches login against email or username.
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FindPreviews bulk-fetches projection data for the given ids.
	FindPreviews(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserPreview, error)
	Search(ctx context.Context, text string, limit int64) ([]models.UserPreview, error)
	IsFree(ctx context.Context, email, username string) (bool, error)
	SetAvatar(ctx context.Context, id primitive.ObjectID, dest string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PostUpdate carries the editable post fields; nil means leave unchanged.
type PostUpdate struct {
	Text         *string
	HideComments *bool
	HideLikes    *bool
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// FindByUser pages a user's posts newest-first with a lastId cursor;
	// a nil cursor starts from the newest. reelsOnly keeps video-led posts.
	FindByUser(ctx context.Context, userID primitive.ObjectID, lastID *primitive.ObjectID, limit int64, reelsOnly bool) ([]models.Post, error)
	FindSaved(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Post, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, update PostUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteByUser removes all the user's posts and returns them so the
	// caller can cascade comments and media files.
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	AddLike(ctx context.Context, id, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error
	AddSave(ctx context.Context, id, userID primitive.ObjectID) error
	RemoveSave(ctx context.Context, id, userID primitive.ObjectID) error
	// RemoveUserMarks pulls the user's like and save entries from every post.
	RemoveUserMarks(ctx context.Context, userID primitive.ObjectID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	// FindTopLevel pages a post's parent-less comments newest-first.
	FindTopLevel(ctx context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	CountTopLevel(ctx context.Context, postID primitive.ObjectID) (int64, error)
	// FindReplies pages a comment's replies oldest-first.
	FindReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	CountReplies(ctx context.Context, parentID primitive.ObjectID) (int64, error)
	// ReplyCounts groups reply totals for a page of parents in one query.
	ReplyCounts(ctx context.Context, parentIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
	CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	AddLike(ctx context.Context, id, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error
	// DeleteWithReplies removes the comment and its direct replies only.
	DeleteWithReplies(ctx context.Context, id primitive.ObjectID) error
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
	RemoveUserLikes(ctx context.Context, userID primitive.ObjectID) error
}

type FollowRepository interface {
	// Create inserts a follow edge; an existing (user, followTo) pair
	// yields ErrDuplicate via the unique index.
	Create(ctx context.Context, edge *models.Follower) error
	// Delete removes an edge; deleting a missing edge is a no-op.
	Delete(ctx context.Context, userID, followTo primitive.ObjectID) error
	// Data reports the relationship between myID and userID plus the
	// counts. A zero myID leaves both flags false.
	Data(ctx context.Context, myID, userID primitive.ObjectID) (models.FollowData, error)
	FindFollowers(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follower, error)
	FindFollowing(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follower, error)
	CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// Relationship computes, for each candidate id, whether myID follows
	// them and whether they follow myID, using two bulk queries.
	Relationship(ctx context.Context, myID primitive.ObjectID, ids []primitive.ObjectID) (followed, following map[primitive.ObjectID]bool, err error)
	// DeleteAllFor removes edges in both directions for the user.
	DeleteAllFor(ctx context.Context, userID primitive.ObjectID) error
}

type RecentRepository interface {
	// Add logs a search, replacing any existing (user, search) pair so the
	// entry moves to the front.
	Add(ctx context.Context, rec *models.RecentSearch) error
	Find(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.RecentSearch, error)
	Remove(ctx context.Context, userID, searchID primitive.ObjectID) error
	RemoveAll(ctx context.Context, userID primitive.ObjectID) error
	// RemoveTarget drops every entry pointing at the given user.
	RemoveTarget(ctx context.Context, searchID primitive.ObjectID) error
}
