package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"photogram/repository"
	"photogram/storage"
)

// API bundles the repositories and the media store behind the HTTP
// handlers. Tests build it with the in-memory repositories.
type API struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Comments repository.CommentRepository
	Follows  repository.FollowRepository
	Recents  repository.RecentRepository
	Media    *storage.Store
}

// myID returns the authenticated user's id set by the JWT middleware.
func myID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

func paramID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// pageParams reads ?page and ?limit with the defaults the pagination
// contract assumes (first page, ten items).
func pageParams(c *gin.Context) (page, limit int64) {
	page, _ = strconv.ParseInt(c.Query("page"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.ParseInt(c.Query("limit"), 10, 64)
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// totalPages is ⌈count/limit⌉, never below 1 so page 1 of an empty list
// is still in range.
func totalPages(count, limit int64) int64 {
	pages := (count + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return pages
}
