package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"photogram/models"
	"photogram/repository"
)

func (a *API) Follow(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	targetID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}
	if userID == targetID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot follow yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := a.Users.FindByID(ctx, targetID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	edge := models.Follower{
		UserID:    userID,
		FollowTo:  targetID,
		CreatedAt: time.Now().Unix(),
	}
	if err := a.Follows.Create(ctx, &edge); err != nil {
		if err == repository.ErrDuplicate {
			c.JSON(http.StatusForbidden, gin.H{"error": "Already followed"})
			return
		}
		log.Printf("Follow error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Unfollow is a no-op success when the edge does not exist.
func (a *API) Unfollow(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	targetID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Follows.Delete(ctx, userID, targetID); err != nil {
		log.Printf("Unfollow error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveFollower deletes the reverse edge: :id stops following the caller.
func (a *API) RemoveFollower(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	followerID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid follower ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Follows.Delete(ctx, followerID, userID); err != nil {
		log.Printf("RemoveFollower error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove follower"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) GetFollowers(c *gin.Context) {
	a.listEdges(c, true)
}

func (a *API) GetFollowing(c *gin.Context) {
	a.listEdges(c, false)
}

// listEdges pages one direction of a user's follow edges and annotates
// every listed user with the caller's relationship to them, resolved by
// two bulk queries instead of per-row lookups.
func (a *API) listEdges(c *gin.Context, followers bool) {
	userID, _ := myID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subject, err := a.Users.FindByUsername(ctx, c.Param("username"))
	if err == repository.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("listEdges user error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	page, limit := pageParams(c)

	var count int64
	var edges []models.Follower
	if followers {
		count, err = a.Follows.CountFollowers(ctx, subject.ID)
	} else {
		count, err = a.Follows.CountFollowing(ctx, subject.ID)
	}
	if err != nil {
		log.Printf("listEdges count error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	pages := totalPages(count, limit)
	if page > pages {
		c.JSON(http.StatusForbidden, gin.H{"error": "Page number is bigger than possible", "pages": pages})
		return
	}

	skip := (page - 1) * limit
	if followers {
		edges, err = a.Follows.FindFollowers(ctx, subject.ID, skip, limit)
	} else {
		edges, err = a.Follows.FindFollowing(ctx, subject.ID, skip, limit)
	}
	if err != nil {
		log.Printf("listEdges find error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	ids := make([]primitive.ObjectID, len(edges))
	for i, e := range edges {
		if followers {
			ids[i] = e.UserID
		} else {
			ids[i] = e.FollowTo
		}
	}

	previews, err := a.Users.FindPreviews(ctx, ids)
	if err != nil {
		log.Printf("listEdges previews error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	followed, following, err := a.Follows.Relationship(ctx, userID, ids)
	if err != nil {
		log.Printf("listEdges relationship error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	users := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		entry := gin.H{
			"followed":  followed[id],
			"following": following[id],
		}
		if preview, ok := previews[id]; ok {
			entry["user"] = preview
		} else {
			entry["user"] = gin.H{"_id": id.Hex()}
		}
		users = append(users, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"pages": pages,
		"count": count,
	})
}
