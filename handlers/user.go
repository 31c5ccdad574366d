package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"photogram/repository"
)

func (a *API) GetMe(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := a.Users.FindByID(ctx, userID)
	if err == repository.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("GetMe error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	data, err := a.Follows.Data(ctx, userID, user.ID)
	if err != nil {
		log.Printf("GetMe follow data error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":           user,
		"followersCount": data.FollowersCount,
		"followingCount": data.FollowingCount,
	})
}

// GetUser returns a profile by username with the relationship flags
// relative to the caller.
func (a *API) GetUser(c *gin.Context) {
	userID, _ := myID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := a.Users.FindByUsername(ctx, c.Param("username"))
	if err == repository.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("GetUser error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	data, err := a.Follows.Data(ctx, userID, user.ID)
	if err != nil {
		log.Printf("GetUser follow data error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":           user,
		"followed":       data.Followed,
		"following":      data.Following,
		"followersCount": data.FollowersCount,
		"followingCount": data.FollowingCount,
	})
}

func (a *API) SearchUser(c *gin.Context) {
	text := c.Param("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search text required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users, err := a.Users.Search(ctx, text, 20)
	if err != nil {
		log.Printf("SearchUser error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// DeleteAccount removes the user and everything hanging off them: posts
// with their comments and media, comments and likes left elsewhere,
// follow edges in both directions, recent-search entries on either side,
// and the uploads directory.
func (a *API) DeleteAccount(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	posts, err := a.Posts.DeleteByUser(ctx, userID)
	if err != nil {
		log.Printf("DeleteAccount posts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}
	for _, p := range posts {
		if err := a.Comments.DeleteByPost(ctx, p.ID); err != nil {
			log.Printf("DeleteAccount comments of post %s: %v", p.ID.Hex(), err)
		}
	}

	if err := a.Comments.DeleteByUser(ctx, userID); err != nil {
		log.Printf("DeleteAccount comments error: %v", err)
	}
	if err := a.Comments.RemoveUserLikes(ctx, userID); err != nil {
		log.Printf("DeleteAccount comment likes error: %v", err)
	}
	if err := a.Posts.RemoveUserMarks(ctx, userID); err != nil {
		log.Printf("DeleteAccount post marks error: %v", err)
	}
	if err := a.Follows.DeleteAllFor(ctx, userID); err != nil {
		log.Printf("DeleteAccount follow edges error: %v", err)
	}
	if err := a.Recents.RemoveAll(ctx, userID); err != nil {
		log.Printf("DeleteAccount recents error: %v", err)
	}
	if err := a.Recents.RemoveTarget(ctx, userID); err != nil {
		log.Printf("DeleteAccount recent targets error: %v", err)
	}
	if err := a.Media.RemoveAll(userID.Hex()); err != nil {
		log.Printf("DeleteAccount media error: %v", err)
	}

	if err := a.Users.Delete(ctx, userID); err != nil {
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("DeleteAccount user error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
