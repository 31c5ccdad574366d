package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"photogram/models"
)

// recentsLimit caps the recent-search log at read time.
const recentsLimit = 25

func (a *API) AddRecentSearch(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	searchID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := a.Users.FindByID(ctx, searchID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	rec := models.RecentSearch{
		UserID:    userID,
		SearchID:  searchID,
		CreatedAt: time.Now().Unix(),
	}
	if err := a.Recents.Add(ctx, &rec); err != nil {
		log.Printf("AddRecentSearch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save search"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) GetRecentSearches(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	recents, err := a.Recents.Find(ctx, userID, recentsLimit)
	if err != nil {
		log.Printf("GetRecentSearches error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch searches"})
		return
	}

	ids := make([]primitive.ObjectID, len(recents))
	for i, rec := range recents {
		ids[i] = rec.SearchID
	}

	previews, err := a.Users.FindPreviews(ctx, ids)
	if err != nil {
		log.Printf("GetRecentSearches previews error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch searches"})
		return
	}

	response := make([]gin.H, 0, len(recents))
	for _, rec := range recents {
		preview, ok := previews[rec.SearchID]
		if !ok {
			// The searched user is gone; drop the stale entry from view.
			continue
		}
		response = append(response, gin.H{
			"_id":       rec.ID.Hex(),
			"search":    preview,
			"createdAt": rec.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, response)
}

func (a *API) RemoveRecentSearch(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	searchID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Recents.Remove(ctx, userID, searchID); err != nil {
		log.Printf("RemoveRecentSearch error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove search"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) RemoveAllRecentSearches(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.Recents.RemoveAll(ctx, userID); err != nil {
		log.Printf("RemoveAllRecentSearches error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear searches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
