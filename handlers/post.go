package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"photogram/models"
	"photogram/repository"
)

type MediaRequest struct {
	Dest   string `json:"dest" binding:"required"`
	Type   string `json:"type" binding:"required,oneof=image video"`
	Styles struct {
		Transform string `json:"transform"`
	} `json:"styles"`
}

type CreatePostRequest struct {
	Text         string         `json:"text"`
	Aspect       float64        `json:"aspect" binding:"required"`
	Media        []MediaRequest `json:"media" binding:"required,min=1,max=10"`
	HideComments bool           `json:"hideComments"`
	HideLikes    bool           `json:"hideLikes"`
}

type EditPostRequest struct {
	Text         *string `json:"text"`
	HideComments *bool   `json:"hideComments"`
	HideLikes    *bool   `json:"hideLikes"`
}

func (a *API) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Every referenced file must live in the caller's own upload
	// directory, otherwise deleting this post would unlink someone
	// else's media.
	media := make([]models.Media, len(req.Media))
	for i, m := range req.Media {
		if !a.Media.Owned(userID.Hex(), m.Dest) {
			c.JSON(http.StatusForbidden, gin.H{"error": "No access"})
			return
		}
		media[i] = models.Media{
			Dest:   m.Dest,
			Type:   m.Type,
			Styles: models.MediaStyles{Transform: m.Styles.Transform},
		}
	}

	post := models.Post{
		UserID:       userID,
		Text:         strings.TrimSpace(req.Text),
		Aspect:       req.Aspect,
		Media:        media,
		HideComments: req.HideComments,
		HideLikes:    req.HideLikes,
		CreatedAt:    time.Now().Unix(),
	}

	if err := a.Posts.Create(ctx, &post); err != nil {
		log.Printf("CreatePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"post": post,
		"user": a.userRef(ctx, userID),
	})
}

func (a *API) GetPost(c *gin.Context) {
	userID, _ := myID(c)
	postID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := a.Posts.FindByID(ctx, postID)
	if err == repository.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("GetPost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	commentsCount, err := a.Comments.CountByPost(ctx, post.ID)
	if err != nil {
		log.Printf("GetPost comments count error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":          post,
		"user":          a.userRef(ctx, post.UserID),
		"liked":         post.LikedBy(userID),
		"saved":         post.SavedBy(userID),
		"likesCount":    len(post.Likes),
		"commentsCount": commentsCount,
	})
}

func (a *API) EditPost(c *gin.Context) {
	var req EditPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	postID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := a.Posts.FindByID(ctx, postID)
	if err == repository.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("EditPost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if post.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "No access"})
		return
	}

	update := repository.PostUpdate{
		HideComments: req.HideComments,
		HideLikes:    req.HideLikes,
	}
	if req.Text != nil {
		trimmed := strings.TrimSpace(*req.Text)
		update.Text = &trimmed
	}

	if err := a.Posts.Update(ctx, postID, update); err != nil {
		log.Printf("EditPost update error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeletePost removes the post, every comment referencing it, and its
// media files on disk.
func (a *API) DeletePost(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	postID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	post, err := a.Posts.FindByID(ctx, postID)
	if err == repository.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		log.Printf("DeletePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if post.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "No access"})
		return
	}

	if err := a.Posts.Delete(ctx, postID); err != nil {
		log.Printf("DeletePost delete error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	if err := a.Comments.DeleteByPost(ctx, postID); err != nil {
		log.Printf("DeletePost comments error: %v", err)
	}
	for _, m := range post.Media {
		if err := a.Media.Remove(m.Dest); err != nil {
			log.Printf("DeletePost media %q: %v", m.Dest, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) GetUserPosts(c *gin.Context) {
	a.listUserPosts(c, false)
}

func (a *API) GetUserReels(c *gin.Context) {
	a.listUserPosts(c, true)
}

// listUserPosts pages a user's posts newest-first with a lastId cursor.
func (a *API) listUserPosts(c *gin.Context, reelsOnly bool) {
	userID, _ := myID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subject, err := a.Users.FindByUsername(ctx, c.Param("username"))
	if err == repository.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("listUserPosts user error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var lastID *primitive.ObjectID
	if raw := c.Query("lastId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lastId"})
			return
		}
		lastID = &id
	}
	_, limit := pageParams(c)

	posts, err := a.Posts.FindByUser(ctx, subject.ID, lastID, limit, reelsOnly)
	if err != nil {
		log.Printf("listUserPosts find error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  subject.Preview(),
		"posts": a.annotatePosts(posts, userID),
	})
}

func (a *API) GetSavedPosts(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, limit := pageParams(c)
	posts, count, err := a.Posts.FindSaved(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		log.Printf("GetSavedPosts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	pages := totalPages(count, limit)
	if page > pages {
		c.JSON(http.StatusForbidden, gin.H{"error": "Page number is bigger than possible", "pages": pages})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": a.annotatePosts(posts, userID),
		"pages": pages,
		"count": count,
	})
}

func (a *API) LikePost(c *gin.Context) {
	a.togglePostMark(c, a.Posts.AddLike)
}

func (a *API) UnlikePost(c *gin.Context) {
	a.togglePostMark(c, a.Posts.RemoveLike)
}

func (a *API) SavePost(c *gin.Context) {
	a.togglePostMark(c, a.Posts.AddSave)
}

func (a *API) UnsavePost(c *gin.Context) {
	a.togglePostMark(c, a.Posts.RemoveSave)
}

// togglePostMark runs one of the idempotent like/save set operations.
func (a *API) togglePostMark(c *gin.Context, op func(context.Context, primitive.ObjectID, primitive.ObjectID) error) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	postID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := op(ctx, postID, userID); err != nil {
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		log.Printf("togglePostMark error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// annotatePosts adds per-caller liked/saved flags and like counts.
func (a *API) annotatePosts(posts []models.Post, userID primitive.ObjectID) []gin.H {
	out := make([]gin.H, len(posts))
	for i, p := range posts {
		out[i] = gin.H{
			"post":       p,
			"liked":      p.LikedBy(userID),
			"saved":      p.SavedBy(userID),
			"likesCount": len(p.Likes),
		}
	}
	return out
}

// userRef resolves the compact author shape embedded in post and comment
// responses.
func (a *API) userRef(ctx context.Context, id primitive.ObjectID) gin.H {
	previews, err := a.Users.FindPreviews(ctx, []primitive.ObjectID{id})
	if err != nil {
		log.Printf("userRef error: %v", err)
	}
	if preview, ok := previews[id]; ok {
		return gin.H{
			"_id":        preview.ID.Hex(),
			"username":   preview.Username,
			"avatarDest": preview.AvatarDest,
		}
	}
	return gin.H{"_id": id.Hex()}
}
