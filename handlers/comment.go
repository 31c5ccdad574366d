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

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (a *API) CreateComment(c *gin.Context) {
	var req CommentRequest
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

	if _, err := a.Posts.FindByID(ctx, postID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	comment := models.Comment{
		UserID:    userID,
		PostID:    postID,
		Text:      strings.TrimSpace(req.Text),
		CreatedAt: time.Now().Unix(),
	}
	if err := a.Comments.Create(ctx, &comment); err != nil {
		log.Printf("CreateComment error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment":      comment,
		"user":         a.userRef(ctx, userID),
		"repliesCount": 0,
	})
}

// Reply attaches a comment under the target's top-level parent, so the
// thread never nests deeper than one level even when the client replies
// to a reply.
func (a *API) Reply(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	targetID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	target, err := a.Comments.FindByID(ctx, targetID)
	if err == repository.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err != nil {
		log.Printf("Reply error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	parentID := target.ID
	if target.ParentID != nil {
		parentID = *target.ParentID
	}

	reply := models.Comment{
		UserID:    userID,
		PostID:    target.PostID,
		ParentID:  &parentID,
		Text:      strings.TrimSpace(req.Text),
		CreatedAt: time.Now().Unix(),
	}
	if err := a.Comments.Create(ctx, &reply); err != nil {
		log.Printf("Reply create error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reply"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment": reply,
		"user":    a.userRef(ctx, userID),
	})
}

// DeleteComment removes the comment and its direct replies; siblings and
// deeper threads are untouched because depth is capped at one.
func (a *API) DeleteComment(c *gin.Context) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	commentID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	comment, err := a.Comments.FindByID(ctx, commentID)
	if err == repository.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err != nil {
		log.Printf("DeleteComment error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "No access"})
		return
	}

	if err := a.Comments.DeleteWithReplies(ctx, commentID); err != nil {
		log.Printf("DeleteComment delete error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetPostComments pages a post's top-level comments newest-first. Reply
// totals for the page come from one grouped query joined in memory, not
// from a count per comment.
func (a *API) GetPostComments(c *gin.Context) {
	userID, _ := myID(c)
	postID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, limit := pageParams(c)

	count, err := a.Comments.CountTopLevel(ctx, postID)
	if err != nil {
		log.Printf("GetPostComments count error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	pages := totalPages(count, limit)
	if page > pages {
		c.JSON(http.StatusForbidden, gin.H{"error": "Page number is bigger than possible", "pages": pages})
		return
	}

	comments, err := a.Comments.FindTopLevel(ctx, postID, (page-1)*limit, limit)
	if err != nil {
		log.Printf("GetPostComments find error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	ids := make([]primitive.ObjectID, len(comments))
	for i, cm := range comments {
		ids[i] = cm.ID
	}
	replyCounts, err := a.Comments.ReplyCounts(ctx, ids)
	if err != nil {
		log.Printf("GetPostComments reply counts error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	annotated, err := a.annotateComments(ctx, comments, userID, replyCounts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"postId":        postID.Hex(),
		"comments":      annotated,
		"pages":         pages,
		"commentsCount": count,
	})
}

// GetCommentReplies pages a comment's replies oldest-first.
func (a *API) GetCommentReplies(c *gin.Context) {
	userID, _ := myID(c)
	parentID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, limit := pageParams(c)

	count, err := a.Comments.CountReplies(ctx, parentID)
	if err != nil {
		log.Printf("GetCommentReplies count error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	pages := totalPages(count, limit)
	if page > pages {
		c.JSON(http.StatusForbidden, gin.H{"error": "Page number is bigger than possible", "pages": pages})
		return
	}

	replies, err := a.Comments.FindReplies(ctx, parentID, (page-1)*limit, limit)
	if err != nil {
		log.Printf("GetCommentReplies find error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch replies"})
		return
	}

	annotated, err := a.annotateComments(ctx, replies, userID, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"parentId":     parentID.Hex(),
		"replies":      annotated,
		"pages":        pages,
		"repliesCount": count,
	})
}

func (a *API) LikeComment(c *gin.Context) {
	a.toggleCommentLike(c, a.Comments.AddLike)
}

func (a *API) UnlikeComment(c *gin.Context) {
	a.toggleCommentLike(c, a.Comments.RemoveLike)
}

func (a *API) toggleCommentLike(c *gin.Context, op func(context.Context, primitive.ObjectID, primitive.ObjectID) error) {
	userID, ok := myID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID"})
		return
	}
	commentID, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := op(ctx, commentID, userID); err != nil {
		if err == repository.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		log.Printf("toggleCommentLike error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// annotateComments joins author previews (one bulk fetch) plus the
// caller's liked flag, and reply counts when given.
func (a *API) annotateComments(ctx context.Context, comments []models.Comment, userID primitive.ObjectID, replyCounts map[primitive.ObjectID]int64) ([]gin.H, error) {
	authorIDs := make([]primitive.ObjectID, len(comments))
	for i, cm := range comments {
		authorIDs[i] = cm.UserID
	}
	previews, err := a.Users.FindPreviews(ctx, authorIDs)
	if err != nil {
		log.Printf("annotateComments previews error: %v", err)
		return nil, err
	}

	out := make([]gin.H, len(comments))
	for i, cm := range comments {
		entry := gin.H{
			"comment":    cm,
			"liked":      cm.LikedBy(userID),
			"likesCount": len(cm.Likes),
		}
		if preview, ok := previews[cm.UserID]; ok {
			entry["user"] = gin.H{
				"_id":        preview.ID.Hex(),
				"username":   preview.Username,
				"avatarDest": preview.AvatarDest,
			}
		}
		if replyCounts != nil {
			entry["repliesCount"] = replyCounts[cm.ID]
		}
		out[i] = entry
	}
	return out, nil
}
