package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"photogram/handlers"
	"photogram/middleware"
)

func SetupRouter(api *handlers.API) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Static("/uploads", api.Media.Root())

	healthcheck := func(c *gin.Context) {
		c.String(200, "OK")
	}
	router.GET("/", healthcheck)
	router.GET("/health", healthcheck)

	// Public routes
	auth := router.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware())
	auth.POST("/register", api.Register)
	auth.POST("/login", api.Login)
	auth.POST("/check", api.CheckIsFree)

	// Everything below requires a valid token
	protected := router.Group("/")
	protected.Use(middleware.JWTAuthMiddleware())

	protected.POST("/auth/avatar", api.UploadAvatar)
	protected.DELETE("/auth/avatar", api.RemoveAvatar)

	protected.POST("/follow/:id", api.Follow)
	protected.DELETE("/follow/:id", api.Unfollow)
	protected.DELETE("/follow/follower/:id", api.RemoveFollower)
	protected.GET("/follow/followers/:username", api.GetFollowers)
	protected.GET("/follow/following/:username", api.GetFollowing)

	protected.GET("/search/:text", api.SearchUser)

	protected.POST("/recent/search/:id", api.AddRecentSearch)
	protected.GET("/recent/search", api.GetRecentSearches)
	protected.DELETE("/recent/search", api.RemoveAllRecentSearches)
	protected.DELETE("/recent/search/:id", api.RemoveRecentSearch)

	protected.POST("/posts", api.CreatePost)
	protected.GET("/posts/:id", api.GetPost)
	protected.DELETE("/posts/:id", api.DeletePost)
	protected.PATCH("/posts/:id", api.EditPost)

	protected.GET("/user", api.GetMe)
	protected.DELETE("/user", api.DeleteAccount)
	protected.GET("/user/:username", api.GetUser)
	protected.GET("/user/posts/:username", api.GetUserPosts)
	protected.GET("/user/reels/:username", api.GetUserReels)
	protected.GET("/user/saved", api.GetSavedPosts)

	protected.POST("/posts/like/:id", api.LikePost)
	protected.DELETE("/posts/like/:id", api.UnlikePost)
	protected.POST("/posts/save/:id", api.SavePost)
	protected.DELETE("/posts/save/:id", api.UnsavePost)

	protected.POST("/comment/:id", api.CreateComment)
	protected.DELETE("/comment/:id", api.DeleteComment)
	protected.GET("/comment/:id", api.GetPostComments)

	protected.POST("/reply/:id", api.Reply)
	protected.GET("/reply/:id", api.GetCommentReplies)

	protected.POST("/comment/like/:id", api.LikeComment)
	protected.DELETE("/comment/like/:id", api.UnlikeComment)

	protected.POST("/upload", api.UploadPostMedia)
	protected.DELETE("/upload", api.DeleteUploads)
	protected.DELETE("/upload/:name", api.DeleteUpload)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error": "Endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})

	return router
}
