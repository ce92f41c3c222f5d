package router

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jaehafe/sns/internal/auth"
	"github.com/jaehafe/sns/internal/posts"
	"github.com/jaehafe/sns/internal/subs"
	"github.com/jaehafe/sns/internal/users"
	"github.com/jaehafe/sns/internal/votes"
)

// New builds the gin engine with all API routes registered.
func New() *gin.Engine {
	r := gin.Default()

	origin := os.Getenv("ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// identity attach runs on every route; RequireAuth guards mutating ones
	r.Use(auth.CurrentUser())

	r.Static("/images", "public/images")

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	a := r.Group("/auth")
	{
		a.POST("/register", auth.RegisterHandler)
		a.POST("/login", auth.LoginHandler)
		a.GET("/me", auth.RequireAuth(), auth.MeHandler)
		a.POST("/logout", auth.RequireAuth(), auth.LogoutHandler)
	}

	s := r.Group("/subs")
	{
		s.POST("", auth.RequireAuth(), subs.CreateSubHandler)
		s.GET("/:name", subs.GetSubHandler)
		// matched as /subs/sub/topSubs by the client
		s.GET("/:name/topSubs", subs.TopSubsHandler)
		s.POST("/:name/upload", auth.RequireAuth(), subs.UploadSubImageHandler)
	}

	p := r.Group("/posts")
	{
		p.POST("", auth.RequireAuth(), posts.CreatePostHandler)
		p.GET("", posts.GetPostsHandler)
		p.GET("/:identifier/:slug", posts.GetPostHandler)
		p.GET("/:identifier/:slug/comments", posts.GetPostCommentsHandler)
		p.POST("/:identifier/:slug/comments", auth.RequireAuth(), posts.CreateCommentHandler)
	}

	r.POST("/votes", auth.RequireAuth(), votes.VoteHandler)
	r.GET("/users/:username", users.GetUserHandler)

	return r
}
