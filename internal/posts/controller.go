package posts

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jaehafe/sns/internal/auth"
	"github.com/jaehafe/sns/internal/database"
	"github.com/jaehafe/sns/internal/models"
)

type createPostDTO struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sub   string `json:"sub"`
}

type createCommentDTO struct {
	Body string `json:"body"`
}

func CreatePostHandler(c *gin.Context) {
	user, _ := auth.UserFrom(c)

	var body createPostDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	errs := map[string]string{}
	if body.Title == "" {
		errs["title"] = "Title must not be empty"
	}
	if body.Sub == "" {
		errs["sub"] = "Sub must not be empty"
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	var sub models.Sub
	if err := database.DB.First(&sub, "LOWER(name) = LOWER(?)", body.Sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sub not found"})
			return
		}
		log.Printf("create post: get sub %q: %v", body.Sub, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	post := models.Post{
		Title:    body.Title,
		Body:     body.Body,
		SubName:  sub.Name,
		Username: user.Username,
	}
	if err := database.DB.Create(&post).Error; err != nil {
		log.Printf("create post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	post.SetURL()
	post.Sub = &sub
	c.JSON(http.StatusOK, post)
}

// GetPostsHandler returns the feed, newest first, decorated with vote data
// for the current viewer.
func GetPostsHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	if page < 0 {
		page = 0
	}
	count, _ := strconv.Atoi(c.DefaultQuery("count", "8"))
	if count < 1 || count > 25 {
		count = 8
	}

	var posts []models.Post
	err := database.DB.Preload("Sub").
		Order("created_at DESC").
		Limit(count).
		Offset(page * count).
		Find(&posts).Error
	if err != nil {
		log.Printf("get posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	if err := models.DecoratePosts(database.DB, posts, auth.Username(c)); err != nil {
		log.Printf("get posts: decorate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	c.JSON(http.StatusOK, posts)
}

func GetPostHandler(c *gin.Context) {
	identifier := c.Param("identifier")
	slug := c.Param("slug")

	var post models.Post
	err := database.DB.Preload("Sub").
		First(&post, "identifier = ? AND slug = ?", identifier, slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		log.Printf("get post %s: %v", identifier, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	viewer := auth.Username(c)

	var comments []models.Comment
	if err := database.DB.Where("post_id = ?", post.ID).Order("created_at DESC").Find(&comments).Error; err != nil {
		log.Printf("get post %s comments: %v", identifier, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	if err := models.DecoratePost(database.DB, &post, viewer); err != nil {
		log.Printf("get post %s: decorate: %v", identifier, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if err := models.DecorateComments(database.DB, comments, viewer); err != nil {
		log.Printf("get post %s: decorate comments: %v", identifier, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	post.Comments = comments
	c.JSON(http.StatusOK, post)
}

func CreateCommentHandler(c *gin.Context) {
	user, _ := auth.UserFrom(c)

	var body createCommentDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"body": "Body must not be empty"})
		return
	}

	var post models.Post
	err := database.DB.First(&post, "identifier = ? AND slug = ?", c.Param("identifier"), c.Param("slug")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		log.Printf("create comment: get post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	comment := models.Comment{
		Body:     body.Body,
		Username: user.Username,
		PostID:   post.ID,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		log.Printf("create comment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

func GetPostCommentsHandler(c *gin.Context) {
	var post models.Post
	err := database.DB.First(&post, "identifier = ? AND slug = ?", c.Param("identifier"), c.Param("slug")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		log.Printf("get comments: get post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	var comments []models.Comment
	if err := database.DB.Where("post_id = ?", post.ID).Order("created_at DESC").Find(&comments).Error; err != nil {
		log.Printf("get comments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if err := models.DecorateComments(database.DB, comments, auth.Username(c)); err != nil {
		log.Printf("get comments: decorate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	c.JSON(http.StatusOK, comments)
}
