package users

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jaehafe/sns/internal/auth"
	"github.com/jaehafe/sns/internal/database"
	"github.com/jaehafe/sns/internal/models"
)

// timelineEntry is one item of a user's public activity feed: a post or a
// comment, flattened to JSON with a discriminating "type" field.
type timelineEntry struct {
	createdAt time.Time
	data      map[string]interface{}
}

func flatten(v interface{}, kind string, createdAt time.Time) (timelineEntry, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return timelineEntry{}, err
	}
	data := map[string]interface{}{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return timelineEntry{}, err
	}
	data["type"] = kind
	return timelineEntry{createdAt: createdAt, data: data}, nil
}

// GetUserHandler returns a public profile: the user plus their posts and
// comments merged into one timeline, newest first. Only the username and join
// date are exposed.
func GetUserHandler(c *gin.Context) {
	username := c.Param("username")

	var user models.User
	if err := database.DB.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Printf("get user %q: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	viewer := auth.Username(c)

	var posts []models.Post
	if err := database.DB.Preload("Sub").Where("username = ?", user.Username).Find(&posts).Error; err != nil {
		log.Printf("get user %q posts: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if err := models.DecoratePosts(database.DB, posts, viewer); err != nil {
		log.Printf("get user %q: decorate posts: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	var comments []models.Comment
	if err := database.DB.Preload("Post").Where("username = ?", user.Username).Find(&comments).Error; err != nil {
		log.Printf("get user %q comments: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if err := models.DecorateComments(database.DB, comments, viewer); err != nil {
		log.Printf("get user %q: decorate comments: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	entries := make([]timelineEntry, 0, len(posts)+len(comments))
	for i := range posts {
		e, err := flatten(&posts[i], "Post", posts[i].CreatedAt)
		if err != nil {
			log.Printf("get user %q: flatten post: %v", username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
			return
		}
		entries = append(entries, e)
	}
	for i := range comments {
		e, err := flatten(&comments[i], "Comment", comments[i].CreatedAt)
		if err != nil {
			log.Printf("get user %q: flatten comment: %v", username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
			return
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].createdAt.After(entries[j].createdAt)
	})

	userData := make([]map[string]interface{}, len(entries))
	for i, e := range entries {
		userData[i] = e.data
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"username":  user.Username,
			"createdAt": user.CreatedAt,
		},
		"userData": userData,
	})
}
