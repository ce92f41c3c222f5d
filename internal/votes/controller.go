package votes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/jaehafe/sns/internal/auth"
	"github.com/jaehafe/sns/internal/database"
	"github.com/jaehafe/sns/internal/models"
)

type voteDTO struct {
	Identifier        string `json:"identifier"`
	Slug              string `json:"slug"`
	CommentIdentifier string `json:"commentIdentifier"`
	Value             *int   `json:"value"`
}

// VoteHandler casts, changes or retracts a vote on a post or comment. A value
// of 0 retracts the voter's existing vote; the operation is an upsert keyed by
// (voter, content item), so repeating it is idempotent.
func VoteHandler(c *gin.Context) {
	user, _ := auth.UserFrom(c)

	var body voteDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Value == nil || (*body.Value != -1 && *body.Value != 0 && *body.Value != 1) {
		c.JSON(http.StatusBadRequest, gin.H{"value": "Value must be -1, 0 or 1"})
		return
	}
	value := *body.Value

	var post models.Post
	err := database.DB.First(&post, "identifier = ? AND slug = ?", body.Identifier, body.Slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		log.Printf("vote: get post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	if body.CommentIdentifier != "" {
		var comment models.Comment
		err = database.DB.First(&comment, "identifier = ? AND post_id = ?", body.CommentIdentifier, post.ID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
				return
			}
			log.Printf("vote: get comment: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
			return
		}
		err = castVote(database.DB, user.Username, value, nil, &comment.ID)
	} else {
		err = castVote(database.DB, user.Username, value, &post.ID, nil)
	}
	if err != nil {
		log.Printf("vote: cast: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	viewer := user.Username

	var comments []models.Comment
	if err := database.DB.Where("post_id = ?", post.ID).Order("created_at DESC").Find(&comments).Error; err != nil {
		log.Printf("vote: load comments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if err := models.DecoratePost(database.DB, &post, viewer); err != nil {
		log.Printf("vote: decorate post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if err := models.DecorateComments(database.DB, comments, viewer); err != nil {
		log.Printf("vote: decorate comments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	post.Comments = comments
	c.JSON(http.StatusOK, post)
}

// castVote upserts the voter's row for one content item. Exactly one of
// postID/commentID is set. Inserting can race a concurrent cast by the same
// voter; the unique index turns that into ErrDuplicatedKey, which is applied
// as an update instead.
func castVote(db *gorm.DB, username string, value int, postID, commentID *uint) error {
	cond := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Where("username = ?", username)
		if postID != nil {
			return tx.Where("post_id = ?", *postID)
		}
		return tx.Where("comment_id = ?", *commentID)
	}

	var vote models.Vote
	err := cond(db).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if value == 0 {
			return nil
		}
		vote = models.Vote{
			Username:  username,
			Value:     value,
			PostID:    postID,
			CommentID: commentID,
		}
		if err := db.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return cond(db.Model(&models.Vote{})).Update("value", value).Error
			}
			return err
		}
		return nil
	}
	if err != nil {
		return err
	}

	if value == 0 {
		return db.Delete(&vote).Error
	}
	if vote.Value != value {
		vote.Value = value
		return db.Save(&vote).Error
	}
	return nil
}
