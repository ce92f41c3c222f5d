package subs

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jaehafe/sns/internal/auth"
	"github.com/jaehafe/sns/internal/database"
	"github.com/jaehafe/sns/internal/models"
)

const imageDir = "public/images"

type createSubDTO struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func CreateSubHandler(c *gin.Context) {
	user, _ := auth.UserFrom(c)

	var body createSubDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	errs := map[string]string{}
	if body.Name == "" {
		errs["name"] = "Name must not be empty"
	}
	if body.Title == "" {
		errs["title"] = "Title must not be empty"
	}
	if len(errs) == 0 {
		// sub names are unique regardless of case
		var count int64
		database.DB.Model(&models.Sub{}).Where("LOWER(name) = LOWER(?)", body.Name).Count(&count)
		if count > 0 {
			errs["name"] = "Sub already exists"
		}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	sub := models.Sub{
		Name:        body.Name,
		Title:       body.Title,
		Description: body.Description,
		Username:    user.Username,
	}
	if err := database.DB.Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"name": "Sub already exists"})
			return
		}
		log.Printf("create sub: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	sub.SetURLs()
	c.JSON(http.StatusOK, sub)
}

func GetSubHandler(c *gin.Context) {
	name := c.Param("name")

	var sub models.Sub
	if err := database.DB.First(&sub, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sub not found"})
			return
		}
		log.Printf("get sub %q: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	var posts []models.Post
	if err := database.DB.Where("sub_name = ?", sub.Name).Order("created_at DESC").Find(&posts).Error; err != nil {
		log.Printf("get sub %q posts: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if err := models.DecoratePosts(database.DB, posts, auth.Username(c)); err != nil {
		log.Printf("get sub %q decorate: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	sub.Posts = posts
	c.JSON(http.StatusOK, sub)
}

type TopSub struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	ImageURL  string `json:"imageUrl"`
	PostCount int64  `json:"postCount"`
}

// TopSubsHandler ranks subs by post count. Subs without posts are included
// with a zero count; ties are broken by name for a stable order.
func TopSubsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit < 1 || limit > 25 {
		limit = 5
	}

	imageExpr := fmt.Sprintf("COALESCE('%s/images/' || s.image_urn, '%s')", models.AppURL(), models.DefaultSubImage)
	query := fmt.Sprintf(`
		SELECT s.title, s.name, %s AS image_url, COUNT(p.id) AS post_count
		FROM subs s
		LEFT JOIN posts p ON s.name = p.sub_name
		GROUP BY s.title, s.name, s.image_urn
		ORDER BY post_count DESC, s.name ASC
		LIMIT ?`, imageExpr)

	var top []TopSub
	if err := database.DB.Raw(query, limit).Scan(&top).Error; err != nil {
		log.Printf("top subs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	if top == nil {
		top = []TopSub{}
	}

	c.JSON(http.StatusOK, top)
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

func UploadSubImageHandler(c *gin.Context) {
	user, _ := auth.UserFrom(c)
	name := c.Param("name")

	var sub models.Sub
	if err := database.DB.First(&sub, "LOWER(name) = LOWER(?)", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sub not found"})
			return
		}
		log.Printf("upload: get sub %q: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	if sub.Username != user.Username {
		c.JSON(http.StatusForbidden, gin.H{"error": "you don't own this sub"})
		return
	}

	fileType := c.PostForm("type")
	if fileType != "image" && fileType != "banner" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be image or banner"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if !allowedImageTypes[fileHeader.Header.Get("Content-Type")] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
		return
	}

	fileName := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	if err := c.SaveUploadedFile(fileHeader, filepath.Join(imageDir, fileName)); err != nil {
		log.Printf("upload: save file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	var old *string
	if fileType == "image" {
		old = sub.ImageUrn
		sub.ImageUrn = &fileName
	} else {
		old = sub.BannerUrn
		sub.BannerUrn = &fileName
	}

	if err := database.DB.Save(&sub).Error; err != nil {
		log.Printf("upload: save sub: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	if old != nil {
		if err := os.Remove(filepath.Join(imageDir, *old)); err != nil {
			log.Printf("upload: remove old file %q: %v", *old, err)
		}
	}

	sub.SetURLs()
	c.JSON(http.StatusOK, sub)
}
