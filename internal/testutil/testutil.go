package testutil

import (
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jaehafe/sns/internal/database"
	"github.com/jaehafe/sns/internal/models"
)

// Setup opens an in-memory sqlite database, migrates the schema, points the
// global connection at it and sets the signing secret for the test's lifetime.
func Setup(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	// a named shared-cache DB so every pooled connection sees the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	return db
}

// CreateUser inserts a user with a bcrypt-hashed password.
func CreateUser(t *testing.T, db *gorm.DB, username, email, password string) models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{Username: username, Email: email, Password: string(hashed)}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateSub inserts a sub owned by the given user.
func CreateSub(t *testing.T, db *gorm.DB, name, title, owner string) models.Sub {
	t.Helper()
	sub := models.Sub{Name: name, Title: title, Username: owner}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("create sub %s: %v", name, err)
	}
	return sub
}

// CreatePost inserts a post; identifier and slug come from the model hooks.
func CreatePost(t *testing.T, db *gorm.DB, title, subName, author string) models.Post {
	t.Helper()
	post := models.Post{Title: title, Body: "body of " + title, SubName: subName, Username: author}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return post
}
