package auth

import (
	"errors"
	"log"
	"net/http"
	"os"
	"regexp"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jaehafe/sns/internal/database"
	"github.com/jaehafe/sns/internal/models"
)

// session cookie lives 7 days
const cookieMaxAge = 60 * 60 * 24 * 7

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type registerDTO struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func validateRegister(body registerDTO) map[string]string {
	errs := map[string]string{}
	if body.Email == "" {
		errs["email"] = "Email must not be empty"
	} else if !emailRegex.MatchString(body.Email) {
		errs["email"] = "Email address is invalid"
	}
	if len(body.Username) < 3 {
		errs["username"] = "Username must be at least 3 characters"
	}
	if len(body.Password) < 6 {
		errs["password"] = "Password must be at least 6 characters"
	}
	return errs
}

func RegisterHandler(c *gin.Context) {
	var body registerDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	errs := validateRegister(body)
	if len(errs) == 0 {
		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			errs["email"] = "Email is already taken"
		}
		database.DB.Model(&models.User{}).Where("username = ?", body.Username).Count(&count)
		if count > 0 {
			errs["username"] = "Username is already taken"
		}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.MinCost+2)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	user := models.User{
		Email:    body.Email,
		Username: body.Username,
		Password: string(hashed),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race against a concurrent registration
			c.JSON(http.StatusBadRequest, gin.H{"error": "email or username already taken"})
			return
		}
		log.Printf("register: create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func LoginHandler(c *gin.Context) {
	var body loginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	errs := map[string]string{}
	if body.Username == "" {
		errs["username"] = "Username must not be empty"
	}
	if body.Password == "" {
		errs["password"] = "Password must not be empty"
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	var user models.User
	if err := database.DB.First(&user, "username = ?", body.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"username": "Username is not registered"})
			return
		}
		log.Printf("login: lookup user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"password": "Password is incorrect"})
		return
	}

	token, err := GenerateToken(user.Username)
	if err != nil {
		log.Printf("login: generate token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	setSessionCookie(c, token, cookieMaxAge)
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func LogoutHandler(c *gin.Context) {
	setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func MeHandler(c *gin.Context) {
	user, _ := UserFrom(c)
	c.JSON(http.StatusOK, user)
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	secure := os.Getenv("APP_ENV") == "production"
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", secure, true)
}
