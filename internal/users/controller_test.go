package users_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehafe/sns/internal/models"
	"github.com/jaehafe/sns/internal/router"
	"github.com/jaehafe/sns/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetUserProfile(t *testing.T) {
	db := testutil.Setup(t)
	r := router.New()
	testutil.CreateUser(t, db, "alice", "alice@example.com", "secret123")
	testutil.CreateUser(t, db, "bob", "bob@example.com", "secret123")
	testutil.CreateSub(t, db, "cats", "cats", "alice")
	post := testutil.CreatePost(t, db, "Cute cat picture", "cats", "bob")
	require.NoError(t, db.Create(&models.Comment{Body: "my own comment", Username: "bob", PostID: post.ID}).Error)

	w := get(r, "/users/bob")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		User     map[string]interface{}   `json:"user"`
		UserData []map[string]interface{} `json:"userData"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	assert.Equal(t, "bob", res.User["username"])
	assert.Contains(t, res.User, "createdAt")
	assert.NotContains(t, res.User, "email")
	assert.NotContains(t, res.User, "password")

	require.Len(t, res.UserData, 2)
	kinds := []string{}
	for _, entry := range res.UserData {
		kind, _ := entry["type"].(string)
		kinds = append(kinds, kind)
	}
	assert.ElementsMatch(t, []string{"Post", "Comment"}, kinds)
}

func TestGetUserNotFound(t *testing.T) {
	testutil.Setup(t)
	r := router.New()

	w := get(r, "/users/ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
