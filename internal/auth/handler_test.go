package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehafe/sns/internal/auth"
	"github.com/jaehafe/sns/internal/router"
	"github.com/jaehafe/sns/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, username string) *http.Cookie {
	t.Helper()
	token, err := auth.GenerateToken(username)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func TestRegisterThenLogin(t *testing.T) {
	testutil.Setup(t)
	r := router.New()

	w := perform(r, http.MethodPost, "/auth/register", gin.H{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var registered map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.Equal(t, "alice", registered["username"])
	assert.NotContains(t, registered, "password")

	w = perform(r, http.MethodPost, "/auth/login", gin.H{
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	res := w.Result()
	var token *http.Cookie
	for _, ck := range res.Cookies() {
		if ck.Name == auth.CookieName {
			token = ck
		}
	}
	require.NotNil(t, token, "login should set a session cookie")
	assert.True(t, token.HttpOnly)
	assert.Equal(t, 60*60*24*7, token.MaxAge)
	assert.Equal(t, "/", token.Path)

	claims, err := auth.ParseToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestRegisterValidation(t *testing.T) {
	testutil.Setup(t)
	r := router.New()

	w := perform(r, http.MethodPost, "/auth/register", gin.H{
		"email":    "",
		"username": "ab",
		"password": "short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var errs map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errs))
	assert.Equal(t, "Email must not be empty", errs["email"])
	assert.Equal(t, "Username must be at least 3 characters", errs["username"])
	assert.Equal(t, "Password must be at least 6 characters", errs["password"])
}

func TestRegisterRejectsTakenIdentity(t *testing.T) {
	db := testutil.Setup(t)
	r := router.New()
	testutil.CreateUser(t, db, "alice", "alice@example.com", "secret123")

	w := perform(r, http.MethodPost, "/auth/register", gin.H{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var errs map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errs))
	assert.Equal(t, "Email is already taken", errs["email"])
	assert.Equal(t, "Username is already taken", errs["username"])
}

func TestLoginUnknownUsername(t *testing.T) {
	testutil.Setup(t)
	r := router.New()

	w := perform(r, http.MethodPost, "/auth/login", gin.H{
		"username": "ghost",
		"password": "whatever",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Username is not registered")
}

func TestLoginWrongPassword(t *testing.T) {
	db := testutil.Setup(t)
	r := router.New()
	testutil.CreateUser(t, db, "alice", "alice@example.com", "secret123")

	w := perform(r, http.MethodPost, "/auth/login", gin.H{
		"username": "alice",
		"password": "wrongpass",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Password is incorrect")
}

func TestMeRequiresSession(t *testing.T) {
	testutil.Setup(t)
	r := router.New()

	w := perform(r, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthenticated")
}

func TestMeReturnsCurrentUser(t *testing.T) {
	db := testutil.Setup(t)
	r := router.New()
	testutil.CreateUser(t, db, "alice", "alice@example.com", "secret123")

	w := perform(r, http.MethodGet, "/auth/me", nil, sessionCookie(t, "alice"))
	require.Equal(t, http.StatusOK, w.Code)

	var me map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "alice", me["username"])
	assert.NotContains(t, me, "password")
}

func TestInvalidCookieIsRejected(t *testing.T) {
	testutil.Setup(t)
	r := router.New()

	bad := &http.Cookie{Name: auth.CookieName, Value: "garbage"}

	// even on a public route a malformed session is a hard error
	w := perform(r, http.MethodGet, "/posts", nil, bad)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid session")
}

func TestTokenForDeletedUserIsAnonymous(t *testing.T) {
	testutil.Setup(t)
	r := router.New()

	ghost := sessionCookie(t, "ghost")

	// public routes still work, just without an identity
	w := perform(r, http.MethodGet, "/posts", nil, ghost)
	assert.Equal(t, http.StatusOK, w.Code)

	// protected routes treat the request as unauthenticated
	w = perform(r, http.MethodGet, "/auth/me", nil, ghost)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutExpiresCookie(t *testing.T) {
	db := testutil.Setup(t)
	r := router.New()
	testutil.CreateUser(t, db, "alice", "alice@example.com", "secret123")

	w := perform(r, http.MethodPost, "/auth/logout", nil, sessionCookie(t, "alice"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")

	res := w.Result()
	var cleared *http.Cookie
	for _, ck := range res.Cookies() {
		if ck.Name == auth.CookieName {
			cleared = ck
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.MaxAge < 0 || strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0"))
}
