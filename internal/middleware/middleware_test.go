package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crowdfunding/internal/domain"
	"crowdfunding/internal/repo"
	"crowdfunding/internal/testutil"
	"crowdfunding/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoAmI(c *gin.Context) {
	id, _ := UserID(c)
	c.JSON(http.StatusOK, gin.H{"user_id": id})
}

func TestJWTAuthMiddleware(t *testing.T) {
	issuer := utils.NewTokenIssuer("secret", time.Hour, time.Hour)
	pair, err := issuer.IssuePair(9)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(issuer), whoAmI)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "no bearer prefix", header: pair.Access, status: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + pair.Refresh, status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "access token", header: "Bearer " + pair.Access, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAllowedHostsMiddleware(t *testing.T) {
	tests := []struct {
		hosts  []string
		host   string
		status int
	}{
		{hosts: []string{"*"}, host: "anything.example", status: http.StatusOK},
		{hosts: nil, host: "anything.example", status: http.StatusOK},
		{hosts: []string{"api.example.com"}, host: "api.example.com:8000", status: http.StatusOK},
		{hosts: []string{"api.example.com"}, host: "evil.com", status: http.StatusBadRequest},
		{hosts: []string{".example.com"}, host: "www.example.com", status: http.StatusOK},
		{hosts: []string{".example.com"}, host: "example.com", status: http.StatusOK},
		{hosts: []string{".example.com"}, host: "badexample.com", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		r := gin.New()
		r.GET("/", AllowedHostsMiddleware(tt.hosts), func(c *gin.Context) { c.Status(http.StatusOK) })
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = tt.host
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.status, w.Code, "hosts %v host %s", tt.hosts, tt.host)
	}
}

func TestCollectAuthorOnly(t *testing.T) {
	ctx := context.Background()
	store := repo.New(testutil.NewDB(t))
	alice := &domain.User{Username: "alice", Email: "alice@x.com", Password: "hash"}
	bob := &domain.User{Username: "bob", Email: "bob@x.com", Password: "hash"}
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NoError(t, store.CreateUser(ctx, bob))
	collect := &domain.Collect{AuthorID: alice.ID, Title: "Gift", Occasion: domain.OccasionOther, EndDate: time.Now()}
	require.NoError(t, store.CreateCollect(ctx, collect))

	own := fmt.Sprintf("/collects/%d", collect.ID)
	as := func(id uint) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(UserIDKey, id) }
	}
	ok := func(c *gin.Context) {
		loaded := c.MustGet(CollectKey).(*domain.Collect)
		c.JSON(http.StatusOK, gin.H{"id": loaded.ID})
	}

	tests := []struct {
		name   string
		user   uint
		path   string
		status int
	}{
		{name: "author", user: alice.ID, path: own, status: http.StatusOK},
		{name: "someone else", user: bob.ID, path: own, status: http.StatusForbidden},
		{name: "unknown collect", user: alice.ID, path: "/collects/99", status: http.StatusNotFound},
		{name: "bad id", user: alice.ID, path: "/collects/abc", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.DELETE("/collects/:id", as(tt.user), CollectAuthorOnly(store), ok)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(), RequestLogger())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}
