package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"strings"  // String manipulation

	"crowdfunding/internal/domain" // Importing domain models
	"crowdfunding/internal/notify" // Email notifications
	"crowdfunding/internal/repo"   // Repository functions
	"crowdfunding/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// Request struct for registration
type RegisterRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=150"`       // Username must be provided
	Email    string `json:"email" form:"email" binding:"required,email,max=254"`       // Email must be a valid address
	Password string `json:"password" form:"password" binding:"required,min=8,max=128"` // Password must be provided
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"` // Username must be provided
	Password string `json:"password" form:"password" binding:"required"` // Password must be provided
}

// Request struct for token refresh
type RefreshRequest struct {
	Refresh string `json:"refresh" form:"refresh" binding:"required"` // Refresh token, with or without the Bearer prefix
}

// UserSummary is the user part of the registration response
type UserSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Response struct for registration
type RegisterResponse struct {
	User    UserSummary `json:"user"`
	Refresh string      `json:"refresh"` // "Bearer <token>"
	Access  string      `json:"access"`  // "Bearer <token>"
}

// Response struct for login
type TokenResponse struct {
	Refresh string `json:"refresh,omitempty"`
	Access  string `json:"access"`
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// isValidUsername checks the username holds only letters, digits and @.+-_
func isValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// RegisterHandler creates a user, returns a token pair and queues a welcome email
func RegisterHandler(store *repo.Store, tokens *utils.TokenIssuer, mail notify.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind request body to struct
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		// Validate username characters
		if !isValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username may contain only letters, digits and @/./+/-/_"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{Username: req.Username, Email: strings.TrimSpace(req.Email), Password: string(hash)}
		if err := store.CreateUser(c.Request.Context(), &user); err != nil {
			if errors.Is(err, domain.ErrDuplicateUser) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
				return
			}
			internalError(c, "Failed to create user", err, logrus.Fields{"username": req.Username})
			return
		}
		pair, err := tokens.IssuePair(user.ID)
		if err != nil {
			internalError(c, "Failed to generate token", err, logrus.Fields{"user_id": user.ID})
			return
		}
		notify.Send(c.Request.Context(), mail, notify.WelcomeJob(&user))
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"username": user.Username,
		}).Info("User registered")
		c.JSON(http.StatusCreated, RegisterResponse{
			User:    UserSummary{Username: user.Username, Email: user.Email},
			Refresh: utils.BearerPrefix + pair.Refresh,
			Access:  utils.BearerPrefix + pair.Access,
		})
	}
}

// LoginHandler authenticates a user and returns a token pair
func LoginHandler(store *repo.Store, tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind request body to struct
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user, err := store.FindUserByUsername(c.Request.Context(), req.Username)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				internalError(c, "Failed to load user", err, logrus.Fields{"username": req.Username})
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		pair, err := tokens.IssuePair(user.ID)
		if err != nil {
			internalError(c, "Failed to generate token", err, logrus.Fields{"user_id": user.ID})
			return
		}
		c.JSON(http.StatusOK, TokenResponse{
			Refresh: utils.BearerPrefix + pair.Refresh,
			Access:  utils.BearerPrefix + pair.Access,
		})
	}
}

// RefreshHandler exchanges a refresh token for a new access token
func RefreshHandler(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		access, err := tokens.Refresh(strings.TrimPrefix(req.Refresh, utils.BearerPrefix))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.JSON(http.StatusOK, TokenResponse{Access: utils.BearerPrefix + access})
	}
}
