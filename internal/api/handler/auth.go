package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Suryathangaraj2003/consulting/internal/apperr"
	"github.com/Suryathangaraj2003/consulting/internal/config"
	"github.com/Suryathangaraj2003/consulting/internal/models"
	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
)

// Context keys populated by the auth middleware.
const (
	ctxUserID   = "userID"
	ctxUserType = "userType"
)

// generateJWT issues an HS256 token carrying the verified identity.
func (h *Handler) generateJWT(userID, userType string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   userID,
		"user_type": userType,
		"exp":       time.Now().Add(config.TokenTTL).Unix(),
		"iss":       "consulting-service",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}

// parseToken validates a token and extracts the (userID, userType) pair.
func (h *Handler) parseToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid token claims")
	}
	userID, _ := claims["user_id"].(string)
	userType, _ := claims["user_type"].(string)
	if userID == "" || userType == "" {
		return "", "", errors.New("token missing identity claims")
	}
	return userID, userType, nil
}

// AuthRequired verifies the bearer token and stores the identity on the
// request context. Every protected route trusts this pair without
// re-verifying.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization token missing"})
			return
		}

		userID, userType, err := h.parseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token or expired"})
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxUserType, userType)
		c.Next()
	}
}

func identity(c *gin.Context) (string, string) {
	return c.GetString(ctxUserID), c.GetString(ctxUserType)
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	UserType  string `json:"user_type"`

	LicenseNumber  string   `json:"license_number"`
	Specialization string   `json:"specialization"`
	Experience     string   `json:"experience"`
	Bio            string   `json:"bio"`
	HourlyRate     float64  `json:"hourly_rate"`
	Availability   []string `json:"availability"`
}

// Register creates an account and returns a token for it.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	fields := map[string]string{}
	if req.FirstName == "" {
		fields["first_name"] = "required"
	}
	if req.LastName == "" {
		fields["last_name"] = "required"
	}
	if req.Email == "" {
		fields["email"] = "required"
	}
	if len(req.Password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	if req.UserType != models.UserTypeClient && req.UserType != models.UserTypeCounselor {
		fields["user_type"] = "must be client or counselor"
	}
	if len(fields) > 0 {
		verr := &apperr.ValidationError{Fields: fields}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": verr.Fields})
		return
	}

	if existing, _ := h.Storage.GetUserByEmail(req.Email, req.UserType); existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
		Phone:     req.Phone,
		UserType:  req.UserType,
	}
	if req.UserType == models.UserTypeCounselor {
		user.LicenseNumber = req.LicenseNumber
		user.Specialization = req.Specialization
		user.Experience = req.Experience
		user.Bio = req.Bio
		user.HourlyRate = req.HourlyRate
		if user.HourlyRate == 0 {
			user.HourlyRate = 100
		}
		user.Availability = pq.StringArray(req.Availability)
	}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if err := h.Storage.SaveUser(&user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	token, err := h.generateJWT(user.ID, user.UserType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"token":   token,
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

// Login checks credentials and returns a fresh token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, err := h.Storage.GetUserByEmail(req.Email, req.UserType)
	if err != nil || !user.CheckPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := h.generateJWT(user.ID, user.UserType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Me returns the authenticated user's record.
func (h *Handler) Me(c *gin.Context) {
	userID, _ := identity(c)
	user, err := h.Storage.GetUserByID(userID)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListCounselors is the public counselor listing used by the booking form.
func (h *Handler) ListCounselors(c *gin.Context) {
	counselors, err := h.Storage.GetCounselors()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(http.StatusOK, counselors)
}
