package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"runform-backend/internal/utils"
)

type LoginRequest struct {
	AccessKey string `json:"access_key" binding:"required"`
}

// Login exchanges the operator access key for a bearer token valid for
// 24 hours. Returns 503 when no access key hash is configured.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if Cfg.AccessKeyHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Authentication is not configured"})
		return
	}
	if !utils.CheckAccessKey(req.AccessKey, Cfg.AccessKeyHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid access key"})
		return
	}

	claims := jwt.MapClaims{
		"sub": "operator",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(Cfg.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to sign token", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": signed})
}
