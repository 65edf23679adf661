package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"runform-backend/internal/config"
	"runform-backend/internal/database"
	"runform-backend/internal/models"
)

// Manager and Cfg are wired by the server bootstrap before any route
// is registered.
var (
	Manager *SessionManager
	Cfg     *config.Config
)

// --- Structs for Request Binding ---

type StartSessionRequest struct {
	SourceKind string `json:"source_kind" binding:"required"`
	MediaID    *uint  `json:"media_id"`
}

type SwitchModeRequest struct {
	SourceKind string `json:"source_kind" binding:"required"`
	MediaID    *uint  `json:"media_id"`
}

type SetRateRequest struct {
	Rate float64 `json:"rate" binding:"required,gt=0"`
}

// --- Handler Functions ---

func StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active, err := Manager.StartSession(req.SourceKind, req.MediaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to start session", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, active.Record)
}

func StopSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	record, err := Manager.StopSession(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Failed to stop session", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func SwitchSessionMode(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req SwitchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active, err := Manager.SwitchMode(id, req.SourceKind, req.MediaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to switch mode", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, active.Record)
}

func PauseSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := Manager.Pause(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to pause session", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session paused"})
}

func ResumeSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := Manager.Resume(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to resume session", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session resumed"})
}

func SetPlaybackRate(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := Manager.SetRate(id, req.Rate); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Failed to set playback rate", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Playback rate updated", "rate": req.Rate})
}

func GetSessionMetrics(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	snap, err := Manager.Snapshot(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Session not active", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var session models.Session
	if err := database.DB.Where("id = ? AND is_deleted = ?", id, false).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

func ListSessions(c *gin.Context) {
	var sessions []models.Session
	if err := database.DB.Where("is_deleted = ?", false).
		Order("create_time DESC").
		Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid session ID format"})
		return uuid.Nil, false
	}
	return id, true
}
