package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"runform-backend/internal/database"
	"runform-backend/internal/models"
	"runform-backend/internal/utils"
)

// thumbnailOffsetSec is where in the video the thumbnail is captured.
const thumbnailOffsetSec = 1

// UploadMedia accepts a multipart video or image upload. Videos are
// converted to MP4 for playback, thumbnailed and decoded into the
// frame sequence the detection loop plays back.
func UploadMedia(c *gin.Context) {
	kind := c.PostForm("kind")
	if kind != "video" && kind != "image" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "kind must be 'video' or 'image'"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing file", "details": err.Error()})
		return
	}

	stamp := time.Now().UnixNano()
	base := fmt.Sprintf("%d_%s", stamp, filepath.Base(file.Filename))
	originalPath := filepath.Join(Cfg.MediaDir, "originals", base)
	if err := c.SaveUploadedFile(file, originalPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save upload", "details": err.Error()})
		return
	}

	now := time.Now().Format(timeLayout)
	media := models.Media{
		Kind:         kind,
		OriginalPath: originalPath,
		PlaybackPath: originalPath,
		CreateTime:   now,
		UpdateTime:   now,
	}

	if kind == "video" {
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		playbackPath := filepath.Join(Cfg.MediaDir, "playback", stem+".mp4")
		if err := utils.ConvertToMP4(originalPath, playbackPath, Cfg.FFmpegPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to convert video", "details": err.Error()})
			return
		}
		media.PlaybackPath = playbackPath

		thumbnailPath := filepath.Join(Cfg.MediaDir, "thumbnails", stem+".jpg")
		if err := utils.GenerateThumbnail(playbackPath, thumbnailPath, thumbnailOffsetSec, Cfg.FFmpegPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate thumbnail", "details": err.Error()})
			return
		}
		media.ThumbnailPath = &thumbnailPath

		frameDir := filepath.Join(Cfg.MediaDir, "frames", stem)
		if err := utils.ExtractFrames(playbackPath, frameDir, Cfg.ExtractFPS, Cfg.FFmpegPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to extract frames", "details": err.Error()})
			return
		}
		media.FrameDir = &frameDir
	}

	if err := database.DB.Create(&media).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to insert media record", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, media)
}

// ListMedia returns all non-deleted uploads, newest first.
func ListMedia(c *gin.Context) {
	var media []models.Media
	if err := database.DB.Where("is_deleted = ?", false).
		Order("create_time DESC").
		Find(&media).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Database error", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, media)
}
