package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"runform-backend/internal/biomech"
	"runform-backend/internal/config"
	"runform-backend/internal/engine"
	"runform-backend/internal/models"
	"runform-backend/internal/overlay"
	"runform-backend/internal/pose"
	"runform-backend/internal/source"
	"runform-backend/internal/utils"
)

// timeLayout matches the string timestamps stored on every record.
const timeLayout = "2006-01-02 15:04:05"

// fallbackWidth/Height size the drawing surface for camera sessions
// that have not produced a frame yet.
const (
	fallbackWidth  = 640
	fallbackHeight = 480
)

// ActiveSession pairs a running engine with its database record and
// the metric samples collected for the end-of-session summary.
type ActiveSession struct {
	Record *models.Session
	Engine *engine.Engine
	Canvas *overlay.ImageCanvas

	feed *source.CameraFeed // non-nil for camera sessions
	clip *source.VideoFrames

	startedAt time.Time

	samplesMu      sync.Mutex
	leanSamples    []float64
	cadenceSamples []float64
}

func (s *ActiveSession) recordSample(snap biomech.Snapshot) {
	s.samplesMu.Lock()
	s.leanSamples = append(s.leanSamples, float64(snap.TorsoLeanDeg))
	if snap.CadenceSpm > 0 {
		s.cadenceSamples = append(s.cadenceSamples, float64(snap.CadenceSpm))
	}
	s.samplesMu.Unlock()
}

// SessionManager owns the lifecycle of detection sessions: building the
// frame source and engine for each one, and persisting lifecycle and
// summary records. At most one session runs per manager instance at a
// time per source; concurrent sessions against distinct sources are
// allowed.
type SessionManager struct {
	db        *gorm.DB
	cfg       *config.Config
	estimator pose.Estimator

	mu     sync.RWMutex
	active map[uuid.UUID]*ActiveSession
}

// NewSessionManager creates a session manager backed by the given
// database and pose estimator.
func NewSessionManager(db *gorm.DB, cfg *config.Config, estimator pose.Estimator) *SessionManager {
	return &SessionManager{
		db:        db,
		cfg:       cfg,
		estimator: estimator,
		active:    make(map[uuid.UUID]*ActiveSession),
	}
}

// StartSession builds the frame source and engine for the requested
// input mode, persists a running session record and launches the
// detection loop. mediaID is required for video and image sessions.
func (sm *SessionManager) StartSession(kind string, mediaID *uint) (*ActiveSession, error) {
	active := &ActiveSession{startedAt: time.Now()}

	var (
		src      engine.FrameSource
		mode     engine.Mode
		interval time.Duration
	)
	switch kind {
	case "camera":
		feed, err := source.NewCameraFeed(sm.cfg.MQTTBroker, sm.cfg.FrameTopic)
		if err != nil {
			return nil, fmt.Errorf("failed to open camera feed: %w", err)
		}
		active.feed = feed
		src, mode = feed, engine.ModeCamera
	case "video":
		media, err := sm.lookupMedia(mediaID, "video")
		if err != nil {
			return nil, err
		}
		if media.FrameDir == nil {
			return nil, fmt.Errorf("media %d has no extracted frames", media.ID)
		}
		fps := sm.cfg.ExtractFPS
		if fps <= 0 {
			fps = 30
		}
		clip, err := source.NewVideoFrames(*media.FrameDir, float64(fps))
		if err != nil {
			return nil, fmt.Errorf("failed to open video frames: %w", err)
		}
		clip.Play()
		active.clip = clip
		src, mode = clip, engine.ModeVideo
		interval = time.Second / time.Duration(fps)
	case "image":
		media, err := sm.lookupMedia(mediaID, "image")
		if err != nil {
			return nil, err
		}
		still, err := source.NewStillImage(media.PlaybackPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		src, mode = still, engine.ModeImage
	default:
		return nil, fmt.Errorf("unknown source kind %q", kind)
	}

	width, height := src.Dimensions()
	if width == 0 || height == 0 {
		width, height = fallbackWidth, fallbackHeight
	}
	active.Canvas = overlay.NewImageCanvas(width, height)

	active.Engine = engine.New(engine.Config{
		Estimator:     sm.estimator,
		Source:        src,
		Canvas:        active.Canvas,
		Mode:          mode,
		FrameInterval: interval,
		OnSnapshot:    active.recordSample,
	})

	now := time.Now().Format(timeLayout)
	record := &models.Session{
		ID:         uuid.New(),
		SourceKind: kind,
		MediaID:    mediaID,
		Status:     "running",
		CreateTime: now,
		UpdateTime: now,
	}
	if err := sm.db.Create(record).Error; err != nil {
		active.closeSource()
		return nil, fmt.Errorf("failed to create session record: %w", err)
	}
	active.Record = record

	if err := active.Engine.Start(context.Background()); err != nil {
		active.closeSource()
		sm.db.Model(record).Updates(map[string]interface{}{
			"status": "failed", "update_time": time.Now().Format(timeLayout),
		})
		return nil, err
	}

	sm.mu.Lock()
	sm.active[record.ID] = active
	sm.mu.Unlock()

	slog.Info("session started", "session_id", record.ID, "kind", kind)
	return active, nil
}

// StopSession cancels the session's detection loop, writes the summary
// aggregates to its record and releases the frame source.
func (sm *SessionManager) StopSession(id uuid.UUID) (*models.Session, error) {
	sm.mu.Lock()
	active := sm.active[id]
	delete(sm.active, id)
	sm.mu.Unlock()

	if active == nil {
		return nil, fmt.Errorf("no active session %s", id)
	}

	active.Engine.Stop()
	active.closeSource()

	active.samplesMu.Lock()
	avgLean, stdLean := utils.CalculateStats(active.leanSamples)
	avgCadence, _ := utils.CalculateStats(active.cadenceSamples)
	sampleCount := len(active.leanSamples)
	active.samplesMu.Unlock()

	status := "stopped"
	if active.Engine.State() == engine.StateFailed {
		status = "failed"
	}

	updates := map[string]interface{}{
		"status":             status,
		"duration_sec":       utils.RoundFloat(time.Since(active.startedAt).Seconds(), 2),
		"sample_count":       sampleCount,
		"avg_torso_lean_deg": avgLean,
		"std_torso_lean_deg": stdLean,
		"avg_cadence_spm":    avgCadence,
		"update_time":        time.Now().Format(timeLayout),
	}
	if err := sm.db.Model(active.Record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update session record: %w", err)
	}

	slog.Info("session stopped", "session_id", id, "samples", sampleCount)
	return active.Record, nil
}

// SwitchMode restarts detection against a different input source. The
// old session is stopped and summarized; a fresh session (with reset
// cadence and oscillation state) is started.
func (sm *SessionManager) SwitchMode(id uuid.UUID, kind string, mediaID *uint) (*ActiveSession, error) {
	if _, err := sm.StopSession(id); err != nil {
		return nil, err
	}
	return sm.StartSession(kind, mediaID)
}

// Pause suspends a video session: playback stops and the loop winds
// down on its own rescheduling check.
func (sm *SessionManager) Pause(id uuid.UUID) error {
	active, err := sm.get(id)
	if err != nil {
		return err
	}
	if active.clip == nil {
		return fmt.Errorf("session %s is not a video session", id)
	}
	active.clip.Pause()
	active.Engine.Stop()
	return nil
}

// Resume restarts a paused video session's loop.
func (sm *SessionManager) Resume(id uuid.UUID) error {
	active, err := sm.get(id)
	if err != nil {
		return err
	}
	if active.clip == nil {
		return fmt.Errorf("session %s is not a video session", id)
	}
	active.clip.Play()
	return active.Engine.Start(context.Background())
}

// SetRate changes a video session's playback rate.
func (sm *SessionManager) SetRate(id uuid.UUID, rate float64) error {
	active, err := sm.get(id)
	if err != nil {
		return err
	}
	active.Engine.SetPlaybackRate(rate)
	return nil
}

// Snapshot returns the session's latest metric snapshot.
func (sm *SessionManager) Snapshot(id uuid.UUID) (biomech.Snapshot, error) {
	active, err := sm.get(id)
	if err != nil {
		return biomech.Snapshot{}, err
	}
	return active.Engine.Snapshot(), nil
}

// ActiveCount returns the number of running sessions.
func (sm *SessionManager) ActiveCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.active)
}

func (sm *SessionManager) get(id uuid.UUID) (*ActiveSession, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	active := sm.active[id]
	if active == nil {
		return nil, fmt.Errorf("no active session %s", id)
	}
	return active, nil
}

func (sm *SessionManager) lookupMedia(mediaID *uint, kind string) (*models.Media, error) {
	if mediaID == nil {
		return nil, fmt.Errorf("%s sessions require a media_id", kind)
	}
	var media models.Media
	if err := sm.db.Where("id = ? AND is_deleted = ?", *mediaID, false).First(&media).Error; err != nil {
		return nil, fmt.Errorf("media %d not found: %w", *mediaID, err)
	}
	if media.Kind != kind {
		return nil, fmt.Errorf("media %d is %s, not %s", media.ID, media.Kind, kind)
	}
	return &media, nil
}

func (s *ActiveSession) closeSource() {
	if s.feed != nil {
		s.feed.Close()
	}
}
