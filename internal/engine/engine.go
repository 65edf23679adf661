// Package engine runs the per-frame detection loop: it pulls frames
// from a source, asks the pose estimator for poses, updates the form
// metrics and draws the overlay, then reschedules itself until the
// session is stopped.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"runform-backend/internal/biomech"
	"runform-backend/internal/overlay"
	"runform-backend/internal/pose"
)

// Mode selects the per-frame policy for a session's input source.
type Mode string

const (
	// ModeCamera loops unconditionally and computes torso lean only,
	// keeping the live path cheap.
	ModeCamera Mode = "camera"
	// ModeVideo loops while the source reports it is playing and
	// computes the full metric set.
	ModeVideo Mode = "video"
	// ModeImage runs a single estimation pass over a still image.
	ModeImage Mode = "image"
)

// State is the engine lifecycle phase.
type State string

const (
	StateLoading State = "loading" // no estimator available, loop cannot start
	StateReady   State = "ready"
	StateRunning State = "running"
	StateIdle    State = "idle"
	StateFailed  State = "failed" // frame source lost, needs full reinit
)

var (
	// ErrModelLoading is returned by Start while no pose estimator is
	// available. There is no automatic retry.
	ErrModelLoading = errors.New("pose estimator is not available")
	// ErrAlreadyRunning is returned by Start when a loop is in flight.
	ErrAlreadyRunning = errors.New("detection loop is already running")
)

// FrameSource supplies frames to the loop. Implementations wrap a live
// camera feed, a playing video or a still image.
type FrameSource interface {
	// Ready reports whether a frame can be pulled right now.
	Ready() bool
	// Dimensions returns the native pixel size of the source. The
	// engine reads it once to size the drawing surface.
	Dimensions() (width, height int)
	// Frame returns the current frame. The returned frame must not be
	// modified by the caller.
	Frame() (*pose.Frame, error)
}

// Playable is implemented by frame sources with playback semantics.
// The video loop keeps rescheduling only while Playing returns true.
type Playable interface {
	Playing() bool
	SetRate(rate float64)
}

// Config wires an Engine's collaborators.
type Config struct {
	Estimator pose.Estimator
	Source    FrameSource
	Canvas    overlay.Canvas
	Mode      Mode

	// FrameInterval is the delay between loop iterations. Zero means
	// DefaultFrameInterval.
	FrameInterval time.Duration

	// OnSnapshot, when set, receives a copy of the metric snapshot
	// after every frame that produced a pose.
	OnSnapshot func(biomech.Snapshot)

	// Clock overrides time.Now for cadence timing. Tests and offline
	// analysis set it; nil means wall clock.
	Clock func() time.Time
}

// DefaultFrameInterval approximates a 30fps processing rate.
const DefaultFrameInterval = 33 * time.Millisecond

// Engine owns one detection session: the metric snapshot, the cadence
// and oscillation state, and the loop goroutine that mutates them. All
// session state is written from that single goroutine; readers get
// copies through Snapshot.
type Engine struct {
	estimator pose.Estimator
	source    FrameSource
	canvas    overlay.Canvas
	mode      Mode
	interval  time.Duration
	now       func() time.Time

	onSnapshot func(biomech.Snapshot)

	// tracker is only touched from the loop goroutine.
	tracker *biomech.Tracker

	mu     sync.RWMutex
	state  State
	snap   biomech.Snapshot
	halted bool
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds an engine for one session. The engine starts in the
// Loading state when no estimator is supplied and stays there until it
// is rebuilt with one.
func New(cfg Config) *Engine {
	e := &Engine{
		estimator:  cfg.Estimator,
		source:     cfg.Source,
		canvas:     cfg.Canvas,
		mode:       cfg.Mode,
		interval:   cfg.FrameInterval,
		now:        cfg.Clock,
		onSnapshot: cfg.OnSnapshot,
		tracker:    biomech.NewTracker(),
		state:      StateReady,
	}
	if e.interval <= 0 {
		e.interval = DefaultFrameInterval
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.estimator == nil {
		e.state = StateLoading
	}
	return e
}

// Mode returns the session's input-source mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// State returns the current lifecycle phase.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Snapshot returns a copy of the latest metric snapshot.
func (e *Engine) Snapshot() biomech.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// Start launches the detection loop. For video sessions Start doubles
// as the play action and may be called again after the loop stopped on
// pause; the session's cadence window and oscillation baseline carry
// over, they reset only when a new engine is built.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateLoading:
		e.mu.Unlock()
		return ErrModelLoading
	case StateRunning:
		e.mu.Unlock()
		return ErrAlreadyRunning
	case StateFailed:
		e.mu.Unlock()
		return errors.New("session failed, frame source must be reinitialized")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	e.state = StateRunning
	done := e.done
	e.mu.Unlock()

	go e.run(loopCtx, done)
	return nil
}

// Stop cancels the loop and blocks until the in-flight iteration has
// wound down. A pending pose estimation is allowed to complete but its
// result is discarded. Safe to call when no loop is running.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	done := e.done
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Halt is the frame-source-loss hook: it stops the loop and marks the
// session failed so it cannot be restarted without full
// reinitialization.
func (e *Engine) Halt() {
	e.mu.Lock()
	e.halted = true
	e.mu.Unlock()
	e.Stop()
}

// SetPlaybackRate forwards a rate change to playable sources. It is a
// no-op for camera and image sessions.
func (e *Engine) SetPlaybackRate(rate float64) {
	if p, ok := e.source.(Playable); ok {
		p.SetRate(rate)
	}
}

func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer func() {
		e.mu.Lock()
		if e.halted {
			e.state = StateFailed
		} else if e.state == StateRunning {
			e.state = StateReady
		}
		e.mu.Unlock()
		close(done)
	}()

	timer := time.NewTimer(e.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		e.step(ctx)

		// Cancellation is checked before every reschedule; a cancelled
		// loop never re-arms itself.
		if ctx.Err() != nil || !e.shouldContinue() {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(e.interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// shouldContinue applies the per-mode rescheduling policy.
func (e *Engine) shouldContinue() bool {
	switch e.mode {
	case ModeImage:
		return false
	case ModeVideo:
		p, ok := e.source.(Playable)
		return ok && p.Playing()
	default:
		return true
	}
}

// step runs one loop iteration: pull frame, estimate, clear surface,
// update metrics from the first pose, render. A frame with no detected
// pose leaves the snapshot untouched.
func (e *Engine) step(ctx context.Context) {
	if !e.source.Ready() {
		return
	}
	frame, err := e.source.Frame()
	if err != nil {
		slog.Warn("failed to pull frame", "error", err)
		return
	}

	poses, err := e.estimator.Estimate(ctx, frame)
	if ctx.Err() != nil {
		// Cancelled while the estimate was in flight: discard the
		// result rather than applying it.
		return
	}
	if err != nil {
		slog.Warn("pose estimation failed", "error", err)
		return
	}

	e.canvas.Clear()
	if len(poses) == 0 {
		return
	}
	first := poses[0]

	ts := frame.Timestamp
	if ts.IsZero() {
		ts = e.now()
	}
	e.updateMetrics(first, ts)
	overlay.Draw(e.canvas, first)

	if e.onSnapshot != nil {
		e.onSnapshot(e.Snapshot())
	}
}

// updateMetrics recomputes the snapshot from one pose. Camera sessions
// compute torso lean only; video and image sessions run the full set.
func (e *Engine) updateMetrics(p pose.Pose, ts time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.snap.TorsoLeanDeg = biomech.TorsoLean(p)
	e.snap.LeanClass, e.snap.LeanFeedback = biomech.ClassifyLean(float64(e.snap.TorsoLeanDeg))

	if e.mode == ModeCamera {
		return
	}

	if v, ok := biomech.KneeAngle(p); ok {
		e.snap.KneeAngleDeg = v
	}
	if v, ok := biomech.HipAngle(p); ok {
		e.snap.HipAngleDeg = v
	}

	// Strike detection reads the hip baseline from the previous frame,
	// so it must run before Oscillation advances it.
	la, okL := p.Keypoint(pose.LeftAnkle)
	ra, okR := p.Keypoint(pose.RightAnkle)
	if okL && okR {
		if spm, ok := e.tracker.RecordStrikes(la.Y, ra.Y, ts); ok {
			e.snap.CadenceSpm = spm
		}
	}
	if _, hipY, ok := p.Midpoint(pose.LeftHip, pose.RightHip); ok {
		e.snap.VerticalOscillationPx = e.tracker.Oscillation(hipY)
	} else {
		e.snap.VerticalOscillationPx = 0
	}

	e.snap.HeadAlignmentDeg = biomech.HeadAlignment(p)
}
