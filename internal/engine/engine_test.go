package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runform-backend/internal/biomech"
	"runform-backend/internal/pose"
)

type nopCanvas struct{ clears int }

func (c *nopCanvas) Clear()                     { c.clears++ }
func (c *nopCanvas) FillCircle(x, y, r float64) {}
func (c *nopCanvas) Line(x1, y1, x2, y2 float64) {}

// staticSource serves the same frame forever.
type staticSource struct{}

func (staticSource) Ready() bool            { return true }
func (staticSource) Dimensions() (int, int) { return 640, 480 }
func (staticSource) Frame() (*pose.Frame, error) {
	return &pose.Frame{Width: 640, Height: 480, Timestamp: time.Now()}, nil
}

// playableSource stops reporting playback after a fixed number of pulls.
type playableSource struct {
	mu        sync.Mutex
	remaining int
	rate      float64
}

func (s *playableSource) Ready() bool            { return true }
func (s *playableSource) Dimensions() (int, int) { return 640, 480 }
func (s *playableSource) Frame() (*pose.Frame, error) {
	s.mu.Lock()
	s.remaining--
	s.mu.Unlock()
	return &pose.Frame{Width: 640, Height: 480, Timestamp: time.Now()}, nil
}
func (s *playableSource) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining > 0
}
func (s *playableSource) SetRate(rate float64) {
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
}

// scriptedEstimator returns its result sets in order, repeating the
// last one, and can block until released.
type scriptedEstimator struct {
	mu      sync.Mutex
	results [][]pose.Pose
	calls   int

	started chan struct{} // closed on first call, when set
	release chan struct{} // blocks every call until closed, when set
}

func (e *scriptedEstimator) Estimate(ctx context.Context, frame *pose.Frame) ([]pose.Pose, error) {
	e.mu.Lock()
	idx := e.calls
	e.calls++
	started := e.started
	e.started = nil
	e.mu.Unlock()

	if started != nil {
		close(started)
	}
	if e.release != nil {
		<-e.release
	}

	if idx >= len(e.results) {
		idx = len(e.results) - 1
	}
	if idx < 0 {
		return nil, nil
	}
	return e.results[idx], nil
}

func (e *scriptedEstimator) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func runnerPose() pose.Pose {
	points := map[int][2]float64{
		pose.Nose:          {104, 55},
		pose.LeftShoulder:  {95, 100},
		pose.RightShoulder: {115, 100},
		pose.LeftHip:       {90, 200},
		pose.RightHip:      {110, 200},
		pose.RightKnee:     {112, 250},
		pose.RightAnkle:    {114, 300},
		pose.LeftAnkle:     {88, 300},
	}
	var p pose.Pose
	for id, xy := range points {
		p.Keypoints = append(p.Keypoints, pose.Keypoint{ID: id, X: xy[0], Y: xy[1], Confidence: 0.9})
	}
	return p
}

func waitForState(t *testing.T, e *Engine, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("engine never reached state %s, stuck in %s", want, e.State())
}

func TestEmptyPoseListLeavesSnapshotUntouched(t *testing.T) {
	est := &scriptedEstimator{results: [][]pose.Pose{
		{runnerPose()},
		{}, // second frame detects nobody
	}}
	e := New(Config{
		Estimator: est,
		Source:    staticSource{},
		Canvas:    &nopCanvas{},
		Mode:      ModeVideo,
	})
	ctx := context.Background()

	e.step(ctx)
	after := e.Snapshot()
	assert.NotZero(t, after.TorsoLeanDeg)

	e.step(ctx)
	assert.Equal(t, after, e.Snapshot(), "a frame with no pose must not touch the snapshot")
}

func TestCameraModeComputesTorsoLeanOnly(t *testing.T) {
	est := &scriptedEstimator{results: [][]pose.Pose{{runnerPose()}}}
	e := New(Config{
		Estimator: est,
		Source:    staticSource{},
		Canvas:    &nopCanvas{},
		Mode:      ModeCamera,
	})

	e.step(context.Background())
	snap := e.Snapshot()

	assert.NotZero(t, snap.TorsoLeanDeg)
	assert.NotEmpty(t, snap.LeanClass)
	assert.Zero(t, snap.KneeAngleDeg)
	assert.Zero(t, snap.HipAngleDeg)
	assert.Zero(t, snap.HeadAlignmentDeg)
	assert.Zero(t, snap.CadenceSpm)
}

func TestVideoModeComputesFullMetricSet(t *testing.T) {
	est := &scriptedEstimator{results: [][]pose.Pose{{runnerPose()}}}
	e := New(Config{
		Estimator: est,
		Source:    staticSource{},
		Canvas:    &nopCanvas{},
		Mode:      ModeVideo,
	})

	e.step(context.Background())
	snap := e.Snapshot()

	assert.NotZero(t, snap.TorsoLeanDeg)
	assert.NotZero(t, snap.KneeAngleDeg)
	assert.NotZero(t, snap.HipAngleDeg)
	assert.NotZero(t, snap.HeadAlignmentDeg)
}

func TestImagePassRunsExactlyOnce(t *testing.T) {
	est := &scriptedEstimator{results: [][]pose.Pose{{runnerPose()}}}
	e := New(Config{
		Estimator:     est,
		Source:        staticSource{},
		Canvas:        &nopCanvas{},
		Mode:          ModeImage,
		FrameInterval: time.Millisecond,
	})

	require.NoError(t, e.Start(context.Background()))
	waitForState(t, e, StateReady)

	assert.Equal(t, 1, est.callCount())
	// Give a resurrected loop time to show itself.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, est.callCount())
}

func TestVideoLoopStopsWhenPlaybackEnds(t *testing.T) {
	est := &scriptedEstimator{results: [][]pose.Pose{{runnerPose()}}}
	src := &playableSource{remaining: 3}
	e := New(Config{
		Estimator:     est,
		Source:        src,
		Canvas:        &nopCanvas{},
		Mode:          ModeVideo,
		FrameInterval: time.Millisecond,
	})

	require.NoError(t, e.Start(context.Background()))
	waitForState(t, e, StateReady)

	assert.Equal(t, 3, est.callCount())
}

func TestStopDiscardsInflightResult(t *testing.T) {
	est := &scriptedEstimator{
		results: [][]pose.Pose{{runnerPose()}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	e := New(Config{
		Estimator:     est,
		Source:        staticSource{},
		Canvas:        &nopCanvas{},
		Mode:          ModeCamera,
		FrameInterval: time.Millisecond,
	})

	require.NoError(t, e.Start(context.Background()))
	<-est.started // estimation is in flight

	stopped := make(chan struct{})
	go func() {
		e.Stop()
		close(stopped)
	}()

	// Let the cancel land, then release the in-flight estimate.
	time.Sleep(10 * time.Millisecond)
	close(est.release)
	<-stopped

	assert.Equal(t, biomech.Snapshot{}, e.Snapshot(), "result that completed after cancel must be discarded")
	assert.Equal(t, 1, est.callCount())

	// A cancelled loop must not resurrect itself.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, est.callCount())
	assert.Equal(t, StateReady, e.State())
}

func TestStartWithoutEstimator(t *testing.T) {
	e := New(Config{Source: staticSource{}, Canvas: &nopCanvas{}, Mode: ModeCamera})

	assert.Equal(t, StateLoading, e.State())
	assert.ErrorIs(t, e.Start(context.Background()), ErrModelLoading)
}

func TestStartTwiceFails(t *testing.T) {
	est := &scriptedEstimator{
		results: [][]pose.Pose{{runnerPose()}},
		release: make(chan struct{}),
	}
	e := New(Config{
		Estimator:     est,
		Source:        staticSource{},
		Canvas:        &nopCanvas{},
		Mode:          ModeCamera,
		FrameInterval: time.Millisecond,
	})

	require.NoError(t, e.Start(context.Background()))
	assert.ErrorIs(t, e.Start(context.Background()), ErrAlreadyRunning)

	close(est.release)
	e.Stop()
}

func TestHaltMarksSessionFailed(t *testing.T) {
	est := &scriptedEstimator{results: [][]pose.Pose{{runnerPose()}}}
	e := New(Config{
		Estimator:     est,
		Source:        staticSource{},
		Canvas:        &nopCanvas{},
		Mode:          ModeCamera,
		FrameInterval: time.Millisecond,
	})

	require.NoError(t, e.Start(context.Background()))
	e.Halt()

	assert.Equal(t, StateFailed, e.State())
	assert.Error(t, e.Start(context.Background()), "a failed session must not restart")
}
