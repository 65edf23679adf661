package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"runform-backend/internal/pose"
)

// VideoFrames plays back a video as the sequence of JPEG frames ffmpeg
// extracted from it. It implements both the engine's FrameSource and
// Playable interfaces: the loop keeps rescheduling while Playing is
// true, and SetRate changes how many source frames each pull advances.
type VideoFrames struct {
	files  []string
	fps    float64
	width  int
	height int
	start  time.Time

	mu      sync.Mutex
	cursor  float64
	rate    float64
	playing bool
}

// NewVideoFrames loads the sorted *.jpg frames under dir, extracted at
// the given frame rate. Frame timestamps are synthesized from the
// cursor position so cadence timing works at any processing speed.
func NewVideoFrames(dir string, fps float64) (*VideoFrames, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no extracted frames found in %s", dir)
	}
	sort.Strings(files)

	width, height, err := imageSize(files[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read first frame: %w", err)
	}

	return &VideoFrames{
		files:  files,
		fps:    fps,
		width:  width,
		height: height,
		start:  time.Now(),
		rate:   1.0,
	}, nil
}

// Play starts or resumes playback, rewinding when it already ran out.
func (v *VideoFrames) Play() {
	v.mu.Lock()
	if int(v.cursor) >= len(v.files) {
		v.cursor = 0
	}
	v.playing = true
	v.mu.Unlock()
}

// Pause suspends playback without moving the cursor.
func (v *VideoFrames) Pause() {
	v.mu.Lock()
	v.playing = false
	v.mu.Unlock()
}

// Playing reports whether playback is active and frames remain.
func (v *VideoFrames) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing && int(v.cursor) < len(v.files)
}

// SetRate changes the playback rate. Rates above 1 skip source frames,
// rates below 1 revisit them. Non-positive rates are ignored.
func (v *VideoFrames) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	v.mu.Lock()
	v.rate = rate
	v.mu.Unlock()
}

// Ready reports whether a frame is available at the current cursor.
func (v *VideoFrames) Ready() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing && int(v.cursor) < len(v.files)
}

// Dimensions returns the native pixel size of the video frames.
func (v *VideoFrames) Dimensions() (int, int) {
	return v.width, v.height
}

// Frame reads the frame under the cursor and advances by the playback
// rate. When the cursor passes the last frame playback ends.
func (v *VideoFrames) Frame() (*pose.Frame, error) {
	v.mu.Lock()
	idx := int(v.cursor)
	if idx >= len(v.files) {
		v.playing = false
		v.mu.Unlock()
		return nil, fmt.Errorf("playback ended after %d frames", len(v.files))
	}
	v.cursor += v.rate
	if int(v.cursor) >= len(v.files) {
		v.playing = false
	}
	v.mu.Unlock()

	data, err := os.ReadFile(v.files[idx])
	if err != nil {
		return nil, fmt.Errorf("failed to read frame %d: %w", idx, err)
	}
	return &pose.Frame{
		Data:      data,
		Width:     v.width,
		Height:    v.height,
		Timestamp: v.start.Add(time.Duration(float64(idx) / v.fps * float64(time.Second))),
	}, nil
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
