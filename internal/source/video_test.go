package source

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrames(t *testing.T, count int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < count; i++ {
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("frame_%06d.jpg", i+1)))
		require.NoError(t, err)
		require.NoError(t, jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 6)), nil))
		require.NoError(t, f.Close())
	}
	return dir
}

func TestNewVideoFramesEmptyDir(t *testing.T) {
	_, err := NewVideoFrames(t.TempDir(), 30)
	assert.Error(t, err)
}

func TestVideoFramesPlayback(t *testing.T) {
	clip, err := NewVideoFrames(writeFrames(t, 3), 30)
	require.NoError(t, err)

	w, h := clip.Dimensions()
	assert.Equal(t, 8, w)
	assert.Equal(t, 6, h)

	assert.False(t, clip.Ready(), "not ready until play is requested")
	clip.Play()
	require.True(t, clip.Ready())

	for i := 0; i < 3; i++ {
		frame, err := clip.Frame()
		require.NoError(t, err)
		assert.NotEmpty(t, frame.Data)
	}
	assert.False(t, clip.Playing(), "playback ends after the last frame")

	_, err = clip.Frame()
	assert.Error(t, err)
}

func TestVideoFramesTimestampsFollowRate(t *testing.T) {
	clip, err := NewVideoFrames(writeFrames(t, 4), 10)
	require.NoError(t, err)
	clip.Play()

	first, err := clip.Frame()
	require.NoError(t, err)
	second, err := clip.Frame()
	require.NoError(t, err)

	// At 10fps consecutive frames are 100ms apart in source time.
	assert.Equal(t, int64(100), second.Timestamp.Sub(first.Timestamp).Milliseconds())
}

func TestVideoFramesDoubleRateSkipsFrames(t *testing.T) {
	clip, err := NewVideoFrames(writeFrames(t, 4), 10)
	require.NoError(t, err)
	clip.Play()
	clip.SetRate(2)

	first, err := clip.Frame()
	require.NoError(t, err)
	second, err := clip.Frame()
	require.NoError(t, err)

	assert.Equal(t, int64(200), second.Timestamp.Sub(first.Timestamp).Milliseconds())
	assert.False(t, clip.Playing(), "rate 2 exhausts 4 frames in 2 pulls")
}

func TestVideoFramesPauseAndRewind(t *testing.T) {
	clip, err := NewVideoFrames(writeFrames(t, 2), 10)
	require.NoError(t, err)
	clip.Play()

	_, err = clip.Frame()
	require.NoError(t, err)
	clip.Pause()
	assert.False(t, clip.Playing())

	clip.Play()
	assert.True(t, clip.Playing(), "resume continues from the cursor")

	_, err = clip.Frame()
	require.NoError(t, err)
	assert.False(t, clip.Playing())

	clip.Play()
	assert.True(t, clip.Playing(), "play after the end rewinds to the start")
}

func TestSetRateIgnoresNonPositive(t *testing.T) {
	clip, err := NewVideoFrames(writeFrames(t, 2), 10)
	require.NoError(t, err)

	clip.SetRate(0)
	clip.SetRate(-1)
	clip.Play()

	first, _ := clip.Frame()
	second, _ := clip.Frame()
	assert.Equal(t, int64(100), second.Timestamp.Sub(first.Timestamp).Milliseconds())
}
