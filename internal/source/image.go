package source

import (
	"fmt"
	_ "image/png"
	"os"
	"time"

	"runform-backend/internal/pose"
)

// StillImage serves a single uploaded image. The engine runs exactly
// one estimation pass over it and does not reschedule.
type StillImage struct {
	frame *pose.Frame
}

// NewStillImage loads the image at path (JPEG or PNG).
func NewStillImage(path string) (*StillImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	width, height, err := imageSize(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image dimensions: %w", err)
	}
	return &StillImage{
		frame: &pose.Frame{
			Data:      data,
			Width:     width,
			Height:    height,
			Timestamp: time.Now(),
		},
	}, nil
}

// Ready always reports true once the image is loaded.
func (s *StillImage) Ready() bool {
	return true
}

// Dimensions returns the image's native pixel size.
func (s *StillImage) Dimensions() (int, int) {
	return s.frame.Width, s.frame.Height
}

// Frame returns the loaded image.
func (s *StillImage) Frame() (*pose.Frame, error) {
	return s.frame, nil
}
