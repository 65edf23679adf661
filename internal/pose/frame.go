package pose

import (
	"context"
	"time"
)

// Frame is one image handed to the pose estimator. Data is typically
// JPEG-encoded. Data must not be modified after the frame is handed to
// a consumer; frames are shared by reference, never copied.
type Frame struct {
	Data      []byte
	Width     int
	Height    int
	Timestamp time.Time
}

// Estimator maps a frame to the poses detected in it. Implementations
// are expected to be remote model servers, so Estimate is blocking and
// honors context cancellation. An empty slice is a valid result.
type Estimator interface {
	Estimate(ctx context.Context, frame *Frame) ([]Pose, error)
}
