package biomech

import (
	"math"

	"runform-backend/internal/pose"
)

// AngleFromVertical converts a direction vector to its angle off the
// vertical axis in whole degrees. Positive values mean the vector tips
// forward (to the runner's right in image coordinates).
func AngleFromVertical(dx, dy float64) int {
	return int(math.Round(math.Atan2(dx, dy) * 180 / math.Pi))
}

// AngleBetweenPoints computes the joint angle at vertex between the
// segments vertex->a and vertex->c, normalized into [0, 180] degrees.
func AngleBetweenPoints(a, vertex, c pose.Keypoint) int {
	angle := math.Abs((math.Atan2(c.Y-vertex.Y, c.X-vertex.X) -
		math.Atan2(a.Y-vertex.Y, a.X-vertex.X)) * 180 / math.Pi)
	if angle > 180 {
		angle = 360 - angle
	}
	return int(math.Round(angle))
}
