// Package overlay draws detected poses onto a caller-supplied surface.
package overlay

import (
	"runform-backend/internal/pose"
)

// MinConfidence is the score a keypoint must exceed before it (or any
// skeleton edge ending on it) is drawn.
const MinConfidence = 0.3

// markerRadius is the radius of the filled circle drawn at each
// visible keypoint.
const markerRadius = 4

// Canvas is the 2-D drawing surface the renderer paints on. It is
// sized to the frame's native pixel dimensions by the caller.
type Canvas interface {
	Clear()
	FillCircle(x, y, r float64)
	Line(x1, y1, x2, y2 float64)
}

// skeleton lists the landmark pairs connected by a line segment:
// shoulder girdle, each arm, the torso sides, the pelvis and each leg.
var skeleton = [][2]int{
	{pose.LeftShoulder, pose.RightShoulder},
	{pose.LeftShoulder, pose.LeftElbow},
	{pose.LeftElbow, pose.LeftWrist},
	{pose.RightShoulder, pose.RightElbow},
	{pose.RightElbow, pose.RightWrist},
	{pose.LeftShoulder, pose.LeftHip},
	{pose.RightShoulder, pose.RightHip},
	{pose.LeftHip, pose.RightHip},
	{pose.LeftHip, pose.LeftKnee},
	{pose.LeftKnee, pose.LeftAnkle},
	{pose.RightHip, pose.RightKnee},
	{pose.RightKnee, pose.RightAnkle},
}

// Draw paints keypoint markers and skeleton edges for one pose. A
// marker is drawn for every keypoint above the confidence threshold; an
// edge is drawn only when both of its endpoints are above it. Draw does
// not clear the canvas — the frame loop owns that.
func Draw(c Canvas, p pose.Pose) {
	for _, kp := range p.Keypoints {
		if kp.Confidence > MinConfidence {
			c.FillCircle(kp.X, kp.Y, markerRadius)
		}
	}
	for _, edge := range skeleton {
		a, okA := p.Keypoint(edge[0])
		b, okB := p.Keypoint(edge[1])
		if !okA || !okB {
			continue
		}
		if a.Confidence > MinConfidence && b.Confidence > MinConfidence {
			c.Line(a.X, a.Y, b.X, b.Y)
		}
	}
}
