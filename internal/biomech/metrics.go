package biomech

import (
	"runform-backend/internal/pose"
)

// TorsoLean measures the forward tilt of the torso in degrees, taken
// between the shoulder midpoint and the hip midpoint. Forward lean is
// positive, backward lean negative. Returns 0 when any of the four
// reference landmarks is missing.
func TorsoLean(p pose.Pose) int {
	shoulderX, shoulderY, okS := p.Midpoint(pose.LeftShoulder, pose.RightShoulder)
	hipX, hipY, okH := p.Midpoint(pose.LeftHip, pose.RightHip)
	if !okS || !okH {
		return 0
	}
	return AngleFromVertical(shoulderX-hipX, hipY-shoulderY)
}

// KneeAngle measures the right-leg knee flexion angle (hip-knee-ankle).
// ok is false when any landmark is missing, in which case the caller
// keeps its previous value rather than forcing the angle to zero.
func KneeAngle(p pose.Pose) (int, bool) {
	hip, okH := p.Keypoint(pose.RightHip)
	knee, okK := p.Keypoint(pose.RightKnee)
	ankle, okA := p.Keypoint(pose.RightAnkle)
	if !okH || !okK || !okA {
		return 0, false
	}
	return AngleBetweenPoints(hip, knee, ankle), true
}

// HipAngle measures the right-side hip extension angle
// (shoulder-hip-knee), with the same missing-landmark contract as
// KneeAngle.
func HipAngle(p pose.Pose) (int, bool) {
	shoulder, okS := p.Keypoint(pose.RightShoulder)
	hip, okH := p.Keypoint(pose.RightHip)
	knee, okK := p.Keypoint(pose.RightKnee)
	if !okS || !okH || !okK {
		return 0, false
	}
	return AngleBetweenPoints(shoulder, hip, knee), true
}

// HeadAlignment measures how far the head tips off vertical relative to
// a virtual neck point at the shoulder midpoint. Returns 0 when the
// nose or either shoulder is missing.
func HeadAlignment(p pose.Pose) int {
	nose, okN := p.Keypoint(pose.Nose)
	neckX, neckY, okS := p.Midpoint(pose.LeftShoulder, pose.RightShoulder)
	if !okN || !okS {
		return 0
	}
	return AngleFromVertical(nose.X-neckX, neckY-nose.Y)
}
