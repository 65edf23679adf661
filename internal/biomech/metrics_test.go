package biomech

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"runform-backend/internal/pose"
)

// makePose builds a pose containing only the given landmarks.
func makePose(points map[int][2]float64) pose.Pose {
	var p pose.Pose
	for id, xy := range points {
		p.Keypoints = append(p.Keypoints, pose.Keypoint{ID: id, X: xy[0], Y: xy[1], Confidence: 0.9})
	}
	return p
}

func TestTorsoLeanSignConvention(t *testing.T) {
	// Shoulders directly above hips.
	upright := makePose(map[int][2]float64{
		pose.LeftShoulder:  {90, 100},
		pose.RightShoulder: {110, 100},
		pose.LeftHip:       {90, 200},
		pose.RightHip:      {110, 200},
	})
	assert.Equal(t, 0, TorsoLean(upright))

	// Shoulders shifted forward of the hips.
	leaning := makePose(map[int][2]float64{
		pose.LeftShoulder:  {110, 100},
		pose.RightShoulder: {130, 100},
		pose.LeftHip:       {90, 200},
		pose.RightHip:      {110, 200},
	})
	assert.Positive(t, TorsoLean(leaning))

	// Shoulders behind the hips.
	reclined := makePose(map[int][2]float64{
		pose.LeftShoulder:  {70, 100},
		pose.RightShoulder: {90, 100},
		pose.LeftHip:       {90, 200},
		pose.RightHip:      {110, 200},
	})
	assert.Negative(t, TorsoLean(reclined))
}

func TestTorsoLeanMissingLandmarks(t *testing.T) {
	p := makePose(map[int][2]float64{
		pose.LeftShoulder:  {90, 100},
		pose.RightShoulder: {110, 100},
		pose.LeftHip:       {90, 200},
		// right hip missing
	})
	assert.Equal(t, 0, TorsoLean(p))
}

func TestKneeAngle(t *testing.T) {
	straight := makePose(map[int][2]float64{
		pose.RightHip:   {100, 100},
		pose.RightKnee:  {100, 150},
		pose.RightAnkle: {100, 200},
	})
	angle, ok := KneeAngle(straight)
	assert.True(t, ok)
	assert.Equal(t, 180, angle)

	bent := makePose(map[int][2]float64{
		pose.RightHip:   {100, 100},
		pose.RightKnee:  {100, 150},
		pose.RightAnkle: {150, 150},
	})
	angle, ok = KneeAngle(bent)
	assert.True(t, ok)
	assert.Equal(t, 90, angle)

	_, ok = KneeAngle(makePose(map[int][2]float64{
		pose.RightHip:  {100, 100},
		pose.RightKnee: {100, 150},
	}))
	assert.False(t, ok, "missing ankle must not force the angle to zero")
}

func TestHipAngle(t *testing.T) {
	extended := makePose(map[int][2]float64{
		pose.RightShoulder: {100, 50},
		pose.RightHip:      {100, 100},
		pose.RightKnee:     {100, 150},
	})
	angle, ok := HipAngle(extended)
	assert.True(t, ok)
	assert.Equal(t, 180, angle)

	_, ok = HipAngle(makePose(map[int][2]float64{
		pose.RightHip:  {100, 100},
		pose.RightKnee: {100, 150},
	}))
	assert.False(t, ok)
}

func TestHeadAlignment(t *testing.T) {
	// Nose directly above the shoulder midpoint.
	aligned := makePose(map[int][2]float64{
		pose.Nose:          {100, 60},
		pose.LeftShoulder:  {90, 100},
		pose.RightShoulder: {110, 100},
	})
	assert.Equal(t, 0, HeadAlignment(aligned))

	// Head pushed forward.
	forward := makePose(map[int][2]float64{
		pose.Nose:          {140, 60},
		pose.LeftShoulder:  {90, 100},
		pose.RightShoulder: {110, 100},
	})
	assert.Positive(t, HeadAlignment(forward))

	// Missing nose.
	assert.Equal(t, 0, HeadAlignment(makePose(map[int][2]float64{
		pose.LeftShoulder:  {90, 100},
		pose.RightShoulder: {110, 100},
	})))
}
