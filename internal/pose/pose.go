package pose

// Keypoint indices follow the 17-point COCO body layout emitted by the
// pose estimation model.
const (
	Nose          = 0
	LeftEye       = 1
	RightEye      = 2
	LeftEar       = 3
	RightEar      = 4
	LeftShoulder  = 5
	RightShoulder = 6
	LeftElbow     = 7
	RightElbow    = 8
	LeftWrist     = 9
	RightWrist    = 10
	LeftHip       = 11
	RightHip      = 12
	LeftKnee      = 13
	RightKnee     = 14
	LeftAnkle     = 15
	RightAnkle    = 16

	NumKeypoints = 17
)

// Keypoint is a single body-landmark estimate in frame pixel coordinates.
type Keypoint struct {
	ID         int     `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Pose is one detected person's set of keypoints for a single frame.
// The estimator may omit landmarks it could not place, so lookups go
// through Keypoint rather than direct indexing.
type Pose struct {
	Keypoints []Keypoint `json:"keypoints"`
}

// Keypoint returns the landmark with the given ID, if the estimator
// produced it for this pose.
func (p Pose) Keypoint(id int) (Keypoint, bool) {
	// Fast path: estimators normally emit all 17 points in index order.
	if id >= 0 && id < len(p.Keypoints) && p.Keypoints[id].ID == id {
		return p.Keypoints[id], true
	}
	for _, kp := range p.Keypoints {
		if kp.ID == id {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// Midpoint returns the point halfway between the two landmarks, or false
// when either is missing from the pose.
func (p Pose) Midpoint(idA, idB int) (float64, float64, bool) {
	a, okA := p.Keypoint(idA)
	b, okB := p.Keypoint(idB)
	if !okA || !okB {
		return 0, 0, false
	}
	return (a.X + b.X) / 2, (a.Y + b.Y) / 2, true
}
