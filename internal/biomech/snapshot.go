package biomech

// Snapshot holds the latest computed form metrics for one detection
// session. It is updated in place once per processed frame; frames with
// no detected pose leave it untouched, so consumers may observe stale
// but internally consistent values.
type Snapshot struct {
	TorsoLeanDeg          int       `json:"torso_lean_deg"`
	LeanClass             LeanClass `json:"lean_class"`
	LeanFeedback          string    `json:"lean_feedback"`
	KneeAngleDeg          int       `json:"knee_angle_deg"`
	HipAngleDeg           int       `json:"hip_angle_deg"`
	VerticalOscillationPx int       `json:"vertical_oscillation_px"`
	HeadAlignmentDeg      int       `json:"head_alignment_deg"`
	CadenceSpm            int       `json:"cadence_spm"`
}
