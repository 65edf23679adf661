package biomech

// LeanClass is the qualitative coaching category for a torso lean angle.
type LeanClass string

const (
	LeanBackward  LeanClass = "backward"
	LeanUpright   LeanClass = "upright"
	LeanGood      LeanClass = "good"
	LeanExcessive LeanClass = "excessive"
)

// ClassifyLean maps a torso lean angle in degrees to its coaching
// category and display label. Boundary values fall into the
// lower-angle bucket: exactly -5 is upright, exactly 12 is still good.
func ClassifyLean(angle float64) (LeanClass, string) {
	switch {
	case angle < -5:
		return LeanBackward, "Leaning Backward"
	case angle < 3:
		return LeanUpright, "Upright"
	case angle <= 12:
		return LeanGood, "Good Forward Lean"
	default:
		return LeanExcessive, "Excessive Lean"
	}
}
