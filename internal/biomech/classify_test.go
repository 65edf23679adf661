package biomech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLeanBuckets(t *testing.T) {
	tests := []struct {
		angle    float64
		want     LeanClass
		feedback string
	}{
		{-20, LeanBackward, "Leaning Backward"},
		{-5.0001, LeanBackward, "Leaning Backward"},
		{-5, LeanUpright, "Upright"}, // boundary belongs to the lower-angle bucket
		{0, LeanUpright, "Upright"},
		{2.999, LeanUpright, "Upright"},
		{3, LeanGood, "Good Forward Lean"},
		{8, LeanGood, "Good Forward Lean"},
		{12, LeanGood, "Good Forward Lean"},
		{12.0001, LeanExcessive, "Excessive Lean"},
		{30, LeanExcessive, "Excessive Lean"},
	}
	for _, tt := range tests {
		class, feedback := ClassifyLean(tt.angle)
		assert.Equal(t, tt.want, class, "angle %v", tt.angle)
		assert.Equal(t, tt.feedback, feedback, "angle %v", tt.angle)
	}
}
