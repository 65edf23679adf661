package biomech

import (
	"math"
	"time"
)

const (
	// strikeThresholdPx is how close an ankle must come to the stored
	// hip baseline to register a foot strike.
	strikeThresholdPx = 5.0

	// cadenceWindow is the trailing window of strikes kept for the
	// steps-per-minute calculation.
	cadenceWindow = 10 * time.Second

	// minStrikes is the smallest strike count that yields a cadence
	// reading; below it the previous reading stands.
	minStrikes = 4
)

// Tracker carries the session-scoped state behind vertical oscillation
// and cadence. Both metrics share the previous hip-midpoint baseline:
// oscillation diffs against it and advances it, while strike detection
// compares ankle heights to it. The sharing is deliberate — splitting
// the slot into two independent baselines changes cadence output.
//
// A Tracker is owned by a single detection loop and is not safe for
// concurrent use.
type Tracker struct {
	strikes    []time.Time
	prevHipY   float64
	hasPrevHip bool
	lastSpm    int
}

// NewTracker returns a Tracker with no baseline and no recorded strikes.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Reset clears all session state. Called on session restart (mode
// switch or file change), never mid-session.
func (t *Tracker) Reset() {
	t.strikes = t.strikes[:0]
	t.prevHipY = 0
	t.hasPrevHip = false
	t.lastSpm = 0
}

// Oscillation returns the vertical hip movement since the previous
// frame in whole pixels. The first call seeds the baseline and returns
// 0. This is a frame-to-frame delta, not a gait-cycle amplitude.
//
// Must be called after RecordStrikes within a frame: it advances the
// shared hip baseline that strike detection reads.
func (t *Tracker) Oscillation(hipMidY float64) int {
	if !t.hasPrevHip {
		t.prevHipY = hipMidY
		t.hasPrevHip = true
		return 0
	}
	delta := int(math.Round(math.Abs(hipMidY - t.prevHipY)))
	t.prevHipY = hipMidY
	return delta
}

// RecordStrikes checks both ankle heights against the stored hip
// baseline and recomputes cadence. A strike is registered when either
// ankle sits within the pixel threshold of the baseline; strikes older
// than the trailing window are pruned on every strike event.
//
// The returned cadence is in steps per minute; ok is false until at
// least four strikes fall inside the window, in which case the caller
// keeps its previous cadence value rather than resetting to zero.
func (t *Tracker) RecordStrikes(leftAnkleY, rightAnkleY float64, now time.Time) (int, bool) {
	if !t.hasPrevHip {
		return 0, false
	}

	if math.Abs(leftAnkleY-t.prevHipY) < strikeThresholdPx ||
		math.Abs(rightAnkleY-t.prevHipY) < strikeThresholdPx {
		t.strikes = append(t.strikes, now)
		t.prune(now)
	}

	if len(t.strikes) < minStrikes {
		return 0, false
	}
	span := t.strikes[len(t.strikes)-1].Sub(t.strikes[0])
	if span <= 0 {
		return 0, false
	}
	t.lastSpm = int(math.Round(float64(len(t.strikes)) / span.Minutes()))
	return t.lastSpm, true
}

// Cadence returns the most recent steps-per-minute reading.
func (t *Tracker) Cadence() int {
	return t.lastSpm
}

func (t *Tracker) prune(newest time.Time) {
	cutoff := newest.Add(-cadenceWindow)
	keep := 0
	for keep < len(t.strikes) && t.strikes[keep].Before(cutoff) {
		keep++
	}
	if keep > 0 {
		t.strikes = append(t.strikes[:0], t.strikes[keep:]...)
	}
}
