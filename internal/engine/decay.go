package engine

import "math"

// DefaultDecayRate is used when the configured rate is outside [0,1].
const DefaultDecayRate = 0.01

// NormalizeDecayRate returns rate if it lies in [0,1], DefaultDecayRate otherwise.
// ok is false when the fallback was taken.
func NormalizeDecayRate(rate float64) (float64, bool) {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return DefaultDecayRate, false
	}
	return rate, true
}

// decay lowers every emotion by rate, flooring at 0.
func decay(s *EmotionState, rate float64) {
	for i, v := range s.intensity {
		v -= rate
		if v < 0 {
			v = 0
		}
		s.intensity[i] = v
	}
}
