package engine

// State is everything the engine mutates. One Engine owns one State and
// guards it with a single lock.
type State struct {
	Desires  DesireTracker
	Matrix   ModulationMatrix
	Emotions EmotionState
}

// generate applies one Generator tick. Active desires are visited in name
// order; an exploited desire applies its own row, any other active desire
// applies its negated row. Inactive desires contribute nothing whatever
// their exploitation flag says.
func generate(st *State) {
	for _, id := range st.Desires.names.Sorted() {
		if !st.Desires.Active(id) {
			continue
		}
		row := st.Matrix.Frustrated(id)
		if st.Desires.Exploited(id) {
			row = st.Matrix.Exploited(id)
		}
		for _, t := range row {
			st.Emotions.Add(t.Emotion, t.Factor)
		}
	}
}
