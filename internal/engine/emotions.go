package engine

// Intensity is one emotion value in a snapshot.
type Intensity struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// EmotionState holds the current intensity of every known emotion.
// Every stored value lies in [0,1]; writes are clamped, never rejected.
type EmotionState struct {
	names     Registry[EmotionID]
	intensity []float64
}

// Register returns the handle for an emotion, inserting it at 0 if unseen.
func (s *EmotionState) Register(name string) EmotionID {
	id, added := s.names.Intern(name)
	if added {
		s.intensity = append(s.intensity, 0)
	}
	return id
}

// Lookup returns the handle of a known emotion.
func (s *EmotionState) Lookup(name string) (EmotionID, bool) {
	return s.names.Lookup(name)
}

// Get returns the intensity of an emotion.
func (s *EmotionState) Get(id EmotionID) float64 {
	return s.intensity[id]
}

// Set stores v clamped to [0,1].
func (s *EmotionState) Set(id EmotionID, v float64) {
	s.intensity[id] = clamp01(v)
}

// Add shifts an emotion by delta, clamping the result.
func (s *EmotionState) Add(id EmotionID, delta float64) {
	s.Set(id, s.intensity[id]+delta)
}

// Len returns the number of registered emotions.
func (s *EmotionState) Len() int {
	return len(s.intensity)
}

// Intensities lists every emotion ordered by name.
func (s *EmotionState) Intensities() []Intensity {
	out := make([]Intensity, 0, len(s.intensity))
	for _, id := range s.names.Sorted() {
		out = append(out, Intensity{Name: s.names.Name(id), Value: s.intensity[id]})
	}
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
