package engine

// NegatedPrefix marks the row applied while a desire is active but not exploited.
const NegatedPrefix = "not_"

// NegatedName returns the frustrated-row name of a desire.
func NegatedName(desire string) string {
	return NegatedPrefix + desire
}

// Term is one emotion adjustment inside a modulation row.
type Term struct {
	Emotion EmotionID
	Factor  float64
}

// Row is the set of adjustments of one desire condition.
type Row []Term

// ModulationMatrix caches the exploited and frustrated rows of each desire.
// Rows are loaded at most once per desire and never replaced afterwards.
type ModulationMatrix struct {
	exploited  map[DesireID]Row
	frustrated map[DesireID]Row
	attempted  map[DesireID]bool
}

// Exploited returns the row applied while the desire is exploited, or nil.
func (m *ModulationMatrix) Exploited(id DesireID) Row {
	return m.exploited[id]
}

// Frustrated returns the row applied while the desire is active but not exploited, or nil.
func (m *ModulationMatrix) Frustrated(id DesireID) Row {
	return m.frustrated[id]
}

// Attempted reports whether a load was ever started for the desire.
func (m *ModulationMatrix) Attempted(id DesireID) bool {
	return m.attempted[id]
}

// claim marks the desire as loading. It returns false if a load was
// already started, so every desire is fetched at most once.
func (m *ModulationMatrix) claim(id DesireID) bool {
	if m.attempted[id] {
		return false
	}
	if m.attempted == nil {
		m.attempted = make(map[DesireID]bool)
	}
	m.attempted[id] = true
	return true
}

// store keeps non-empty rows; an empty row stays absent.
func (m *ModulationMatrix) store(id DesireID, exploited, frustrated Row) {
	if len(exploited) > 0 {
		if m.exploited == nil {
			m.exploited = make(map[DesireID]Row)
		}
		m.exploited[id] = exploited
	}
	if len(frustrated) > 0 {
		if m.frustrated == nil {
			m.frustrated = make(map[DesireID]Row)
		}
		m.frustrated[id] = frustrated
	}
}

// Len returns the number of stored rows.
func (m *ModulationMatrix) Len() int {
	return len(m.exploited) + len(m.frustrated)
}
