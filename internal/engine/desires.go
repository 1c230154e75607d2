package engine

// Mode is the contribution state of one desire, derived from its two flags.
type Mode string

const (
	ModeInactive         Mode = "inactive"
	ModeActiveExploited  Mode = "active_exploited"
	ModeActiveFrustrated Mode = "active_frustrated"
)

// DesireStatus mirrors the tracked flags of one desire.
type DesireStatus struct {
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Exploited bool   `json:"exploited"`
	Mode      Mode   `json:"mode"`
}

func modeOf(active, exploited bool) Mode {
	switch {
	case !active:
		return ModeInactive
	case exploited:
		return ModeActiveExploited
	default:
		return ModeActiveFrustrated
	}
}

// DesireTracker holds the activation and exploitation flags of every desire
// seen so far. Entries are never removed; an unset flag reads as false.
type DesireTracker struct {
	names     Registry[DesireID]
	active    []bool
	exploited []bool
}

// Track returns the handle for a desire, creating a false/false entry if unseen.
func (t *DesireTracker) Track(name string) DesireID {
	id, added := t.names.Intern(name)
	if added {
		t.active = append(t.active, false)
		t.exploited = append(t.exploited, false)
	}
	return id
}

// Lookup returns the handle of a tracked desire.
func (t *DesireTracker) Lookup(name string) (DesireID, bool) {
	return t.names.Lookup(name)
}

// Name returns the name of a tracked desire.
func (t *DesireTracker) Name(id DesireID) string {
	return t.names.Name(id)
}

func (t *DesireTracker) SetActive(id DesireID, v bool)    { t.active[id] = v }
func (t *DesireTracker) SetExploited(id DesireID, v bool) { t.exploited[id] = v }
func (t *DesireTracker) Active(id DesireID) bool          { return t.active[id] }
func (t *DesireTracker) Exploited(id DesireID) bool       { return t.exploited[id] }

// Len returns the number of tracked desires.
func (t *DesireTracker) Len() int {
	return len(t.active)
}

// Statuses lists every tracked desire ordered by name.
func (t *DesireTracker) Statuses() []DesireStatus {
	out := make([]DesireStatus, 0, len(t.active))
	for _, id := range t.names.Sorted() {
		out = append(out, DesireStatus{
			Name:      t.names.Name(id),
			Active:    t.active[id],
			Exploited: t.exploited[id],
			Mode:      modeOf(t.active[id], t.exploited[id]),
		})
	}
	return out
}
