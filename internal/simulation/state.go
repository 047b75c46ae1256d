package simulation

// State is the lifecycle state of a Run.
type State int

const (
	Running State = iota
	HaltedByCutoff
	HaltedBySubmersion
	CompletedSeries
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case HaltedByCutoff:
		return "halted_by_cutoff"
	case HaltedBySubmersion:
		return "halted_by_submersion"
	case CompletedSeries:
		return "completed_series"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further results will be produced.
func (s State) Terminal() bool {
	return s != Running
}

// ParseState is the inverse of State.String. Unknown names return false.
func ParseState(name string) (State, bool) {
	for _, s := range []State{Running, HaltedByCutoff, HaltedBySubmersion, CompletedSeries} {
		if s.String() == name {
			return s, true
		}
	}
	return Running, false
}
