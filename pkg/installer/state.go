package installer

// state tracks a component through one install-or-validate cycle. Each
// transition is owned by a single decision function on the Installer so
// failures stay attributable to a specific step.
type state int

const (
	stateUnchecked state = iota
	stateCacheValid
	stateCacheStaleOrMissing
	stateFetching
	stateUnpacked
	stateRehashed
	stateResolved
)

func (s state) String() string {
	switch s {
	case stateUnchecked:
		return "unchecked"
	case stateCacheValid:
		return "cache_valid"
	case stateCacheStaleOrMissing:
		return "cache_stale_or_missing"
	case stateFetching:
		return "fetching"
	case stateUnpacked:
		return "unpacked"
	case stateRehashed:
		return "rehashed"
	case stateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}
