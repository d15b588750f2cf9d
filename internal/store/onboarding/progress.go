package onboarding

// Progress marks how far an onboarding attempt has advanced.
type Progress string

const (
	ProgressNotStarted  Progress = ""
	ProgressCreating    Progress = "Creating"
	ProgressLoading     Progress = "Loading"
	ProgressRegistering Progress = "Registering"
	ProgressComplete    Progress = "Complete"
)

var progressRank = map[Progress]int{
	ProgressNotStarted:  0,
	ProgressCreating:    1,
	ProgressLoading:     2,
	ProgressRegistering: 3,
	ProgressComplete:    4,
}

// String returns the label used in logs and metrics.
func (p Progress) String() string {
	if p == ProgressNotStarted {
		return "NotStarted"
	}
	return string(p)
}

// Valid reports whether p is a known stage.
func (p Progress) Valid() bool {
	_, ok := progressRank[p]
	return ok
}

// Before reports whether p is strictly earlier than other.
func (p Progress) Before(other Progress) bool {
	return progressRank[p] < progressRank[other]
}

// canAdvance reports whether from -> to is a single forward step, or the
// referral-less short path Loading -> Complete.
func canAdvance(from, to Progress) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == ProgressLoading && to == ProgressComplete {
		return true
	}
	return progressRank[to] == progressRank[from]+1
}
