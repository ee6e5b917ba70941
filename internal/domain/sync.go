package domain

// MirrorState is the on-disk state of one mirror, inferred at sync time by
// probing the local path and its git metadata. It is never persisted.
type MirrorState string

const (
	MirrorAbsent         MirrorState = "absent"
	MirrorShallowPresent MirrorState = "shallow"
	MirrorFullPresent    MirrorState = "full"
	MirrorCorrupt        MirrorState = "corrupt"
)

// SyncAction is the terminal transition a sync run took for one mirror.
type SyncAction string

const (
	ActionCloned    SyncAction = "cloned"
	ActionPulled    SyncAction = "pulled"
	ActionNoUpdates SyncAction = "no_updates"
	ActionRecloned  SyncAction = "recloned"
	ActionFailed    SyncAction = "failed"
)

// SyncOutcome is produced exactly once per RepositoryRef per fleet run and
// is immutable after creation. Sizes are byte totals of the local tree
// before and after the operation.
type SyncOutcome struct {
	Locale     LocaleCode
	Action     SyncAction
	Err        error
	SizeBefore int64
	SizeAfter  int64
}

func (o SyncOutcome) Failed() bool {
	return o.Action == ActionFailed
}

// Reason returns the human-readable failure reason, empty on success.
func (o SyncOutcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// FleetRunSummary is the reduction of one run's outcome stream.
type FleetRunSummary struct {
	Total     int
	Cloned    int
	Pulled    int
	NoUpdates int
	Recloned  int
	Failures  []SyncOutcome
}

func (s FleetRunSummary) Failed() bool {
	return len(s.Failures) > 0
}

// Summarize reduces a run's outcomes. Order of the input does not matter;
// failures keep their arrival order for operator review.
func Summarize(outcomes []SyncOutcome) FleetRunSummary {
	summary := FleetRunSummary{Total: len(outcomes)}
	for _, outcome := range outcomes {
		switch outcome.Action {
		case ActionCloned:
			summary.Cloned++
		case ActionPulled:
			summary.Pulled++
		case ActionNoUpdates:
			summary.NoUpdates++
		case ActionRecloned:
			summary.Recloned++
		case ActionFailed:
			summary.Failures = append(summary.Failures, outcome)
		}
	}
	return summary
}
