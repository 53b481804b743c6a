package domain

import "time"

// Snapshot is a processed Result together with the fetch it was computed from.
// Snapshots are owned by the serving layer; the pipeline itself keeps no state.
type Snapshot struct {
	RunID       string    `json:"run_id"`
	FetchedAt   time.Time `json:"fetched_at"`
	ProcessedAt time.Time `json:"processed_at"`
	Result      Result    `json:"result"`
}

// NewSnapshot stamps a result with its run id, fetch time and the current time.
func NewSnapshot(runID string, fetchedAt time.Time, result Result) Snapshot {
	return Snapshot{
		RunID:       runID,
		FetchedAt:   fetchedAt.UTC(),
		ProcessedAt: clock.Now().UTC(),
		Result:      result,
	}
}
