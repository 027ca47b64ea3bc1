// Package ingest holds what every history import provider shares.
package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int      `json:"sessions_received"`
	SetsReceived     int      `json:"sets_received"`
	SetsInserted     int64    `json:"sets_inserted"`
	SetsSkipped      int64    `json:"sets_skipped"`
	UsageRecorded    int      `json:"usage_recorded"`
	UnknownExercises []string `json:"unknown_exercises,omitempty"`
	Message          string   `json:"message,omitempty"`
}
