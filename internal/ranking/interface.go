package ranking

import "context"

// Store defines persistence for leaderboard deltas and documents.
//
// ApplyGameDelta is the incremental path: it accumulates the delta row,
// merges the increment into every category document of its bucket and
// records the processed-delta marker, all in one transaction. A marker hit
// returns ErrAlreadyProcessed and the transaction is a no-op.
//
// Rebuild is the administrative path: it reconstructs every category
// document of a bucket from the accumulated delta rows and swaps them in
// atomically. Safe to re-run; cancellable via ctx without corrupting the
// stored documents.
type Store interface {
	ApplyGameDelta(gameID string, d *Delta) error
	GetDocument(period Period, periodKey string, category Category) (*Document, error)
	GetDeltas(ctx context.Context, period Period, periodKey string) ([]*Delta, error)
	GetUserDelta(ctx context.Context, period Period, periodKey, userID string) (*Delta, error)
	Rebuild(ctx context.Context, period Period, periodKey string) error
	Clear()
}
