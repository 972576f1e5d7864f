package milestone

// Store defines persistence for milestone unlocks.
//
// RecordUnlock is the idempotency gate: it inserts the unlock marker only
// if absent and reports whether this call created it. Only a created
// marker may emit an unlock event.
type Store interface {
	RecordUnlock(userID, milestoneID string, unlockedAt int64) (bool, error)
	GetUnlocked(userID string) ([]string, error)
	BonusXP(userID string) (int64, error)
	Clear()
}
