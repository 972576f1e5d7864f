package season

// Store defines persistence for season participations.
//
// Save carries the optimistic-concurrency contract: a write only lands if
// the record's version is unchanged since it was read, and applying a game
// that was already applied is surfaced as ErrAlreadyProcessed.
type Store interface {
	Get(userID, seasonID string) (*Participation, error)
	Save(p *Participation, gameID string) error
	IsGameApplied(gameID, userID string) (bool, error)
	GetSeasonParticipants(seasonID string) ([]*Participation, error)
	Clear()
}
