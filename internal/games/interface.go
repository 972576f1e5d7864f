package games

// Store defines persistence for the game-result intake queue.
type Store interface {
	UpsertResult(res *GameResult) error
	UpdateProcessingStatus(eventID string, status ProcessingStatus) error
	GetResultsForProcessing() ([]*GameResult, error)
	GetResult(eventID string) (*GameResult, error)
	Clear()
}
