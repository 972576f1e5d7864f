package processor

import (
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/milestone"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/notifier"
)

// Evaluator defines the milestone evaluation required by the processor.
type Evaluator interface {
	Evaluate(userID string, stats milestone.Stats, now int64) ([]milestone.Unlock, error)
}

// Notifier defines the notification operations required by the processor.
// This is now an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
