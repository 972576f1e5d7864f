package processor

import (
	"context"
	"errors"
	"time"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/cache"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/games"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/metrics"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/milestone"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/pubsub"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/season"
	"github.com/charmbracelet/log"
	"github.com/sethvargo/go-retry"
)

// New creates a new Processor.
func New(gamesStore games.Store, seasons season.Store, rankings ranking.Store, evaluator Evaluator, notifier Notifier, leaderboards cache.LeaderboardCache, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		games:     gamesStore,
		seasons:   seasons,
		rankings:  rankings,
		evaluator: evaluator,
		notifier:  notifier,
		cache:     leaderboards,
		pubsub:    pubsub,
		metrics:   metrics,
	}
}

// ProcessResults fetches game results that need processing and advances them through the state machine.
func (p *Processor) ProcessResults(dryRun bool) {
	log.Info("Starting game result processing...")
	results, err := p.games.GetResultsForProcessing()
	if err != nil {
		log.Error("Failed to get game results for processing", "error", err)
		return
	}

	if len(results) == 0 {
		log.Info("No game results to process.")
		return
	}

	log.Info("Found game results to process", "count", len(results))
	for _, res := range results {
		startTime := time.Now()
		p.ProcessResult(res, dryRun)
		p.metrics.ObserveProcessingDuration(time.Since(startTime).Seconds())
	}
	log.Info("Game result processing finished.")
}

// ProcessResult advances a single game result through the state machine
// until it completes or stalls. Every transition is persisted, so a
// crashed run picks up where it stopped.
func (p *Processor) ProcessResult(res *games.GameResult, dryRun bool) {
	log.Info("Processing game result", "eventID", res.EventID(), "initial_status", res.ProcessingStatus)
	for {
		currentState := res.ProcessingStatus
		log.Debug("Evaluating result state", "eventID", res.EventID(), "status", currentState)

		switch currentState {
		case games.StatusNew:
			if err := res.Validate(); err != nil {
				log.Error("Rejecting invalid game result", "error", err, "eventID", res.EventID())
				p.updateStatus(res, games.StatusCompleted, dryRun)
				continue
			}
			if dryRun {
				log.Info("[Dry Run] Would apply season update", "eventID", res.EventID())
				p.updateStatus(res, games.StatusSeasonUpdated, dryRun)
				continue
			}
			transition, err := p.applySeasonUpdate(res)
			if err != nil {
				if errors.Is(err, season.ErrAlreadyProcessed) {
					log.Info("Game already applied to season. Advancing.", "eventID", res.EventID())
					p.metrics.IncDuplicateEvents()
				} else {
					log.Error("Failed to apply season update", "error", err, "eventID", res.EventID())
					return // Retried on the next processing run.
				}
			} else if transition.Changed() {
				p.handleDivisionChange(res, transition, dryRun)
			}
			p.updateStatus(res, games.StatusSeasonUpdated, dryRun)

		case games.StatusSeasonUpdated:
			if dryRun {
				log.Info("[Dry Run] Would merge leaderboard deltas", "eventID", res.EventID())
				p.updateStatus(res, games.StatusDeltasMerged, dryRun)
				continue
			}
			if err := p.mergeDeltas(res); err != nil {
				log.Error("Failed to merge leaderboard deltas", "error", err, "eventID", res.EventID())
				return
			}
			p.updateStatus(res, games.StatusDeltasMerged, dryRun)

		case games.StatusDeltasMerged:
			if dryRun {
				log.Info("[Dry Run] Would evaluate milestones", "eventID", res.EventID())
				p.updateStatus(res, games.StatusMilestonesEvaluated, dryRun)
				continue
			}
			if err := p.evaluateMilestones(res, dryRun); err != nil {
				log.Error("Failed to evaluate milestones", "error", err, "eventID", res.EventID())
				return
			}
			p.updateStatus(res, games.StatusMilestonesEvaluated, dryRun)

		case games.StatusMilestonesEvaluated:
			log.Info("Pipeline finished for game result. Marking as complete.", "eventID", res.EventID())
			p.metrics.IncEventsProcessed()
			p.updateStatus(res, games.StatusCompleted, dryRun)

		case games.StatusCompleted:
			log.Debug("Game result is complete. No further processing needed.", "eventID", res.EventID())
			return // End of the line for this result

		default:
			log.Warn("Unknown processing status", "status", currentState, "eventID", res.EventID())
			return // Exit if status is unknown
		}

		// If the status hasn't changed, we're done with this result for now.
		if res.ProcessingStatus == currentState {
			log.Debug("Result state did not change. Finished processing for now.", "eventID", res.EventID(), "status", currentState)
			break
		}
	}
	log.Info("Finished processing game result", "eventID", res.EventID(), "final_status", res.ProcessingStatus)
}

// applySeasonUpdate folds the game into the user's season participation
// under optimistic concurrency. A version conflict means another writer
// landed between our read and write; re-read and re-apply.
func (p *Processor) applySeasonUpdate(res *games.GameResult) (season.Transition, error) {
	var transition season.Transition
	backoff := retry.WithMaxRetries(5, retry.NewExponential(10*time.Millisecond))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		part, err := p.seasons.Get(res.UserID, res.SeasonID)
		if err != nil {
			if !errors.Is(err, season.ErrNotFound) {
				return err
			}
			part = season.NewParticipation(res.UserID, res.SeasonID)
		}
		transition = part.ApplyGame(res, time.Now().Unix())
		if err := p.seasons.Save(part, res.GameID); err != nil {
			if errors.Is(err, season.ErrConcurrentModification) {
				p.metrics.IncSeasonRetries()
				log.Debug("Season write conflicted, retrying", "eventID", res.EventID())
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	return transition, err
}

func (p *Processor) handleDivisionChange(res *games.GameResult, t season.Transition, dryRun bool) {
	if t.Promoted {
		p.metrics.IncPromotions()
	} else {
		p.metrics.IncRelegations()
	}
	log.Info("Division changed", "userID", res.UserID, "from", t.From, "to", t.To, "promoted", t.Promoted)

	if err := p.notifier.SendDivisionChangeNotification(res.UserName, t, dryRun); err != nil {
		log.Error("Failed to send division change notification", "error", err, "userID", res.UserID)
	}
	if !dryRun {
		if err := p.pubsub.SendMessage(pubsub.EventDivisionChanged, res); err != nil {
			log.Error("Failed to publish division change", "error", err, "userID", res.UserID)
		}
	}
}

// mergeDeltas applies the game's contribution to all four period buckets.
// A marker hit on any bucket just means that bucket already has this game;
// the remaining buckets are still attempted.
func (p *Processor) mergeDeltas(res *games.GameResult) error {
	ctx := context.Background()
	for _, d := range ranking.DeltasFromResult(res) {
		if err := p.rankings.ApplyGameDelta(res.GameID, &d); err != nil {
			if errors.Is(err, ranking.ErrAlreadyProcessed) {
				log.Debug("Delta already merged", "eventID", res.EventID(), "period", d.Period, "periodKey", d.PeriodKey)
				p.metrics.IncDuplicateEvents()
				continue
			}
			return err
		}
		if err := p.cache.InvalidateBucket(ctx, d.Period, d.PeriodKey); err != nil {
			log.Warn("Failed to invalidate leaderboard cache", "error", err, "period", d.Period, "periodKey", d.PeriodKey)
		}
	}
	return nil
}

// evaluateMilestones checks the user's career totals against the catalog
// and fans out any fresh unlocks.
func (p *Processor) evaluateMilestones(res *games.GameResult, dryRun bool) error {
	stats, err := p.careerStats(res.UserID)
	if err != nil {
		return err
	}

	unlocks, err := p.evaluator.Evaluate(res.UserID, stats, time.Now().Unix())
	if err != nil {
		return err
	}

	for _, u := range unlocks {
		p.metrics.IncMilestoneUnlocks()
		m, ok := milestone.ByID(u.MilestoneID)
		if !ok {
			log.Warn("Unlocked milestone missing from catalog", "milestoneID", u.MilestoneID)
			continue
		}
		if err := p.notifier.SendMilestoneNotification(res.UserName, m, dryRun); err != nil {
			log.Error("Failed to send milestone notification", "error", err, "milestoneID", u.MilestoneID)
		}
		if !dryRun {
			if err := p.pubsub.SendMessage(pubsub.EventMilestoneUnlocked, u); err != nil {
				log.Error("Failed to publish milestone unlock", "error", err, "milestoneID", u.MilestoneID)
			}
		}
	}
	return nil
}

// careerStats reads the user's cumulative all-time counters from the
// ranking delta row. A missing row means no games recorded yet.
func (p *Processor) careerStats(userID string) (milestone.Stats, error) {
	d, err := p.rankings.GetUserDelta(context.Background(), ranking.PeriodAllTime, ranking.AllTimeKey, userID)
	if err != nil {
		if errors.Is(err, ranking.ErrNotFound) {
			return milestone.Stats{}, nil
		}
		return milestone.Stats{}, err
	}
	return milestone.Stats{
		GamesPlayed: d.GamesAdded,
		Goals:       d.GoalsAdded,
		Assists:     d.AssistsAdded,
		Saves:       d.SavesAdded,
		Wins:        d.WinsAdded,
		MVPs:        d.MVPAdded,
		XP:          d.XPAdded,
	}, nil
}

func (p *Processor) updateStatus(res *games.GameResult, newStatus games.ProcessingStatus, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would update result status", "eventID", res.EventID(), "from", res.ProcessingStatus, "to", newStatus)
		res.ProcessingStatus = newStatus // Update in-memory for the loop
		return
	}

	err := p.games.UpdateProcessingStatus(res.EventID(), newStatus)
	if err != nil {
		log.Error("Failed to update processing status", "error", err, "eventID", res.EventID())
	} else {
		log.Debug("Successfully updated status", "eventID", res.EventID(), "from", res.ProcessingStatus, "to", newStatus)
		res.ProcessingStatus = newStatus // Keep the in-memory object in sync
	}
}
