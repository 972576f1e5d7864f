package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/games"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/level"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/milestone"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/pubsub"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
	"github.com/charmbracelet/log"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// StatsHandler serves the persistent engine counters.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.Counters.GetAll()
		if err != nil {
			http.Error(w, "Failed to get engine counters", http.StatusInternalServerError)
			log.Error("Failed to get engine counters", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(counters); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear all engine stores")
		s.Games.Clear()
		s.Seasons.Clear()
		s.Rankings.Clear()
		s.Milestones.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Stores cleared successfully")
	}
}

// seasonStanding is the external view of one participation row.
type seasonStanding struct {
	Rank               int     `json:"rank"`
	UserID             string  `json:"user_id"`
	Division           string  `json:"division"`
	DivisionName       string  `json:"division_name"`
	LeagueRating       float64 `json:"league_rating"`
	Points             int     `json:"points"`
	GamesPlayed        int     `json:"games_played"`
	Wins               int     `json:"wins"`
	Draws              int     `json:"draws"`
	Losses             int     `json:"losses"`
	GoalDifference     int     `json:"goal_difference"`
	PromotionProgress  int     `json:"promotion_progress"`
	RelegationProgress int     `json:"relegation_progress"`
	ProtectionGames    int     `json:"protection_games"`
}

// SeasonStandingsHandler serves the season table ordered by league rating.
func (s *Server) SeasonStandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seasonID := r.URL.Query().Get("seasonID")
		if seasonID == "" {
			seasonID = s.Cfg.SeasonID
		}

		participants, err := s.Seasons.GetSeasonParticipants(seasonID)
		if err != nil {
			http.Error(w, "Failed to get season standings", http.StatusInternalServerError)
			log.Error("Failed to get season standings", "error", err, "seasonID", seasonID)
			return
		}

		userID := r.URL.Query().Get("userID")

		standings := make([]seasonStanding, 0, len(participants))
		for i, p := range participants {
			if userID != "" && p.UserID != userID {
				continue
			}
			standings = append(standings, seasonStanding{
				Rank:               i + 1,
				UserID:             p.UserID,
				Division:           p.Division.String(),
				DivisionName:       p.Division.DisplayName(),
				LeagueRating:       p.LeagueRating,
				Points:             p.Points,
				GamesPlayed:        p.GamesPlayed,
				Wins:               p.Wins,
				Draws:              p.Draws,
				Losses:             p.Losses,
				GoalDifference:     p.GoalDifference(),
				PromotionProgress:  p.PromotionProgress,
				RelegationProgress: p.RelegationProgress,
				ProtectionGames:    p.ProtectionGames,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(standings); err != nil {
			log.Error("Failed to encode season standings to JSON", "error", err)
		}
	}
}

// leaderboardResponse is the external view of one leaderboard document.
type leaderboardResponse struct {
	Period    ranking.Period   `json:"period"`
	PeriodKey string           `json:"period_key"`
	Category  ranking.Category `json:"category"`
	MinGames  int64            `json:"min_games"`
	UpdatedAt int64            `json:"updated_at"`
	Entries   []ranking.Entry  `json:"entries"`
}

// LeaderboardHandler serves a leaderboard view, read through the cache.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := ranking.ParseCategory(defaultQuery(r, "category", string(ranking.CategoryGoals)))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		period, err := ranking.ParsePeriod(defaultQuery(r, "period", string(ranking.PeriodAllTime)))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		periodKey := defaultQuery(r, "periodKey", ranking.PeriodKeyFor(period, time.Now()))

		limit := 10
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed <= 0 {
				http.Error(w, "Invalid 'limit' parameter", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		docID := ranking.DocumentID(period, periodKey, category)
		doc, ok := s.Cache.GetDocument(r.Context(), docID)
		if !ok {
			doc, err = s.Rankings.GetDocument(period, periodKey, category)
			if err != nil {
				if errors.Is(err, ranking.ErrNotFound) {
					doc = ranking.NewDocument(period, periodKey, category)
				} else {
					http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
					log.Error("Failed to get leaderboard document", "error", err, "id", docID)
					return
				}
			}
			if err := s.Cache.SetDocument(r.Context(), doc); err != nil {
				log.Warn("Failed to cache leaderboard document", "error", err, "id", docID)
			}
		}

		resp := leaderboardResponse{
			Period:    doc.Period,
			PeriodKey: doc.PeriodKey,
			Category:  doc.Category,
			MinGames:  doc.MinGames,
			UpdatedAt: doc.UpdatedAt,
			Entries:   doc.Eligible(limit),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to encode leaderboard to JSON", "error", err)
		}
	}
}

// LevelTableHandler serves the static level table.
func (s *Server) LevelTableHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(level.Table()); err != nil {
			log.Error("Failed to encode level table to JSON", "error", err)
		}
	}
}

// levelResponse is the level view for one XP total.
type levelResponse struct {
	XP              int64   `json:"xp"`
	BonusXP         int64   `json:"bonus_xp"`
	Level           int     `json:"level"`
	Name            string  `json:"name"`
	ProgressPercent float64 `json:"progress_percent"`
}

// LevelForXPHandler resolves a level either from an explicit xp value or
// from a user's career XP plus milestone bonuses.
func (s *Server) LevelForXPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var xp, bonus int64

		if userID := r.URL.Query().Get("userID"); userID != "" {
			d, err := s.Rankings.GetUserDelta(r.Context(), ranking.PeriodAllTime, ranking.AllTimeKey, userID)
			if err != nil && !errors.Is(err, ranking.ErrNotFound) {
				http.Error(w, "Failed to get user XP", http.StatusInternalServerError)
				log.Error("Failed to get user XP", "error", err, "userID", userID)
				return
			}
			if d != nil {
				xp = d.XPAdded
			}
			bonus, err = s.Milestones.BonusXP(userID)
			if err != nil {
				http.Error(w, "Failed to get milestone bonus XP", http.StatusInternalServerError)
				log.Error("Failed to get milestone bonus XP", "error", err, "userID", userID)
				return
			}
		} else {
			xpStr := r.URL.Query().Get("xp")
			if xpStr == "" {
				http.Error(w, "Either 'xp' or 'userID' is required", http.StatusBadRequest)
				return
			}
			parsed, err := strconv.ParseInt(xpStr, 10, 64)
			if err != nil || parsed < 0 {
				http.Error(w, "Invalid 'xp' parameter", http.StatusBadRequest)
				return
			}
			xp = parsed
		}

		total := xp + bonus
		def := level.ForXP(total)
		resp := levelResponse{
			XP:              xp,
			BonusXP:         bonus,
			Level:           def.Level,
			Name:            def.Name,
			ProgressPercent: level.ProgressPercent(total),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to encode level to JSON", "error", err)
		}
	}
}

// milestonesResponse pairs the catalog with a user's unlocked subset.
type milestonesResponse struct {
	Catalog  []milestone.Milestone `json:"catalog"`
	Unlocked []string              `json:"unlocked,omitempty"`
}

// MilestonesHandler serves the milestone catalog, annotated with the
// user's unlocks when a userID is given.
func (s *Server) MilestonesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := milestonesResponse{Catalog: milestone.Catalog()}

		if userID := r.URL.Query().Get("userID"); userID != "" {
			unlocked, err := s.Milestones.GetUnlocked(userID)
			if err != nil {
				http.Error(w, "Failed to get unlocked milestones", http.StatusInternalServerError)
				log.Error("Failed to get unlocked milestones", "error", err, "userID", userID)
				return
			}
			resp.Unlocked = unlocked
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to encode milestones to JSON", "error", err)
		}
	}
}

// GameCompletedHandler receives a game-completed event from the Pub/Sub
// push subscription, records it and runs it through the pipeline.
func (s *Server) GameCompletedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received push message", "topic", pubsub.EventGameCompleted, "body", string(bodyBytes))
		// Define a small struct to decode the incoming JSON's `data` field
		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		// Parse the outer JSON to get `data`
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		// Decode base64 to raw MessagePack bytes
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		res := games.GameResult{}
		if err := s.pubsub.ProcessMessage(rawData, &res); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		if res.ProcessingStatus == "" {
			res.ProcessingStatus = games.StatusNew
		}
		if err := res.Validate(); err != nil {
			log.Error("Rejecting invalid game result", "error", err, "eventID", res.EventID())
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !isDryRun {
			if err := s.Games.UpsertResult(&res); err != nil {
				log.Error("Failed to record game result", "error", err, "eventID", res.EventID())
				http.Error(w, "Failed to record game result", http.StatusInternalServerError)
				return
			}
		}
		s.Processor.ProcessResult(&res, isDryRun)
		w.Write([]byte("OK"))
	}
}

func (s *Server) ProcessResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting game result processing...")
		isDryRun := isDryRunFromContext(r)

		s.Processor.ProcessResults(isDryRun)

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Game result processing completed.")
		log.Info("Game result processing finished.")
	}
}

// RebuildHandler reconstructs leaderboard documents from their delta
// history. With no parameters it rebuilds the current bucket of every
// period; 'period' and 'periodKey' narrow it down.
func (s *Server) RebuildHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		periods := ranking.Periods()
		if periodStr := r.URL.Query().Get("period"); periodStr != "" {
			period, err := ranking.ParsePeriod(periodStr)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			periods = []ranking.Period{period}
		}

		for _, period := range periods {
			periodKey := defaultQuery(r, "periodKey", ranking.PeriodKeyFor(period, time.Now()))
			log.Info("Rebuilding leaderboard bucket", "period", period, "periodKey", periodKey)
			if err := s.Rankings.Rebuild(r.Context(), period, periodKey); err != nil {
				log.Error("Failed to rebuild leaderboard bucket", "error", err, "period", period, "periodKey", periodKey)
				http.Error(w, "Failed to rebuild leaderboards", http.StatusInternalServerError)
				return
			}
			if err := s.Cache.InvalidateBucket(r.Context(), period, periodKey); err != nil {
				log.Warn("Failed to invalidate leaderboard cache", "error", err, "period", period, "periodKey", periodKey)
			}
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Leaderboard rebuild completed.")
	}
}

// AnnounceLeaderboardHandler posts the current top of a leaderboard to the
// notification channel. Meant to be hit by a scheduler (e.g. weekly).
func (s *Server) AnnounceLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := ranking.ParseCategory(defaultQuery(r, "category", string(ranking.CategoryGoals)))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		period, err := ranking.ParsePeriod(defaultQuery(r, "period", string(ranking.PeriodWeek)))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		periodKey := defaultQuery(r, "periodKey", ranking.PeriodKeyFor(period, time.Now()))
		isDryRun := isDryRunFromContext(r)

		doc, err := s.Rankings.GetDocument(period, periodKey, category)
		if err != nil {
			if errors.Is(err, ranking.ErrNotFound) {
				doc = ranking.NewDocument(period, periodKey, category)
			} else {
				http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
				log.Error("Failed to get leaderboard document", "error", err, "period", period, "periodKey", periodKey, "category", category)
				return
			}
		}

		if err := s.Notifier.SendLeaderboard(period, category, doc.Eligible(10), isDryRun); err != nil {
			http.Error(w, "Failed to announce leaderboard", http.StatusInternalServerError)
			log.Error("Failed to announce leaderboard", "error", err, "period", period, "periodKey", periodKey, "category", category)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Leaderboard announced.")
	}
}

func defaultQuery(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}
