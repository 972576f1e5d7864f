package ranking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// New creates a new ranking Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// ApplyGameDelta merges one game's contribution into a leaderboard bucket.
// The processed-delta marker, the accumulated delta row and the six
// category documents are written in a single transaction, so the merge is
// all-or-nothing and exactly-once per (game, user, bucket).
func (s *store) ApplyGameDelta(gameID string, d *Delta) error {
	lock := s.bucketLock(BucketKey(d.Period, d.PeriodKey))
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delta merge: %w", err)
	}

	deltaID := DeltaID(gameID, d)
	var processed bool
	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM processed_deltas WHERE delta_id = ?)", deltaID).Scan(&processed); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to check processed-delta marker: %w", err)
	}
	if processed {
		tx.Rollback()
		return ErrAlreadyProcessed
	}
	if _, err := tx.Exec("INSERT INTO processed_deltas (delta_id, processed_at) VALUES (?, ?)", deltaID, d.UpdatedAt); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record processed-delta marker: %w", err)
	}

	if err := upsertDelta(tx, d); err != nil {
		tx.Rollback()
		return err
	}

	for _, c := range Categories() {
		doc, err := getDocumentTx(tx, d.Period, d.PeriodKey, c)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				tx.Rollback()
				return err
			}
			doc = NewDocument(d.Period, d.PeriodKey, c)
		}
		doc.Merge(d)
		if err := saveDocumentTx(tx, doc); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delta merge: %w", err)
	}
	return nil
}

// upsertDelta accumulates the per-(user, period, periodKey) delta row.
// Additive only; the row is the replay source for rebuilds.
func upsertDelta(tx *sql.Tx, d *Delta) error {
	_, err := tx.Exec(`
		INSERT INTO ranking_deltas (user_id, period, period_key, user_name, user_photo, nickname, goals_added, assists_added, saves_added, xp_added, games_added, wins_added, mvp_added, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, period, period_key) DO UPDATE SET
			user_name = excluded.user_name,
			user_photo = excluded.user_photo,
			nickname = excluded.nickname,
			goals_added = goals_added + excluded.goals_added,
			assists_added = assists_added + excluded.assists_added,
			saves_added = saves_added + excluded.saves_added,
			xp_added = xp_added + excluded.xp_added,
			games_added = games_added + excluded.games_added,
			wins_added = wins_added + excluded.wins_added,
			mvp_added = mvp_added + excluded.mvp_added,
			updated_at = excluded.updated_at;
	`, d.UserID, d.Period, d.PeriodKey, d.UserName, d.UserPhoto, d.Nickname,
		d.GoalsAdded, d.AssistsAdded, d.SavesAdded, d.XPAdded, d.GamesAdded, d.WinsAdded, d.MVPAdded, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert ranking delta: %w", err)
	}
	return nil
}

// GetDocument retrieves one leaderboard document.
func (s *store) GetDocument(period Period, periodKey string, category Category) (*Document, error) {
	row := s.db.QueryRow(`
		SELECT id, period, period_key, category, entries_json, min_games, updated_at
		FROM ranking_documents
		WHERE id = ?
	`, DocumentID(period, periodKey, category))
	return scanDocument(row)
}

func getDocumentTx(tx *sql.Tx, period Period, periodKey string, category Category) (*Document, error) {
	row := tx.QueryRow(`
		SELECT id, period, period_key, category, entries_json, min_games, updated_at
		FROM ranking_documents
		WHERE id = ?
	`, DocumentID(period, periodKey, category))
	return scanDocument(row)
}

func scanDocument(scanner interface{ Scan(...any) error }) (*Document, error) {
	var doc Document
	var entriesJSON sql.NullString
	err := scanner.Scan(&doc.ID, &doc.Period, &doc.PeriodKey, &doc.Category, &entriesJSON, &doc.MinGames, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan ranking document: %w", err)
	}
	if entriesJSON.Valid && entriesJSON.String != "" {
		if err := json.Unmarshal([]byte(entriesJSON.String), &doc.Entries); err != nil {
			log.Error("Failed to unmarshal entries_json", "error", err, "docID", doc.ID)
		}
	}
	if doc.Entries == nil {
		doc.Entries = []Entry{}
	}
	return &doc, nil
}

func saveDocumentTx(tx *sql.Tx, doc *Document) error {
	entriesJSON, err := json.Marshal(doc.Entries)
	if err != nil {
		return fmt.Errorf("failed to marshal document entries: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO ranking_documents (id, period, period_key, category, entries_json, min_games, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			entries_json = excluded.entries_json,
			min_games = excluded.min_games,
			updated_at = excluded.updated_at;
	`, doc.ID, doc.Period, doc.PeriodKey, doc.Category, string(entriesJSON), doc.MinGames, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save ranking document: %w", err)
	}
	return nil
}

// GetDeltas retrieves the accumulated delta rows for one bucket, in
// deterministic user order.
func (s *store) GetDeltas(ctx context.Context, period Period, periodKey string) ([]*Delta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, period, period_key, user_name, user_photo, nickname, goals_added, assists_added, saves_added, xp_added, games_added, wins_added, mvp_added, updated_at
		FROM ranking_deltas
		WHERE period = ? AND period_key = ?
		ORDER BY user_id ASC
	`, period, periodKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deltas []*Delta
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var d Delta
		err := rows.Scan(
			&d.UserID, &d.Period, &d.PeriodKey, &d.UserName, &d.UserPhoto, &d.Nickname,
			&d.GoalsAdded, &d.AssistsAdded, &d.SavesAdded, &d.XPAdded, &d.GamesAdded, &d.WinsAdded, &d.MVPAdded, &d.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ranking delta: %w", err)
		}
		deltas = append(deltas, &d)
	}
	return deltas, rows.Err()
}

// GetUserDelta retrieves one user's accumulated delta row for a bucket.
// Returns ErrNotFound if the user has no contribution there yet.
func (s *store) GetUserDelta(ctx context.Context, period Period, periodKey, userID string) (*Delta, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, period, period_key, user_name, user_photo, nickname, goals_added, assists_added, saves_added, xp_added, games_added, wins_added, mvp_added, updated_at
		FROM ranking_deltas
		WHERE period = ? AND period_key = ? AND user_id = ?
	`, period, periodKey, userID)

	var d Delta
	err := row.Scan(
		&d.UserID, &d.Period, &d.PeriodKey, &d.UserName, &d.UserPhoto, &d.Nickname,
		&d.GoalsAdded, &d.AssistsAdded, &d.SavesAdded, &d.XPAdded, &d.GamesAdded, &d.WinsAdded, &d.MVPAdded, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan ranking delta: %w", err)
	}
	return &d, nil
}

// Rebuild reconstructs every category document of a bucket from its delta
// history. The fresh documents are computed off to the side and swapped in
// with one transaction, so cancellation mid-stream never leaves a
// half-written document behind.
func (s *store) Rebuild(ctx context.Context, period Period, periodKey string) error {
	lock := s.bucketLock(BucketKey(period, periodKey))
	lock.Lock()
	defer lock.Unlock()

	deltas, err := s.GetDeltas(ctx, period, periodKey)
	if err != nil {
		return fmt.Errorf("failed to load deltas for rebuild: %w", err)
	}

	docs := BuildDocuments(period, periodKey, deltas)

	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rebuild swap: %w", err)
	}
	for _, c := range Categories() {
		if err := saveDocumentTx(tx, docs[c]); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rebuild swap: %w", err)
	}
	log.Info("Rebuilt leaderboard bucket", "period", period, "periodKey", periodKey, "deltas", len(deltas))
	return nil
}

// Clear wipes deltas, documents and markers. Test support.
func (s *store) Clear() {
	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing ranking store", "error", err)
		return
	}
	for _, table := range []string{"ranking_deltas", "ranking_documents", "processed_deltas"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "error", err, "table", table)
			tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing ranking store", "error", err)
	}
}
