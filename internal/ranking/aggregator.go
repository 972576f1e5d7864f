package ranking

import (
	"cmp"
	"slices"
)

// NewDocument creates an empty leaderboard document for a key.
func NewDocument(period Period, periodKey string, category Category) *Document {
	return &Document{
		ID:        DocumentID(period, periodKey, category),
		Period:    period,
		PeriodKey: periodKey,
		Category:  category,
		Entries:   []Entry{},
		MinGames:  DefaultMinGames,
	}
}

// Merge folds one delta into the document: locate or insert the user's
// entry, add the category increment, recompute the average and re-rank.
// Additive merges commute, so documents converge regardless of the order
// deltas arrive in.
func (doc *Document) Merge(d *Delta) {
	idx := -1
	for i := range doc.Entries {
		if doc.Entries[i].UserID == d.UserID {
			idx = i
			break
		}
	}
	if idx == -1 {
		doc.Entries = append(doc.Entries, Entry{UserID: d.UserID})
		idx = len(doc.Entries) - 1
	}

	e := &doc.Entries[idx]
	e.Value += d.ValueFor(doc.Category)
	e.GamesPlayed += d.GamesAdded
	e.Average = float64(e.Value) / float64(max(e.GamesPlayed, 1))
	if d.UserName != "" {
		e.UserName = d.UserName
	}
	if d.UserPhoto != "" {
		e.UserPhoto = d.UserPhoto
	}
	if d.Nickname != "" {
		e.Nickname = d.Nickname
	}
	if d.UpdatedAt > doc.UpdatedAt {
		doc.UpdatedAt = d.UpdatedAt
	}

	doc.rerank()
}

// rerank sorts entries descending by value, ties broken by ascending
// user id for determinism, and reassigns ranks 1..N.
func (doc *Document) rerank() {
	slices.SortFunc(doc.Entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	for i := range doc.Entries {
		doc.Entries[i].Rank = i + 1
	}
}

// Eligible returns the top-n externally visible entries: rows below the
// document's minimum games threshold stay stored but are filtered out of
// the view. Stored ranks are preserved so a filtered row's absolute
// position remains visible.
func (doc *Document) Eligible(n int) []Entry {
	out := make([]Entry, 0, n)
	for _, e := range doc.Entries {
		if e.GamesPlayed < doc.MinGames {
			continue
		}
		out = append(out, e)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// BuildDocuments replays accumulated deltas for one bucket into fresh
// documents, one per category. This is the rebuild path: its output must
// match what incremental merging produced.
func BuildDocuments(period Period, periodKey string, deltas []*Delta) map[Category]*Document {
	docs := make(map[Category]*Document, len(Categories()))
	for _, c := range Categories() {
		docs[c] = NewDocument(period, periodKey, c)
	}
	for _, d := range deltas {
		for _, c := range Categories() {
			docs[c].Merge(d)
		}
	}
	return docs
}
