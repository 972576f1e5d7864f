// Package level maps cumulative XP to player levels using a static,
// strictly increasing lookup table.
package level

// Definition is one row of the level table.
type Definition struct {
	Level      int    `json:"level"`
	XPRequired int64  `json:"xp_required"`
	Name       string `json:"name"`
}

// table holds cumulative XP thresholds. Level 0 starts at 0 XP and the
// thresholds are strictly increasing.
var table = []Definition{
	{Level: 0, XPRequired: 0, Name: "Estreante"},
	{Level: 1, XPRequired: 300, Name: "Perna de Pau"},
	{Level: 2, XPRequired: 900, Name: "Peladeiro"},
	{Level: 3, XPRequired: 2_000, Name: "Reserva"},
	{Level: 4, XPRequired: 4_000, Name: "Titular"},
	{Level: 5, XPRequired: 7_500, Name: "Capitao"},
	{Level: 6, XPRequired: 13_000, Name: "Artilheiro"},
	{Level: 7, XPRequired: 21_000, Name: "Camisa 10"},
	{Level: 8, XPRequired: 33_000, Name: "Craque"},
	{Level: 9, XPRequired: 50_000, Name: "Idolo"},
	{Level: 10, XPRequired: 75_000, Name: "Lenda"},
}

// Table returns the full level table, for the query surface.
func Table() []Definition {
	out := make([]Definition, len(table))
	copy(out, table)
	return out
}

// MaxLevel is the highest defined level.
func MaxLevel() int {
	return table[len(table)-1].Level
}

// ForXP returns the highest level whose threshold is at or below xp.
// Negative XP maps to level 0.
func ForXP(xp int64) Definition {
	current := table[0]
	for _, def := range table {
		if def.XPRequired > xp {
			break
		}
		current = def
	}
	return current
}

// Progress reports how far into the current level xp sits: the XP earned
// since the level threshold and the XP span of the level. At the top level
// the span is 0 and the player is considered maxed.
func Progress(xp int64) (into int64, span int64) {
	current := ForXP(xp)
	if current.Level == MaxLevel() {
		return 0, 0
	}
	next := table[current.Level+1]
	if xp < 0 {
		xp = 0
	}
	return xp - current.XPRequired, next.XPRequired - current.XPRequired
}

// ProgressPercent renders Progress as a percentage, treating the maxed-out
// top level as 100%.
func ProgressPercent(xp int64) float64 {
	into, span := Progress(xp)
	if span == 0 {
		return 100.0
	}
	return float64(into) / float64(span) * 100
}
