package milestone

// catalog is the static milestone table. IDs are stable: they are the
// persisted unlock keys.
var catalog = []Milestone{
	{ID: "first-game", Name: "Estreia", Description: "Jogou a primeira pelada", Stat: StatGames, Threshold: 1, BonusXP: 50},
	{ID: "games-10", Name: "Presenca", Description: "10 jogos disputados", Stat: StatGames, Threshold: 10, BonusXP: 100},
	{ID: "games-50", Name: "Figurinha Carimbada", Description: "50 jogos disputados", Stat: StatGames, Threshold: 50, BonusXP: 300},
	{ID: "games-100", Name: "Centenario", Description: "100 jogos disputados", Stat: StatGames, Threshold: 100, BonusXP: 500},
	{ID: "first-goal", Name: "Primeiro Gol", Description: "Balancou a rede", Stat: StatGoals, Threshold: 1, BonusXP: 50},
	{ID: "goals-25", Name: "Artilheiro", Description: "25 gols marcados", Stat: StatGoals, Threshold: 25, BonusXP: 250},
	{ID: "goals-100", Name: "Matador", Description: "100 gols marcados", Stat: StatGoals, Threshold: 100, BonusXP: 1000},
	{ID: "assists-25", Name: "Garcom", Description: "25 assistencias", Stat: StatAssists, Threshold: 25, BonusXP: 250},
	{ID: "saves-50", Name: "Paredao", Description: "50 defesas", Stat: StatSaves, Threshold: 50, BonusXP: 300},
	{ID: "wins-10", Name: "Vencedor", Description: "10 vitorias", Stat: StatWins, Threshold: 10, BonusXP: 200},
	{ID: "first-mvp", Name: "Craque da Partida", Description: "Primeiro MVP", Stat: StatMVPs, Threshold: 1, BonusXP: 100},
	{ID: "mvps-10", Name: "Craque do Raxa", Description: "10 MVPs", Stat: StatMVPs, Threshold: 10, BonusXP: 500},
}

// Catalog returns the full milestone table.
func Catalog() []Milestone {
	out := make([]Milestone, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks up one milestone.
func ByID(id string) (Milestone, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}
