package main

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

type seedPlayer struct {
	ID       string
	Name     string
	Nickname string
}

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN", "CURRENT_SEASON_ID"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	players := []seedPlayer{
		{ID: "player-1", Name: "Arthur Antunes", Nickname: "Zico"},
		{ID: "player-2", Name: "Sócrates Brasileiro", Nickname: "Doutor"},
		{ID: "player-3", Name: "Manuel dos Santos", Nickname: "Garrincha"},
		{ID: "player-4", Name: "Eduardo Gonçalves", Nickname: "Tostão"},
		{ID: "player-5", Name: "Jair Ventura", Nickname: "Jairzinho"},
		{ID: "player-6", Name: "Roberto Rivellino", Nickname: ""},
	}

	const batchSize = 100
	const numResults = 10000

	log.Info("Preparing to insert dummy game results...", "total", numResults, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*17) // 17 columns per result

	for i := 0; i < numResults; i++ {
		player := players[rand.Intn(len(players))]
		playedAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)

		won := rand.Intn(3) == 0
		drew := !won && rand.Intn(4) == 0
		goalsScored := rand.Intn(4)
		goalsConceded := rand.Intn(4)
		if won && goalsConceded >= goalsScored {
			goalsScored = goalsConceded + 1
		}
		if drew {
			goalsConceded = goalsScored
		}

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			uuid.NewString(),
			uuid.NewString(),
			player.ID,
			cfg["CURRENT_SEASON_ID"],
			player.Name,
			"",
			player.Nickname,
			50+rand.Intn(150), // xp_earned
			won,
			drew,
			goalsScored,
			goalsConceded,
			rand.Intn(3), // assists
			rand.Intn(5), // saves
			rand.Intn(10) == 0, // was_mvp
			playedAt.Unix(),
			"NEW",
		)

		if (i+1)%batchSize == 0 || (i+1) == numResults {
			stmt := fmt.Sprintf(`
				INSERT INTO game_results (event_id, game_id, user_id, season_id, user_name, user_photo,
					nickname, xp_earned, won, drew, goals_scored, goals_conceded, assists, saves,
					was_mvp, played_at, processing_status)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]interface{}, 0, batchSize*17)
			log.Info("Inserted batch", "completed", i+1, "total", numResults)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy game results.", "duration", duration)
}
