package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mvoss/ttstats/internal/database"
	"github.com/mvoss/ttstats/internal/league"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME": "ttstats-seed.db",
	}
	if value, ok := os.LookupEnv("DB_NAME"); ok {
		config["DB_NAME"] = value
	}
	for _, key := range []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		config[key] = os.Getenv(key)
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	store := league.New(db)

	dummyPlayers := []league.PlayerInfo{
		{ID: "player-1", Name: "Seeder Player A", Email: "a@example.com", EmailVerified: true},
		{ID: "player-2", Name: "Seeder Player B", Email: "b@example.com", EmailVerified: true},
		{ID: "player-3", Name: "Seeder Player C"},
		{ID: "player-4", Name: "Seeder Player D"},
	}

	for _, p := range dummyPlayers {
		if err := store.UpsertPlayer(p); err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", p.Name, err)
		}
	}
	log.Info("Ensured dummy players exist.")

	const numMatches = 500

	log.Info("Preparing to insert dummy matches...", "total", numMatches)
	startTime := time.Now()

	kinds := []league.MatchKind{league.KindCasual, league.KindPractice, league.KindTournament}

	for i := 0; i < numMatches; i++ {
		a := dummyPlayers[rand.Intn(len(dummyPlayers))]
		b := dummyPlayers[rand.Intn(len(dummyPlayers))]
		if a.ID == b.ID {
			continue
		}

		sideA, err := store.CreateSide([]string{a.ID})
		if err != nil {
			log.Fatalf("Failed to create side: %s", err)
		}
		sideB, err := store.CreateSide([]string{b.ID})
		if err != nil {
			log.Fatalf("Failed to create side: %s", err)
		}

		playedAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
		match, err := store.CreateMatch(sideA.ID, sideB.ID, 5, kinds[rand.Intn(len(kinds))], playedAt.Unix())
		if err != nil {
			log.Fatalf("Failed to create match: %s", err)
		}

		// Three straight games for a random winner, confirmed by everyone.
		aWins := rand.Intn(2) == 0
		for n := 1; n <= 3; n++ {
			game := league.Game{GameNumber: n, ScoreA: 11, ScoreB: rand.Intn(10)}
			if !aWins {
				game.ScoreA, game.ScoreB = game.ScoreB, game.ScoreA
			}
			if err := store.UpsertGame(match.ID, game); err != nil {
				log.Fatalf("Failed to insert game: %s", err)
			}
		}

		winnerID := sideA.ID
		scoreA, scoreB := 3, 0
		if !aWins {
			winnerID = sideB.ID
			scoreA, scoreB = 0, 3
		}
		if err := store.SetMatchOutcome(match.ID, &winnerID, scoreA, scoreB); err != nil {
			log.Fatalf("Failed to set match outcome: %s", err)
		}
		if err := store.InsertConfirmations(match.ID, []string{a.ID, b.ID}); err != nil {
			log.Fatalf("Failed to insert confirmations: %s", err)
		}
		if err := store.SetFullyConfirmed(match.ID, true); err != nil {
			log.Fatalf("Failed to mark match confirmed: %s", err)
		}

		if (i+1)%100 == 0 {
			log.Info("Seeded matches", "completed", i+1, "total", numMatches)
		}
	}

	summary, err := store.ReplayRatings(false)
	if err != nil {
		log.Fatalf("Failed to replay ratings over seeded matches: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully seeded dummy matches.",
		"duration", duration,
		"ratedMatches", summary.MatchesProcessed,
		"summary", fmt.Sprintf("%+v", summary))
}
