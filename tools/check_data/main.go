package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"

	"goalscan-service/services"
)

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	store := services.NewResultStore(db)

	log.Println("=== Database Statistics ===")

	tables := []string{
		"odds_snapshots",
		"validation_results",
		"score_results",
		"scanner_results",
		"tracked_fixtures",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			log.Printf("✗ %s: Error - %v", table, err)
			continue
		}
		log.Printf("✓ %s: %d rows", table, count)

		if table == "odds_snapshots" && count > 0 {
			var latestTime time.Time
			err := db.QueryRow("SELECT MAX(captured_at) FROM odds_snapshots").Scan(&latestTime)
			if err == nil {
				log.Printf("  └─ Latest snapshot: %s", latestTime.Format("2006-01-02 15:04:05"))
			}
		}

		if table == "score_results" && count > 0 {
			var latestTime sql.NullTime
			err := db.QueryRow("SELECT MAX(computed_at) FROM score_results").Scan(&latestTime)
			if err == nil && latestTime.Valid {
				log.Printf("  └─ Latest score: %s", latestTime.Time.Format("2006-01-02 15:04:05"))
			}
		}
	}

	// Show top recent scores
	log.Println("\n=== Recent Scores (Last 5) ===")
	rows, err := db.Query(`
		SELECT fixture_id, total, stars, recommendation, minute, computed_at
		FROM score_results
		WHERE scoreable = TRUE
		ORDER BY computed_at DESC
		LIMIT 5
	`)
	if err != nil {
		log.Printf("Error querying scores: %v", err)
	} else {
		defer rows.Close()
		count := 0
		for rows.Next() {
			var fixtureID, stars, minute int
			var total float64
			var recommendation string
			var computedAt time.Time
			if err := rows.Scan(&fixtureID, &total, &stars, &recommendation, &minute, &computedAt); err != nil {
				log.Printf("Error scanning row: %v", err)
				continue
			}
			count++
			log.Printf("%d. [%s] Fixture %d - %.1f pts (%d★ %s) at minute %d",
				count, computedAt.Format("15:04:05"), fixtureID, total, stars, recommendation, minute)
		}
		if count == 0 {
			log.Println("(No scores found)")
		}
	}

	// Show tracked fixtures
	log.Println("\n=== Tracked Fixtures (Top 5 by cycle count) ===")
	tracked, err := store.GetTopTracked(5)
	if err != nil {
		log.Printf("Error querying tracked fixtures: %v", err)
	} else if len(tracked) == 0 {
		log.Println("(No tracked fixtures found)")
	} else {
		for i, f := range tracked {
			home, away := "?", "?"
			if f.HomeTeam != nil {
				home = *f.HomeTeam
			}
			if f.AwayTeam != nil {
				away = *f.AwayTeam
			}
			lastCycle := "never"
			if f.LastCycleAt != nil {
				lastCycle = f.LastCycleAt.Format("15:04:05")
			}
			log.Printf("%d. Fixture %d (%s vs %s) - %s - %d cycles - Last: %s",
				i+1, f.FixtureID, home, away, f.Status, f.CycleCount, lastCycle)
		}

		// Latest snapshot detail for the busiest fixture
		snap, err := store.GetLatestSnapshot(int(tracked[0].FixtureID))
		if err != nil {
			log.Printf("Error querying latest snapshot: %v", err)
		} else if snap != nil {
			bookmaker := "(live)"
			if snap.Bookmaker != nil {
				bookmaker = *snap.Bookmaker
			}
			mainLine := "-"
			if snap.MainLine != nil {
				mainLine = fmt.Sprintf("%.2f", *snap.MainLine)
			}
			log.Printf("  └─ Latest odds [%s] %s: main line %s at %s",
				snap.FetchStatus, bookmaker, mainLine,
				snap.CapturedAt.Format("15:04:05"))
		}
	}

	// Show validation tier distribution
	log.Println("\n=== Validation Tiers ===")
	rows, err = db.Query(`
		SELECT tier, COUNT(*)
		FROM validation_results
		GROUP BY tier
		ORDER BY tier
	`)
	if err != nil {
		log.Printf("Error querying validation tiers: %v", err)
	} else {
		defer rows.Close()
		count := 0
		for rows.Next() {
			var tier string
			var tierCount int
			if err := rows.Scan(&tier, &tierCount); err != nil {
				log.Printf("Error scanning row: %v", err)
				continue
			}
			count++
			log.Printf("%s: %d", tier, tierCount)
		}
		if count == 0 {
			log.Println("(No validation results found)")
		}
	}

	// Show recent validations with reasons
	log.Println("\n=== Recent Validations (Last 5) ===")
	validations, err := store.GetRecentValidations(5)
	if err != nil {
		log.Printf("Error querying validations: %v", err)
	} else if len(validations) == 0 {
		log.Println("(No validation results found)")
	} else {
		for i, v := range validations {
			reasons := ""
			if v.Reasons != nil {
				reasons = " - " + *v.Reasons
			}
			log.Printf("%d. [%s] Fixture %d - %s%s",
				i+1, v.CreatedAt.Format("15:04:05"), v.FixtureID, v.Tier, reasons)
		}
	}

	log.Println("\n=== Check Complete ===")
}
