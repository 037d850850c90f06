package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/dropplus/server/internal/store"
)

const (
	TotalSchools    = 25
	DepositsPerUser = 4
	PointsPerBottle = 10
	SeedDevice      = "BIN-01"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./recycle.db"
	}

	ctx := context.Background()
	ledger, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Unable to open ledger store: %v", err)
	}
	defer ledger.Close()

	log.Println("--- Seeding Database ---")

	// Skip if already seeded
	board, err := ledger.Leaderboard(ctx, TotalSchools)
	if err != nil {
		log.Fatal(err)
	}
	if len(board) >= TotalSchools {
		log.Printf("Database already has %d users. Skipping.", len(board))
		return
	}

	log.Printf("Generating %d schools with %d deposits each...", TotalSchools, DepositsPerUser)
	deposits := 0
	for i := 1; i <= TotalSchools; i++ {
		schoolID := fmt.Sprintf("SCH-%03d", i)
		for j := 0; j < DepositsPerUser; j++ {
			bottles := int64(rand.Intn(10) + 1)
			if _, err := ledger.Deposit(ctx, schoolID, bottles, bottles*PointsPerBottle, SeedDevice); err != nil {
				log.Fatalf("Seed deposit failed for %s: %v", schoolID, err)
			}
			deposits++
		}
	}

	log.Printf("Successfully seeded %d deposits across %d schools.", deposits, TotalSchools)
}
