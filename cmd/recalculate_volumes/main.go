package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/repository"
	"github.com/mansoorceksport/fitcoach/internal/service"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Command line flags
	userID := flag.String("user", "", "User ID to recalculate volumes for (required)")
	mongoURI := flag.String("mongo", "mongodb://localhost:27017", "MongoDB connection URI")
	dbName := flag.String("db", "fitcoach", "Database name")
	dryRun := flag.Bool("dry-run", false, "Show what would be done without making changes")
	flag.Parse()

	if *userID == "" {
		fmt.Println("Usage: recalculate_volumes -user <USER_ID> [-mongo <URI>] [-db <NAME>] [-dry-run]")
		fmt.Println("\nThis script recomputes session totals from the logged sets")
		fmt.Println("and rebuilds the user's daily_volumes rows.")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(*dbName)
	sessionRepo := repository.NewMongoWorkoutSessionRepository(db)
	setRepo := repository.NewMongoSessionSetRepository(db)
	volumeRepo := repository.NewMongoDailyVolumeRepository(db)

	fmt.Printf("🔍 Finding completed sessions for user: %s\n", *userID)

	sessions, err := sessionRepo.ListCompletedByUser(ctx, *userID)
	if err != nil {
		log.Fatalf("Failed to query sessions: %v", err)
	}
	fmt.Printf("📋 Found %d completed sessions\n\n", len(sessions))

	if len(sessions) == 0 {
		fmt.Println("No completed sessions found for this user.")
		return
	}

	if !*dryRun {
		deleted, err := volumeRepo.DeleteByUser(ctx, *userID)
		if err != nil {
			log.Fatalf("Failed to delete existing volumes: %v", err)
		}
		fmt.Printf("🗑️  Deleted %d existing volume records\n\n", deleted)
	} else {
		fmt.Print("🏃 DRY RUN - Would delete existing volume records\n\n")
	}

	var rebuilt int
	var grandTotal float64

	for _, session := range sessions {
		fmt.Printf("📅 Processing session: %s (Date: %s)\n", session.ID, session.CompletedAt.Format("2006-01-02"))

		sets, err := setRepo.ListBySession(ctx, session.ID)
		if err != nil {
			fmt.Printf("   ⚠️  Failed to fetch sets: %v\n", err)
			continue
		}

		delta := domain.VolumeDelta{
			Volume:   service.CalculateSessionVolume(sets),
			Sets:     len(sets),
			Sessions: 1,
		}
		for _, set := range sets {
			if set.Reps != nil {
				delta.Reps += *set.Reps
			}
		}
		fmt.Printf("   📊 Sets: %d, Reps: %d, Volume: %.1f kg\n", delta.Sets, delta.Reps, delta.Volume)

		if *dryRun {
			fmt.Print("   🏃 DRY RUN - Would update session and volume\n\n")
		} else {
			if err := sessionRepo.SetTotalVolume(ctx, session.ID, delta.Volume); err != nil {
				fmt.Printf("   ❌ Failed to update session: %v\n\n", err)
				continue
			}
			if err := volumeRepo.Increment(ctx, *userID, domain.StartOfDay(*session.CompletedAt), delta); err != nil {
				fmt.Printf("   ❌ Failed to update daily volume: %v\n\n", err)
				continue
			}
			fmt.Print("   ✅ Updated\n\n")
		}

		rebuilt++
		grandTotal += delta.Volume
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✅ Summary:\n")
	fmt.Printf("   Sessions processed: %d\n", len(sessions))
	fmt.Printf("   Sessions rebuilt: %d\n", rebuilt)
	fmt.Printf("   Grand total volume: %.1f kg\n", grandTotal)

	if *dryRun {
		fmt.Println("\n⚠️  This was a dry run. No changes were made.")
		fmt.Println("   Run without -dry-run to apply changes.")
	}
}
