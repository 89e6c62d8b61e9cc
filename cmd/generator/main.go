package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"railbook/internal/config"
	"railbook/internal/database"
	"railbook/internal/models"
	"railbook/internal/repository"
	"railbook/internal/search"
	"railbook/internal/service"
)

var (
	clearExisting = flag.Bool("clear", false, "Drop existing trains and seats before generating")
	trainCount    = flag.Int("trains", 5, "Number of trains to generate")
	userCount     = flag.Int("users", 10, "Number of test users to generate")
	syncIndex     = flag.Bool("sync-index", false, "Index generated routes into Elasticsearch")
	dryRun        = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

var berthCycle = []models.BerthType{
	models.BerthLower,
	models.BerthMiddle,
	models.BerthUpper,
	models.BerthSideLower,
	models.BerthSideUpper,
}

var stations = []string{
	"Almaty", "Astana", "Shymkent", "Karaganda", "Aktobe",
	"Taraz", "Pavlodar", "Semey", "Atyrau", "Kostanay",
}

type Generator struct {
	db *database.DB
}

func main() {
	flag.Parse()

	slog.Info("Starting data generator")

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	g := &Generator{db: db}

	if err := g.Run(); err != nil {
		slog.Error("Generation failed", "error", err)
		os.Exit(1)
	}

	if *syncIndex && !*dryRun {
		if err := g.syncRouteIndex(); err != nil {
			slog.Error("Route index sync failed", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Generation completed")
}

func (g *Generator) Run() error {
	if *dryRun {
		slog.Info("[DRY RUN] Would generate data",
			"trains", *trainCount,
			"users", *userCount,
			"clear", *clearExisting)
		return nil
	}

	tx, err := g.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if *clearExisting {
		if err := g.clear(tx); err != nil {
			return fmt.Errorf("clear existing data: %w", err)
		}
	}

	for i := 0; i < *trainCount; i++ {
		if err := g.generateTrain(tx, i+1); err != nil {
			return fmt.Errorf("generate train %d: %w", i+1, err)
		}
	}

	if err := g.generateUsers(tx); err != nil {
		return fmt.Errorf("generate users: %w", err)
	}

	return tx.Commit()
}

func (g *Generator) clear(tx *sql.Tx) error {
	// order matters because of foreign keys
	tables := []string{"payments", "queue_entries", "bookings", "seats", "compartments", "classes", "routes", "trains"}
	for _, table := range tables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}
	slog.Info("Cleared existing data")
	return nil
}

func (g *Generator) generateTrain(tx *sql.Tx, n int) error {
	var trainID int64
	err := tx.QueryRow(
		`INSERT INTO trains (train_number, train_name) VALUES ($1, $2) RETURNING train_id`,
		fmt.Sprintf("%03dT", n*100+rand.Intn(100)),
		fmt.Sprintf("%s Express", stations[rand.Intn(len(stations))]),
	).Scan(&trainID)
	if err != nil {
		return err
	}

	if err := g.generateRoutes(tx, trainID); err != nil {
		return err
	}

	seatTotal := 0
	for _, className := range []string{"Sleeper", "AC 3 Tier", "AC 2 Tier"} {
		var classID int64
		err := tx.QueryRow(
			`INSERT INTO classes (train_id, class_name) VALUES ($1, $2) RETURNING class_id`,
			trainID, className,
		).Scan(&classID)
		if err != nil {
			return err
		}

		compartments := rand.Intn(3) + 2
		for c := 1; c <= compartments; c++ {
			var compartmentID int64
			err := tx.QueryRow(
				`INSERT INTO compartments (class_id, compartment_name) VALUES ($1, $2) RETURNING compartment_id`,
				classID, fmt.Sprintf("%s-%d", className[:1], c),
			).Scan(&compartmentID)
			if err != nil {
				return err
			}

			seatsPerCompartment := rand.Intn(9) + 16
			for s := 1; s <= seatsPerCompartment; s++ {
				berth := berthCycle[(s-1)%len(berthCycle)]
				_, err := tx.Exec(
					`INSERT INTO seats (compartment_id, berth_type, seat_number) VALUES ($1, $2, $3)`,
					compartmentID, berth, s,
				)
				if err != nil {
					return err
				}
				seatTotal++
			}
		}
	}

	slog.Info("Generated train", "train_id", trainID, "seats", seatTotal)
	return nil
}

func (g *Generator) generateRoutes(tx *sql.Tx, trainID int64) error {
	routes := rand.Intn(3) + 1
	for r := 0; r < routes; r++ {
		src := stations[rand.Intn(len(stations))]
		dst := stations[rand.Intn(len(stations))]
		for dst == src {
			dst = stations[rand.Intn(len(stations))]
		}

		departure := time.Now().AddDate(0, 0, rand.Intn(30)+1).Truncate(time.Hour)
		arrival := departure.Add(time.Duration(rand.Intn(18)+6) * time.Hour)
		price := int64(rand.Intn(8000) + 2000)

		_, err := tx.Exec(
			`INSERT INTO routes (train_id, source_station, destination_station, departure_time, arrival_time, price)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			trainID, src, dst, departure, arrival, price,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) generateUsers(tx *sql.Tx) error {
	for i := 1; i <= *userCount; i++ {
		email := fmt.Sprintf("user%d@example.com", i)
		hash := sha256.Sum256([]byte(fmt.Sprintf("password%d", i)))

		_, err := tx.Exec(
			`INSERT INTO users (email, password_hash, full_name)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (email) DO NOTHING`,
			email, hex.EncodeToString(hash[:]), fmt.Sprintf("Test User %d", i),
		)
		if err != nil {
			return err
		}
	}

	slog.Info("Generated users", "count", *userCount)
	return nil
}

func (g *Generator) syncRouteIndex() error {
	routeIndex, err := search.NewRouteIndex(config.LoadElasticsearchConfig())
	if err != nil {
		return err
	}

	trains := service.NewTrainService(repository.NewRepositories(g.db), routeIndex, nil)
	indexed, err := trains.SyncRouteIndex(context.Background())
	if err != nil {
		return err
	}

	slog.Info("Indexed routes", "count", indexed)
	return nil
}
