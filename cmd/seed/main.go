package main

import (
	"context" // Background context
	"flag"    // Command line flags
	"os"      // File access

	"crowdfunding/internal/accounting" // Counter reconciliation
	"crowdfunding/internal/config"     // Application configuration
	"crowdfunding/internal/db"         // Database connection
	"crowdfunding/internal/seed"       // Mock data loader

	"github.com/sirupsen/logrus" // Logging library
)

// Main loads the mock data file into the database
func main() {
	cfg := config.LoadConfig() // Load configuration
	path := flag.String("file", cfg.MockDataPath, "mock data JSON file")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	f, err := os.Open(*path)
	if err != nil {
		logrus.Fatalf("failed to open mock data: %v", err)
	}
	defer f.Close()
	entries, err := seed.Decode(f)
	if err != nil {
		logrus.Fatalf("failed to read mock data: %v", err)
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("failed to migrate: %v", err)
	}

	// The cache is not touched: seeding runs before the API serves traffic
	if _, err := seed.Load(context.Background(), gdb, accounting.New(gdb, nil), entries); err != nil {
		logrus.Fatalf("failed to load mock data: %v", err)
	}
}
