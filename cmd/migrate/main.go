package main

import (
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/config"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/db"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logrus.Fatalf("Failed to apply schema: %v", err)
	}

	logrus.Info("Schema applied")
}
