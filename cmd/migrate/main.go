// Command migrate creates or updates the ledger schema.
package main

import (
	"spark/internal/config"
	"spark/internal/logging"
	"spark/internal/repositories"

	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Database.Driver == "memory" {
		logrus.Fatal("DB_DRIVER=memory has no schema to migrate")
	}

	db, err := repositories.OpenDB(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer repositories.CloseDB(db)

	if err := repositories.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}
	logrus.WithField("driver", cfg.Database.Driver).Info("schema is up to date")
}
