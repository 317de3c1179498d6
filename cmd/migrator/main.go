package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/tents-server/internal/config"
	"github.com/vancomm/tents-server/internal/database"
	"github.com/vancomm/tents-server/migrations"
)

func main() {
	log, err := config.NewLogger()
	if err != nil {
		logrus.WithError(err).Fatal("unable to configure logging")
	}

	url, err := config.DbURL()
	if err != nil {
		log.WithError(err).Fatal("no database configured")
	}

	migrator, err := database.Migrate(url, migrations.FS)
	if err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	defer migrator.Close()

	version, dirty, err := migrator.Version()
	if err != nil {
		log.WithError(err).Error("unable to check migration version")
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("migration successful")
}
