package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/tents-server/internal/app"
	"github.com/vancomm/tents-server/internal/config"
	"github.com/vancomm/tents-server/internal/tents"
	"github.com/vancomm/tents-server/migrations"
)

func main() {
	log, err := config.NewLogger()
	if err != nil {
		logrus.WithError(err).Fatal("unable to configure logging")
	}
	tents.Log = log

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.New(log, migrations.FS).Start(ctx); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("server stopped")
}
