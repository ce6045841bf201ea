// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/askarin/fieldvault/internal/config"
	"github.com/askarin/fieldvault/internal/gate"
	handler "github.com/askarin/fieldvault/internal/handler/http"
	"github.com/askarin/fieldvault/internal/logger"
	"github.com/askarin/fieldvault/internal/server"
	"github.com/askarin/fieldvault/internal/store"
	"github.com/askarin/fieldvault/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("fieldvault-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if err = cfg.ValidateServer(); err != nil {
		log.Fatal().Err(err).Msg("invalid server configuration")
	}

	ctx := context.Background()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	if err = migrations.Migrate(db.DB, "pgx"); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	records := store.NewRetryingRecordRepository(
		store.NewRecordRepository(db, log),
		db.Classifier(),
		log,
	)
	verifiers := store.NewVerifierRepository(db, log)
	gateService := gate.NewGateService(verifiers, cfg.App.BcryptCost, log)

	handlers := handler.NewHandler(gateService, records, cfg, log)

	srv, err := server.NewServer(handlers.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
