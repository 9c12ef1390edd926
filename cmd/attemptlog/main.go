// Command attemptlog consumes reserve-attempt events from RabbitMQ and
// appends them to the client_attempt_log table, which it creates on start.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/iliyamo/matchday-seat-client/internal/config"
	"github.com/iliyamo/matchday-seat-client/internal/database"
	"github.com/iliyamo/matchday-seat-client/internal/queue"
	"github.com/iliyamo/matchday-seat-client/internal/repository"
)

func main() {
	config.LoadDotEnv()
	dbCfg := config.LoadDBConfig()
	brokerCfg := config.LoadBrokerConfig()

	db, err := database.Open(dbCfg)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := repository.NewAttemptLogRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure client_attempt_log: %v", err)
	}

	log.Printf("consuming %q into %s/%s.client_attempt_log", brokerCfg.Queue, dbCfg.Host, dbCfg.Name)
	err = queue.StartAttemptConsumer(ctx, brokerCfg.URL, brokerCfg.Queue, repo)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("attempt consumer: %v", err)
	}
	log.Printf("attempt consumer stopped")
}
