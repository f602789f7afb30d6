package main

import (
	"database/sql"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/compass-app/gatekeeper/adapters/events"
	"github.com/compass-app/gatekeeper/adapters/ledger"
	"github.com/compass-app/gatekeeper/adapters/store"
	"github.com/compass-app/gatekeeper/adapters/tokenizer"
	"github.com/compass-app/gatekeeper/internal/config"
	"github.com/compass-app/gatekeeper/service"
	transport "github.com/compass-app/gatekeeper/transport/http"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set migration dialect: %v", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opts)

	logger := watermill.NewStdLogger(false, false)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to create Redis publisher: %v", err)
	}

	jwtTokenizer, err := tokenizer.NewJWTTokenizer([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("Failed to create tokenizer: %v", err)
	}

	pgStore := store.NewPostgresStore(db)
	nonceStore := store.NewRedisNonceStore(redisClient)
	ledgerClient := ledger.NewHTTPLedger(cfg.LedgerURL, cfg.LedgerAppID, cfg.LedgerAPIKey)
	eventPub := events.NewWatermillPublisher(publisher)

	resolver := service.NewResolver(pgStore)
	sessions := service.NewSessionService(jwtTokenizer, resolver, eventPub)
	handshake := service.NewHandshakeService(nonceStore)
	payments := service.NewPaymentService(pgStore, pgStore, ledgerClient, eventPub)
	confirmer := service.NewConfirmer(payments)

	router := transport.SetupRouter(sessions, handshake, payments, confirmer, cfg.Production)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
