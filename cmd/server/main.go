// Server runs the order intake API: one-time code issuance, order
// submission, the admin order endpoints, and the Telegram bot webhook.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delta-market/backend/internal/adminauth"
	"delta-market/backend/internal/adminbot"
	"delta-market/backend/internal/challenge"
	"delta-market/backend/internal/config"
	"delta-market/backend/internal/db"
	"delta-market/backend/internal/notify"
	"delta-market/backend/internal/notify/mail"
	"delta-market/backend/internal/notify/telegram"
	"delta-market/backend/internal/order/repository"
	"delta-market/backend/internal/order/service"
	"delta-market/backend/internal/security"
	"delta-market/backend/internal/telemetry"
	telemetryotel "delta-market/backend/internal/telemetry/otel"
	"delta-market/backend/internal/telemetry/producer"
	transport "delta-market/backend/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "delta-market-backend", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	// Order store: Postgres when configured, otherwise the JSON file.
	var repo repository.Repository
	var healthPing func(ctx context.Context) error
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer sqlDB.Close()
		repo = repository.NewPostgresRepository(sqlDB)
		healthPing = sqlDB.PingContext
		log.Printf("server: orders stored in postgres")
	} else {
		fileRepo, err := repository.NewFileRepository(cfg.OrdersFile)
		if err != nil {
			log.Fatalf("orders file: %v", err)
		}
		repo = fileRepo
		log.Printf("server: orders stored in %s", cfg.OrdersFile)
	}

	orders := service.NewOrderService(repo)
	challenges := challenge.NewManager(challenge.NewMemoryStore(), cfg.OTPValidity())

	chat := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramAPIBaseURL)
	mailer := mail.NewClient(cfg.MailAPIKey, cfg.MailAPIURL, cfg.MailFrom)
	notifier := notify.NewNotifier(chat, mailer)

	authz, err := adminauth.NewAuthorizer(cfg.AdminChatIDList(), cfg.AdminPolicyRego)
	if err != nil {
		log.Fatalf("adminauth: %v", err)
	}

	tokens, err := security.NewTokenProvider(cfg.AdminAPISecret, "deltamarket-admin", "deltamarket-api", cfg.AdminTokenValidity())
	if err != nil {
		log.Fatalf("security: %v", err)
	}

	emitters := telemetry.MultiEmitter{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	if kafkaProducer != nil {
		emitters = append(emitters, kafkaProducer)
		log.Printf("server: telemetry events going to kafka topic %s", cfg.TelemetryKafkaTopic)
	}

	processor := adminbot.NewProcessor(orders, notifier, authz, emitters)

	handler := transport.NewHandler(transport.Deps{
		Challenges:     challenges,
		Orders:         orders,
		Mail:           notifier,
		Announcer:      notifier,
		Receipts:       notifier,
		Webhook:        processor,
		AdminTokens:    tokens,
		Emitter:        emitters,
		AdminChatIDs:   cfg.AdminChatIDList(),
		EchoCode:       cfg.OTPReturnToClient,
		HealthPing:     healthPing,
		AllowedOrigins: cfg.CORSAllowedOriginsList(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Detached sends and telemetry emits are still in flight; give them
	// their timeout before tearing the exporters down.
	time.Sleep(telemetry.ShutdownDrainDuration)

	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Printf("kafka close: %v", err)
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
