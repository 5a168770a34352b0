package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"rental-service/internal/billing"
	"rental-service/internal/booking"
	"rental-service/internal/config"
	"rental-service/internal/database"
	"rental-service/internal/handlers"
	"rental-service/internal/ledger"
	"rental-service/internal/logger"
	"rental-service/internal/publisher"
	"rental-service/internal/repository"
	"rental-service/internal/scheduler"
	"rental-service/internal/sequence"
	"rental-service/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	// Initialize database
	db, err := database.New(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	sqlDB, _ := db.DB.DB()
	defer sqlDB.Close()

	// Initialize repositories
	roomRepo := repository.NewRoomRepository(db.DB, log)
	rentalRepo := repository.NewRentalRepository(db.DB, log)
	usageRepo := repository.NewUsageRepository(db.DB, log)
	invoiceRepo := repository.NewInvoiceRepository(db.DB, log)
	rateRepo := repository.NewRateRepository(db.DB, log)

	seq, err := sequence.NewAllocator(cfg.Billing.NodeID)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize number allocator")
	}

	docs, err := storage.NewDocumentStore(cfg.Storage.DocumentDir, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize document store")
	}

	// Domain events are best effort: without a broker the engine still runs
	var events *publisher.Publisher
	if pub, err := publisher.New(cfg.Rabbit, log); err != nil {
		log.WithError(err).Warn("RabbitMQ unavailable, domain events disabled")
	} else {
		events = pub
		defer events.Close()
	}

	// Initialize services
	bookingSvc := booking.NewService(db.DB, roomRepo, rentalRepo, seq, docs, eventPublisher(events), log)
	ledgerSvc := ledger.NewService(db.DB, roomRepo, usageRepo, log)
	billingSvc := billing.NewService(db.DB, rentalRepo, roomRepo, usageRepo, invoiceRepo, rateRepo, seq, eventPublisher(events), cfg.Billing.DueDays, log)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start billing scheduler goroutine
	if cfg.Billing.AutoGenerate {
		go scheduler.Run(ctx, billingSvc, cfg.Billing.CheckInterval, log)
	}

	// HTTP transport
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handlers.New(bookingSvc, ledgerSvc, billingSvc, docs, log).Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server stopped unexpectedly")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	log.Info("graceful shutdown complete")
}

// eventPublisher hides the typed-nil pitfall: a nil *Publisher must become a
// nil interface so services can skip publishing.
func eventPublisher(p *publisher.Publisher) booking.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
