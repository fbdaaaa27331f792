package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lendstock/lendstock-backend/internal/inventory/client"
	"github.com/lendstock/lendstock-backend/internal/inventory/consumers"
	"github.com/lendstock/lendstock-backend/internal/inventory/events"
	"github.com/lendstock/lendstock-backend/internal/inventory/handler"
	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/internal/inventory/service"
	"github.com/lendstock/lendstock-backend/pkg/actor"
	"github.com/lendstock/lendstock-backend/pkg/config"
	"github.com/lendstock/lendstock-backend/pkg/database"
	"github.com/lendstock/lendstock-backend/pkg/httputil"
	"github.com/lendstock/lendstock-backend/pkg/logger"
	"github.com/lendstock/lendstock-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("inventory-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("inventory-service", cfg.Server.Environment)
	log.Info().Msg("starting Inventory Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewEquipmentEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	itemRepo := repository.NewItemRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	historyRepo := repository.NewUUIDHistoryRepository(db)
	queueRepo := repository.NewPrintQueueRepository(db)
	userRepo := repository.NewUserDirectoryRepository(db)

	// External product catalog client for unknown UPC lookups
	catalogClient := client.NewProductAPIClient(&cfg.ProductAPI, log)

	// Initialize services
	equipmentService := service.NewEquipmentService(db, itemRepo, txnRepo, queueRepo, userRepo, publisher, log)
	labelService := service.NewLabelService(db, itemRepo, historyRepo, queueRepo, productRepo, publisher, log)
	printQueueService := service.NewPrintQueueService(itemRepo, queueRepo, log)
	scanService := service.NewScanService(itemRepo, productRepo, locationRepo, userRepo, catalogClient, log)

	// Initialize handlers
	equipmentHandler := handler.NewEquipmentHandler(equipmentService, log)
	itemHandler := handler.NewItemHandler(equipmentService, log)
	labelHandler := handler.NewLabelHandler(labelService, log)
	printQueueHandler := handler.NewPrintQueueHandler(printQueueService, log)
	scanHandler := handler.NewScanHandler(scanService, log)
	productHandler := handler.NewProductHandler(productRepo, log)
	locationHandler := handler.NewLocationHandler(locationRepo, log)
	dashboardHandler := handler.NewDashboardHandler(equipmentService, log)

	// Start user event consumer
	userConsumer, err := consumers.NewUserEventConsumer(rmq, userRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := userConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start user event consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Actor-ID", "X-Actor-First-Name", "X-Actor-Last-Name", "X-Actor-Email"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(actor.Middleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "inventory-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1/inventory", func(r chi.Router) {
		// Scan dispatch
		r.Post("/scan", scanHandler.Process)

		// Item reads and lifecycle operations, addressed by label UUID
		r.Route("/items", func(r chi.Router) {
			r.Get("/available", itemHandler.ListAvailable)
			r.Get("/overdue", itemHandler.ListOverdue)
			r.Get("/status/{status}", itemHandler.ListByStatus)
			r.Post("/batch", labelHandler.CreateBatch)
			r.Post("/bulk/checkout", equipmentHandler.BulkCheckOut)
			r.Post("/bulk/checkin", equipmentHandler.BulkCheckIn)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Get("/", itemHandler.GetByUUID)
				r.Post("/checkout", equipmentHandler.CheckOut)
				r.Post("/checkin", equipmentHandler.CheckIn)
				r.Post("/assign-user", equipmentHandler.AssignUser)
				r.Post("/assign-location", equipmentHandler.AssignLocation)
				r.Post("/unassign", equipmentHandler.Unassign)
				r.Post("/remove", equipmentHandler.Remove)
				r.Post("/notes", equipmentHandler.UpdateNotes)
			})
		})

		// Item history and relabeling, addressed by item ID
		r.Route("/item-records/{id}", func(r chi.Router) {
			r.Get("/transactions", itemHandler.ListTransactions)
			r.Post("/regenerate-qr", labelHandler.RegenerateQR)
		})

		// Labels
		r.Route("/labels", func(r chi.Router) {
			r.Get("/{uuid}/qr", labelHandler.GetQR)
			r.Post("/sheet", labelHandler.GenerateSheet)
			r.Post("/bind", labelHandler.BindProvisional)
		})

		// Print queue
		r.Route("/print-queue", func(r chi.Router) {
			r.Get("/", printQueueHandler.ListUnprinted)
			r.Post("/", printQueueHandler.Add)
			r.Post("/mark-printed", printQueueHandler.MarkPrinted)
			r.Post("/remove", printQueueHandler.Remove)
			r.Post("/cleanup", printQueueHandler.Cleanup)
			r.Post("/clear-printed", printQueueHandler.ClearPrinted)
		})

		// Product catalog
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)
			r.Get("/{id}", productHandler.Get)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Deactivate)
		})

		// Storage locations
		r.Route("/locations", func(r chi.Router) {
			r.Get("/", locationHandler.List)
			r.Post("/", locationHandler.Create)
			r.Get("/{id}", locationHandler.Get)
			r.Put("/{id}", locationHandler.Update)
			r.Delete("/{id}", locationHandler.Deactivate)
			r.Get("/{id}/items", itemHandler.ListByLocation)
		})

		// Users
		r.Get("/users/search", dashboardHandler.SearchUsers)
		r.Get("/users/{id}/items", itemHandler.ListByUser)

		// Dashboard
		r.Get("/dashboard/summary", dashboardHandler.Summary)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
