package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"investment-platform/handlers"
	"investment-platform/middleware"
	"investment-platform/models"
	"investment-platform/services"
	"investment-platform/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// All requests must come through the Gateway.
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Rank{},
		&models.Plan{},
		&models.Subscription{},
		&models.Payment{},
		&models.Transaction{},
		&models.Withdrawal{},
		&models.DomainEvent{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	ledgerService := services.NewLedgerService(db)
	subscriptionService := services.NewSubscriptionService(db)
	withdrawalService := services.NewWithdrawalService(db)
	paymentService := services.NewPaymentService(db)
	reportService := services.NewReportService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := workers.NewEventDispatcher(db)
	go workers.PollEvents(ctx, dispatcher, 10*time.Second)

	paymentService.StartMaturityScheduler()

	handlers.SetupUserRoutes(app, db, ledgerService)
	handlers.SetupSubscriptionRoutes(app, db, subscriptionService)
	handlers.SetupWalletRoutes(app, withdrawalService, paymentService, reportService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("Server running on http://localhost:5300")
	log.Println("Domain event dispatcher running (every 10s)")
	log.Println("Payment maturity scheduler running")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
