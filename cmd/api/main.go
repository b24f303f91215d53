package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/lokerhub/lokerhub-api/internal/config"
	"github.com/lokerhub/lokerhub-api/internal/db"
	"github.com/lokerhub/lokerhub-api/internal/handlers"
	"github.com/lokerhub/lokerhub-api/internal/middleware"
	"github.com/lokerhub/lokerhub-api/internal/models"
	"github.com/lokerhub/lokerhub-api/internal/realtime"
	"github.com/lokerhub/lokerhub-api/internal/services/coin"
	"github.com/lokerhub/lokerhub-api/internal/services/feegate"
	"github.com/lokerhub/lokerhub-api/internal/services/payment"
	"github.com/lokerhub/lokerhub-api/internal/services/referral"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := gdb.AutoMigrate(
		&models.JobSeeker{},
		&models.Recruiter{},
		&models.CoinTransaction{},
		&models.CoinPackage{},
		&models.Referral{},
		&models.Job{},
		&models.Application{},
	); err != nil {
		log.Fatal(err)
	}

	seedCoinPackages(gdb)

	rdb := realtime.NewRedis()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis tidak tersedia, notifikasi hanya lokal: %v", err)
		rdb = nil
	}

	hub := realtime.NewHub()
	go hub.Run()

	notifier := realtime.NewNotifier(hub, rdb)
	go notifier.Run(context.Background())

	engine := coin.NewEngine(gdb)
	gateway := payment.NewGateway(gdb, engine, cfg.PaymentKeySecret)
	referrals := referral.NewProcessor(gdb, engine,
		cfg.ReferralRewardCoins, cfg.ReferralRefereeCoins, cfg.ReferralMaxRewards)
	coordinator := feegate.NewCoordinator(gdb, engine, map[feegate.ActionType]int64{
		feegate.ActionApplyJob: cfg.CoinCostApplication,
		feegate.ActionPostJob:  cfg.CoinCostJobPost,
	})

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
		Referrals: referrals,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		Referrals:       referrals,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	walletH := handlers.NewWalletHandler(gdb, engine, gateway, notifier)
	jobH := handlers.NewJobHandler(gdb, coordinator)
	applicationH := handlers.NewApplicationHandler(gdb, coordinator, notifier)
	referralH := handlers.NewReferralHandler(referrals)
	notificationH := handlers.NewNotificationHandler(hub)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://127.0.0.1:3000, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Get("/jobs/:id", jobH.GetJob)

	// protected (JWT)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	// wallet
	protected.Get("/wallet/balance", walletH.GetBalance)
	protected.Get("/wallet/transactions", walletH.GetTransactions)
	protected.Get("/wallet/packages", walletH.GetPackages)
	protected.Post("/wallet/purchase/verify", walletH.VerifyPurchase)

	// referral
	protected.Get("/referrals", referralH.ListMine)

	// recruiter only
	protected.Post("/jobs",
		middleware.RequireRoles("recruiter"),
		jobH.CreateJob,
	)
	protected.Get("/recruiter/jobs",
		middleware.RequireRoles("recruiter"),
		jobH.ListMine,
	)

	// job seeker only
	protected.Post("/jobs/:id/apply",
		middleware.RequireRoles("job_seeker"),
		applicationH.Apply,
	)
	protected.Get("/applications",
		middleware.RequireRoles("job_seeker"),
		applicationH.ListMine,
	)

	// WebSocket endpoint (autentikasi via query param)
	app.Get("/ws/notifications", websocket.New(notificationH.WebSocketHandler))

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = cfg.AppPort
	}
	log.Fatal(app.Listen(":" + port))
}

// seedCoinPackages fills the catalog on first boot so the top-up page is never
// empty.
func seedCoinPackages(gdb *gorm.DB) {
	var count int64
	if err := gdb.Model(&models.CoinPackage{}).Count(&count).Error; err != nil {
		log.Printf("Gagal cek paket koin: %v", err)
		return
	}
	if count > 0 {
		return
	}

	packages := []models.CoinPackage{
		{Name: "Paket Hemat", Coins: 50, Price: 25000, IsActive: true},
		{Name: "Paket Reguler", Coins: 120, Price: 50000, IsActive: true},
		{Name: "Paket Jumbo", Coins: 300, Price: 100000, IsActive: true},
	}
	if err := gdb.Create(&packages).Error; err != nil {
		log.Printf("Gagal seed paket koin: %v", err)
	}
}
