package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"wanderwise/internal/adapters/cloudinary"
	"wanderwise/internal/adapters/googleauth"
	server "wanderwise/internal/adapters/http_server"
	"wanderwise/internal/adapters/observability"
	redisad "wanderwise/internal/adapters/redis"
	"wanderwise/internal/app"
	"wanderwise/internal/domain"
	"wanderwise/internal/moderation"
	"wanderwise/internal/shared"
	mysqlrepo "wanderwise/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	var verifier domain.IdentityVerifier = googleauth.Disabled
	if cfg.GoogleClientID != "" {
		verifier, err = googleauth.New(googleauth.DefaultBaseURL, cfg.GoogleClientID, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Google verifier")
		}
	}

	var images domain.ImageStore = cloudinary.Disabled
	if cfg.CloudinaryCloud != "" && cfg.CloudinaryPreset != "" {
		images, err = cloudinary.New(cloudinary.DefaultBaseURL, cfg.CloudinaryCloud, cfg.CloudinaryPreset, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Cloudinary client")
		}
	} else {
		log.Warn().Msg("Cloudinary not configured; image uploads disabled")
	}

	sanitizer := moderation.NewSanitizer(moderation.Default())

	auth := app.NewAuthService(repo, verifier, []byte(cfg.JWTSecret), cfg.TokenTTL)
	catalog := app.NewCatalogService(repo, cache, images, cfg.CacheTTL, cfg.UploadWorkers)
	reviews := app.NewReviewService(repo, sanitizer, cache, cfg.CacheTTL)
	bookings := app.NewBookingService(repo, repo)
	users := app.NewUserService(repo, images)
	stats := app.NewStatsService(repo, repo, repo, repo)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Auth:     auth,
		Catalog:  catalog,
		Reviews:  reviews,
		Bookings: bookings,
		Users:    users,
		Stats:    stats,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
