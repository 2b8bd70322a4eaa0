package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"wanderwise/internal/adapters/observability"
	"wanderwise/internal/app"
	"wanderwise/internal/domain"
	"wanderwise/internal/moderation"
	"wanderwise/internal/shared"
	mysqlrepo "wanderwise/internal/storage/mysql"
)

// fixture is the demo dataset layout. Bookings and reviews reference users
// by email and packages by name so the file stays readable.
type fixture struct {
	Categories []struct {
		Name string `json:"name"`
	} `json:"categories"`
	Packages []struct {
		Name        string   `json:"name"`
		Category    string   `json:"category"`
		Description string   `json:"description"`
		Price       float64  `json:"price"`
		Features    []string `json:"features"`
		Itinerary   []string `json:"itinerary"`
	} `json:"packages"`
	Users []struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	} `json:"users"`
	Bookings []struct {
		User       string `json:"user"`
		Package    string `json:"package"`
		TravelDate string `json:"travelDate"`
		Travelers  int    `json:"travelers"`
	} `json:"bookings"`
	Reviews []struct {
		User    string `json:"user"`
		Package string `json:"package"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	} `json:"reviews"`
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", cfg.SeedFile).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	raw, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read seed file")
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		log.Fatal().Err(err).Msg("failed to parse seed file")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	sanitizer := moderation.NewSanitizer(moderation.Default())

	// categories, packages, and users first; bookings and reviews refer to them
	catIDs := map[string]int64{}
	for _, c := range fx.Categories {
		created, err := repo.CreateCategory(ctx, domain.Category{Name: c.Name})
		if err != nil {
			log.Fatal().Str("category", c.Name).Err(err).Msg("create category failed")
		}
		catIDs[c.Name] = created.ID
	}

	pkgIDs := map[string]int64{}
	pkgPrice := map[string]float64{}
	for _, p := range fx.Packages {
		cid, ok := catIDs[p.Category]
		if !ok {
			log.Fatal().Str("package", p.Name).Str("category", p.Category).Msg("unknown category in seed file")
		}
		created, err := repo.CreatePackage(ctx, domain.Package{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			CategoryID:  cid,
			Status:      domain.PackageActive,
			Features:    p.Features,
			Itinerary:   p.Itinerary,
		})
		if err != nil {
			log.Fatal().Str("package", p.Name).Err(err).Msg("create package failed")
		}
		pkgIDs[p.Name] = created.ID
		pkgPrice[p.Name] = created.Price
	}

	userIDs := map[string]int64{}
	for _, u := range fx.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("bcrypt failed")
		}
		role := domain.RoleUser
		if u.Role == string(domain.RoleAdmin) {
			role = domain.RoleAdmin
		}
		created, err := repo.CreateUser(ctx, domain.User{
			Name:         u.Name,
			Email:        u.Email,
			PasswordHash: string(hash),
			Role:         role,
			Status:       "active",
		})
		if err != nil {
			log.Fatal().Str("email", u.Email).Err(err).Msg("create user failed")
		}
		userIDs[u.Email] = created.ID
	}

	// bookings and reviews are independent rows; fan out
	bookings := app.NewBookingService(repo, repo)
	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for _, b := range fx.Bookings {
		b := b
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			uid, pid := userIDs[b.User], pkgIDs[b.Package]
			if uid == 0 || pid == 0 {
				log.Warn().Str("user", b.User).Str("package", b.Package).Msg("booking references unknown user or package")
				return
			}
			if _, err := bookings.Create(ctx, app.BookingInput{
				UserID:     uid,
				PackageID:  pid,
				TravelDate: b.TravelDate,
				Travelers:  b.Travelers,
			}); err != nil {
				log.Warn().Str("user", b.User).Err(err).Msg("seed booking failed")
				return
			}
			log.Info().Str("user", b.User).Str("package", b.Package).Msg("booking seeded")
		}()
	}

	for _, rv := range fx.Reviews {
		rv := rv
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			uid, pid := userIDs[rv.User], pkgIDs[rv.Package]
			if uid == 0 || pid == 0 {
				log.Warn().Str("user", rv.User).Str("package", rv.Package).Msg("review references unknown user or package")
				return
			}
			if _, err := repo.CreateReview(ctx, domain.Review{
				UserID:    uid,
				PackageID: pid,
				Comment:   sanitizer.Mask(rv.Comment),
				Rating:    rv.Rating,
			}); err != nil {
				log.Warn().Str("user", rv.User).Err(err).Msg("seed review failed")
				return
			}
			log.Info().Str("user", rv.User).Str("package", rv.Package).Msg("review seeded")
		}()
	}

	wg.Wait()
	log.Info().
		Int("categories", len(fx.Categories)).
		Int("packages", len(fx.Packages)).
		Int("users", len(fx.Users)).
		Int("bookings", len(fx.Bookings)).
		Int("reviews", len(fx.Reviews)).
		Msg("seeding completed")
}
