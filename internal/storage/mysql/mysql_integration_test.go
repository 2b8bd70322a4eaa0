//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"wanderwise/internal/domain"
	mysqlrepo "wanderwise/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string { return &s }

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=wanderwise",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "wanderwise")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// ---------- the test ----------
func TestRepo_MySQL_CatalogBookingsReviews(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Arrange
	cat, err := repo.CreateCategory(ctx, domain.Category{Name: "Beaches"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	var pkgIDs []int64
	for i := 0; i < 8; i++ {
		p, err := repo.CreatePackage(ctx, domain.Package{
			Name:       fmt.Sprintf("Trip %d", i),
			Price:      float64(100 + i),
			CategoryID: cat.ID,
			Status:     domain.PackageActive,
			Features:   []string{"guide"},
			Itinerary:  []string{"day 1"},
		})
		if err != nil {
			t.Fatalf("CreatePackage %d: %v", i, err)
		}
		pkgIDs = append(pkgIDs, p.ID)
	}

	u, err := repo.CreateUser(ctx, domain.User{
		Name:         "Maria",
		Email:        "maria@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
		Status:       "active",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	// default limit 6 over 8 rows -> 2 pages
	page1, err := repo.ListPackages(ctx, domain.PackagesQuery{Page: 1, Limit: 6, Category: &cat.ID})
	if err != nil {
		t.Fatalf("ListPackages p1: %v", err)
	}
	if len(page1.Items) != 6 || page1.TotalPages != 2 {
		t.Fatalf("page1: items=%d totalPages=%d", len(page1.Items), page1.TotalPages)
	}
	page2, err := repo.ListPackages(ctx, domain.PackagesQuery{Page: 2, Limit: 6})
	if err != nil {
		t.Fatalf("ListPackages p2: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Fatalf("page2: items=%d", len(page2.Items))
	}
	// out-of-range page is empty, not an error
	page9, err := repo.ListPackages(ctx, domain.PackagesQuery{Page: 9, Limit: 6})
	if err != nil {
		t.Fatalf("ListPackages p9: %v", err)
	}
	if len(page9.Items) != 0 {
		t.Fatalf("page9 should be empty, got %d items", len(page9.Items))
	}

	// bookings with a travel-date range filter
	for i, date := range []string{"2026-01-10", "2026-03-15", "2026-06-01"} {
		if _, err := repo.CreateBooking(ctx, domain.Booking{
			Reference:  fmt.Sprintf("ref-%d", i),
			UserID:     u.ID,
			PackageID:  pkgIDs[0],
			TravelDate: date,
			Travelers:  2,
			TotalPrice: 200,
			Status:     domain.BookingPending,
		}); err != nil {
			t.Fatalf("CreateBooking %s: %v", date, err)
		}
	}
	ranged, err := repo.ListBookings(ctx, domain.BookingsQuery{
		StartDate: pstr("2026-02-01"),
		EndDate:   pstr("2026-12-31"),
	})
	if err != nil {
		t.Fatalf("ListBookings: %v", err)
	}
	if len(ranged) != 2 {
		t.Fatalf("expected 2 bookings in range, got %d", len(ranged))
	}

	// status update persists
	b := ranged[0]
	if err := repo.UpdateBookingStatus(ctx, b.ID, domain.BookingConfirmed); err != nil {
		t.Fatalf("UpdateBookingStatus: %v", err)
	}
	got, err := repo.GetBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if got.Status != domain.BookingConfirmed {
		t.Fatalf("status not persisted: %s", got.Status)
	}

	// reviews page for a package
	for i := 0; i < 3; i++ {
		if _, err := repo.CreateReview(ctx, domain.Review{
			UserID:    u.ID,
			PackageID: pkgIDs[0],
			Comment:   "lovely",
			Rating:    5,
		}); err != nil {
			t.Fatalf("CreateReview %d: %v", i, err)
		}
	}
	rp, err := repo.ListPackageReviews(ctx, pkgIDs[0], domain.PageQuery{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListPackageReviews: %v", err)
	}
	if len(rp.Items) != 2 || rp.TotalPages != 2 {
		t.Fatalf("reviews page: items=%d totalPages=%d", len(rp.Items), rp.TotalPages)
	}

	// counts back the dashboard totals
	if n, _ := repo.CountPackages(ctx); n != 8 {
		t.Fatalf("CountPackages=%d", n)
	}
	if n, _ := repo.CountBookings(ctx); n != 3 {
		t.Fatalf("CountBookings=%d", n)
	}
	if n, _ := repo.CountReviews(ctx); n != 3 {
		t.Fatalf("CountReviews=%d", n)
	}

	// not-found maps to the domain sentinel
	if _, err := repo.GetPackage(ctx, 999999); err == nil {
		t.Fatal("expected error for missing package")
	}
}

func TestRepo_MySQL_UserLifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, domain.User{
		Name:         "Jose",
		Email:        "jose@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		Status:       "active",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	byEmail, err := repo.GetUserByEmail(ctx, "jose@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("GetUserByEmail: %v (%+v)", err, byEmail)
	}

	u.Role = domain.RoleAdmin
	if err := repo.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	got, err := repo.GetUser(ctx, u.ID)
	if err != nil || got.Role != domain.RoleAdmin {
		t.Fatalf("role not persisted: %v (%+v)", err, got)
	}

	if err := repo.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := repo.DeleteUser(ctx, u.ID); err == nil {
		t.Fatal("expected error deleting a missing user")
	}
}
