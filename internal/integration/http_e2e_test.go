//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"wanderwise/internal/adapters/cloudinary"
	"wanderwise/internal/adapters/googleauth"
	httpserver "wanderwise/internal/adapters/http_server"
	redisad "wanderwise/internal/adapters/redis"
	"wanderwise/internal/app"
	"wanderwise/internal/domain"
	"wanderwise/internal/moderation"
	mysqlrepo "wanderwise/internal/storage/mysql"
)

// ---------- helpers ----------

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

// startAPI wires the full stack over the dockertest database and a
// miniredis cache, and returns the test server's base URL.
func startAPI(t *testing.T, db *sql.DB) string {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cache.Close() })

	repo := mysqlrepo.New(db)
	sanitizer := moderation.NewSanitizer(moderation.Default())

	auth := app.NewAuthService(repo, googleauth.Disabled, []byte("e2e-secret"), time.Hour)
	catalog := app.NewCatalogService(repo, cache, cloudinary.Disabled, time.Minute, 1)
	reviews := app.NewReviewService(repo, sanitizer, cache, time.Minute)
	bookings := app.NewBookingService(repo, repo)
	users := app.NewUserService(repo, cloudinary.Disabled)
	stats := app.NewStatsService(repo, repo, repo, repo)

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Auth:     auth,
		Catalog:  catalog,
		Reviews:  reviews,
		Bookings: bookings,
		Users:    users,
		Stats:    stats,
	})

	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts.URL
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

// ---------- the test ----------

func TestHTTP_EndToEnd_ReviewSubmission(t *testing.T) {
	db := startMySQL(t)
	base := startAPI(t, db)

	// seed one package straight through the repository
	repo := mysqlrepo.New(db)
	ctx := context.Background()
	cat, err := repo.CreateCategory(ctx, domain.Category{Name: "Beaches"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	pkg, err := repo.CreatePackage(ctx, domain.Package{
		Name:       "Palawan Island Escape",
		Price:      499,
		CategoryID: cat.ID,
		Status:     domain.PackageActive,
	})
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}

	// register -> token
	resp := postJSON(t, base+"/v1/auth/register", "", map[string]string{
		"name":     "Maria",
		"email":    "maria@example.com",
		"password": "s3cret-pass",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d", resp.StatusCode)
	}
	var reg struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	resp.Body.Close()
	if reg.Token == "" {
		t.Fatal("register returned no token")
	}

	// unauthenticated review is rejected
	resp = postJSON(t, base+"/v1/reviews", "", map[string]any{
		"packageId": pkg.ID, "rating": 5, "comment": "nice",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated review status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// submit a review with blocked terms; it lands masked, not rejected
	resp = postJSON(t, base+"/v1/reviews", reg.Token, map[string]any{
		"packageId": pkg.ID,
		"rating":    5,
		"comment":   "This was sarap and bobo experience!!",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create review status %d", resp.StatusCode)
	}
	var rev struct {
		Comment string `json:"comment"`
		Rating  int    `json:"rating"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rev); err != nil {
		t.Fatalf("decode review: %v", err)
	}
	resp.Body.Close()
	if rev.Comment != "This was **** and **** experience!!" {
		t.Fatalf("comment not masked: %q", rev.Comment)
	}
	if rev.Rating != 5 {
		t.Fatalf("rating changed: %d", rev.Rating)
	}

	// the masked text is what readers see
	listURL := fmt.Sprintf("%s/v1/packages/%d/reviews", base, pkg.ID)
	res, err := http.Get(listURL)
	if err != nil {
		t.Fatalf("GET reviews: %v", err)
	}
	var page struct {
		Items []struct {
			Comment string `json:"comment"`
		} `json:"items"`
		TotalPages int `json:"totalPages"`
	}
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode reviews: %v", err)
	}
	etag := res.Header.Get("ETag")
	res.Body.Close()
	if len(page.Items) != 1 || page.Items[0].Comment != "This was **** and **** experience!!" {
		t.Fatalf("unexpected reviews page: %+v", page)
	}
	if page.TotalPages != 1 {
		t.Fatalf("totalPages=%d", page.TotalPages)
	}
	if etag == "" {
		t.Fatal("expected an ETag on the reviews page")
	}

	// conditional GET short-circuits
	req, _ := http.NewRequest(http.MethodGet, listURL, nil)
	req.Header.Set("If-None-Match", etag)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional GET: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res.StatusCode)
	}
}

func TestHTTP_EndToEnd_BookingAndAdminStats(t *testing.T) {
	db := startMySQL(t)
	base := startAPI(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()
	cat, err := repo.CreateCategory(ctx, domain.Category{Name: "Mountains"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	pkg, err := repo.CreatePackage(ctx, domain.Package{
		Name:       "Sagada Highlands Trek",
		Price:      100,
		CategoryID: cat.ID,
		Status:     domain.PackageActive,
	})
	if err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}

	// a traveler books for two
	resp := postJSON(t, base+"/v1/auth/register", "", map[string]string{
		"name": "Jose", "email": "jose@example.com", "password": "s3cret-pass",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d", resp.StatusCode)
	}
	var reg struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	resp.Body.Close()

	resp = postJSON(t, base+"/v1/bookings", reg.Token, map[string]any{
		"packageId": pkg.ID, "travelDate": "2026-03-15", "travelers": 2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create booking status %d", resp.StatusCode)
	}
	var bk struct {
		Reference  string  `json:"reference"`
		TotalPrice float64 `json:"totalPrice"`
		Status     string  `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bk); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	resp.Body.Close()
	if bk.Reference == "" || bk.TotalPrice != 200 || bk.Status != "pending" {
		t.Fatalf("unexpected booking: %+v", bk)
	}

	// a plain user cannot see admin stats
	req, _ := http.NewRequest(http.MethodGet, base+"/v1/admin/stats/monthly?year=2026", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stats as user: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", res.StatusCode)
	}

	// promote straight in the database, then fetch the cumulative series
	if _, err := db.Exec("UPDATE users SET role='admin' WHERE email='jose@example.com'"); err != nil {
		t.Fatalf("promote: %v", err)
	}
	// old token still carries role=user; log in again for admin claims
	resp = postJSON(t, base+"/v1/auth/login", "", map[string]string{
		"email": "jose@example.com", "password": "s3cret-pass",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	resp.Body.Close()

	req, _ = http.NewRequest(http.MethodGet, base+"/v1/admin/stats/monthly?year=2026", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stats as admin: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("stats status %d", res.StatusCode)
	}
	var rep struct {
		Year     int       `json:"year"`
		Months   []string  `json:"months"`
		Bookings []int64   `json:"bookings"`
		Revenue  []float64 `json:"revenue"`
	}
	if err := json.NewDecoder(res.Body).Decode(&rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	res.Body.Close()
	if rep.Year != 2026 || len(rep.Months) != 12 {
		t.Fatalf("unexpected report shape: %+v", rep)
	}
	// cumulative: flat before March, then 1 booking / 200 revenue through December
	if rep.Bookings[1] != 0 || rep.Bookings[2] != 1 || rep.Bookings[11] != 1 {
		t.Fatalf("unexpected cumulative bookings: %v", rep.Bookings)
	}
	if rep.Revenue[11] != 200 {
		t.Fatalf("unexpected cumulative revenue: %v", rep.Revenue)
	}
}
