package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"wanderwise/internal/app"
	"wanderwise/internal/domain"
)

type Handlers struct {
	Auth     *app.AuthService
	Catalog  *app.CatalogService
	Reviews  *app.ReviewService
	Bookings *app.BookingService
	Users    *app.UserService
	Stats    *app.StatsService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	// public
	s.mux.Post("/v1/auth/register", h.register)
	s.mux.Post("/v1/auth/login", h.login)
	s.mux.Post("/v1/auth/google", h.googleLogin)
	s.mux.Get("/v1/packages", h.listPackages)
	s.mux.Get("/v1/packages/{id}", h.getPackage)
	s.mux.Get("/v1/packages/{id}/reviews", h.listReviews)
	s.mux.Get("/v1/reviews/{id}", h.getReview)
	s.mux.Get("/v1/categories", h.listCategories)
	s.mux.Get("/v1/categories/{id}", h.getCategory)

	// authenticated
	s.mux.Group(func(r chi.Router) {
		r.Use(Auth(h.Auth))
		r.Post("/v1/reviews", h.createReview)
		r.Put("/v1/reviews/{id}", h.updateReview)
		r.Delete("/v1/reviews/{id}", h.deleteReview)
		r.Post("/v1/bookings", h.createBooking)
		r.Get("/v1/bookings", h.listMyBookings)
		r.Get("/v1/bookings/{id}", h.getBooking)
		r.Get("/v1/users/me", h.getMe)
		r.Put("/v1/users/me", h.updateMe)
	})

	// admin
	s.mux.Route("/v1/admin", func(r chi.Router) {
		r.Use(Auth(h.Auth), RequireAdmin)
		r.Post("/packages", h.createPackage)
		r.Put("/packages/{id}", h.updatePackage)
		r.Delete("/packages/{id}", h.deletePackage)
		r.Post("/categories", h.createCategory)
		r.Put("/categories/{id}", h.updateCategory)
		r.Delete("/categories/{id}", h.deleteCategory)
		r.Get("/bookings", h.listBookings)
		r.Put("/bookings/{id}/status", h.updateBookingStatus)
		r.Get("/reviews", h.listAllReviews)
		r.Get("/users", h.listUsers)
		r.Get("/users/{id}", h.getUser)
		r.Put("/users/{id}", h.updateUser)
		r.Delete("/users/{id}", h.deleteUser)
		r.Get("/stats", h.totals)
		r.Get("/stats/monthly", h.monthlyStats)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// respondErr maps service errors onto problem responses.
func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// dateRange reads the optional inclusive start/end travel-date filter.
func dateRange(r *http.Request) domain.BookingsQuery {
	var q domain.BookingsQuery
	if v := r.URL.Query().Get("start"); v != "" {
		q.StartDate = &v
	}
	if v := r.URL.Query().Get("end"); v != "" {
		q.EndDate = &v
	}
	return q
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable answers with an ETag and honors If-None-Match.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- auth ----

type authResp struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	u, tok, err := h.Auth.Register(r.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResp{Token: tok, User: u})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	u, tok, err := h.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResp{Token: tok, User: u})
}

func (h *Handlers) googleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Token == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "token is required")
		return
	}
	u, tok, err := h.Auth.GoogleLogin(r.Context(), in.Token)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			respondErr(w, err)
			return
		}
		// failed verification is indistinguishable from a bad token to us
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "google token rejected")
		return
	}
	writeJSON(w, http.StatusOK, authResp{Token: tok, User: u})
}

// ---- catalog (public reads) ----

func (h *Handlers) listPackages(w http.ResponseWriter, r *http.Request) {
	q := domain.PackagesQuery{Page: queryInt(r, "page"), Limit: queryInt(r, "limit")}
	if cs := r.URL.Query().Get("category"); cs != "" {
		cid, err := strconv.ParseInt(cs, 10, 64)
		if err != nil || cid <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "category must be a positive number")
			return
		}
		q.Category = &cid
	}
	out, err := h.Catalog.ListPackages(r.Context(), q)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) getPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.Catalog.GetPackage(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeCacheable(w, r, p)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pg := domain.PageQuery{Page: queryInt(r, "page"), Limit: queryInt(r, "limit")}
	out, err := h.Reviews.ListForPackage(r.Context(), id, pg)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rev, err := h.Reviews.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Catalog.ListCategories(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	writeCacheable(w, r, cs)
}

func (h *Handlers) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Catalog.GetCategory(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeCacheable(w, r, c)
}

// ---- reviews (authenticated) ----

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	var in struct {
		PackageID int64  `json:"packageId"`
		Comment   string `json:"comment"`
		Rating    int    `json:"rating"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	rev, err := h.Reviews.Create(r.Context(), app.ReviewInput{
		UserID:    claims.UserID,
		PackageID: in.PackageID,
		Comment:   in.Comment,
		Rating:    in.Rating,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rev)
}

// canTouchReview loads the review and checks the caller owns it or is admin.
func (h *Handlers) canTouchReview(w http.ResponseWriter, r *http.Request, id int64) bool {
	claims, _ := ClaimsFrom(r.Context())
	rev, err := h.Reviews.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return false
	}
	if rev.UserID != claims.UserID && claims.Role != domain.RoleAdmin {
		writeProblem(w, http.StatusForbidden, "Forbidden", "not your review")
		return false
	}
	return true
}

func (h *Handlers) updateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !h.canTouchReview(w, r, id) {
		return
	}
	var in struct {
		Comment *string `json:"comment"`
		Rating  *int    `json:"rating"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	rev, err := h.Reviews.Update(r.Context(), id, app.ReviewPatch{Comment: in.Comment, Rating: in.Rating})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !h.canTouchReview(w, r, id) {
		return
	}
	if err := h.Reviews.Delete(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- bookings ----

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	var in struct {
		PackageID  int64  `json:"packageId"`
		TravelDate string `json:"travelDate"`
		Travelers  int    `json:"travelers"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	b, err := h.Bookings.Create(r.Context(), app.BookingInput{
		UserID:     claims.UserID,
		PackageID:  in.PackageID,
		TravelDate: in.TravelDate,
		Travelers:  in.Travelers,
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) listMyBookings(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	bs, err := h.Bookings.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	claims, _ := ClaimsFrom(r.Context())
	b, err := h.Bookings.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	if b.UserID != claims.UserID && claims.Role != domain.RoleAdmin {
		writeProblem(w, http.StatusForbidden, "Forbidden", "not your booking")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ---- profile ----

func (h *Handlers) getMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	u, err := h.Users.Get(r.Context(), claims.UserID)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) updateMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var name, email *string
	var avatar *app.Upload
	if isMultipart(r) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "malformed multipart body")
			return
		}
		name = formStr(r, "name")
		email = formStr(r, "email")
		ups, ok := formUploads(w, r, "avatar")
		if !ok {
			return
		}
		if len(ups) > 0 {
			avatar = &ups[0]
		}
	} else {
		var in struct {
			Name  *string `json:"name"`
			Email *string `json:"email"`
		}
		if !decodeJSON(w, r, &in) {
			return
		}
		name, email = in.Name, in.Email
	}

	u, err := h.Users.UpdateProfile(r.Context(), claims.UserID, name, email, avatar)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ---- admin: packages & categories ----

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func formStr(r *http.Request, key string) *string {
	if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}

// formUploads reads every file under key into memory. Writes a problem and
// returns ok=false on read failure.
func formUploads(w http.ResponseWriter, r *http.Request, key string) ([]app.Upload, bool) {
	var ups []app.Upload
	for _, fh := range r.MultipartForm.File[key] {
		f, err := fh.Open()
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "unreadable upload "+fh.Filename)
			return nil, false
		}
		data, err := io.ReadAll(io.LimitReader(f, 10<<20))
		f.Close()
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "unreadable upload "+fh.Filename)
			return nil, false
		}
		ups = append(ups, app.Upload{Name: fh.Filename, Data: data})
	}
	return ups, true
}

func (h *Handlers) createPackage(w http.ResponseWriter, r *http.Request) {
	var in app.PackageInput
	var uploads []app.Upload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "malformed multipart body")
			return
		}
		in.Name = r.FormValue("name")
		in.Description = r.FormValue("description")
		in.Price, _ = strconv.ParseFloat(r.FormValue("price"), 64)
		in.CategoryID, _ = strconv.ParseInt(r.FormValue("categoryId"), 10, 64)
		in.Status = domain.PackageStatus(r.FormValue("status"))
		in.Features = r.MultipartForm.Value["features"]
		in.Itinerary = r.MultipartForm.Value["itinerary"]
		var ok bool
		if uploads, ok = formUploads(w, r, "images"); !ok {
			return
		}
	} else {
		var body struct {
			Name        string   `json:"name"`
			Description string   `json:"description"`
			Price       float64  `json:"price"`
			CategoryID  int64    `json:"categoryId"`
			Status      string   `json:"status"`
			Features    []string `json:"features"`
			Itinerary   []string `json:"itinerary"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		in = app.PackageInput{
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			CategoryID:  body.CategoryID,
			Status:      domain.PackageStatus(body.Status),
			Features:    body.Features,
			Itinerary:   body.Itinerary,
		}
	}

	p, err := h.Catalog.CreatePackage(r.Context(), in, uploads)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handlers) updatePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch app.PackagePatch
	var uploads []app.Upload

	if isMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "malformed multipart body")
			return
		}
		patch.Name = formStr(r, "name")
		patch.Description = formStr(r, "description")
		if v := formStr(r, "price"); v != nil {
			p, err := strconv.ParseFloat(*v, 64)
			if err != nil {
				writeProblem(w, http.StatusBadRequest, "Invalid Request", "price must be a number")
				return
			}
			patch.Price = &p
		}
		if v := formStr(r, "categoryId"); v != nil {
			cid, err := strconv.ParseInt(*v, 10, 64)
			if err != nil {
				writeProblem(w, http.StatusBadRequest, "Invalid Request", "categoryId must be a number")
				return
			}
			patch.CategoryID = &cid
		}
		if v := formStr(r, "status"); v != nil {
			st := domain.PackageStatus(*v)
			patch.Status = &st
		}
		patch.Features = r.MultipartForm.Value["features"]
		patch.Itinerary = r.MultipartForm.Value["itinerary"]
		if uploads, ok = formUploads(w, r, "images"); !ok {
			return
		}
	} else {
		var body struct {
			Name        *string  `json:"name"`
			Description *string  `json:"description"`
			Price       *float64 `json:"price"`
			CategoryID  *int64   `json:"categoryId"`
			Status      *string  `json:"status"`
			Features    []string `json:"features"`
			Itinerary   []string `json:"itinerary"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		patch = app.PackagePatch{
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			CategoryID:  body.CategoryID,
			Features:    body.Features,
			Itinerary:   body.Itinerary,
		}
		if body.Status != nil {
			st := domain.PackageStatus(*body.Status)
			patch.Status = &st
		}
	}

	p, err := h.Catalog.UpdatePackage(r.Context(), id, patch, uploads)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) deletePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Catalog.DeletePackage(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) createCategory(w http.ResponseWriter, r *http.Request) {
	var name string
	var uploads []app.Upload
	if isMultipart(r) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "malformed multipart body")
			return
		}
		name = r.FormValue("name")
		var ok bool
		if uploads, ok = formUploads(w, r, "images"); !ok {
			return
		}
	} else {
		var body struct {
			Name string `json:"name"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		name = body.Name
	}
	c, err := h.Catalog.CreateCategory(r.Context(), name, uploads)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var name *string
	var uploads []app.Upload
	if isMultipart(r) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "malformed multipart body")
			return
		}
		name = formStr(r, "name")
		if uploads, ok = formUploads(w, r, "images"); !ok {
			return
		}
	} else {
		var body struct {
			Name *string `json:"name"`
		}
		if !decodeJSON(w, r, &body) {
			return
		}
		name = body.Name
	}
	c, err := h.Catalog.UpdateCategory(r.Context(), id, name, uploads)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteCategory(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- admin: bookings, reviews, users ----

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	q := dateRange(r)
	bs, err := h.Bookings.ListAll(r.Context(), q)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (h *Handlers) updateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	b, err := h.Bookings.UpdateStatus(r.Context(), id, domain.BookingStatus(strings.ToLower(in.Status)))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) listAllReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Reviews.ListAll(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	us, err := h.Users.List(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, us)
}

func (h *Handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in struct {
		Name   *string `json:"name"`
		Email  *string `json:"email"`
		Role   *string `json:"role"`
		Status *string `json:"status"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	patch := app.UserPatch{Name: in.Name, Email: in.Email, Status: in.Status}
	if in.Role != nil {
		role := domain.Role(*in.Role)
		patch.Role = &role
	}
	u, err := h.Users.Update(r.Context(), id, patch)
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	claims, _ := ClaimsFrom(r.Context())
	if claims.UserID == id {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "cannot delete your own account")
		return
	}
	if err := h.Users.Delete(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- admin: stats ----

func (h *Handlers) totals(w http.ResponseWriter, r *http.Request) {
	t, err := h.Stats.Totals(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) monthlyStats(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year")
	if year == 0 {
		year = time.Now().Year()
	}
	rep, err := h.Stats.Monthly(r.Context(), year, dateRange(r))
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
