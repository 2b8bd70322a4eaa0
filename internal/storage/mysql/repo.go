package mysql

import (
	"context"
	"database/sql"
	"encoding/json"

	"wanderwise/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// jsonCol serializes a slice column; empty slices are stored as "[]" so
// scans never deal with NULL JSON.
func jsonCol(v any) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return "[]"
	}
	return string(b)
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

func (r *Repo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL,
		u.Name, u.Email, u.PasswordHash, string(u.Role), u.Status, valStr(u.ProfileImage))
	if err != nil {
		return domain.User{}, err
	}
	u.ID, err = res.LastInsertId()
	return u, err
}

func (r *Repo) scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	var role string
	var img sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.Status, &img, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	if img.Valid {
		s := img.String
		u.ProfileImage = &s
	}
	return u, nil
}

func (r *Repo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUserSQL+" WHERE id = ?", id))
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, selectUserSQL+" WHERE email = ?", email))
}

func (r *Repo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserSQL+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Updates don't infer existence from RowsAffected: MySQL reports 0 for a
// no-op update, and callers check existence with a read first.
func (r *Repo) UpdateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, updateUserSQL,
		u.Name, u.Email, string(u.Role), u.Status, valStr(u.ProfileImage), u.ID)
	return err
}

func (r *Repo) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteUserSQL, id)
	return affectedOrNotFound(res, err)
}

func (r *Repo) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM users")
}

// -----------------------------------------------------------------------------
// Categories
// -----------------------------------------------------------------------------

func (r *Repo) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	res, err := r.db.ExecContext(ctx, insertCategorySQL, c.Name, jsonCol(c.Images))
	if err != nil {
		return domain.Category{}, err
	}
	c.ID, err = res.LastInsertId()
	return c, err
}

func (r *Repo) scanCategory(row interface{ Scan(...any) error }) (domain.Category, error) {
	var c domain.Category
	var imagesJSON []byte
	if err := row.Scan(&c.ID, &c.Name, &imagesJSON, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Category{}, domain.ErrNotFound
		}
		return domain.Category{}, err
	}
	_ = json.Unmarshal(imagesJSON, &c.Images)
	return c, nil
}

func (r *Repo) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return r.scanCategory(r.db.QueryRowContext(ctx, selectCategorySQL+" WHERE id = ?", id))
}

func (r *Repo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, selectCategorySQL+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		c, err := r.scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateCategory(ctx context.Context, c domain.Category) error {
	_, err := r.db.ExecContext(ctx, updateCategorySQL, c.Name, jsonCol(c.Images), c.ID)
	return err
}

func (r *Repo) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteCategorySQL, id)
	return affectedOrNotFound(res, err)
}

// -----------------------------------------------------------------------------
// Packages
// -----------------------------------------------------------------------------

func (r *Repo) CreatePackage(ctx context.Context, p domain.Package) (domain.Package, error) {
	res, err := r.db.ExecContext(ctx, insertPackageSQL,
		p.Name, p.Description, p.Price, p.CategoryID, string(p.Status),
		jsonCol(p.Features), jsonCol(p.Itinerary), jsonCol(p.Images))
	if err != nil {
		return domain.Package{}, err
	}
	p.ID, err = res.LastInsertId()
	return p, err
}

func (r *Repo) scanPackage(row interface{ Scan(...any) error }) (domain.Package, error) {
	var p domain.Package
	var status string
	var featuresJSON, itineraryJSON, imagesJSON []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID,
		&status, &featuresJSON, &itineraryJSON, &imagesJSON, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Package{}, domain.ErrNotFound
		}
		return domain.Package{}, err
	}
	p.Status = domain.PackageStatus(status)
	_ = json.Unmarshal(featuresJSON, &p.Features)
	_ = json.Unmarshal(itineraryJSON, &p.Itinerary)
	_ = json.Unmarshal(imagesJSON, &p.Images)
	return p, nil
}

func (r *Repo) GetPackage(ctx context.Context, id int64) (domain.Package, error) {
	return r.scanPackage(r.db.QueryRowContext(ctx, selectPackageSQL+" WHERE id = ?", id))
}

// ListPackages returns one skip/limit page window plus the total page
// count for the same filter. Natural id order; no recency guarantee.
func (r *Repo) ListPackages(ctx context.Context, q domain.PackagesQuery) (domain.PackagesPage, error) {
	where, args := "", []any{}
	if q.Category != nil {
		where = " WHERE category_id = ?"
		args = append(args, *q.Category)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM packages"+where, args...).Scan(&total); err != nil {
		return domain.PackagesPage{}, err
	}

	limit := q.Limit
	if limit < 1 {
		limit = 6
	}
	// defensive clamp: a page of 0 or below must not produce a negative skip
	skip := (q.Page - 1) * limit
	if skip < 0 {
		skip = 0
	}

	rows, err := r.db.QueryContext(ctx, selectPackageSQL+where+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, limit, skip)...)
	if err != nil {
		return domain.PackagesPage{}, err
	}
	defer rows.Close()

	out := domain.PackagesPage{
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
	for rows.Next() {
		p, err := r.scanPackage(rows)
		if err != nil {
			return domain.PackagesPage{}, err
		}
		out.Items = append(out.Items, p)
	}
	return out, rows.Err()
}

func (r *Repo) UpdatePackage(ctx context.Context, p domain.Package) error {
	_, err := r.db.ExecContext(ctx, updatePackageSQL,
		p.Name, p.Description, p.Price, p.CategoryID, string(p.Status),
		jsonCol(p.Features), jsonCol(p.Itinerary), jsonCol(p.Images), p.ID)
	return err
}

func (r *Repo) DeletePackage(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deletePackageSQL, id)
	return affectedOrNotFound(res, err)
}

func (r *Repo) CountPackages(ctx context.Context) (int64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM packages")
}

// -----------------------------------------------------------------------------
// Bookings
// -----------------------------------------------------------------------------

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	res, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.Reference, b.UserID, b.PackageID, b.TravelDate, b.Travelers, b.TotalPrice, string(b.Status))
	if err != nil {
		return domain.Booking{}, err
	}
	b.ID, err = res.LastInsertId()
	return b, err
}

func (r *Repo) scanBooking(row interface{ Scan(...any) error }) (domain.Booking, error) {
	var b domain.Booking
	var status string
	if err := row.Scan(&b.ID, &b.Reference, &b.UserID, &b.PackageID,
		&b.TravelDate, &b.Travelers, &b.TotalPrice, &status, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (r *Repo) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	return r.scanBooking(r.db.QueryRowContext(ctx, selectBookingSQL+" WHERE id = ?", id))
}

func (r *Repo) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return r.listBookings(ctx, selectBookingSQL+" WHERE user_id = ? ORDER BY id DESC", userID)
}

// ListBookings applies the inclusive travel-date range filter. travel_date
// is stored as YYYY-MM-DD, so string comparison sorts correctly.
func (r *Repo) ListBookings(ctx context.Context, q domain.BookingsQuery) ([]domain.Booking, error) {
	query := selectBookingSQL + " WHERE 1=1"
	var args []any
	if q.StartDate != nil {
		query += " AND travel_date >= ?"
		args = append(args, *q.StartDate)
	}
	if q.EndDate != nil {
		query += " AND travel_date <= ?"
		args = append(args, *q.EndDate)
	}
	return r.listBookings(ctx, query+" ORDER BY id", args...)
}

func (r *Repo) listBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	_, err := r.db.ExecContext(ctx, updateBookingStatusSQL, string(status), id)
	return err
}

func (r *Repo) CountBookings(ctx context.Context) (int64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM bookings")
}

// -----------------------------------------------------------------------------
// Reviews
// -----------------------------------------------------------------------------

func (r *Repo) CreateReview(ctx context.Context, rv domain.Review) (domain.Review, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL, rv.UserID, rv.PackageID, rv.Comment, rv.Rating)
	if err != nil {
		return domain.Review{}, err
	}
	rv.ID, err = res.LastInsertId()
	return rv, err
}

func (r *Repo) scanReview(row interface{ Scan(...any) error }) (domain.Review, error) {
	var rv domain.Review
	if err := row.Scan(&rv.ID, &rv.UserID, &rv.PackageID, &rv.Comment, &rv.Rating, &rv.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Review{}, domain.ErrNotFound
		}
		return domain.Review{}, err
	}
	return rv, nil
}

func (r *Repo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	return r.scanReview(r.db.QueryRowContext(ctx, selectReviewSQL+" WHERE id = ?", id))
}

func (r *Repo) UpdateReview(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, updateReviewSQL, rv.Comment, rv.Rating, rv.PackageID, rv.ID)
	return err
}

func (r *Repo) DeleteReview(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteReviewSQL, id)
	return affectedOrNotFound(res, err)
}

func (r *Repo) ListPackageReviews(ctx context.Context, packageID int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE package_id = ?", packageID).Scan(&total); err != nil {
		return domain.ReviewsPage{}, err
	}

	limit := pg.Limit
	if limit < 1 {
		limit = 6
	}
	skip := (pg.Page - 1) * limit
	if skip < 0 {
		skip = 0
	}

	rows, err := r.db.QueryContext(ctx,
		selectReviewSQL+" WHERE package_id = ? ORDER BY id LIMIT ? OFFSET ?",
		packageID, limit, skip)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	out := domain.ReviewsPage{
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
	for rows.Next() {
		rv, err := r.scanReview(rows)
		if err != nil {
			return domain.ReviewsPage{}, err
		}
		out.Items = append(out.Items, rv)
	}
	return out, rows.Err()
}

func (r *Repo) ListReviews(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, selectReviewSQL+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := r.scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) CountReviews(ctx context.Context) (int64, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM reviews")
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func (r *Repo) count(ctx context.Context, query string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, query).Scan(&n)
	return n, err
}

func affectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
