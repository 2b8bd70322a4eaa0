package domain

import "context"

type CatalogRepository interface {
	// Packages
	CreatePackage(ctx context.Context, p Package) (Package, error)
	GetPackage(ctx context.Context, id int64) (Package, error)
	ListPackages(ctx context.Context, q PackagesQuery) (PackagesPage, error)
	UpdatePackage(ctx context.Context, p Package) error
	DeletePackage(ctx context.Context, id int64) error
	CountPackages(ctx context.Context) (int64, error)

	// Categories
	CreateCategory(ctx context.Context, c Category) (Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, c Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, r Review) (Review, error)
	GetReview(ctx context.Context, id int64) (Review, error)
	UpdateReview(ctx context.Context, r Review) error
	DeleteReview(ctx context.Context, id int64) error
	ListPackageReviews(ctx context.Context, packageID int64, pg PageQuery) (ReviewsPage, error)
	ListReviews(ctx context.Context) ([]Review, error)
	CountReviews(ctx context.Context) (int64, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, b Booking) (Booking, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]Booking, error)
	ListBookings(ctx context.Context, q BookingsQuery) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status BookingStatus) error
	CountBookings(ctx context.Context) (int64, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, u User) error
	DeleteUser(ctx context.Context, id int64) error
	CountUsers(ctx context.Context) (int64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// IdentityVerifier exchanges an external identity token for a profile.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// ImageStore is the object-storage collaborator for uploaded images.
type ImageStore interface {
	Upload(ctx context.Context, name string, data []byte) (Image, error)
	Destroy(ctx context.Context, publicID string) error
}

// Read models & queries

// PageQuery is a skip/limit page window. Page is 1-based; out-of-range
// values are normalized by the paginator, not rejected.
type PageQuery struct {
	Page  int
	Limit int
}

type PackagesQuery struct {
	Page     int
	Limit    int
	Category *int64
}

type PackagesPage struct {
	Items      []Package `json:"items"`
	TotalPages int       `json:"totalPages"`
}

type ReviewsPage struct {
	Items      []Review `json:"items"`
	TotalPages int      `json:"totalPages"`
}

// BookingsQuery filters bookings by an inclusive travel-date range.
// Dates are YYYY-MM-DD; nil means unbounded.
type BookingsQuery struct {
	StartDate *string
	EndDate   *string
}
