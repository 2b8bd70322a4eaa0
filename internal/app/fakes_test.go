package app_test

import (
	"context"
	"fmt"

	"wanderwise/internal/domain"
)

// ---- shared fakes ----

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Package:
		*d = v.(domain.Package)
	case *domain.PackagesPage:
		*d = v.(domain.PackagesPage)
	case *domain.ReviewsPage:
		*d = v.(domain.ReviewsPage)
	case *[]domain.Category:
		*d = v.([]domain.Category)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

type fakeCatalogRepo struct {
	pkg        domain.Package
	pkgPage    domain.PackagesPage
	categories []domain.Category
	created    []domain.Package
	updated    []domain.Package
	deleted    []int64
}

func (f *fakeCatalogRepo) CreatePackage(ctx context.Context, p domain.Package) (domain.Package, error) {
	p.ID = int64(len(f.created) + 1)
	f.created = append(f.created, p)
	return p, nil
}
func (f *fakeCatalogRepo) GetPackage(ctx context.Context, id int64) (domain.Package, error) {
	if f.pkg.ID == 0 {
		return domain.Package{}, domain.ErrNotFound
	}
	return f.pkg, nil
}
func (f *fakeCatalogRepo) ListPackages(ctx context.Context, q domain.PackagesQuery) (domain.PackagesPage, error) {
	return f.pkgPage, nil
}
func (f *fakeCatalogRepo) UpdatePackage(ctx context.Context, p domain.Package) error {
	f.updated = append(f.updated, p)
	return nil
}
func (f *fakeCatalogRepo) DeletePackage(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeCatalogRepo) CountPackages(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeCatalogRepo) CreateCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	c.ID = 1
	return c, nil
}
func (f *fakeCatalogRepo) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrNotFound
}
func (f *fakeCatalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return f.categories, nil
}
func (f *fakeCatalogRepo) UpdateCategory(ctx context.Context, c domain.Category) error { return nil }
func (f *fakeCatalogRepo) DeleteCategory(ctx context.Context, id int64) error          { return nil }

type fakeReviewRepo struct {
	reviews map[int64]domain.Review
	page    domain.ReviewsPage
	nextID  int64
}

func (f *fakeReviewRepo) CreateReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	if f.reviews == nil {
		f.reviews = map[int64]domain.Review{}
	}
	f.nextID++
	r.ID = f.nextID
	f.reviews[r.ID] = r
	return r, nil
}
func (f *fakeReviewRepo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	return r, nil
}
func (f *fakeReviewRepo) UpdateReview(ctx context.Context, r domain.Review) error {
	if _, ok := f.reviews[r.ID]; !ok {
		return domain.ErrNotFound
	}
	f.reviews[r.ID] = r
	return nil
}
func (f *fakeReviewRepo) DeleteReview(ctx context.Context, id int64) error {
	delete(f.reviews, id)
	return nil
}
func (f *fakeReviewRepo) ListPackageReviews(ctx context.Context, packageID int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return f.page, nil
}
func (f *fakeReviewRepo) ListReviews(ctx context.Context) ([]domain.Review, error) { return nil, nil }
func (f *fakeReviewRepo) CountReviews(ctx context.Context) (int64, error)          { return 0, nil }

type fakeBookingRepo struct {
	bookings []domain.Booking
	created  []domain.Booking
}

func (f *fakeBookingRepo) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	b.ID = int64(len(f.created) + 1)
	f.created = append(f.created, b)
	return b, nil
}
func (f *fakeBookingRepo) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Booking{}, domain.ErrNotFound
}
func (f *fakeBookingRepo) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return f.bookings, nil
}
func (f *fakeBookingRepo) ListBookings(ctx context.Context, q domain.BookingsQuery) ([]domain.Booking, error) {
	return f.bookings, nil
}
func (f *fakeBookingRepo) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}
func (f *fakeBookingRepo) CountBookings(ctx context.Context) (int64, error) {
	return int64(len(f.bookings)), nil
}

type fakeUserRepo struct {
	users  map[int64]domain.User
	nextID int64
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if f.users == nil {
		f.users = map[int64]domain.User{}
	}
	f.nextID++
	u.ID = f.nextID
	f.users[u.ID] = u
	return u, nil
}
func (f *fakeUserRepo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}
func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}
func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]domain.User, error) { return nil, nil }
func (f *fakeUserRepo) UpdateUser(ctx context.Context, u domain.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	f.users[u.ID] = u
	return nil
}
func (f *fakeUserRepo) DeleteUser(ctx context.Context, id int64) error {
	delete(f.users, id)
	return nil
}
func (f *fakeUserRepo) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeImageStore struct {
	uploads   []string
	destroyed []string
}

func (f *fakeImageStore) Upload(ctx context.Context, name string, data []byte) (domain.Image, error) {
	f.uploads = append(f.uploads, name)
	return domain.Image{PublicID: "img-" + name, URL: fmt.Sprintf("https://img.example/%s", name)}, nil
}
func (f *fakeImageStore) Destroy(ctx context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type fakeIdentity struct {
	ident domain.Identity
	err   error
}

func (f *fakeIdentity) Verify(ctx context.Context, token string) (domain.Identity, error) {
	return f.ident, f.err
}

// ---- tiny helpers (shared across tests) ----

func ptr[T any](v T) *T { return &v }
