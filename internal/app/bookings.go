package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"wanderwise/internal/domain"
)

type BookingService struct {
	repo    domain.BookingRepository
	catalog domain.CatalogRepository
}

func NewBookingService(r domain.BookingRepository, c domain.CatalogRepository) *BookingService {
	return &BookingService{repo: r, catalog: c}
}

type BookingInput struct {
	UserID     int64
	PackageID  int64
	TravelDate string
	Travelers  int
}

// Create prices the booking from the package's current per-traveler price
// and starts it in pending status.
func (s *BookingService) Create(ctx context.Context, in BookingInput) (domain.Booking, error) {
	if in.UserID == 0 || in.PackageID == 0 {
		return domain.Booking{}, fmt.Errorf("%w: user and package required", domain.ErrValidation)
	}
	if in.Travelers < 1 {
		return domain.Booking{}, fmt.Errorf("%w: at least one traveler required", domain.ErrValidation)
	}
	if _, err := parseTravelDate(in.TravelDate); err != nil {
		return domain.Booking{}, fmt.Errorf("%w: travel date must be YYYY-MM-DD", domain.ErrValidation)
	}

	p, err := s.catalog.GetPackage(ctx, in.PackageID)
	if err != nil {
		return domain.Booking{}, err
	}

	return s.repo.CreateBooking(ctx, domain.Booking{
		Reference:  uuid.NewString(),
		UserID:     in.UserID,
		PackageID:  in.PackageID,
		TravelDate: in.TravelDate,
		Travelers:  in.Travelers,
		TotalPrice: p.Price * float64(in.Travelers),
		Status:     domain.BookingPending,
	})
}

func (s *BookingService) Get(ctx context.Context, id int64) (domain.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) ListForUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.repo.ListUserBookings(ctx, userID)
}

func (s *BookingService) ListAll(ctx context.Context, q domain.BookingsQuery) ([]domain.Booking, error) {
	return s.repo.ListBookings(ctx, q)
}

func (s *BookingService) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (domain.Booking, error) {
	if !domain.ValidBookingStatus(status) {
		return domain.Booking{}, fmt.Errorf("%w: unknown booking status %q", domain.ErrValidation, status)
	}
	if _, err := s.repo.GetBooking(ctx, id); err != nil {
		return domain.Booking{}, err
	}
	if err := s.repo.UpdateBookingStatus(ctx, id, status); err != nil {
		return domain.Booking{}, err
	}
	return s.repo.GetBooking(ctx, id)
}
