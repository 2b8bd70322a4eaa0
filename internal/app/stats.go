package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"wanderwise/internal/domain"
)

type StatsService struct {
	catalog  domain.CatalogRepository
	reviews  domain.ReviewRepository
	bookings domain.BookingRepository
	users    domain.UserRepository
}

func NewStatsService(c domain.CatalogRepository, r domain.ReviewRepository, b domain.BookingRepository, u domain.UserRepository) *StatsService {
	return &StatsService{catalog: c, reviews: r, bookings: b, users: u}
}

type Totals struct {
	Packages int64 `json:"packages"`
	Users    int64 `json:"users"`
	Reviews  int64 `json:"reviews"`
	Bookings int64 `json:"bookings"`
}

func (s *StatsService) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	var err error
	if t.Packages, err = s.catalog.CountPackages(ctx); err != nil {
		return Totals{}, err
	}
	if t.Users, err = s.users.CountUsers(ctx); err != nil {
		return Totals{}, err
	}
	if t.Reviews, err = s.reviews.CountReviews(ctx); err != nil {
		return Totals{}, err
	}
	if t.Bookings, err = s.bookings.CountBookings(ctx); err != nil {
		return Totals{}, err
	}
	return t, nil
}

// MonthlyReport is a cumulative twelve-month series for one reporting
// year. Each element is the running total up to and including that month,
// so the series never decreases; it feeds a "growth over time" chart, not
// a per-month breakdown.
type MonthlyReport struct {
	Year     int       `json:"year"`
	Months   []string  `json:"months"` // YYYY-01 .. YYYY-12
	Bookings []int64   `json:"bookings"`
	Revenue  []float64 `json:"revenue"`
}

// Monthly folds bookings into the cumulative series for year. The optional
// date-range filter in q is applied by the repository before the fold.
func (s *StatsService) Monthly(ctx context.Context, year int, q domain.BookingsQuery) (MonthlyReport, error) {
	bs, err := s.bookings.ListBookings(ctx, q)
	if err != nil {
		return MonthlyReport{}, err
	}
	return foldMonthly(year, bs), nil
}

// foldMonthly buckets bookings by the calendar month of their travel date
// and turns the buckets into running totals. All twelve months are
// pre-seeded so inactive months still appear. A booking whose travel date
// does not parse is logged and skipped; one bad record never discards the
// rest.
func foldMonthly(year int, bs []domain.Booking) MonthlyReport {
	var counts [12]int64
	var revenue [12]float64

	for _, b := range bs {
		d, err := parseTravelDate(b.TravelDate)
		if err != nil {
			log.Warn().Int64("booking_id", b.ID).Str("travel_date", b.TravelDate).
				Msg("skipping booking with unparsable travel date")
			continue
		}
		if d.Year() != year {
			continue
		}
		m := int(d.Month()) - 1
		counts[m]++
		revenue[m] += b.TotalPrice
	}

	rep := MonthlyReport{
		Year:     year,
		Months:   make([]string, 12),
		Bookings: make([]int64, 12),
		Revenue:  make([]float64, 12),
	}
	var runCount int64
	var runRevenue float64
	for m := 0; m < 12; m++ {
		runCount += counts[m]
		runRevenue += revenue[m]
		rep.Months[m] = fmt.Sprintf("%04d-%02d", year, m+1)
		rep.Bookings[m] = runCount
		rep.Revenue[m] = runRevenue
	}
	return rep
}

func parseTravelDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
