package domain

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCanceled   BookingStatus = "canceled"
	BookingProcessing BookingStatus = "processing"
	BookingSuccess    BookingStatus = "success"
)

// ValidBookingStatus reports whether s is one of the known statuses.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCanceled, BookingProcessing, BookingSuccess:
		return true
	}
	return false
}

type Booking struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"` // opaque booking reference shown to the traveler
	UserID    int64  `json:"userId"`
	PackageID int64  `json:"packageId"`
	// TravelDate is kept as submitted (expected YYYY-MM-DD). Records that
	// fail to parse are skipped by reporting, not rejected at write time.
	TravelDate string        `json:"travelDate"`
	Travelers  int           `json:"travelers"`
	TotalPrice float64       `json:"totalPrice"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
}
