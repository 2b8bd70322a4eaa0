package domain

import "time"

type Review struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"userId"`
	PackageID int64 `json:"packageId"`
	// Comment holds the masked text; the raw submission is never stored.
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"` // 1..5
	CreatedAt time.Time `json:"createdAt"`
}
