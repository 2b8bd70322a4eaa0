package domain

import "time"

type PackageStatus string

const (
	PackageActive   PackageStatus = "active"
	PackageInactive PackageStatus = "inactive"
)

// Image is a stored upload: the provider's public id plus its serving URL.
type Image struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Images    []Image   `json:"images"`
	CreatedAt time.Time `json:"createdAt"`
}

type Package struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	CategoryID  int64         `json:"categoryId"`
	Status      PackageStatus `json:"status"`
	Features    []string      `json:"features"`
	Itinerary   []string      `json:"itinerary"`
	Images      []Image       `json:"images"`
	CreatedAt   time.Time     `json:"createdAt"`
}
