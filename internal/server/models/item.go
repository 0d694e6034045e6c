package models

import "time"

type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemFields are the caller-controlled columns of an item. Updates replace
// all of them.
type ItemFields struct {
	Name        string
	Description string
	Price       float64
	Category    string
	ImageURL    string
}
