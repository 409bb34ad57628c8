package model

import "time"

// Item is a catalog entry. It is reusable across checklists and may outlive
// every checklist that references it.
type Item struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	MeasureType  string    `json:"measure_type"`
	MeasureValue float64   `json:"measure_value"`
	PhotoRef     string    `json:"photo_ref"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
