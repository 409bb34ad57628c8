package model

import "time"

// History is an immutable snapshot of a checklist taken at checkout time.
// It keeps its own copy of the checklist metadata so it survives deletion
// of the originating checklist.
type History struct {
	ID          int64     `json:"id"`
	ChecklistID int64     `json:"checklist_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}

// HistoryItem is one frozen line of a shopping trip. All item fields are
// copied at snapshot time; the row never changes afterward.
type HistoryItem struct {
	ID              int64     `json:"id"`
	HistoryID       int64     `json:"history_id"`
	ChecklistItemID int64     `json:"checklist_item_id"`
	Name            string    `json:"name"`
	Price           float64   `json:"price"`
	Category        string    `json:"category"`
	MeasureType     string    `json:"measure_type"`
	MeasureValue    float64   `json:"measure_value"`
	PhotoRef        string    `json:"photo_ref"`
	Order           int       `json:"order"`
	Quantity        int       `json:"quantity"`
	IsChecked       bool      `json:"is_checked"`
	CreatedAt       time.Time `json:"created_at"`
}
