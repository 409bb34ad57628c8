package model

import "time"

// Checklist is a named shopping list owned by the user.
type Checklist struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Icon         string     `json:"icon"`
	Color        string     `json:"color"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastOpenedAt *time.Time `json:"last_opened_at"`
	LastShopAt   *time.Time `json:"last_shop_at"`
}

// ChecklistItem binds a catalog Item to a Checklist with a quantity and a
// 1-based position. Within one checklist the Order values always form the
// contiguous range 1..count.
type ChecklistItem struct {
	ID          int64     `json:"id"`
	ChecklistID int64     `json:"checklist_id"`
	ItemID      int64     `json:"item_id"`
	Order       int       `json:"order"`
	Quantity    int       `json:"quantity"`
	Checked     bool      `json:"checked"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
