package model

// CategoryMonthTotal is one row of the per-category spending breakdown.
// Month is formatted as "2006-01".
type CategoryMonthTotal struct {
	Category string  `json:"category"`
	Month    string  `json:"month"`
	Total    float64 `json:"total"`
}
