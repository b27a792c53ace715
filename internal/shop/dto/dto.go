package dto

type ResourceFilters struct {
	ShopID      string
	SearchQuery string // title search
	SortBy      string // title, next_availability_date, available_dates, created_at
	SortOrder   string // asc, desc
	Page        int
	PageSize    int
}

type RegisterResourceInput struct {
	ShopID     string
	ResourceID string
	Title      string
}
