package models

type PaginatedResponse struct {
	Data     any `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

type DashboardStats struct {
	Users         int                `json:"users"`
	BooksByStatus map[BookStatus]int `json:"books_by_status"`
	Orders        int                `json:"orders"`
	PaidRevenue   float64            `json:"paid_revenue"`
	Events        int                `json:"events"`
}
