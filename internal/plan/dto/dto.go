package dto

type Usage struct {
	PlanName   string `json:"plan_name"`
	OrderCount int    `json:"order_count"`
	OrderLimit int    `json:"order_limit"` // -1 when unlimited
	Active     bool   `json:"active"`
}
