package dto

import "time"

// AdminStatsResponse captures the admin dashboard counters.
type AdminStatsResponse struct {
	TotalUsers        int       `json:"totalUsers"`
	PaidThisMonth     int       `json:"paidThisMonth"`
	ActiveEnrollments int       `json:"activeEnrollments"`
	PendingPayments   int       `json:"pendingPayments"`
	VerifiedRevenue   float64   `json:"verifiedRevenue"`
	Month             string    `json:"month"`
	GeneratedAt       time.Time `json:"generatedAt"`
}
