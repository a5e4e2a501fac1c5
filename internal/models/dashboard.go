package models

type DashboardStats struct {
	TotalCustomers      int `json:"total_customers"`
	ActiveSubscriptions int `json:"active_subscriptions"`
	TotalProducts       int `json:"total_products"`
	PendingReminders    int `json:"pending_reminders"`
}
