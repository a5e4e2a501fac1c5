package handlers

import (
	"subdesk/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Handlers bundles every handler group mounted under /v1.
type Handlers struct {
	Auth          *AuthHandlers
	Customers     *CustomerHandlers
	Categories    *CategoryHandlers
	Products      *ProductHandlers
	Subscriptions *SubscriptionHandlers
	Reminders     *ReminderHandlers
	Dashboard     *DashboardHandlers
	Jobs          *JobHandlers
	Health        *HealthHandlers
}

// RegisterRoutes mounts the health endpoints at the root and the API under
// /v1. Everything but login sits behind auth.
func RegisterRoutes(e *echo.Echo, h *Handlers, versions *middleware.VersionMiddleware, auth echo.MiddlewareFunc) {
	e.GET("/health", h.Health.HealthCheck)
	e.GET("/health/live", h.Health.LivenessCheck)

	v1 := versions.VersionRoute(e, "v1")
	v1.POST("/auth/login", h.Auth.Login)

	protected := v1.Group("")
	protected.Use(auth)

	protected.GET("/auth/me", h.Auth.Me)

	protected.GET("/customers", h.Customers.ListCustomers)
	protected.POST("/customers", h.Customers.CreateCustomer)
	protected.GET("/customers/:id", h.Customers.GetCustomer)
	protected.PUT("/customers/:id", h.Customers.UpdateCustomer)
	protected.DELETE("/customers/:id", h.Customers.DeleteCustomer)

	protected.GET("/categories", h.Categories.ListCategories)
	protected.POST("/categories", h.Categories.CreateCategory)
	protected.GET("/categories/:id", h.Categories.GetCategory)
	protected.PUT("/categories/:id", h.Categories.UpdateCategory)
	protected.DELETE("/categories/:id", h.Categories.DeleteCategory)

	protected.GET("/products", h.Products.ListProducts)
	protected.POST("/products", h.Products.CreateProduct)
	protected.GET("/products/:id", h.Products.GetProduct)
	protected.PUT("/products/:id", h.Products.UpdateProduct)
	protected.DELETE("/products/:id", h.Products.DeleteProduct)

	protected.GET("/subscriptions", h.Subscriptions.ListSubscriptions)
	protected.POST("/subscriptions", h.Subscriptions.CreateSubscription)
	protected.GET("/subscriptions/expiring", h.Subscriptions.ListExpiring)
	protected.GET("/subscriptions/:id", h.Subscriptions.GetSubscription)
	protected.PUT("/subscriptions/:id", h.Subscriptions.UpdateSubscription)
	protected.DELETE("/subscriptions/:id", h.Subscriptions.DeleteSubscription)
	protected.GET("/subscriptions/:id/reminder-settings", h.Subscriptions.GetReminderSettings)
	protected.PUT("/subscriptions/:id/reminder-settings", h.Subscriptions.SaveReminderSettings)
	protected.DELETE("/subscriptions/:id/reminder-settings", h.Subscriptions.DeleteReminderSettings)

	protected.GET("/reminders", h.Reminders.ListReminders)
	protected.POST("/reminders", h.Reminders.CreateReminder)
	protected.POST("/reminders/generate", h.Reminders.GenerateReminders)
	protected.GET("/reminders/pending", h.Reminders.ListPending)
	protected.GET("/reminders/:id", h.Reminders.GetReminder)
	protected.PUT("/reminders/:id", h.Reminders.UpdateReminder)
	protected.DELETE("/reminders/:id", h.Reminders.DeleteReminder)
	protected.POST("/reminders/:id/sent", h.Reminders.MarkSent)
	protected.POST("/reminders/:id/failed", h.Reminders.MarkFailed)
	protected.POST("/reminders/:id/send", h.Reminders.SendReminder)

	protected.GET("/dashboard/stats", h.Dashboard.Stats)
	protected.GET("/dashboard/recent", h.Dashboard.RecentActivity)
	protected.GET("/dashboard/upcoming", h.Dashboard.UpcomingRenewals)

	protected.POST("/exports/subscriptions", h.Jobs.ExportSubscriptions)
	protected.GET("/jobs", h.Jobs.JobStatus)
}
