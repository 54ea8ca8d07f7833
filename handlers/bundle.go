package handlers

import (
	"repairdesk/middleware"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Users resolves token subjects for the auth middleware.
	Users middleware.IdentityResolver

	Requests      *RequestHandler
	Notifications *NotificationHandler
	Chat          *ChatHandler
	Analytics     *AnalyticsHandler
	Warranties    *WarrantyHandler
	Admin         *AdminHandler
}
