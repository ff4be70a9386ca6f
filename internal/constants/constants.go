package constants

import "time"

// Session and context keys
const (
	SessionCookieName  = "employee_session"
	ContextKeyUserID   = "user_id"
	ContextKeyUser     = "current_user"
	ContextKeyEmployee = "employee"
	SessionKeyRemember = "remember"
)

// Flash categories, rendered in this order
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashDanger  = "danger"
)

// Field validation limits live in the form tags; these are the ones code
// checks directly.
const (
	MaxProfilePicName  = 200
	DateLayout         = "2006-01-02"
	RememberMeDuration = 30 * 24 * time.Hour
)
