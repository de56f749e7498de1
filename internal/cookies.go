package internal

const (
	COOKIE_ADMIN_SESSION_NAME = "potholes_admin"
)
