package model

// Role is the staff role carried in the access token.
type Role string

const (
	RoleStaff   Role = "STAFF"
	RoleKitchen Role = "KITCHEN"
	RoleManager Role = "MANAGER"
)
