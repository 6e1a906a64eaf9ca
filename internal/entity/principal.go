package entity

import "github.com/google/uuid"

type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// Principal is the authenticated caller as supplied by the identity collaborator.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
