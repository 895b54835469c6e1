package domain

import "github.com/google/uuid"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID   uuid.UUID
	Name string
	Role Role
}

// Identity is the authenticated caller as attested by the identity gate.
type Identity struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}
