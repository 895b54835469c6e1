package domain

import "github.com/google/uuid"

// Hall is a bookable venue. Read-only from this service's perspective;
// ownership (ManagerID) drives chat routing and booking authorization.
type Hall struct {
	ID        uuid.UUID
	ManagerID uuid.UUID
	Name      string
	Capacity  int
}
