package ports

import "github.com/satrio28/hallbook/internal/core/domain"

// TokenVerifier is the identity gate. Core code never parses credentials
// itself; it accepts whatever identity the gate attests.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}
