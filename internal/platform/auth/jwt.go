package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/satrio28/hallbook/internal/core/domain"
)

// Verifier validates HMAC-signed bearer tokens issued by the identity
// service and implements ports.TokenVerifier.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(tokenString string) (domain.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, domain.ErrTokenExpired
		}
		return domain.Identity{}, domain.ErrInvalidToken
	}

	if !token.Valid {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	switch domain.Role(role) {
	case domain.RoleCustomer, domain.RoleManager, domain.RoleAdmin:
	default:
		return domain.Identity{}, domain.ErrInvalidToken
	}

	name, _ := claims["name"].(string)

	return domain.Identity{
		UserID: userID,
		Name:   name,
		Role:   domain.Role(role),
	}, nil
}

// Sign issues a token for the identity. Provided for tests and local
// tooling; production tokens come from the identity service.
func (v *Verifier) Sign(identity domain.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": identity.UserID.String(),
		"name":    identity.Name,
		"role":    string(identity.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	return token.SignedString(v.secret)
}
