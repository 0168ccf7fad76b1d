package auth

import "github.com/golang-jwt/jwt/v5"

// Identity is the user record a token is minted from.
type Identity struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	IsAdmin bool   `json:"is_admin"`
}

// Claims are the only supported JWT claims shape for this service.
// A token's claims are frozen at issuance: IsAdmin is a snapshot, so a later
// privilege change only takes effect once a new token is issued.
type Claims struct {
	jwt.RegisteredClaims

	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	IsAdmin bool   `json:"is_admin"`
}

// Identity returns the user attributes carried by the claims.
func (c Claims) Identity() Identity {
	return Identity{
		ID:      c.UserID,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		IsAdmin: c.IsAdmin,
	}
}
