package types

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload of a session token. Subject holds the user id and
// ID the revocable session id.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}
