package auth

import "errors"

var (
	// ErrMissingCredential means the request carried no Authorization header.
	ErrMissingCredential = errors.New("auth: missing credential")
	// ErrInvalidToken covers bad signatures, malformed tokens and expired tokens alike.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrInsufficientPrivilege means a valid token without the admin flag hit an admin route.
	ErrInsufficientPrivilege = errors.New("auth: insufficient privilege")
)
