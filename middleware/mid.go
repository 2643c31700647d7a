// Package middleware carries the gin middleware for the storefront
// API: request logging with trace ids and the session gate for routes
// that require a signed-in user.
package middleware

import (
	"fmt"

	"cura-service/internal/users"
)

type Mid struct {
	users *users.Conf
}

func NewMid(u *users.Conf) (*Mid, error) {
	if u == nil {
		return nil, fmt.Errorf("users conf is nil")
	}
	return &Mid{users: u}, nil
}
