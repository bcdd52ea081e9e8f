package models

import (
	"time"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by AuthService on login
// Refresh may be empty: login reuses the cached access token if one is still alive
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Claims attached to the request after token validation
type Claims struct {
	User    User
	JTI     string
	Fresh   bool
	IsAdmin bool
}
