package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenInvalid       = errors.New("token signature or structure is invalid")
	ErrTokenExpired       = errors.New("token is expired")
	ErrTokenRevoked       = errors.New("token is revoked")
	ErrFreshTokenRequired = errors.New("fresh token required")
	ErrWrongTokenType     = errors.New("wrong token type")
	ErrAdminRequired      = errors.New("admin privilege required")

	ErrStoreAlreadyExists = errors.New("store already exists")
	ErrStoreNotFound      = errors.New("store not found")

	ErrItemAlreadyExists = errors.New("item already exists")
	ErrItemNotFound      = errors.New("item not found")

	ErrTagAlreadyExists = errors.New("tag already exists")
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagNotLinked     = errors.New("tag not linked to item")
	ErrCrossStoreLink   = errors.New("item and tag belong to different stores")
)
