package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrRateLimited    = errors.New("rate limited")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUpstream       = errors.New("upstream error")
	ErrInvalidRequest = errors.New("invalid request")
)
