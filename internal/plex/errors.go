package plex

import "errors"

var (
	// ErrNotFound indicates the requested item does not exist on the server.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the token was rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the server answered 429 Too Many Requests.
	ErrRateLimited = errors.New("rate limited")

	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("server error")
)
