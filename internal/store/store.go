// Package store holds the collaborators around the scoring core: response
// persistence in postgres, in-progress sessions in redis and the user event
// log in elasticsearch.
package store

import "errors"

var (
	ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")
	ErrSessionExists   = errors.New("SESSION_EXISTS")
	ErrStoreFailed     = errors.New("STORE_FAILED")
)
