package rcv

import "errors"

var (
	// ErrNoSnapshot is returned when no register snapshot exists for a company.
	ErrNoSnapshot = errors.New("rcv snapshot not found")
	// ErrMissingToken is returned when the gateway token is not configured.
	ErrMissingToken = errors.New("sii gateway token not configured")
)
