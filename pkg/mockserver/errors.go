package mockserver

import "errors"

var (
	ErrLoadingFixtures = errors.New("mockserver: failed to load fixtures")
	ErrInvalidFixture  = errors.New("mockserver: invalid fixture")
)
