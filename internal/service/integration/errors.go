package integration

import "errors"

var (
	ErrCalendarNotConfigured = errors.New("google calendar is not configured")
	ErrMissingCode           = errors.New("authorization code is required")
	ErrNoRefreshToken        = errors.New("provider did not return a refresh token")
)
