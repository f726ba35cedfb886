package reminder

import "errors"

var (
	ErrNotificationsDisabled = errors.New("email notifications are not configured")
	ErrSweepInProgress       = errors.New("a reminder sweep for this day is already running")
)
