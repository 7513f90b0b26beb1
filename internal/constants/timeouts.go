package constants

import "time"

// Default timeouts and intervals used throughout the application
const (
	// Timestamp loop
	TimestampPollInterval = 100 * time.Millisecond
	SeekThreshold         = 1000 * time.Millisecond

	// A sequential pass that never suspends yields for this long before the next pass
	IdleYield = TimestampPollInterval

	// Scene timing function fallback when the host reports no frame schedule
	DefaultTimeToNextFrame = 5 * time.Second

	// Script fetching
	DefaultFetchTimeout = 10 * time.Second

	// Terminal player
	SeekStep      = 5 * time.Second
	UIRefreshRate = 50 * time.Millisecond
)

