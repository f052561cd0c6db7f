package engine

import "errors"

// Configuration and session errors surfaced to callers without retry.
var (
	ErrEmptyKeyword  = errors.New("keyword is required")
	ErrMissingAPIKey = errors.New("YouTube API key is not configured")
	ErrLoginRequired = errors.New("browser search requires a saved YouTube session, log in again")
)
