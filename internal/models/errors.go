package models

import "errors"

var (
	// ErrAlreadyVoted means this client has a recorded vote; callers disable the control instead of reporting it.
	ErrAlreadyVoted = errors.New("already voted")

	// ErrEmptyCommentIgnored means the draft had no text and is submitted as "no comment".
	ErrEmptyCommentIgnored = errors.New("empty comment ignored")

	// ErrStoreWriteFailed wraps a failed aggregate write; the submission is retryable.
	ErrStoreWriteFailed = errors.New("store write failed")

	// ErrStoreSubscriptionLost means a push stream closed while its reader was still interested.
	ErrStoreSubscriptionLost = errors.New("store subscription lost")

	ErrInvalidChoice     = errors.New("invalid choice: must be 'accept' or 'reject'")
	ErrInvalidTransition = errors.New("action not allowed in current state")
	ErrSubmitInProgress  = errors.New("submission already in progress")
	ErrAggregateUnknown  = errors.New("vote totals not loaded yet")
	ErrInvalidAvatar     = errors.New("invalid avatar image")
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)
