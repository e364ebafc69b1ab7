package service

import "errors"

// Sentinel kinds for recorder errors.
var (
	ErrQueueFull  = errors.New("recorder queue full")
	ErrStopped    = errors.New("recorder stopped")
	ErrNotStarted = errors.New("recorder not started")
	ErrNilEvent   = errors.New("nil event")
)
