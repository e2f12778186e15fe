package usecase

import "errors"

var (
	// ErrBatchWrite wraps any failure of the all-or-nothing bulk insert.
	ErrBatchWrite = errors.New("batch write failed")
	// ErrInsufficientBars is returned when a series is too short to compute a day-over-day change.
	ErrInsufficientBars = errors.New("index out of range: at least two bars are required")
	// ErrNoSymbols is returned when the pipeline is started without any symbol.
	ErrNoSymbols = errors.New("no symbols to ingest")
)
