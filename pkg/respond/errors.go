package respond

import "errors"

var (
	// ErrMalformedResponse means the model output could not be decoded as a
	// JSON object even after fence stripping and trailing-garbage recovery.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrIncompleteResponse means the JSON decoded but is missing fields the
	// operation requires.
	ErrIncompleteResponse = errors.New("incomplete model response")
)
