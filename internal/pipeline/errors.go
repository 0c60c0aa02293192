package pipeline

import "errors"

var (
	// ErrInvalidInput is returned for missing or malformed user input
	// (user id, filename, question). No side effects are performed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType is returned when an uploaded filename matches
	// none of the allowed patterns.
	ErrUnsupportedType = errors.New("file type not allowed")

	// ErrNoDocument is returned when an operation needs a chunk set but
	// the user has uploaded nothing (neither cache nor disk has one).
	ErrNoDocument = errors.New("no document found for user: upload a document first")

	// ErrNoIndex is returned when a question is asked before an index
	// was built for the user.
	ErrNoIndex = errors.New("no index for user: upload a document and build the index first")
)
