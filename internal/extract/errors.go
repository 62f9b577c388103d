package extract

import "errors"

// Extraction failure modes. Callers classify with errors.Is.
var (
	// ErrSourceUnavailable reports that the input could not be opened or read
	// at all (missing file, unreachable endpoint, stream failure).
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedSource reports input that opened fine but does not look
	// like an order export: broken syntax, missing required columns, or rows
	// whose shape contradicts the header.
	ErrMalformedSource = errors.New("malformed source")
)
