package slicmosaic

import "errors"

// Errors returned by the pipeline stages. They are wrapped with detail, so
// compare with errors.Is.
var (
	ErrInvalidChannelCount = errors.New("invalid channel count")
	ErrInvalidSegmentCount = errors.New("invalid segment count")
	ErrInvalidCompactness  = errors.New("invalid compactness")
	ErrEmptyImage          = errors.New("empty image")
	ErrShapeMismatch       = errors.New("image and label map shapes differ")
)
