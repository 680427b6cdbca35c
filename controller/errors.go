package controller

import "errors"

var (
	// ErrRequestActive is returned by Send and ReloadModel while a
	// generation request occupies the single active slot.
	ErrRequestActive = errors.New("generation request already active")

	// ErrGeneration wraps stream failures other than cancellation. The
	// partial assistant content is retained in history.
	ErrGeneration = errors.New("generation failed")
)
