package lp

import "errors"

var (
	// ErrUnknownVariable is returned when a variable handle was not created
	// by the model it is used with.
	ErrUnknownVariable = errors.New("lp: unknown variable")

	// ErrUnknownModel is returned on an internal consistency failure, such as
	// a negative right-hand side surviving standardization.
	ErrUnknownModel = errors.New("lp: unknown model state")

	// ErrNumerical is returned when the basis matrix is rank-deficient or its
	// inverse cannot be computed. Unrecoverable.
	ErrNumerical = errors.New("lp: numerical failure")
)
