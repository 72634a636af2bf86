package sentinel

import "errors"

// Sentinel errors for store-level facts. Stores return these (optionally
// wrapped) and services translate them into coded errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrActiveRequest   = errors.New("applicant has an open case")
	ErrStillValid      = errors.New("applicant has a completed case that is still valid")
	ErrAlreadyAssigned = errors.New("case already assigned")
)
