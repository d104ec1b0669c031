package services

import "errors"

// ErrValidation marks client errors on the explicit request paths (missing
// required field, unknown status value). Handlers map it to a 400 response.
var ErrValidation = errors.New("invalid request")
