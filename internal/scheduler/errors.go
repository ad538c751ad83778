package scheduler

import "errors"

// ErrModelUnavailable means the fitted model, scaler, or encoders were not
// loaded. It is a precondition failure checked before any computation, not
// a runtime prediction error.
var ErrModelUnavailable = errors.New("model not loaded")
